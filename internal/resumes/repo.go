package resumes

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates the draft does not exist for the user.
	ErrNotFound = errors.New("resume not found")
	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")
)

// Repo defines persistence operations for resume drafts.
type Repo interface {
	Create(ctx context.Context, draft Draft) error
	GetByID(ctx context.Context, userID, resumeID string) (Draft, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Draft, error)
	// Update overwrites the draft's content fields; last write wins.
	Update(ctx context.Context, draft Draft) error
	SetStructuredKey(ctx context.Context, userID, resumeID, key string) error
	SetArtifact(ctx context.Context, userID, resumeID, artifactKey, artifactURL, status string) error
	Delete(ctx context.Context, userID, resumeID string) error
}
