package payments

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no payment matches.
var ErrNotFound = errors.New("payment not found")

// Repo persists payments.
type Repo interface {
	Create(ctx context.Context, payment Payment) error
	GetByID(ctx context.Context, id string) (Payment, error)
	GetBySessionID(ctx context.Context, sessionID string) (Payment, error)
	// LatestByResume returns the most recent payment for a resume, or
	// ErrNotFound when the user never started checkout for it.
	LatestByResume(ctx context.Context, userID, resumeID string) (Payment, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	List(ctx context.Context, limit, offset int) ([]Payment, error)
}
