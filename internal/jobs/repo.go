package jobs

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no posting matches.
	ErrNotFound = errors.New("job not found")
	// ErrInvalidInput flags malformed posting data.
	ErrInvalidInput = errors.New("invalid job input")
)

// BrowseFilter selects published postings.
type BrowseFilter struct {
	Query    string
	Location string
	Type     string
	Tags     []string
	Limit    int
	Offset   int
}

// Repo persists postings.
type Repo interface {
	Create(ctx context.Context, job Job) error
	GetByID(ctx context.Context, id string) (Job, error)
	Update(ctx context.Context, job Job) error
	Browse(ctx context.Context, filter BrowseFilter) ([]Job, error)
	// ListPublished returns every published posting, for the bulk
	// apply matcher.
	ListPublished(ctx context.Context) ([]Job, error)
	Delete(ctx context.Context, id string) error
}
