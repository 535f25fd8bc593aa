package applications

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no application matches.
	ErrNotFound = errors.New("application not found")
	// ErrDuplicate is returned when the user already applied to a job.
	ErrDuplicate = errors.New("already applied to this job")
)

// Repo persists applications and bulk runs.
type Repo interface {
	Create(ctx context.Context, app Application) error
	GetByID(ctx context.Context, id string) (Application, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Application, error)
	ListByJob(ctx context.Context, jobID string, limit, offset int) ([]Application, error)
	ExistsForJob(ctx context.Context, userID, jobID string) (bool, error)
	UpdateStatus(ctx context.Context, id, status string) (Application, error)

	CreateBulkRun(ctx context.Context, run BulkRun) error
	GetBulkRun(ctx context.Context, userID, runID string) (BulkRun, error)
	UpdateBulkRun(ctx context.Context, run BulkRun) error
}
