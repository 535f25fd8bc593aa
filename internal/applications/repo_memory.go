package applications

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is the in-memory fallback used when DATABASE_URL is unset.
type MemoryRepo struct {
	mu   sync.Mutex
	apps map[string]Application
	runs map[string]BulkRun
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		apps: make(map[string]Application),
		runs: make(map[string]BulkRun),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, app Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.apps {
		if existing.UserID == app.UserID && existing.JobID == app.JobID {
			return ErrDuplicate
		}
	}
	now := time.Now().UTC()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	app.UpdatedAt = now
	r.apps[app.ID] = app
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok {
		return Application{}, ErrNotFound
	}
	return app, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Application, error) {
	return r.list(func(app Application) bool { return app.UserID == userID }, limit, offset)
}

func (r *MemoryRepo) ListByJob(ctx context.Context, jobID string, limit, offset int) ([]Application, error) {
	return r.list(func(app Application) bool { return app.JobID == jobID }, limit, offset)
}

func (r *MemoryRepo) ExistsForJob(ctx context.Context, userID, jobID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, app := range r.apps {
		if app.UserID == userID && app.JobID == jobID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepo) UpdateStatus(ctx context.Context, id, status string) (Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok {
		return Application{}, ErrNotFound
	}
	app.Status = status
	app.UpdatedAt = time.Now().UTC()
	r.apps[id] = app
	return app, nil
}

func (r *MemoryRepo) CreateBulkRun(ctx context.Context, run BulkRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	run.UpdatedAt = now
	r.runs[run.ID] = run
	return nil
}

func (r *MemoryRepo) GetBulkRun(ctx context.Context, userID, runID string) (BulkRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[runID]
	if !ok || run.UserID != userID {
		return BulkRun{}, ErrNotFound
	}
	return run, nil
}

func (r *MemoryRepo) UpdateBulkRun(ctx context.Context, run BulkRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.runs[run.ID]
	if !ok {
		return ErrNotFound
	}
	run.CreatedAt = existing.CreatedAt
	run.UpdatedAt = time.Now().UTC()
	r.runs[run.ID] = run
	return nil
}

func (r *MemoryRepo) list(keep func(Application) bool, limit, offset int) ([]Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Application
	for _, app := range r.apps {
		if keep(app) {
			out = append(out, app)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
