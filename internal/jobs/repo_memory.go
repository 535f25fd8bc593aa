package jobs

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepo is the in-memory fallback used when DATABASE_URL is unset.
type MemoryRepo struct {
	mu   sync.Mutex
	jobs map[string]Job
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{jobs: make(map[string]Job)}
}

func (r *MemoryRepo) Create(ctx context.Context, job Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now
	r.jobs[job.ID] = job
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return job, nil
}

func (r *MemoryRepo) Update(ctx context.Context, job Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.jobs[job.ID]
	if !ok {
		return ErrNotFound
	}
	job.CreatedAt = existing.CreatedAt
	job.UpdatedAt = time.Now().UTC()
	r.jobs[job.ID] = job
	return nil
}

func (r *MemoryRepo) Browse(ctx context.Context, filter BrowseFilter) ([]Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Job
	for _, job := range r.jobs {
		if job.Status != StatusPublished {
			continue
		}
		if !matches(job, filter) {
			continue
		}
		out = append(out, job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if filter.Offset >= len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *MemoryRepo) ListPublished(ctx context.Context) ([]Job, error) {
	return r.Browse(ctx, BrowseFilter{})
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[id]; !ok {
		return ErrNotFound
	}
	delete(r.jobs, id)
	return nil
}

func matches(job Job, filter BrowseFilter) bool {
	if filter.Query != "" {
		q := strings.ToLower(filter.Query)
		haystack := strings.ToLower(job.Title + " " + job.Company + " " + job.Description)
		if !strings.Contains(haystack, q) {
			return false
		}
	}
	if filter.Location != "" && !strings.EqualFold(job.Location, filter.Location) {
		return false
	}
	if filter.Type != "" && job.Type != filter.Type {
		return false
	}
	for _, want := range filter.Tags {
		found := false
		for _, tag := range job.Tags {
			if strings.EqualFold(tag, want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
