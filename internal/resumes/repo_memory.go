package resumes

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]map[string]Draft // userID -> resumeID -> draft
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]map[string]Draft)}
}

func (r *MemoryRepo) Create(ctx context.Context, draft Draft) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if draft.Status == "" {
		draft.Status = StatusDraft
	}
	if draft.GenerationStatus == "" {
		draft.GenerationStatus = GenerationNone
	}
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = time.Now().UTC()
	}
	if r.data[draft.UserID] == nil {
		r.data[draft.UserID] = make(map[string]Draft)
	}
	r.data[draft.UserID][draft.ID] = draft
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID, resumeID string) (Draft, error) {
	if err := ctx.Err(); err != nil {
		return Draft{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	draft, ok := r.data[userID][resumeID]
	if !ok {
		return Draft{}, ErrNotFound
	}
	return draft, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Draft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	drafts := make([]Draft, 0, len(r.data[userID]))
	for _, d := range r.data[userID] {
		drafts = append(drafts, d)
	}
	r.mu.RUnlock()

	sort.Slice(drafts, func(i, j int) bool {
		return drafts[i].CreatedAt.After(drafts[j].CreatedAt)
	})

	if offset < 0 {
		offset = 0
	}
	if offset >= len(drafts) {
		return []Draft{}, nil
	}
	end := len(drafts)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return drafts[offset:end], nil
}

func (r *MemoryRepo) Update(ctx context.Context, draft Draft) error {
	return r.mutate(ctx, draft.UserID, draft.ID, func(d *Draft) {
		d.Title = draft.Title
		d.Status = draft.Status
		d.PersonalDetails = draft.PersonalDetails
		d.Summary = draft.Summary
		d.Employment = draft.Employment
		d.Education = draft.Education
		d.Skills = draft.Skills
		d.Languages = draft.Languages
	})
}

func (r *MemoryRepo) SetStructuredKey(ctx context.Context, userID, resumeID, key string) error {
	return r.mutate(ctx, userID, resumeID, func(d *Draft) {
		d.StructuredKey = key
	})
}

func (r *MemoryRepo) SetArtifact(ctx context.Context, userID, resumeID, artifactKey, artifactURL, status string) error {
	return r.mutate(ctx, userID, resumeID, func(d *Draft) {
		d.ArtifactKey = artifactKey
		d.ArtifactURL = artifactURL
		d.GenerationStatus = status
	})
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, resumeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[userID][resumeID]; !ok {
		return ErrNotFound
	}
	delete(r.data[userID], resumeID)
	return nil
}

func (r *MemoryRepo) mutate(ctx context.Context, userID, resumeID string, fn func(*Draft)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	draft, ok := r.data[userID][resumeID]
	if !ok {
		return ErrNotFound
	}
	fn(&draft)
	draft.UpdatedAt = time.Now().UTC()
	r.data[userID][resumeID] = draft
	return nil
}
