package payments

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is the in-memory fallback used when DATABASE_URL is unset.
type MemoryRepo struct {
	mu       sync.Mutex
	payments map[string]Payment
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{payments: make(map[string]Payment)}
}

func (r *MemoryRepo) Create(ctx context.Context, payment Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = now
	}
	payment.UpdatedAt = now
	r.payments[payment.ID] = payment
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment, ok := r.payments[id]
	if !ok {
		return Payment{}, ErrNotFound
	}
	return payment, nil
}

func (r *MemoryRepo) GetBySessionID(ctx context.Context, sessionID string) (Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, payment := range r.payments {
		if payment.CheckoutSessionID == sessionID {
			return payment, nil
		}
	}
	return Payment{}, ErrNotFound
}

func (r *MemoryRepo) LatestByResume(ctx context.Context, userID, resumeID string) (Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest Payment
	found := false
	for _, payment := range r.payments {
		if payment.UserID != userID || payment.ResumeID != resumeID {
			continue
		}
		if !found || payment.CreatedAt.After(latest.CreatedAt) {
			latest = payment
			found = true
		}
	}
	if !found {
		return Payment{}, ErrNotFound
	}
	return latest, nil
}

func (r *MemoryRepo) UpdateStatus(ctx context.Context, id string, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment, ok := r.payments[id]
	if !ok {
		return ErrNotFound
	}
	payment.Status = status
	payment.UpdatedAt = time.Now().UTC()
	r.payments[id] = payment
	return nil
}

func (r *MemoryRepo) List(ctx context.Context, limit, offset int) ([]Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]Payment, 0, len(r.payments))
	for _, payment := range r.payments {
		all = append(all, payment)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}
