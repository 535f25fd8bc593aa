package users

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"hirepath-backend/internal/rbac"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]User // id -> user
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]User)}
}

func (r *MemoryRepo) Create(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.data {
		if sameIdentifier(existing, user.Email) || (user.Username != "" && sameIdentifier(existing, user.Username)) {
			return ErrDuplicate
		}
	}
	user.Email = strings.ToLower(user.Email)
	r.data[user.ID] = user
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.data[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *MemoryRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	needle := strings.ToLower(strings.TrimSpace(email))
	for _, user := range r.data {
		if user.Email == needle {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *MemoryRepo) ExistsByIdentifier(ctx context.Context, identifier string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.data {
		if sameIdentifier(user, identifier) {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return r.update(ctx, userID, func(u *User) {
		u.PasswordHash = passwordHash
	})
}

func (r *MemoryRepo) MarkVerified(ctx context.Context, userID string) error {
	now := time.Now().UTC()
	return r.update(ctx, userID, func(u *User) {
		u.EmailVerifiedAt = &now
	})
}

func (r *MemoryRepo) UpdateRole(ctx context.Context, userID, role string) error {
	return r.update(ctx, userID, func(u *User) {
		u.Role = rbac.ParseRole(role)
	})
}

func (r *MemoryRepo) Upsert(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.data[user.ID]; ok {
		existing.Email = strings.ToLower(user.Email)
		existing.FullName = user.FullName
		existing.UpdatedAt = time.Now().UTC()
		r.data[user.ID] = existing
		return nil
	}
	user.Email = strings.ToLower(user.Email)
	r.data[user.ID] = user
	return nil
}

func (r *MemoryRepo) List(ctx context.Context, limit, offset int) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	all := make([]User, 0, len(r.data))
	for _, u := range r.data {
		all = append(all, u)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []User{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

func (r *MemoryRepo) update(ctx context.Context, userID string, fn func(*User)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.data[userID]
	if !ok {
		return ErrNotFound
	}
	fn(&user)
	user.UpdatedAt = time.Now().UTC()
	r.data[userID] = user
	return nil
}

func sameIdentifier(user User, identifier string) bool {
	needle := strings.ToLower(strings.TrimSpace(identifier))
	return needle != "" && (user.Email == needle || strings.ToLower(user.Username) == needle)
}
