package tokens

import (
	"context"
	"strings"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.Mutex
	data map[string]Token // id -> token
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Token)}
}

func (r *MemoryRepo) Create(ctx context.Context, token Token) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	token.Identifier = strings.ToLower(token.Identifier)
	r.data[token.ID] = token
	return nil
}

func (r *MemoryRepo) GetByValue(ctx context.Context, value string, purpose Purpose) (Token, error) {
	if err := ctx.Err(); err != nil {
		return Token{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.data {
		if t.Token == value && t.Purpose == purpose {
			return t, nil
		}
	}
	return Token{}, ErrNotFound
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, id)
	return nil
}

func (r *MemoryRepo) DeleteByIdentifier(ctx context.Context, identifier string, purpose Purpose) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	needle := strings.ToLower(identifier)
	for id, t := range r.data {
		if t.Identifier == needle && t.Purpose == purpose {
			delete(r.data, id)
		}
	}
	return nil
}
