package wizard

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store for dev mode and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]State // userID|resumeID -> state
}

// NewMemoryStore constructs a MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]State)}
}

func key(userID, resumeID string) string {
	return userID + "|" + resumeID
}

func (s *MemoryStore) Get(ctx context.Context, userID, resumeID string) (State, error) {
	if err := ctx.Err(); err != nil {
		return State{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.data[key(userID, resumeID)]
	if !ok {
		return State{}, ErrNotFound
	}
	// Copy the map so callers cannot mutate stored state in place.
	steps := make(map[Step]bool, len(state.CompletedSteps))
	for k, v := range state.CompletedSteps {
		steps[k] = v
	}
	state.CompletedSteps = steps
	return state, nil
}

func (s *MemoryStore) Put(ctx context.Context, state State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key(state.UserID, state.ResumeID)] = state
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, userID, resumeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key(userID, resumeID))
	return nil
}
