package wizard

import (
	"context"
	"errors"
)

// ErrNotFound indicates no state exists for the draft.
var ErrNotFound = errors.New("wizard state not found")

// Store is the persistence adapter for wizard state; State itself stays
// storage-agnostic.
type Store interface {
	Get(ctx context.Context, userID, resumeID string) (State, error)
	Put(ctx context.Context, state State) error
	Delete(ctx context.Context, userID, resumeID string) error
}

// Load fetches state, initializing an empty one when absent.
func Load(ctx context.Context, store Store, userID, resumeID string) (State, error) {
	state, err := store.Get(ctx, userID, resumeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return NewState(userID, resumeID), nil
		}
		return State{}, err
	}
	return state, nil
}
