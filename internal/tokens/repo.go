package tokens

import (
	"context"
	"errors"
)

// ErrNotFound covers both missing and expired tokens; callers must not
// distinguish the two.
var ErrNotFound = errors.New("invalid or expired token")

type Repo interface {
	Create(ctx context.Context, token Token) error
	GetByValue(ctx context.Context, value string, purpose Purpose) (Token, error)
	Delete(ctx context.Context, id string) error
	DeleteByIdentifier(ctx context.Context, identifier string, purpose Purpose) error
}
