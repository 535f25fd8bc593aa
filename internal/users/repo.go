package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound  = errors.New("user not found")
	ErrDuplicate = errors.New("user already exists")
)

type Repo interface {
	Create(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	// ExistsByIdentifier reports whether the identifier is taken as an
	// email or as a username by any account.
	ExistsByIdentifier(ctx context.Context, identifier string) (bool, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	MarkVerified(ctx context.Context, userID string) error
	UpdateRole(ctx context.Context, userID, role string) error
	Upsert(ctx context.Context, user User) error
	List(ctx context.Context, limit, offset int) ([]User, error)
}
