package user

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when the unique email constraint is violated.
	ErrEmailTaken = errors.New("email already registered")
)

// Store is the persistence interface consumed by the identity and task
// services. Emails passed in must already be normalized (lowercase, trimmed).
type Store interface {
	Create(ctx context.Context, u *User) error
	ByID(ctx context.Context, id string) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	UpdateName(ctx context.Context, id, name string) (*User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	List(ctx context.Context) ([]User, error)
}
