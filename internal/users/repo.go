package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("user not found")
	ErrExists   = errors.New("user already exists")
)

// Repo defines persistence operations for user accounts.
type Repo interface {
	Create(ctx context.Context, user User) error
	GetByEmail(ctx context.Context, email string) (User, error)
	Upsert(ctx context.Context, user User) (User, error)
	UpdateProfile(ctx context.Context, email, name, preferredRole, preferredLocation string) error
}
