package users

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryRepo stores accounts in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu      sync.RWMutex
	byEmail map[string]User
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byEmail: make(map[string]User)}
}

// Create inserts a new account.
func (r *MemoryRepo) Create(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(user.Email)
	if _, ok := r.byEmail[key]; ok {
		return ErrExists
	}
	r.byEmail[key] = user
	return nil
}

// GetByEmail returns the account for the given email.
func (r *MemoryRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

// All returns every stored account. Used by the admin aggregation when no
// database is configured.
func (r *MemoryRepo) All(ctx context.Context) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]User, 0, len(r.byEmail))
	for _, user := range r.byEmail {
		out = append(out, user)
	}
	return out, nil
}

// Upsert inserts the account if its email is new, otherwise refreshes the
// name and returns the stored account.
func (r *MemoryRepo) Upsert(ctx context.Context, user User) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(user.Email)
	if existing, ok := r.byEmail[key]; ok {
		existing.Name = user.Name
		existing.UpdatedAt = time.Now().UTC()
		r.byEmail[key] = existing
		return existing, nil
	}
	r.byEmail[key] = user
	return user, nil
}

// UpdateProfile updates the mutable profile fields.
func (r *MemoryRepo) UpdateProfile(ctx context.Context, email, name, preferredRole, preferredLocation string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(email)
	user, ok := r.byEmail[key]
	if !ok {
		return ErrNotFound
	}
	user.Name = name
	user.PreferredRole = preferredRole
	user.PreferredLocation = preferredLocation
	user.UpdatedAt = time.Now().UTC()
	r.byEmail[key] = user
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
var _ Repo = (*PGRepo)(nil)
