package users

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new account. A duplicate email maps to ErrExists.
func (r *PGRepo) Create(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, email, name, password_hash, provider, role, preferred_role, preferred_location, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.Provider,
		user.Role,
		user.PreferredRole,
		user.PreferredLocation,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil && isUniqueViolation(err) {
		return ErrExists
	}
	return err
}

// GetByEmail returns the account for the given email.
func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	const query = `
SELECT id, email, name, password_hash, provider, role, preferred_role, preferred_location, created_at, updated_at
FROM users
WHERE email = $1
LIMIT 1`
	var user User
	err := r.DB.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.Provider,
		&user.Role,
		&user.PreferredRole,
		&user.PreferredLocation,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return user, err
}

// Upsert inserts the account if its email is new, otherwise refreshes the
// name and returns the stored account. Role and preferences never change
// here.
func (r *PGRepo) Upsert(ctx context.Context, user User) (User, error) {
	const query = `
INSERT INTO users (id, email, name, password_hash, provider, role, preferred_role, preferred_location, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, updated_at = EXCLUDED.updated_at`
	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.Provider,
		user.Role,
		user.PreferredRole,
		user.PreferredLocation,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return User{}, err
	}
	return r.GetByEmail(ctx, user.Email)
}

// UpdateProfile updates the mutable profile fields.
func (r *PGRepo) UpdateProfile(ctx context.Context, email, name, preferredRole, preferredLocation string) error {
	const query = `
UPDATE users
SET name = $2, preferred_role = $3, preferred_location = $4, updated_at = NOW()
WHERE email = $1`
	res, err := r.DB.ExecContext(ctx, query, email, name, preferredRole, preferredLocation)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	// pgx surfaces SQLSTATE 23505 in the error text via the stdlib driver.
	return strings.Contains(err.Error(), "23505") ||
		strings.Contains(err.Error(), "duplicate key")
}
