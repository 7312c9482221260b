package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"resumelens-backend/internal/ratelimit"
	"resumelens-backend/internal/shared/auth"
)

var (
	ErrRateLimited    = errors.New("too many attempts")
	ErrBadCredentials = errors.New("invalid email or password")
)

const bcryptCost = 10

// Service handles account registration, credential login and profiles.
type Service struct {
	Repo    Repo
	Limiter *ratelimit.Limiter
}

// NewService constructs a Service.
func NewService(repo Repo, limiter *ratelimit.Limiter) *Service {
	return &Service{Repo: repo, Limiter: limiter}
}

// Register creates a credentials account. Attempts are limited per client IP.
func (s *Service) Register(ctx context.Context, name, email, password, ip string) (User, ratelimit.Result, error) {
	limit := s.Limiter.Check(ctx, "register", ip, "")
	if limit.Limited {
		return User{}, limit, ErrRateLimited
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return User{}, limit, err
	}

	now := time.Now().UTC()
	user := User{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(email),
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
		Provider:     ProviderCredentials,
		Role:         RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return User{}, limit, err
	}
	return user, limit, nil
}

// Login verifies credentials and issues a signed token. Attempts are limited
// per email and client IP together, so one address cannot exhaust another
// user's budget.
func (s *Service) Login(ctx context.Context, email, password, ip string) (User, string, ratelimit.Result, error) {
	normalized := normalizeEmail(email)
	limit := s.Limiter.Check(ctx, "login", normalized, ip)
	if limit.Limited {
		return User{}, "", limit, ErrRateLimited
	}

	user, err := s.Repo.GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, "", limit, ErrBadCredentials
		}
		return User{}, "", limit, err
	}
	if user.Provider != ProviderCredentials || user.PasswordHash == "" {
		return User{}, "", limit, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, "", limit, ErrBadCredentials
	}

	token, err := auth.SignJWT(auth.Claims{
		Sub:   user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	})
	if err != nil {
		return User{}, "", limit, err
	}
	return user, token, limit, nil
}

// UpsertFromOAuth stores or refreshes an OAuth identity and returns the
// stored account, preserving any previously assigned role.
func (s *Service) UpsertFromOAuth(ctx context.Context, email, name string) (User, error) {
	now := time.Now().UTC()
	return s.Repo.Upsert(ctx, User{
		ID:        uuid.NewString(),
		Email:     normalizeEmail(email),
		Name:      strings.TrimSpace(name),
		Provider:  ProviderGoogle,
		Role:      RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// Profile returns the account for the given email.
func (s *Service) Profile(ctx context.Context, email string) (User, error) {
	return s.Repo.GetByEmail(ctx, normalizeEmail(email))
}

// UpdateProfile updates the mutable profile fields.
func (s *Service) UpdateProfile(ctx context.Context, email, name, preferredRole, preferredLocation string) error {
	return s.Repo.UpdateProfile(ctx, normalizeEmail(email), strings.TrimSpace(name), preferredRole, preferredLocation)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
