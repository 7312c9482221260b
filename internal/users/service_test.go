package users

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"resumelens-backend/internal/ratelimit"
	"resumelens-backend/internal/shared/storage/kv"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewService(NewMemoryRepo(), ratelimit.New(kv.NewRedisAddr(mr.Addr())))
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "Jane Doe", "Jane@Example.com", "correct horse", "10.0.0.1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "jane@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.Role != RoleUser || user.Provider != ProviderCredentials {
		t.Fatalf("unexpected account: %+v", user)
	}
	if user.PasswordHash == "correct horse" || user.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}

	logged, token, _, err := svc.Login(ctx, "jane@example.com", "correct horse", "10.0.0.1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" || logged.ID != user.ID {
		t.Fatalf("login result: token=%q user=%+v", token, logged)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "Jane", "jane@example.com", "password1", "10.0.0.1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, _, err := svc.Register(ctx, "Other Jane", "jane@example.com", "password2", "10.0.0.2"); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "Jane", "jane@example.com", "password1", "10.0.0.1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, _, _, err := svc.Login(ctx, "jane@example.com", "wrong", "10.0.0.1"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
	if _, _, _, err := svc.Login(ctx, "nobody@example.com", "wrong", "10.0.0.1"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("unknown email must look like bad credentials, got %v", err)
	}
}

func TestLoginRateLimitedPerEmailAndIP(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, _, _, err := svc.Login(ctx, "jane@example.com", "wrong", "10.0.0.1"); !errors.Is(err, ErrBadCredentials) {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
	}
	if _, _, limit, err := svc.Login(ctx, "jane@example.com", "wrong", "10.0.0.1"); !errors.Is(err, ErrRateLimited) || !limit.Limited {
		t.Fatalf("expected ErrRateLimited, got %v (%+v)", err, limit)
	}
	// A different address still gets attempts for the same email.
	if _, _, _, err := svc.Login(ctx, "jane@example.com", "wrong", "10.0.0.2"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("other ip: %v", err)
	}
}

func TestRegisterRateLimitedPerIP(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	emails := []string{"a@example.com", "b@example.com", "c@example.com"}
	for i, email := range emails {
		if _, _, err := svc.Register(ctx, "User", email, "password1", "10.0.0.9"); err != nil {
			t.Fatalf("register %d: %v", i+1, err)
		}
	}
	if _, _, err := svc.Register(ctx, "User", "d@example.com", "password1", "10.0.0.9"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestOAuthUpsertPreservesRole(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.UpsertFromOAuth(ctx, "admin@example.com", "Admin User")
	if err != nil {
		t.Fatalf("UpsertFromOAuth: %v", err)
	}

	// Promote out of band, then sign in again.
	mem := svc.Repo.(*MemoryRepo)
	mem.mu.Lock()
	promoted := mem.byEmail["admin@example.com"]
	promoted.Role = RoleAdmin
	mem.byEmail["admin@example.com"] = promoted
	mem.mu.Unlock()

	second, err := svc.UpsertFromOAuth(ctx, "admin@example.com", "Admin User Renamed")
	if err != nil {
		t.Fatalf("second UpsertFromOAuth: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("upsert created a second account: %s vs %s", second.ID, first.ID)
	}
	if second.Role != RoleAdmin {
		t.Fatalf("role lost on re-auth: %q", second.Role)
	}
	if second.Name != "Admin User Renamed" {
		t.Fatalf("name not refreshed: %q", second.Name)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "Jane", "jane@example.com", "password1", "10.0.0.1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := svc.UpdateProfile(ctx, "jane@example.com", "Jane D.", "Backend Developer", "Berlin"); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	user, err := svc.Profile(ctx, "jane@example.com")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if user.PreferredRole != "Backend Developer" || user.PreferredLocation != "Berlin" {
		t.Fatalf("profile not updated: %+v", user)
	}
	if err := svc.UpdateProfile(ctx, "missing@example.com", "X", "", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
