package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"solace-backend/internal/config"
)

func testAuthConfig() *config.Config {
	return &config.Config{
		JWTSecret:       "test-secret",
		TokenExpiration: time.Hour,
	}
}

func TestSignup(t *testing.T) {
	t.Run("creates user with normalized email", func(t *testing.T) {
		fs := newFakeStore()
		svc := NewAuthService(fs, testAuthConfig())

		user, err := svc.Signup(context.Background(), "  Alice@Example.COM ", "password123")
		if err != nil {
			t.Fatalf("Signup returned error: %v", err)
		}
		if user.Email != "alice@example.com" {
			t.Errorf("email = %q, want lowercased and trimmed", user.Email)
		}
		if user.HashedPassword == "password123" || user.HashedPassword == "" {
			t.Error("password was not hashed before storage")
		}
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		fs := newFakeStore()
		svc := NewAuthService(fs, testAuthConfig())

		if _, err := svc.Signup(context.Background(), "alice@example.com", "password123"); err != nil {
			t.Fatalf("first Signup failed: %v", err)
		}
		_, err := svc.Signup(context.Background(), "ALICE@example.com", "different")
		if !errors.Is(err, ErrUserAlreadyExists) {
			t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
		}
	})

	t.Run("rejects empty input", func(t *testing.T) {
		fs := newFakeStore()
		svc := NewAuthService(fs, testAuthConfig())

		if _, err := svc.Signup(context.Background(), "", "password123"); !errors.Is(err, ErrValidation) {
			t.Errorf("empty email: expected ErrValidation, got %v", err)
		}
		if _, err := svc.Signup(context.Background(), "alice@example.com", ""); !errors.Is(err, ErrValidation) {
			t.Errorf("empty password: expected ErrValidation, got %v", err)
		}
	})
}

func TestLogin(t *testing.T) {
	fs := newFakeStore()
	svc := NewAuthService(fs, testAuthConfig())

	created, err := svc.Signup(context.Background(), "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}

	t.Run("valid credentials", func(t *testing.T) {
		token, user, err := svc.Login(context.Background(), "alice@example.com", "password123")
		if err != nil {
			t.Fatalf("Login returned error: %v", err)
		}
		if token == "" {
			t.Error("expected a signed access token")
		}
		if user.ID != created.ID {
			t.Errorf("logged in as %s, want %s", user.ID, created.ID)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(context.Background(), "alice@example.com", "wrong")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		// Same error as a wrong password so existence is never revealed.
		_, _, err := svc.Login(context.Background(), "nobody@example.com", "password123")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}
