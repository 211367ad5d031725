package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"solace-backend/internal/auth"

	"github.com/google/uuid"
)

func protectedEcho(t *testing.T, secret string) http.Handler {
	t.Helper()
	return JwtAuthMiddleware(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.GetUserIDFromContext(r.Context())
		if !ok || userID == uuid.Nil {
			t.Error("middleware passed request without a user ID in context")
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func TestJwtAuthMiddleware(t *testing.T) {
	const secret = "test-secret"

	t.Run("valid token", func(t *testing.T) {
		token, err := auth.NewAccessToken(uuid.New(), secret, time.Hour)
		if err != nil {
			t.Fatalf("NewAccessToken failed: %v", err)
		}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/chat", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		protectedEcho(t, secret).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
		}
	})

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/chat", nil)
		protectedEcho(t, secret).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("malformed header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/chat", nil)
		req.Header.Set("Authorization", "NotBearer whatever")
		protectedEcho(t, secret).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := auth.NewAccessToken(uuid.New(), "other-secret", time.Hour)
		if err != nil {
			t.Fatalf("NewAccessToken failed: %v", err)
		}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/chat", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		protectedEcho(t, secret).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := auth.NewAccessToken(uuid.New(), secret, -time.Hour)
		if err != nil {
			t.Fatalf("NewAccessToken failed: %v", err)
		}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/chat", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		protectedEcho(t, secret).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})
}
