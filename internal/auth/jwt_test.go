package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestNewAccessTokenRoundTrip(t *testing.T) {
	userID := uuid.New()
	secret := "test-secret"

	signed, err := NewAccessToken(userID, secret, time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken failed: %v", err)
	}

	claims := &CustomClaims{}
	token, err := jwt.ParseWithClaims(signed, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		t.Fatalf("parsing token: %v", err)
	}
	if !token.Valid {
		t.Fatal("token is not valid")
	}
	if claims.UserID != userID {
		t.Errorf("user ID claim = %s, want %s", claims.UserID, userID)
	}
	if claims.Subject != userID.String() {
		t.Errorf("subject = %q, want user ID", claims.Subject)
	}
}

func TestNewAccessTokenWrongSecret(t *testing.T) {
	signed, err := NewAccessToken(uuid.New(), "right-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken failed: %v", err)
	}

	_, err = jwt.ParseWithClaims(signed, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte("wrong-secret"), nil
	})
	if err == nil {
		t.Fatal("token validated with the wrong secret")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !CheckPasswordHash("correct horse battery staple", hash) {
		t.Error("correct password did not verify")
	}
	if CheckPasswordHash("wrong password", hash) {
		t.Error("wrong password verified")
	}
}
