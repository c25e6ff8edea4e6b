package jwt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/zephy/zephy-api/internal/pkg/identity"
)

func TestVerifierRoundTrip(t *testing.T) {
	v := NewVerifier("super-secret", time.Minute)
	userID := uuid.New()

	token, err := v.GenerateAccessToken(userID, "student@example.edu")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	user, err := v.GetUser(context.Background(), token)
	if err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}
	if user.ID != userID || user.Email != "student@example.edu" {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestVerifierRejectsWrongSecret(t *testing.T) {
	token, err := NewVerifier("one", time.Minute).GenerateAccessToken(uuid.New(), "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := NewVerifier("two", time.Minute).GetUser(context.Background(), token); !errors.Is(err, identity.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifierRejectsExpired(t *testing.T) {
	v := NewVerifier("secret", time.Minute)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			Audience:  jwt.ClaimStrings{Audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := v.ValidateAccessToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestVerifierRejectsWrongAudience(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			Audience:  jwt.ClaimStrings{"anon"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewVerifier("secret", 0).GetUser(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifierNotConfigured(t *testing.T) {
	if _, err := NewVerifier("", 0).GetUser(context.Background(), "x"); !errors.Is(err, identity.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
