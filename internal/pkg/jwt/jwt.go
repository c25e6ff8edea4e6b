// internal/pkg/jwt/jwt.go
package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/zephy/zephy-api/internal/pkg/identity"
)

var (
	ErrInvalidToken = identity.ErrInvalidToken
	ErrExpiredToken = errors.New("token expired")
)

// Audience is the aud claim Supabase issues to signed-in users.
const Audience = "authenticated"

// Claims mirrors the Supabase access token payload.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates Supabase HS256 access tokens locally with the project secret.
type Verifier struct {
	secret []byte
	ttl    time.Duration
}

// NewVerifier creates a verifier. ttl only applies to GenerateAccessToken.
func NewVerifier(secret string, ttl time.Duration) *Verifier {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Verifier{secret: []byte(secret), ttl: ttl}
}

// GenerateAccessToken signs a token shaped like a Supabase session token.
func (v *Verifier) GenerateAccessToken(userID uuid.UUID, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		Role:  Audience,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

// ValidateAccessToken validates and parses an access token
func (v *Verifier) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	}, jwt.WithAudience(Audience), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GetUser implements identity.Provider.
func (v *Verifier) GetUser(_ context.Context, token string) (*identity.User, error) {
	if v == nil || len(v.secret) == 0 {
		return nil, identity.ErrNotConfigured
	}
	claims, err := v.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &identity.User{ID: id, Email: claims.Email, Role: claims.Role}, nil
}
