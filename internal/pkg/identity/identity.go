// Package identity resolves bearer tokens to users through the hosted
// identity provider.
package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrNotConfigured = errors.New("identity provider not configured")
)

// User is the caller identity attached to a request.
type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email,omitempty"`
	Role  string    `json:"role,omitempty"`
}

// Provider exchanges an access token for the user it belongs to.
type Provider interface {
	GetUser(ctx context.Context, token string) (*User, error)
}
