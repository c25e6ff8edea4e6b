package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultTimeout = 10 * time.Second

// SupabaseClient introspects sessions against the Supabase auth API.
type SupabaseClient struct {
	baseURL string
	anonKey string
	http    *http.Client
}

type supabaseUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// NewSupabaseClient creates a client for {baseURL}/auth/v1/user.
func NewSupabaseClient(baseURL, anonKey string, timeout time.Duration) *SupabaseClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}

	return &SupabaseClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// GetUser returns the user owning token.
func (c *SupabaseClient) GetUser(ctx context.Context, token string) (*User, error) {
	if c == nil || strings.TrimSpace(c.baseURL) == "" || strings.TrimSpace(c.anonKey) == "" {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(token) == "" {
		return nil, ErrInvalidToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("supabase auth request error: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase auth request error: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrInvalidToken
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("supabase auth http error: status=%d body=%s", resp.StatusCode, string(body))
	}

	var su supabaseUser
	if err := json.NewDecoder(resp.Body).Decode(&su); err != nil {
		return nil, fmt.Errorf("supabase auth decode error: %w", err)
	}

	id, err := uuid.Parse(su.ID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &User{ID: id, Email: su.Email, Role: su.Role}, nil
}
