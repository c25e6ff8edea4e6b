package completion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{}).Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestClientSendsRequestAndParsesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var payload chatRequest
		require.NoError(t, json.Unmarshal(body, &payload))
		require.Equal(t, DefaultModel, payload.Model)
		require.Equal(t, DefaultMaxTokens, payload.MaxTokens)
		require.InDelta(t, 0.7, payload.Temperature, 1e-9)
		require.Len(t, payload.Messages, 2)
		require.Equal(t, "system", payload.Messages[0].Role)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"breathe in"},"finish_reason":"stop"}],"usage":{"prompt_tokens":1,"completion_tokens":2,"total_tokens":3}}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "test-key", Temperature: 0.7})
	client.HTTPClient = server.Client()

	res, err := client.Complete(context.Background(), []Message{
		{Role: "system", Content: "sys"},
		{Role: "user", Content: "usr"},
	})
	require.NoError(t, err)
	require.Equal(t, "breathe in", res.Content)
	require.Equal(t, "stop", res.FinishReason)
	require.Equal(t, 3, res.Usage.TotalTokens)
}

func TestClientErrorsOnNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "k"})
	_, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})

	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, http.StatusTooManyRequests, perr.StatusCode)
	require.Equal(t, "slow down", perr.Message)
}

func TestClientEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	_, err := NewClient(Config{BaseURL: server.URL, APIKey: "k"}).Complete(context.Background(), nil)
	require.ErrorIs(t, err, ErrEmptyResponse)
}
