package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	if got := RequestID(ctx); got != "req-123" {
		t.Fatalf("expected req-123, got %q", got)
	}
	if got := RequestID(context.Background()); got != "unknown" {
		t.Fatalf("expected unknown, got %q", got)
	}
}

func TestLogFieldsCarryRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)
	ctx := WithContext(context.Background(), &base)
	ctx = WithRequestID(ctx, "req-9")

	LogWarn(ctx, "store unavailable", "key", "user:1", 42)

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-9"`) {
		t.Fatalf("expected request id in log, got %s", out)
	}
	if !strings.Contains(out, `"key":"user:1"`) {
		t.Fatalf("expected key field in log, got %s", out)
	}
}
