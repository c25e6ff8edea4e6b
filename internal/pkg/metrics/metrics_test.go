package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerExposesCounters(t *testing.T) {
	RateLimitDecisions.WithLabelValues("limited").Inc()

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, _ := io.ReadAll(w.Body)
	if !strings.Contains(string(body), `zephy_ratelimit_decisions_total{outcome="limited"}`) {
		t.Fatalf("expected ratelimit counter in output")
	}
}
