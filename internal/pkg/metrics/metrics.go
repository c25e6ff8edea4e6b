package metrics

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPRequests counts handled requests by route pattern
var HTTPRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "zephy_http_requests_total",
		Help: "Total HTTP requests by method, route and status",
	},
	[]string{"method", "route", "status"},
)

// HTTPDuration records request latency by route pattern
var HTTPDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "zephy_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// RateLimitDecisions counts chat limiter outcomes (allowed, limited, error)
var RateLimitDecisions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "zephy_ratelimit_decisions_total",
		Help: "Chat rate limiter decisions",
	},
	[]string{"outcome"},
)

// CompletionCalls counts completion API calls by upstream status
var CompletionCalls = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "zephy_completion_calls_total",
		Help: "Completion API calls by upstream status code",
	},
	[]string{"status"},
)

// FeedSubscribers tracks connected realtime feed clients
var FeedSubscribers = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "zephy_feed_subscribers",
		Help: "Connected community feed websocket clients",
	},
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration)
	prometheus.MustRegister(RateLimitDecisions, CompletionCalls, FeedSubscribers)
}

// RegisterDB exposes connection pool stats for db.
func RegisterDB(db *sql.DB, name string) error {
	return prometheus.Register(collectors.NewDBStatsCollector(db, name))
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
