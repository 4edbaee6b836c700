// Package telemetry provides logging setup and Prometheus metrics for the LMS backend.
//
// All metrics are registered against the default Prometheus registry and served on
// the side-channel HTTP server started by main.go:
//
//	GET http://<host>:<LMS_TELEMETRY_METRICS_PROMETHEUS_PORT>/metrics
//
// HTTP metrics use c.FullPath() (route template such as /api/quality/indicators/:id)
// rather than the raw URL so user-supplied path segments cannot blow up cardinality.
// Tenant metrics are labelled only by closed enumerations (resolution source,
// rejection kind, cache result), never by organization id or host.
package telemetry

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lms-platform/lms-backend/internal/safego"
)

// HTTP metrics, labelled by method, route template and status code.
//
// Example PromQL queries:
//   - Request rate:      rate(http_requests_total[5m])
//   - p99 per route:     histogram_quantile(0.99, sum by (path, le) (rate(http_request_duration_seconds_bucket[5m])))
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Tenant resolution metrics.
//
// TenantResolutionsTotal counts composed tenant contexts by source
// (session-owned, session-belongs-to, explicit-org-param, custom-domain-lookup,
// subdomain-lookup, none).
//
// TenantCacheLookupsTotal counts domain lookup cache reads by result
// (hit, negative_hit, miss, error).
//
// Example PromQL queries:
//   - Share of anonymous traffic:  sum(rate(tenant_resolutions_total{source="none"}[5m])) / sum(rate(tenant_resolutions_total[5m]))
//   - Cache hit ratio:             sum(rate(tenant_cache_lookups_total{result=~"hit|negative_hit"}[5m])) / sum(rate(tenant_cache_lookups_total[5m]))
var (
	TenantResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenant_resolutions_total",
			Help: "Total number of tenant context resolutions, by resolution source.",
		},
		[]string{"source"},
	)

	TenantCacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenant_cache_lookups_total",
			Help: "Total number of tenant domain lookup cache reads, by result.",
		},
		[]string{"result"},
	)
)

// AccessGuardRejectionsTotal counts requests rejected by the access guard, by
// rejection kind (unauthenticated, role_mismatch, organization_missing, ...).
//
// Example PromQL queries:
//   - Rejections by kind:  sum by (kind) (rate(access_guard_rejections_total[5m]))
var AccessGuardRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "access_guard_rejections_total",
		Help: "Total number of requests rejected by the access guard, by rejection kind.",
	},
	[]string{"kind"},
)

// RateLimitedRequestsTotal counts requests refused by the rate limiter, by backend.
var RateLimitedRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "rate_limited_requests_total",
		Help: "Total number of requests refused by the rate limiter, by limiter backend.",
	},
	[]string{"backend"},
)

// DBOpenConnections tracks the number of open connections held by the sql.DB pool.
// It is sampled by StartDBStatsCollector rather than per request.
var DBOpenConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "db_open_connections",
		Help: "Current number of open database connections in the pool.",
	},
)

// StartDBStatsCollector samples sql.DB pool statistics every interval and updates
// DBOpenConnections until ctx is cancelled or the database becomes unreachable.
func StartDBStatsCollector(ctx context.Context, db *sql.DB, interval time.Duration) {
	safego.Go(func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := db.PingContext(ctx); err != nil {
					slog.Warn("db stats collector: database unreachable, stopping collector", "error", err)
					return
				}
				DBOpenConnections.Set(float64(db.Stats().OpenConnections))
			}
		}
	})
}
