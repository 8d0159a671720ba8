// Package metrics provides Prometheus instrumentation for the bridge engine.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ToolInvocationsTotal counts tool invocations by tool name and outcome.
	ToolInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ayabridge",
			Name:      "tool_invocations_total",
			Help:      "Total tool invocations by tool name and success/failure outcome.",
		},
		[]string{"tool", "outcome"},
	)

	// ToolDuration observes tool invocation latency by tool name.
	ToolDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ayabridge",
			Name:      "tool_duration_seconds",
			Help:      "Tool invocation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"tool"},
	)

	// ProviderFailuresTotal counts external collaborator failures that fell
	// back to a documented default, by provider name.
	ProviderFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ayabridge",
			Name:      "provider_failures_total",
			Help:      "External provider failures absorbed by a fallback, by provider.",
		},
		[]string{"provider"},
	)

	// InferenceCacheHits counts inference result cache hits.
	InferenceCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ayabridge",
		Name:      "inference_cache_hits_total",
		Help:      "Inference result cache hits within the TTL window.",
	})

	// InferenceCacheMisses counts inference result cache misses.
	InferenceCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ayabridge",
		Name:      "inference_cache_misses_total",
		Help:      "Inference result cache misses (expired or absent entries).",
	})

	// AuditAppendsTotal counts audit ledger appends by result.
	AuditAppendsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ayabridge",
			Name:      "audit_appends_total",
			Help:      "Audit ledger append attempts by result (ok/failed).",
		},
		[]string{"result"},
	)

	// ExecutionsTotal counts bridge executions by final status.
	ExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ayabridge",
			Name:      "executions_total",
			Help:      "Bridge transaction executions by outcome.",
		},
		[]string{"outcome"},
	)

	// BridgePaused reports whether the emergency pause is active (1) or not (0).
	BridgePaused = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ayabridge",
		Name:      "bridge_paused",
		Help:      "Whether the emergency bridge pause is currently active.",
	})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ayabridge",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path pattern, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and path.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ayabridge",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

func init() {
	prometheus.MustRegister(
		ToolInvocationsTotal,
		ToolDuration,
		ProviderFailuresTotal,
		InferenceCacheHits,
		InferenceCacheMisses,
		AuditAppendsTotal,
		ExecutionsTotal,
		BridgePaused,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}

// Handler returns the Prometheus scrape handler for mounting at /metrics.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Middleware records request counts and latency per route pattern.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
