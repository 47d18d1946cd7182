// Package metrics provides Prometheus instrumentation for the basis service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ComputationsTotal counts cost-basis computations by method and outcome.
	ComputationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "btcbasis_computations_total",
		Help: "Total cost-basis computations",
	}, []string{"method", "outcome"})

	// ComputationDuration tracks load + normalize + engine time for uncached runs.
	ComputationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "btcbasis_computation_duration_seconds",
		Help:    "Cost-basis computation latency in seconds",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method"})

	// TransactionsProcessed counts input rows run through the engine.
	TransactionsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "btcbasis_transactions_processed_total",
		Help: "Transactions processed by the lot-matching engine",
	}, []string{"method"})

	// OversoldRows counts rows flagged under the lenient oversell policy.
	OversoldRows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "btcbasis_oversold_rows_total",
		Help: "Sales that exceeded the open position and were clamped",
	})

	// CacheRequests counts memoization lookups by result (hit or miss).
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "btcbasis_cache_requests_total",
		Help: "Result cache lookups",
	}, []string{"result"})

	// HTTPRequestsTotal counts HTTP requests by method, route, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "btcbasis_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "btcbasis_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request metrics for gin routes.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// Use the route pattern for the path label to avoid high cardinality.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
