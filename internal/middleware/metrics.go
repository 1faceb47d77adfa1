package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	productsNormalizedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "products_normalized_total",
			Help: "Total number of products processed by the normalizer.",
		},
		[]string{"outcome"}, // success, failed, duplicate
	)
)

// Metrics records request counts and latency per route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// FullPath keeps the route template so cardinality stays bounded.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

// CountNormalized records normalization outcomes for batch runs.
func CountNormalized(success, failed, duplicates int) {
	productsNormalizedTotal.WithLabelValues("success").Add(float64(success))
	productsNormalizedTotal.WithLabelValues("failed").Add(float64(failed))
	productsNormalizedTotal.WithLabelValues("duplicate").Add(float64(duplicates))
}
