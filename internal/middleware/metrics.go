package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	leadMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_mutations_total",
			Help: "Total number of lead mutations by operation",
		},
		[]string{"operation"},
	)
)

// Metrics records request counts and latencies, labelled by route template to
// keep cardinality bounded.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				var httpErr *echo.HTTPError
				if errors.As(err, &httpErr) {
					status = httpErr.Code
				} else {
					status = http.StatusInternalServerError
				}
			}

			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}

			httpRequestsTotal.WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).Inc()
			httpRequestDuration.WithLabelValues(c.Request().Method, path).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// RecordLeadMutation counts a successful create, update, delete or import.
func RecordLeadMutation(operation string) {
	leadMutationsTotal.WithLabelValues(operation).Inc()
}
