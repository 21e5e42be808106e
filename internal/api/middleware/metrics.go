// Package middleware provides Echo middleware for the empire-watcher API.
package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/donaldgifford/empire-watcher/internal/metrics"
)

// unmatchedPath labels requests that hit no registered route, so scanners
// cannot blow up label cardinality.
const unmatchedPath = "unmatched"

// MetricsOption configures the Metrics middleware.
type MetricsOption func(*metricsConfig)

type metricsConfig struct {
	skip   map[string]struct{}
	probes map[string]prometheus.Gauge
}

// WithSkipPaths excludes additional route templates from request metrics.
func WithSkipPaths(paths ...string) MetricsOption {
	return func(cfg *metricsConfig) {
		for _, p := range paths {
			cfg.skip[p] = struct{}{}
		}
	}
}

// Metrics returns Echo middleware that records request count and latency per
// route template. Probe routes only drive their up/down gauge and /metrics
// is never recorded.
func Metrics(opts ...MetricsOption) echo.MiddlewareFunc {
	cfg := metricsConfig{
		skip: map[string]struct{}{"/metrics": {}},
		probes: map[string]prometheus.Gauge{
			"/healthz": metrics.HealthzUp,
			"/readyz":  metrics.ReadyzUp,
		},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := c.Path()
			if route == "" {
				route = unmatchedPath
			}

			if gauge, ok := cfg.probes[route]; ok {
				err := next(c)
				gauge.Set(upValue(responseStatus(c, err)))
				return err
			}
			if _, ok := cfg.skip[route]; ok {
				return next(c)
			}

			start := time.Now()
			err := next(c)
			labels := []string{
				c.Request().Method,
				route,
				strconv.Itoa(responseStatus(c, err)),
			}
			metrics.HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
			metrics.HTTPRequestsTotal.WithLabelValues(labels...).Inc()
			return err
		}
	}
}

func upValue(status int) float64 {
	if status >= 200 && status < 300 {
		return 1
	}
	return 0
}
