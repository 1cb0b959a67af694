package middleware

import (
	"taskboard/internal/infra/metrics"

	"github.com/labstack/echo/v4"
)

const unmatchedRoute = "unmatched"

// MetricsMiddleware records request counts and latency per route template.
type MetricsMiddleware struct {
	metrics *metrics.HTTPMetrics
}

// NewMetricsMiddleware creates a new metrics middleware
func NewMetricsMiddleware(httpMetrics *metrics.HTTPMetrics) *MetricsMiddleware {
	return &MetricsMiddleware{metrics: httpMetrics}
}

// Handle commits handler errors through the echo error handler before reading
// the status, so failed requests are counted with their real status code.
func (m *MetricsMiddleware) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		route := c.Path()
		if route == "" {
			route = unmatchedRoute
		}

		done := m.metrics.Begin(c.Request().Method, route)
		defer func() {
			done(c.Response().Status)
		}()

		if err := next(c); err != nil {
			c.Error(err)
		}

		return nil
	}
}
