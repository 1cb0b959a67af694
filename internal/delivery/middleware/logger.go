// Package middleware holds the transport-level echo middleware shared by every
// route: request ids, access logging and request metrics.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"taskboard/config"
	deliverycontext "taskboard/internal/delivery/context"

	"github.com/labstack/echo/v4"
)

// LoggerMiddleware writes one access log line per request in debug mode.
type LoggerMiddleware struct {
	logger  *slog.Logger
	enabled bool
}

func NewLoggerMiddleware(logger *slog.Logger, cfg *config.Config) *LoggerMiddleware {
	return &LoggerMiddleware{
		logger:  logger,
		enabled: cfg.Env.Debug,
	}
}

// Handle hands handler errors to the echo error handler itself so the logged
// status is the one the client receives.
func (m *LoggerMiddleware) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	if !m.enabled {
		return next
	}

	return func(c echo.Context) error {
		start := time.Now()
		if err := next(c); err != nil {
			c.Error(err)
			m.access(c, time.Since(start), slog.Any("error", err))

			return nil
		}
		m.access(c, time.Since(start))

		return nil
	}
}

func (m *LoggerMiddleware) access(c echo.Context, latency time.Duration, extra ...slog.Attr) {
	req := c.Request()
	status := c.Response().Status

	attrs := make([]slog.Attr, 0, 8+len(extra))
	attrs = append(attrs,
		slog.String("method", req.Method),
		slog.String("uri", req.URL.Path),
		slog.String("route", c.Path()),
		slog.Int("status", status),
		slog.Duration("latency", latency),
		slog.String("remote_ip", c.RealIP()),
		slog.String("user_agent", req.UserAgent()),
	)
	if req.URL.RawQuery != "" {
		attrs = append(attrs, slog.String("query", req.URL.RawQuery))
	}
	attrs = append(attrs, extra...)

	// The request logger carries request_id, and user_id once authenticated.
	deliverycontext.GetLoggerOrDefault(req.Context(), m.logger).
		LogAttrs(req.Context(), levelForStatus(status), "HTTP Request", attrs...)
}

func levelForStatus(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
