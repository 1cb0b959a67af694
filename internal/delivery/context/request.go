// Package context carries request-scoped values between the delivery layer and the services.
//
// Values the handlers need (request id, current user) live on echo.Context.
// Values the services need (request id, logger) are also copied onto the
// request's context.Context so they survive past the echo boundary.
package context

import (
	"context"
	"log/slog"

	"taskboard/internal/domain/entity"

	"github.com/labstack/echo/v4"
)

// HeaderXRequestID is read from clients and echoed on every response.
const HeaderXRequestID = echo.HeaderXRequestID

// echo.Context keys.
const (
	requestIDKey   = "request_id"
	currentUserKey = "current_user"
)

type ctxKey int

const (
	ctxRequestID ctxKey = iota
	ctxLogger
)

// GetRequestID returns the id assigned by the request id middleware. Before
// the middleware has run it falls back to the response header.
func GetRequestID(c echo.Context) string {
	if id, _ := c.Get(requestIDKey).(string); id != "" {
		return id
	}

	return c.Response().Header().Get(HeaderXRequestID)
}

func SetRequestID(c echo.Context, requestID string) {
	c.Set(requestIDKey, requestID)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestID, requestID)
}

// RequestIDFromContext returns "" outside an HTTP request.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxRequestID).(string)

	return id
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxLogger, logger)
}

// GetLogger returns the request-scoped logger, or nil.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, _ := ctx.Value(ctxLogger).(*slog.Logger)

	return logger
}

// GetLoggerOrDefault is GetLogger with a fallback for background work and tests.
func GetLoggerOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger := GetLogger(ctx); logger != nil {
		return logger
	}

	return fallback
}

// SetCurrentUser records the user resolved from the bearer token.
func SetCurrentUser(c echo.Context, user *entity.User) {
	c.Set(currentUserKey, user)
}

// CurrentUser returns the authenticated user. ok is false on public routes.
func CurrentUser(c echo.Context) (user *entity.User, ok bool) {
	user, _ = c.Get(currentUserKey).(*entity.User)

	return user, user != nil
}
