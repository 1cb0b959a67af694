// Package response writes the API's error envelope. Successful responses are
// the bare resource written with c.JSON.
package response

import (
	"net/http"

	deliverycontext "taskboard/internal/delivery/context"

	"github.com/labstack/echo/v4"
)

// Envelope is the body of every error response.
type Envelope struct {
	Error Problem `json:"error"`
	Meta  Meta    `json:"meta"`
}

// Problem describes what went wrong. Code is stable and machine-readable,
// Message is for people.
type Problem struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type Meta struct {
	RequestID string `json:"request_id"`
}

// Error writes status with the envelope. Details never leave the server on
// 401, 403 or 5xx. A 401 also advertises the bearer scheme.
func Error(c echo.Context, status int, code, message string, details any) error {
	switch {
	case status == http.StatusUnauthorized:
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		details = nil
	case status == http.StatusForbidden, status >= http.StatusInternalServerError:
		details = nil
	}

	if c.Request().Method == http.MethodHead {
		return c.NoContent(status)
	}

	return c.JSON(status, Envelope{
		Error: Problem{Code: code, Message: message, Details: details},
		Meta:  Meta{RequestID: deliverycontext.GetRequestID(c)},
	})
}
