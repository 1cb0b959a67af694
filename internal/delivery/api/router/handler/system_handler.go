package handler

import (
	"net/http"

	"taskboard/config"

	"github.com/labstack/echo/v4"
)

// SystemHandler serves unauthenticated service endpoints.
type SystemHandler struct {
	serviceName string
	version     string
}

// NewSystemHandler is the constructor for SystemHandler.
func NewSystemHandler(cfg *config.Config) *SystemHandler {
	return &SystemHandler{
		serviceName: cfg.Env.ServiceName,
		version:     cfg.Env.Version,
	}
}

// Root describes the service.
func (h *SystemHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Task Management API",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Health reports that the process is serving requests.
func (h *SystemHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}
