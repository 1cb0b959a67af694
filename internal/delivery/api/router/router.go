// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"taskboard/config"
	"taskboard/internal/delivery/api/middleware"
	"taskboard/internal/delivery/api/router/handler"
	"taskboard/internal/infra/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	TaskHandler    *handler.TaskHandler
	SystemHandler  *handler.SystemHandler
	AuthMiddleware *middleware.AuthMiddleware
	Registry       *prometheus.Registry `optional:"true"`
	Config         *config.Config
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler    *handler.AuthHandler
	userHandler    *handler.UserHandler
	taskHandler    *handler.TaskHandler
	systemHandler  *handler.SystemHandler
	authMiddleware *middleware.AuthMiddleware
	registry       *prometheus.Registry
	config         *config.Config
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:    params.AuthHandler,
		userHandler:    params.UserHandler,
		taskHandler:    params.TaskHandler,
		systemHandler:  params.SystemHandler,
		authMiddleware: params.AuthMiddleware,
		registry:       params.Registry,
		config:         params.Config,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/", r.systemHandler.Root)
	e.GET("/health", r.systemHandler.Health)

	authGroup := e.Group("/auth")
	{
		authGroup.POST("/signup", r.authHandler.Signup)
		authGroup.POST("/login", r.authHandler.Login)
	}

	usersGroup := e.Group("/users")
	usersGroup.Use(r.authMiddleware.Authenticate)
	{
		usersGroup.GET("/me", r.userHandler.GetMe)
		usersGroup.PUT("/me", r.userHandler.UpdateMe)
		usersGroup.DELETE("/me", r.userHandler.DeleteMe)
	}

	tasksGroup := e.Group("/tasks")
	tasksGroup.Use(r.authMiddleware.Authenticate)
	{
		tasksGroup.POST("", r.taskHandler.Create)
		tasksGroup.GET("", r.taskHandler.List)
		tasksGroup.GET("/:id", r.taskHandler.Get)
		tasksGroup.PUT("/:id", r.taskHandler.Update)
		tasksGroup.PATCH("/:id", r.taskHandler.Update)
		tasksGroup.DELETE("/:id", r.taskHandler.Delete)
	}
}

// RegisterMetricsRoute exposes the Prometheus registry when metrics are enabled.
func (r *router) RegisterMetricsRoute(e *echo.Echo) {
	if !r.config.Metrics.Enabled || r.registry == nil {
		return
	}

	e.GET(r.config.Metrics.Path, echo.WrapHandler(metrics.Handler(r.registry)))
}
