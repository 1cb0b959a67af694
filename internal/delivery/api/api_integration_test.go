//go:build integration

package api_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskboard/config"
	"taskboard/internal/delivery/api"
	apimiddleware "taskboard/internal/delivery/api/middleware"
	"taskboard/internal/delivery/api/router"
	"taskboard/internal/delivery/api/router/handler"
	"taskboard/internal/infra/auth"
	"taskboard/internal/infra/metrics"
	"taskboard/internal/infra/persistence/migration"
	"taskboard/internal/infra/persistence/postgres"
	"taskboard/internal/usecase/impl"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newTestApp(t *testing.T) *echo.Echo {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("taskboard"),
		tcpostgres.WithUsername("taskboard"),
		tcpostgres.WithPassword("taskboard"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Env.ServiceName = "taskboard"
	cfg.Env.Version = "test"
	cfg.HTTP.MaxRequestBodySize = "100KB"
	cfg.HTTP.CORS.AllowOrigins = []string{"http://localhost:3000"}
	cfg.SecretKey.Access = "integration-secret"
	cfg.Auth = &config.AuthConfig{BcryptCost: 4, AccessTokenTTL: time.Minute}
	cfg.Migration = config.MigrationConfig{AutoMigrate: true, DatabaseURL: connStr}
	cfg.Metrics = config.MetricsConfig{Enabled: true, Path: "/metrics"}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, migration.RunOnStartup(ctx, migration.Params{Config: cfg, Logger: logger}))

	db, err := gorm.Open(gormpostgres.Open(connStr), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	txManager := postgres.NewTransactionManager(db)
	hasher := auth.NewBcryptHasher(cfg)
	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	authUC := impl.NewAuthService(impl.AuthServiceParams{TxManager: txManager, Hasher: hasher, TokenService: tokens, Logger: logger})
	profileUC := impl.NewProfileService(impl.ProfileServiceParams{TxManager: txManager, Hasher: hasher, Logger: logger})
	taskUC := impl.NewTaskService(impl.TaskServiceParams{TxManager: txManager, Logger: logger})

	registry := metrics.NewRegistry()
	e := api.NewEcho(cfg, logger, metrics.NewHTTPMetrics(registry))

	r := router.NewRouter(router.RouterParams{
		AuthHandler:    handler.NewAuthHandler(handler.AuthHandlerParams{AuthUC: authUC, Logger: logger}),
		UserHandler:    handler.NewUserHandler(handler.UserHandlerParams{ProfileUC: profileUC, Logger: logger}),
		TaskHandler:    handler.NewTaskHandler(handler.TaskHandlerParams{TaskUC: taskUC, Logger: logger}),
		SystemHandler:  handler.NewSystemHandler(cfg),
		AuthMiddleware: apimiddleware.NewAuthMiddleware(authUC),
		Registry:       registry,
		Config:         cfg,
	})
	r.RegisterRoutes(e)
	r.RegisterMetricsRoute(e)

	return e
}

type client struct {
	t     *testing.T
	e     *echo.Echo
	token string
}

func (c *client) call(method, target, body string) (int, map[string]any, []any) {
	c.t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if c.token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+c.token)
	}

	rec := httptest.NewRecorder()
	c.e.ServeHTTP(rec, req)

	raw := rec.Body.Bytes()
	if len(raw) == 0 {
		return rec.Code, nil, nil
	}
	if raw[0] == '[' {
		var list []any
		require.NoError(c.t, json.Unmarshal(raw, &list))

		return rec.Code, nil, list
	}

	var obj map[string]any
	require.NoError(c.t, json.Unmarshal(raw, &obj), string(raw))

	return rec.Code, obj, nil
}

func (c *client) signupAndLogin(email, username string) {
	c.t.Helper()

	code, _, _ := c.call(http.MethodPost, "/auth/signup",
		`{"email":"`+email+`","username":"`+username+`","password":"secret1"}`)
	require.Equal(c.t, http.StatusCreated, code)

	code, body, _ := c.call(http.MethodPost, "/auth/login", `{"email":"`+email+`","password":"secret1"}`)
	require.Equal(c.t, http.StatusOK, code)
	c.token = body["access_token"].(string)
}

func TestTaskLifecycle_Integration(t *testing.T) {
	e := newTestApp(t)
	ann := &client{t: t, e: e}
	bob := &client{t: t, e: e}
	ann.signupAndLogin("ann@example.com", "ann")
	bob.signupAndLogin("bob@example.com", "bob")

	code, created, _ := ann.call(http.MethodPost, "/tasks", `{"title":"Write report","due_date":"2026-11-01T09:30"}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "pending", created["status"])
	assert.Equal(t, "2026-11-01T09:30:00Z", created["due_date"])
	taskURL := "/tasks/" + created["id"].(string)

	code, patched, _ := ann.call(http.MethodPatch, taskURL, `{"status":"completed","due_date":null}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "completed", patched["status"])
	assert.Equal(t, "Write report", patched["title"])
	assert.Nil(t, patched["due_date"])

	code, _, list := ann.call(http.MethodGet, "/tasks?status=completed", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, list, 1)

	code, _, _ = bob.call(http.MethodGet, taskURL, "")
	assert.Equal(t, http.StatusNotFound, code)
	code, _, _ = bob.call(http.MethodDelete, taskURL, "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _, _ = ann.call(http.MethodDelete, taskURL, "")
	assert.Equal(t, http.StatusNoContent, code)
	code, _, _ = ann.call(http.MethodGet, taskURL, "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAccountDeletion_Integration(t *testing.T) {
	e := newTestApp(t)
	ann := &client{t: t, e: e}
	ann.signupAndLogin("ann@example.com", "ann")

	code, _, _ := ann.call(http.MethodPost, "/tasks", `{"title":"one"}`)
	require.Equal(t, http.StatusCreated, code)

	code, _, _ = ann.call(http.MethodDelete, "/users/me", "")
	require.Equal(t, http.StatusNoContent, code)

	code, body, _ := ann.call(http.MethodGet, "/users/me", "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHORIZED", body["error"].(map[string]any)["code"])

	// The email is free again.
	again := &client{t: t, e: e}
	again.signupAndLogin("ann@example.com", "ann")
	code, _, list := again.call(http.MethodGet, "/tasks", "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, list)
}

func TestSignupConflicts_Integration(t *testing.T) {
	e := newTestApp(t)
	anon := &client{t: t, e: e}
	anon.signupAndLogin("ann@example.com", "ann")
	anon.token = ""

	code, body, _ := anon.call(http.MethodPost, "/auth/signup", `{"email":"ann@example.com","username":"other","password":"secret1"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Email already registered", body["error"].(map[string]any)["message"])

	code, body, _ = anon.call(http.MethodPost, "/auth/signup", `{"email":"other@example.com","username":"ann","password":"secret1"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Username already taken", body["error"].(map[string]any)["message"])

	code, wrongPassword, _ := anon.call(http.MethodPost, "/auth/login", `{"email":"ann@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, code)
	code, unknownEmail, _ := anon.call(http.MethodPost, "/auth/login", `{"email":"ghost@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, wrongPassword["error"], unknownEmail["error"])
}
