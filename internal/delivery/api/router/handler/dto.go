// Package handler contains the HTTP handlers for the JSON API.
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"taskboard/internal/delivery/api/validator"
	"taskboard/internal/domain/entity"
	"taskboard/internal/util"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// UserResponse is the public view of an account. It never carries the password hash.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskResponse is the public view of a task.
type TaskResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UserID      uuid.UUID  `json:"user_id"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func toUserResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		CreatedAt: user.CreatedAt.UTC(),
	}
}

func toTaskResponse(task *entity.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status.String(),
		DueDate:     utcPtr(task.DueDate),
		CreatedAt:   task.CreatedAt.UTC(),
		UserID:      task.UserID,
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()

	return &utc
}

func toTaskResponses(tasks []*entity.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, toTaskResponse(task))
	}

	return out
}

// bindAndValidate decodes the JSON body into req and validates it. Malformed
// bodies are reported as validation failures.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return bindError(err)
	}

	return c.Validate(req)
}

func bindError(err error) error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) && httpErr.Code == http.StatusUnsupportedMediaType {
		return err
	}

	if errors.Is(err, util.ErrInvalidTimestamp) {
		return validator.NewFieldError("due_date", "must be an ISO 8601 date or date-time")
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return validator.NewFieldError(typeErr.Field, "has the wrong type")
	}

	return validator.NewFieldError("body", "must be a valid JSON object")
}
