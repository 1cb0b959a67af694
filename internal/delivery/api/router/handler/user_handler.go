package handler

import (
	"log/slog"
	"net/http"

	"taskboard/internal/delivery/api/middleware"
	"taskboard/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// UserHandlerParams holds dependencies for UserHandler, injected by Fx.
type UserHandlerParams struct {
	fx.In

	ProfileUC usecase.ProfileUsecase
	Logger    *slog.Logger
}

// UserHandler serves the caller's own account under /users/me.
type UserHandler struct {
	profileUC usecase.ProfileUsecase
	logger    *slog.Logger
}

// NewUserHandler is the constructor for UserHandler.
func NewUserHandler(params UserHandlerParams) *UserHandler {
	return &UserHandler{
		profileUC: params.ProfileUC,
		logger:    params.Logger,
	}
}

// UpdateProfileRequest represents the request body for PUT /users/me. Omitted fields are unchanged.
type UpdateProfileRequest struct {
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Username *string `json:"username" validate:"omitempty,min=1,max=50"`
	Password *string `json:"password" validate:"omitempty,min=6,maxbytes=72"`
}

// GetMe returns the authenticated user.
func (h *UserHandler) GetMe(c echo.Context) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateMe changes email, username or password of the authenticated user.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	var req UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	updated, err := h.profileUC.UpdateProfile(c.Request().Context(), user.ID, usecase.UpdateProfileInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return c.JSON(http.StatusOK, toUserResponse(updated))
}

// DeleteMe removes the authenticated user and all of their tasks.
func (h *UserHandler) DeleteMe(c echo.Context) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	if err := h.profileUC.DeleteAccount(c.Request().Context(), user.ID); err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}
