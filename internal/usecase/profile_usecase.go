package usecase

import (
	"context"

	"taskboard/internal/domain/entity"

	"github.com/google/uuid"
)

// ProfileUsecase defines the operations on the caller's own account.
type ProfileUsecase interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*entity.User, error)

	// DeleteAccount removes the user together with every task they own.
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

// --- Input DTOs ---

// UpdateProfileInput carries the fields to change. Nil fields are left untouched.
type UpdateProfileInput struct {
	Email    *string
	Username *string
	Password *string
}
