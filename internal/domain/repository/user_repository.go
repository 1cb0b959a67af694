// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"taskboard/internal/domain/entity"

	"github.com/google/uuid"
)

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateEmail is returned when a write collides with another user's email.
	ErrDuplicateEmail = errors.New("duplicate user email")

	// ErrDuplicateUsername is returned when a write collides with another user's username.
	ErrDuplicateUsername = errors.New("duplicate username")

	// ErrDuplicateUser is returned for a uniqueness collision the store could not attribute to a column.
	ErrDuplicateUser = errors.New("duplicate user")
)

// UserRepository defines the standard operations for user persistence.
type UserRepository interface {
	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail retrieves a single user by their email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByUsername retrieves a single user by their username.
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// Create persists a new user and fills in the generated ID and timestamps.
	Create(ctx context.Context, user *entity.User) error

	// Update writes email, username and password hash of an existing user.
	Update(ctx context.Context, user *entity.User) error

	// Delete removes the user record.
	Delete(ctx context.Context, id uuid.UUID) error
}
