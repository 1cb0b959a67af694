// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"taskboard/internal/domain/entity"
)

// TokenTypeBearer is the token_type reported to clients on login.
const TokenTypeBearer = "bearer"

// --- Input DTOs ---

// SignupInput defines the data required to create an account.
type SignupInput struct {
	Email    string
	Username string
	Password string
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string
	Password string
}

// --- Output DTOs ---

// LoginOutput returns the access token issued on a successful login.
type LoginOutput struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// AuthUsecase covers account creation, login and bearer token resolution.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type AuthUsecase interface {
	Signup(ctx context.Context, input SignupInput) (*entity.User, error)
	Login(ctx context.Context, input LoginInput) (*LoginOutput, error)

	// ResolveIdentity returns the live user a bearer token names.
	// Invalid tokens and tokens of deleted users both yield ErrUnauthorized.
	ResolveIdentity(ctx context.Context, token string) (*entity.User, error)
}
