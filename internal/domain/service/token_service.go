package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTypeAccess marks tokens that authenticate API calls.
const TokenTypeAccess = "access"

// ErrInvalidToken covers every reason a token is rejected: bad signature,
// expiry, malformed encoding, wrong type or a subject that is not a user id.
var ErrInvalidToken = errors.New("invalid token")

// Claims defines the custom claims carried by access tokens.
type Claims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// AccessToken is a signed token together with its expiry.
type AccessToken struct {
	Token     string
	ExpiresAt time.Time
}

// TokenService issues and verifies signed, time-limited bearer tokens.
type TokenService interface {
	// IssueAccessToken signs a token for userID that expires TTL after now.
	IssueAccessToken(userID uuid.UUID, now time.Time) (*AccessToken, error)

	// ParseAccessToken returns the user id of a valid token.
	// A token is valid while now is strictly before its expiry.
	ParseAccessToken(token string, now time.Time) (uuid.UUID, error)
}
