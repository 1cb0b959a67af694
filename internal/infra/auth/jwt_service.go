package auth

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"taskboard/config"
	"taskboard/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const defaultAccessTTL = 30 * time.Minute

func init() {
	// exp and iat carry the issue instant to the nanosecond instead of whole seconds.
	jwt.TimePrecision = time.Nanosecond
}

// jwtService is a concrete implementation of the TokenService interface using HS256-signed JWTs.
type jwtService struct {
	accessSecret []byte        // Secret key for signing access tokens.
	accessTTL    time.Duration // Time-to-live for access tokens.
}

// NewJWTService is the constructor for jwtService.
// The secret and TTL are fixed at construction; an empty secret is rejected.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	ttl := defaultAccessTTL
	if cfg.Auth != nil && cfg.Auth.AccessTokenTTL > 0 {
		ttl = cfg.Auth.AccessTokenTTL
	}

	return newJWTService(cfg.SecretKey.Access, ttl)
}

func newJWTService(secret string, ttl time.Duration) (*jwtService, error) {
	if secret == "" {
		return nil, errors.New("jwt access secret must be provided")
	}
	if ttl <= 0 {
		return nil, errors.Errorf("jwt access ttl must be positive, got %s", ttl)
	}

	return &jwtService{
		accessSecret: []byte(secret),
		accessTTL:    ttl,
	}, nil
}

// IssueAccessToken signs an access token for userID valid until now+TTL.
func (s *jwtService) IssueAccessToken(userID uuid.UUID, now time.Time) (*service.AccessToken, error) {
	expiresAt := now.Add(s.accessTTL)
	claims := service.Claims{
		Type: service.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.accessSecret)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign access token")
	}

	return &service.AccessToken{
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// ParseAccessToken verifies the signature and expiry of token against now and returns its subject.
// Every failure is reported as service.ErrInvalidToken.
func (s *jwtService) ParseAccessToken(token string, now time.Time) (uuid.UUID, error) {
	// NumericDate decodes through float64 and can land a fraction of a
	// microsecond off; the leeway absorbs that and checkExpiry decides exactly.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithLeeway(time.Microsecond),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	claims := &service.Claims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.accessSecret, nil
	})
	if err != nil || !parsed.Valid {
		return uuid.Nil, service.ErrInvalidToken
	}

	if err := checkExpiry(parser, parsed.Raw, now); err != nil {
		return uuid.Nil, service.ErrInvalidToken
	}

	if claims.Type != service.TokenTypeAccess {
		return uuid.Nil, service.ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, service.ErrInvalidToken
	}

	return userID, nil
}

// checkExpiry rejects the token unless now is strictly before its encoded exp.
func checkExpiry(parser *jwt.Parser, raw string, now time.Time) error {
	exp, err := encodedExpiry(parser, raw)
	if err != nil {
		return err
	}
	if !now.Before(exp) {
		return jwt.ErrTokenExpired
	}

	return nil
}

// encodedExpiry reads the exp claim from the token payload as written.
func encodedExpiry(parser *jwt.Parser, raw string) (time.Time, error) {
	segments := strings.Split(raw, ".")
	if len(segments) != 3 {
		return time.Time{}, jwt.ErrTokenMalformed
	}

	payload, err := parser.DecodeSegment(segments[1])
	if err != nil {
		return time.Time{}, errors.Wrap(err, "failed to decode token payload")
	}

	var body struct {
		Exp json.Number `json:"exp"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return time.Time{}, errors.Wrap(err, "failed to decode token claims")
	}

	return parseNumericDate(body.Exp.String())
}

// parseNumericDate parses a decimal "seconds[.fraction]" epoch without going through float64.
func parseNumericDate(value string) (time.Time, error) {
	whole, frac, _ := strings.Cut(value, ".")
	sec, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid numeric date %q", value)
	}

	var nsec int64
	if frac != "" {
		if len(frac) > 9 {
			frac = frac[:9]
		}
		nsec, err = strconv.ParseInt(frac+strings.Repeat("0", 9-len(frac)), 10, 64)
		if err != nil || nsec < 0 {
			return time.Time{}, errors.Errorf("invalid numeric date %q", value)
		}
	}

	return time.Unix(sec, nsec), nil
}
