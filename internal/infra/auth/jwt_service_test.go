package auth

import (
	"testing"
	"time"

	"taskboard/config"
	"taskboard/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_access_secret_key_very_long_for_testing"

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestJWTService(t *testing.T, ttl time.Duration) *jwtService {
	t.Helper()

	svc, err := newJWTService(testSecret, ttl)
	require.NoError(t, err)

	return svc
}

func TestJWTService_IssueAndParse(t *testing.T) {
	svc := newTestJWTService(t, 30*time.Minute)
	userID := uuid.New()

	issued, err := svc.IssueAccessToken(userID, t0)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.Token)
	assert.Equal(t, t0.Add(30*time.Minute), issued.ExpiresAt)

	got, err := svc.ParseAccessToken(issued.Token, t0)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestJWTService_ExpiryBoundary(t *testing.T) {
	ttl := 30 * time.Minute
	svc := newTestJWTService(t, ttl)

	issuedAt := []struct {
		name string
		at   time.Time
	}{
		{name: "whole second", at: t0},
		{name: "sub-second", at: t0.Add(900 * time.Millisecond)},
		{name: "nanoseconds", at: t0.Add(123456789 * time.Nanosecond)},
	}

	for _, issue := range issuedAt {
		t.Run(issue.name, func(t *testing.T) {
			userID := uuid.New()
			issued, err := svc.IssueAccessToken(userID, issue.at)
			require.NoError(t, err)

			exp, err := encodedExpiry(jwt.NewParser(), issued.Token)
			require.NoError(t, err)
			assert.True(t, issue.at.Add(ttl).Equal(exp), "encoded exp %s", exp)
			assert.True(t, issued.ExpiresAt.Equal(exp))

			tests := []struct {
				name  string
				after time.Duration
				valid bool
			}{
				{name: "at issue", after: 0, valid: true},
				{name: "half a second before expiry", after: ttl - 500*time.Millisecond, valid: true},
				{name: "a nanosecond before expiry", after: ttl - time.Nanosecond, valid: true},
				{name: "at expiry", after: ttl, valid: false},
				{name: "after expiry", after: ttl + time.Hour, valid: false},
			}

			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					got, err := svc.ParseAccessToken(issued.Token, issue.at.Add(tt.after))
					if tt.valid {
						require.NoError(t, err)
						assert.Equal(t, userID, got)

						return
					}

					assert.ErrorIs(t, err, service.ErrInvalidToken)
					assert.Equal(t, uuid.Nil, got)
				})
			}
		})
	}
}

func TestParseNumericDate(t *testing.T) {
	tests := []struct {
		value   string
		want    time.Time
		wantErr bool
	}{
		{value: "1714566600", want: time.Unix(1714566600, 0)},
		{value: "1714566600.9", want: time.Unix(1714566600, 900000000)},
		{value: "1714566600.123456789", want: time.Unix(1714566600, 123456789)},
		{value: "1714566600.1234567891", want: time.Unix(1714566600, 123456789)},
		{value: "", wantErr: true},
		{value: "1.7e9", wantErr: true},
		{value: "1714566600.x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := parseNumericDate(tt.value)
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestJWTService_TamperedTokenRejected(t *testing.T) {
	svc := newTestJWTService(t, time.Hour)

	issued, err := svc.IssueAccessToken(uuid.New(), t0)
	require.NoError(t, err)

	original := issued.Token
	for i := range len(original) {
		tampered := []byte(original)
		if tampered[i] == 'A' {
			tampered[i] = 'B'
		} else {
			tampered[i] = 'A'
		}

		_, err := svc.ParseAccessToken(string(tampered), t0)
		assert.ErrorIs(t, err, service.ErrInvalidToken, "byte %d changed", i)
	}
}

func TestJWTService_WrongSecretRejected(t *testing.T) {
	issuer := newTestJWTService(t, time.Hour)
	other, err := newJWTService("a_completely_different_secret", time.Hour)
	require.NoError(t, err)

	issued, err := issuer.IssueAccessToken(uuid.New(), t0)
	require.NoError(t, err)

	_, err = other.ParseAccessToken(issued.Token, t0)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestJWTService_RejectsForeignTokens(t *testing.T) {
	svc := newTestJWTService(t, time.Hour)
	exp := jwt.NewNumericDate(t0.Add(time.Hour))

	sign := func(t *testing.T, method jwt.SigningMethod, claims jwt.Claims) string {
		t.Helper()

		token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		return token
	}

	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{
			name: "not a jwt",
			token: func(*testing.T) string {
				return "clearly-not-a-jwt-token-format"
			},
		},
		{
			name: "empty",
			token: func(*testing.T) string {
				return ""
			},
		},
		{
			name: "HS512 with the same secret",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS512, service.Claims{
					Type:             service.TokenTypeAccess,
					RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.NewString(), ExpiresAt: exp},
				})
			},
		},
		{
			name: "missing expiry",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, service.Claims{
					Type:             service.TokenTypeAccess,
					RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.NewString()},
				})
			},
		},
		{
			name: "wrong token type",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, service.Claims{
					Type:             "refresh",
					RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.NewString(), ExpiresAt: exp},
				})
			},
		},
		{
			name: "subject is not a uuid",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, service.Claims{
					Type:             service.TokenTypeAccess,
					RegisteredClaims: jwt.RegisteredClaims{Subject: "42", ExpiresAt: exp},
				})
			},
		},
		{
			name: "none algorithm",
			token: func(t *testing.T) string {
				token, err := jwt.NewWithClaims(jwt.SigningMethodNone, service.Claims{
					Type:             service.TokenTypeAccess,
					RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.NewString(), ExpiresAt: exp},
				}).SignedString(jwt.UnsafeAllowNoneSignatureType)
				require.NoError(t, err)

				return token
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ParseAccessToken(tt.token(t), t0)

			assert.ErrorIs(t, err, service.ErrInvalidToken)
			assert.Equal(t, uuid.Nil, got)
		})
	}
}

func TestNewJWTService(t *testing.T) {
	t.Run("empty secret", func(t *testing.T) {
		_, err := NewJWTService(&config.Config{})
		assert.Error(t, err)
	})

	t.Run("ttl from config", func(t *testing.T) {
		cfg := &config.Config{
			SecretKey: config.SecretKeyConfig{Access: testSecret},
			Auth:      &config.AuthConfig{AccessTokenTTL: 5 * time.Minute},
		}

		svc, err := NewJWTService(cfg)
		require.NoError(t, err)

		issued, err := svc.IssueAccessToken(uuid.New(), t0)
		require.NoError(t, err)
		assert.Equal(t, t0.Add(5*time.Minute), issued.ExpiresAt)
	})

	t.Run("default ttl", func(t *testing.T) {
		cfg := &config.Config{SecretKey: config.SecretKeyConfig{Access: testSecret}}

		svc, err := NewJWTService(cfg)
		require.NoError(t, err)

		issued, err := svc.IssueAccessToken(uuid.New(), t0)
		require.NoError(t, err)
		assert.Equal(t, t0.Add(defaultAccessTTL), issued.ExpiresAt)
	})
}
