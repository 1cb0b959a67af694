package impl

import (
	"context"
	"testing"
	"time"

	"taskboard/internal/domain/entity"
	domainerrors "taskboard/internal/domain/errors"
	"taskboard/internal/domain/repository"
	"taskboard/internal/domain/service"
	mockSvc "taskboard/internal/mocks/service"
	"taskboard/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type authServiceFixtures struct {
	txFixtures
	service *authService
	hasher  *mockSvc.MockPasswordHasher
	tokens  *mockSvc.MockTokenService
}

func createTestAuthService(t *testing.T) authServiceFixtures {
	t.Helper()

	txFx := newTxFixtures(t)
	hasher := mockSvc.NewMockPasswordHasher(t)
	tokens := mockSvc.NewMockTokenService(t)

	srv, ok := NewAuthService(AuthServiceParams{
		TxManager:    txFx.txManager,
		Hasher:       hasher,
		TokenService: tokens,
		Logger:       newDiscardLogger(),
	}).(*authService)
	require.True(t, ok)
	srv.now = func() time.Time { return fixedNow }

	return authServiceFixtures{
		txFixtures: txFx,
		service:    srv,
		hasher:     hasher,
		tokens:     tokens,
	}
}

func signupInput() usecase.SignupInput {
	return usecase.SignupInput{Email: "ann@example.com", Username: "ann", Password: "secret1"}
}

func TestAuthService_Signup_Success(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()
	input := signupInput()
	newID := uuid.New()

	fx.expectTx()
	fx.userRepo.EXPECT().FindByEmail(ctx, input.Email).Return(nil, repository.ErrUserNotFound)
	fx.userRepo.EXPECT().FindByUsername(ctx, input.Username).Return(nil, repository.ErrUserNotFound)
	fx.hasher.EXPECT().Hash(input.Password).Return("$2a$10$hashed", nil)
	fx.userRepo.EXPECT().
		Create(ctx, mock.MatchedBy(func(u *entity.User) bool {
			return u.Email == input.Email && u.Username == input.Username && u.HashedPassword == "$2a$10$hashed"
		})).
		RunAndReturn(func(_ context.Context, u *entity.User) error {
			u.ID = newID
			u.CreatedAt = fixedNow

			return nil
		})

	user, err := fx.service.Signup(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, newID, user.ID)
	assert.Equal(t, input.Email, user.Email)
	assert.NotEqual(t, input.Password, user.HashedPassword)
}

func TestAuthService_Signup_Conflicts(t *testing.T) {
	existing := &entity.User{ID: uuid.New(), Email: "ann@example.com", Username: "ann"}

	tests := []struct {
		name      string
		setup     func(fx authServiceFixtures, ctx context.Context, input usecase.SignupInput)
		wantError error
	}{
		{
			name: "email already registered",
			setup: func(fx authServiceFixtures, ctx context.Context, input usecase.SignupInput) {
				fx.userRepo.EXPECT().FindByEmail(ctx, input.Email).Return(existing, nil)
			},
			wantError: domainerrors.ErrEmailAlreadyRegistered,
		},
		{
			name: "username taken",
			setup: func(fx authServiceFixtures, ctx context.Context, input usecase.SignupInput) {
				fx.userRepo.EXPECT().FindByEmail(ctx, input.Email).Return(nil, repository.ErrUserNotFound)
				fx.userRepo.EXPECT().FindByUsername(ctx, input.Username).Return(existing, nil)
			},
			wantError: domainerrors.ErrUsernameTaken,
		},
		{
			name: "store rejects email after pre-check",
			setup: func(fx authServiceFixtures, ctx context.Context, input usecase.SignupInput) {
				fx.userRepo.EXPECT().FindByEmail(ctx, input.Email).Return(nil, repository.ErrUserNotFound)
				fx.userRepo.EXPECT().FindByUsername(ctx, input.Username).Return(nil, repository.ErrUserNotFound)
				fx.hasher.EXPECT().Hash(input.Password).Return("hash", nil)
				fx.userRepo.EXPECT().Create(ctx, mock.Anything).Return(repository.ErrDuplicateEmail)
			},
			wantError: domainerrors.ErrEmailAlreadyRegistered,
		},
		{
			name: "store rejects username after pre-check",
			setup: func(fx authServiceFixtures, ctx context.Context, input usecase.SignupInput) {
				fx.userRepo.EXPECT().FindByEmail(ctx, input.Email).Return(nil, repository.ErrUserNotFound)
				fx.userRepo.EXPECT().FindByUsername(ctx, input.Username).Return(nil, repository.ErrUserNotFound)
				fx.hasher.EXPECT().Hash(input.Password).Return("hash", nil)
				fx.userRepo.EXPECT().Create(ctx, mock.Anything).Return(repository.ErrDuplicateUsername)
			},
			wantError: domainerrors.ErrUsernameTaken,
		},
		{
			name: "unattributed duplicate is classified by re-check",
			setup: func(fx authServiceFixtures, ctx context.Context, input usecase.SignupInput) {
				fx.userRepo.EXPECT().FindByEmail(ctx, input.Email).Return(nil, repository.ErrUserNotFound)
				fx.userRepo.EXPECT().FindByUsername(ctx, input.Username).Return(nil, repository.ErrUserNotFound).Once()
				fx.hasher.EXPECT().Hash(input.Password).Return("hash", nil)
				fx.userRepo.EXPECT().Create(ctx, mock.Anything).Return(repository.ErrDuplicateUser)
				fx.userRepo.EXPECT().FindByUsername(ctx, input.Username).Return(existing, nil).Once()
			},
			wantError: domainerrors.ErrUsernameTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := createTestAuthService(t)
			ctx := context.Background()
			input := signupInput()

			fx.expectTx()
			tt.setup(fx, ctx, input)

			user, err := fx.service.Signup(ctx, input)

			require.Error(t, err)
			assert.Nil(t, user)
			assert.ErrorIs(t, err, tt.wantError)
		})
	}
}

func TestAuthService_Signup_HashFailure(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()
	input := signupInput()

	fx.expectTx()
	fx.userRepo.EXPECT().FindByEmail(ctx, input.Email).Return(nil, repository.ErrUserNotFound)
	fx.userRepo.EXPECT().FindByUsername(ctx, input.Username).Return(nil, repository.ErrUserNotFound)
	fx.hasher.EXPECT().Hash(input.Password).Return("", errors.New("bcrypt: password length exceeds 72 bytes"))

	_, err := fx.service.Signup(ctx, input)

	assert.ErrorIs(t, err, domainerrors.ErrPasswordHashFailed)
}

func TestAuthService_Login_Success(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()
	user := &entity.User{ID: uuid.New(), Email: "ann@example.com", HashedPassword: "hash"}
	expiresAt := fixedNow.Add(30 * time.Minute)

	fx.expectTx()
	fx.userRepo.EXPECT().FindByEmail(ctx, user.Email).Return(user, nil)
	fx.hasher.EXPECT().Check("secret1", "hash").Return(true)
	fx.tokens.EXPECT().IssueAccessToken(user.ID, fixedNow).Return(&service.AccessToken{Token: "signed", ExpiresAt: expiresAt}, nil)

	out, err := fx.service.Login(ctx, usecase.LoginInput{Email: user.Email, Password: "secret1"})

	require.NoError(t, err)
	assert.Equal(t, "signed", out.AccessToken)
	assert.Equal(t, usecase.TokenTypeBearer, out.TokenType)
	assert.Equal(t, expiresAt, out.ExpiresAt)
}

func TestAuthService_Login_FailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	input := usecase.LoginInput{Email: "ann@example.com", Password: "wrong"}

	unknown := createTestAuthService(t)
	unknown.expectTx()
	unknown.userRepo.EXPECT().FindByEmail(ctx, input.Email).Return(nil, repository.ErrUserNotFound)
	_, unknownErr := unknown.service.Login(ctx, input)

	mismatch := createTestAuthService(t)
	mismatch.expectTx()
	mismatch.userRepo.EXPECT().FindByEmail(ctx, input.Email).Return(&entity.User{ID: uuid.New(), HashedPassword: "hash"}, nil)
	mismatch.hasher.EXPECT().Check(input.Password, "hash").Return(false)
	_, mismatchErr := mismatch.service.Login(ctx, input)

	require.ErrorIs(t, unknownErr, domainerrors.ErrInvalidCredentials)
	require.ErrorIs(t, mismatchErr, domainerrors.ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), mismatchErr.Error())
}

func TestAuthService_Login_StoreFailure(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()
	dbErr := domainerrors.NewDatabaseExecuteError(errors.New("connection refused"), "failed to find user")

	fx.expectTx()
	fx.userRepo.EXPECT().FindByEmail(ctx, "ann@example.com").Return(nil, dbErr)

	_, err := fx.service.Login(ctx, usecase.LoginInput{Email: "ann@example.com", Password: "secret1"})

	require.Error(t, err)
	assert.NotErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	assert.ErrorIs(t, err, dbErr)
}

func TestAuthService_ResolveIdentity(t *testing.T) {
	user := &entity.User{ID: uuid.New(), Email: "ann@example.com"}

	t.Run("valid token", func(t *testing.T) {
		fx := createTestAuthService(t)
		ctx := context.Background()

		fx.tokens.EXPECT().ParseAccessToken("good", fixedNow).Return(user.ID, nil)
		fx.expectTx()
		fx.userRepo.EXPECT().FindByID(ctx, user.ID).Return(user, nil)

		got, err := fx.service.ResolveIdentity(ctx, "good")

		require.NoError(t, err)
		assert.Equal(t, user, got)
	})

	t.Run("invalid token", func(t *testing.T) {
		fx := createTestAuthService(t)

		fx.tokens.EXPECT().ParseAccessToken("bad", fixedNow).Return(uuid.Nil, service.ErrInvalidToken)

		got, err := fx.service.ResolveIdentity(context.Background(), "bad")

		assert.Nil(t, got)
		assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
	})

	t.Run("deleted user", func(t *testing.T) {
		fx := createTestAuthService(t)
		ctx := context.Background()

		fx.tokens.EXPECT().ParseAccessToken("orphan", fixedNow).Return(user.ID, nil)
		fx.expectTx()
		fx.userRepo.EXPECT().FindByID(ctx, user.ID).Return(nil, repository.ErrUserNotFound)

		_, err := fx.service.ResolveIdentity(ctx, "orphan")

		assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
	})

	t.Run("store failure is not a 401", func(t *testing.T) {
		fx := createTestAuthService(t)
		ctx := context.Background()

		fx.tokens.EXPECT().ParseAccessToken("good", fixedNow).Return(user.ID, nil)
		fx.expectTx()
		fx.userRepo.EXPECT().FindByID(ctx, user.ID).Return(nil, errors.New("connection reset"))

		_, err := fx.service.ResolveIdentity(ctx, "good")

		require.Error(t, err)
		assert.NotErrorIs(t, err, domainerrors.ErrUnauthorized)
	})
}
