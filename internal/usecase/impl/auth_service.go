// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "taskboard/internal/delivery/context"
	"taskboard/internal/domain/entity"
	domainerrors "taskboard/internal/domain/errors"
	"taskboard/internal/domain/repository"
	"taskboard/internal/domain/service"
	"taskboard/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface.
type authService struct {
	txManager    repository.TransactionManager
	hasher       service.PasswordHasher
	tokenService service.TokenService
	logger       *slog.Logger
	now          func() time.Time
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		txManager:    params.TxManager,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		logger:       params.Logger,
		now:          time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Signup creates an account. Email is checked before username, so a request
// colliding on both reports the email.
func (srv *authService) Signup(ctx context.Context, input usecase.SignupInput) (*entity.User, error) {
	srv.log(ctx).Debug("Starting signup", slog.String("email", input.Email), slog.String("username", input.Username))

	if err := srv.ensureAvailable(ctx, input.Email, input.Username); err != nil {
		return nil, err
	}

	// Hash outside the transaction (bcrypt is CPU-bound).
	hashed, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password", slog.Any("error", err))

		return nil, domainerrors.ErrPasswordHashFailed.WrapMessage(err.Error())
	}

	newUser := &entity.User{
		Email:          input.Email,
		Username:       input.Username,
		HashedPassword: hashed,
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.UserRepo().Create(ctx, newUser)
	})
	if err != nil {
		return nil, srv.signupConflict(ctx, input, err)
	}

	srv.log(ctx).Info("User signed up", slog.Any("userID", newUser.ID))

	return newUser, nil
}

// ensureAvailable reports a conflict when the email or username already belongs to someone.
func (srv *authService) ensureAvailable(ctx context.Context, email, username string) error {
	return srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return domainerrors.ErrEmailAlreadyRegistered.WrapMessage("signup rejected")
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(err, "failed to check email")
		}

		if _, err := userRepo.FindByUsername(ctx, username); err == nil {
			return domainerrors.ErrUsernameTaken.WrapMessage("signup rejected")
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(err, "failed to check username")
		}

		return nil
	})
}

// signupConflict maps a failed insert. Two concurrent signups can both pass
// the pre-check, so the unique constraints decide the loser here.
func (srv *authService) signupConflict(ctx context.Context, input usecase.SignupInput, err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		return domainerrors.ErrEmailAlreadyRegistered.WrapMessage("signup lost a race on email")
	case errors.Is(err, repository.ErrDuplicateUsername):
		return domainerrors.ErrUsernameTaken.WrapMessage("signup lost a race on username")
	case errors.Is(err, repository.ErrDuplicateUser):
		if recheckErr := srv.ensureAvailable(ctx, input.Email, input.Username); recheckErr != nil {
			return recheckErr
		}

		return domainerrors.ErrEmailAlreadyRegistered.WrapMessage("signup lost a race")
	}

	srv.log(ctx).Error("Failed to create user", slog.Any("error", err))

	return errors.Wrap(err, "failed to create user")
}

// Login verifies the credentials and issues an access token. An unknown email
// and a wrong password return the same error.
func (srv *authService) Login(ctx context.Context, input usecase.LoginInput) (*usecase.LoginOutput, error) {
	srv.log(ctx).Debug("Starting user login", slog.String("email", input.Email))

	var user *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.UserRepo().FindByEmail(ctx, input.Email)
		if err != nil {
			return err
		}
		user = found

		return nil
	})
	if errors.Is(err, repository.ErrUserNotFound) {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.String("reason", "unknown email"))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load user for login")
	}

	if !srv.hasher.Check(input.Password, user.HashedPassword) {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.String("reason", "password mismatch"))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
	}

	token, err := srv.tokenService.IssueAccessToken(user.ID, srv.now())
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue access token")
	}

	srv.log(ctx).Debug("User logged in successfully", slog.Any("userID", user.ID))

	return &usecase.LoginOutput{
		AccessToken: token.Token,
		TokenType:   usecase.TokenTypeBearer,
		ExpiresAt:   token.ExpiresAt,
	}, nil
}

// ResolveIdentity maps a bearer token to its user.
func (srv *authService) ResolveIdentity(ctx context.Context, token string) (*entity.User, error) {
	userID, err := srv.tokenService.ParseAccessToken(token, srv.now())
	if err != nil {
		srv.log(ctx).Debug("Rejected access token", slog.Any("error", err))

		return nil, domainerrors.ErrUnauthorized.WrapMessage("invalid access token")
	}

	var user *entity.User
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.UserRepo().FindByID(ctx, userID)
		if err != nil {
			return err
		}
		user = found

		return nil
	})
	if errors.Is(err, repository.ErrUserNotFound) {
		srv.log(ctx).Debug("Access token names a deleted user", slog.Any("userID", userID))

		return nil, domainerrors.ErrUnauthorized.WrapMessage("token subject does not exist")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve identity")
	}

	return user, nil
}
