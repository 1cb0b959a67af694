package impl

import (
	"context"
	"log/slog"

	deliverycontext "taskboard/internal/delivery/context"
	"taskboard/internal/domain/entity"
	domainerrors "taskboard/internal/domain/errors"
	"taskboard/internal/domain/repository"
	"taskboard/internal/domain/service"
	"taskboard/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// profileService implements the ProfileUsecase interface.
type profileService struct {
	txManager repository.TransactionManager
	hasher    service.PasswordHasher
	logger    *slog.Logger
}

// ProfileServiceParams holds dependencies for ProfileService, injected by Fx.
type ProfileServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Hasher    service.PasswordHasher
	Logger    *slog.Logger
}

// NewProfileService is the constructor for profileService.
func NewProfileService(params ProfileServiceParams) usecase.ProfileUsecase {
	return &profileService{
		txManager: params.TxManager,
		hasher:    params.Hasher,
		logger:    params.Logger,
	}
}

func (srv *profileService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetProfile retrieves the user's account.
func (srv *profileService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	var user *entity.User

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := findUser(ctx, repoFactory.UserRepo(), userID)
		if err != nil {
			return err
		}
		user = found

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user profile")
	}

	return user, nil
}

// UpdateProfile applies the present fields. Email and username must stay unique.
func (srv *profileService) UpdateProfile(ctx context.Context, userID uuid.UUID, input usecase.UpdateProfileInput) (*entity.User, error) {
	srv.log(ctx).Info("Updating user profile", slog.Any("userID", userID))

	var hashed string
	if input.Password != nil {
		var err error
		if hashed, err = srv.hasher.Hash(*input.Password); err != nil {
			srv.log(ctx).Error("Failed to hash password", slog.Any("error", err))

			return nil, domainerrors.ErrPasswordHashFailed.WrapMessage(err.Error())
		}
	}

	var updated *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		user, err := findUser(ctx, userRepo, userID)
		if err != nil {
			return err
		}

		emailChanged := input.Email != nil && *input.Email != user.Email
		if emailChanged {
			if err := ensureNotTaken(ctx, userRepo.FindByEmail, *input.Email, user.ID, domainerrors.ErrEmailInUse); err != nil {
				return err
			}
			user.Email = *input.Email
		}

		if input.Username != nil && *input.Username != user.Username {
			if err := ensureNotTaken(ctx, userRepo.FindByUsername, *input.Username, user.ID, domainerrors.ErrUsernameTaken); err != nil {
				return err
			}
			user.Username = *input.Username
		}

		if hashed != "" {
			user.HashedPassword = hashed
		}

		if err := userRepo.Update(ctx, user); err != nil {
			return mapProfileWriteError(err, emailChanged)
		}
		updated = user

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to update user profile")
	}

	return updated, nil
}

// DeleteAccount removes the user's tasks and then the user in one transaction.
func (srv *profileService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	srv.log(ctx).Info("Deleting user account", slog.Any("userID", userID))

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		removed, err := repoFactory.TaskRepo().DeleteByOwner(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to delete tasks")
		}

		if err := repoFactory.UserRepo().Delete(ctx, userID); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound.WrapMessage("account already deleted")
			}

			return errors.Wrap(err, "failed to delete user")
		}

		srv.log(ctx).Debug("Deleted user tasks", slog.Any("userID", userID), slog.Int64("tasks", removed))

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to delete account")
	}

	return nil
}

func findUser(ctx context.Context, userRepo repository.UserRepository, userID uuid.UUID) (*entity.User, error) {
	user, err := userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound.WrapMessage("user not found")
		}

		return nil, errors.Wrap(err, "failed to find user")
	}

	return user, nil
}

// ensureNotTaken fails with conflict when value belongs to a user other than self.
func ensureNotTaken(
	ctx context.Context,
	find func(context.Context, string) (*entity.User, error),
	value string,
	self uuid.UUID,
	conflict *domainerrors.BaseError,
) error {
	other, err := find(ctx, value)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to check uniqueness")
	}
	if other.ID != self {
		return conflict.WrapMessage("profile update rejected")
	}

	return nil
}

// mapProfileWriteError turns a unique violation on update into the matching conflict.
// A violation without constraint detail is attributed to the email when it changed.
func mapProfileWriteError(err error, emailChanged bool) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		return domainerrors.ErrEmailInUse.WrapMessage("profile update lost a race on email")
	case errors.Is(err, repository.ErrDuplicateUsername):
		return domainerrors.ErrUsernameTaken.WrapMessage("profile update lost a race on username")
	case errors.Is(err, repository.ErrDuplicateUser):
		if emailChanged {
			return domainerrors.ErrEmailInUse.WrapMessage("profile update lost a race")
		}

		return domainerrors.ErrUsernameTaken.WrapMessage("profile update lost a race")
	case errors.Is(err, repository.ErrUserNotFound):
		return domainerrors.ErrUserNotFound.WrapMessage("user not found")
	}

	return errors.Wrap(err, "failed to update user")
}
