package impl

import (
	"context"
	"log/slog"
	"unicode/utf8"

	deliverycontext "taskboard/internal/delivery/context"
	"taskboard/internal/domain/entity"
	domainerrors "taskboard/internal/domain/errors"
	"taskboard/internal/domain/repository"
	"taskboard/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// taskService implements the TaskUsecase interface.
type taskService struct {
	txManager repository.TransactionManager
	logger    *slog.Logger
}

// TaskServiceParams holds dependencies for TaskService, injected by Fx.
type TaskServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Logger    *slog.Logger
}

// NewTaskService is the constructor for taskService.
func NewTaskService(params TaskServiceParams) usecase.TaskUsecase {
	return &taskService{
		txManager: params.TxManager,
		logger:    params.Logger,
	}
}

func (srv *taskService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateTask stores a new task owned by ownerID.
func (srv *taskService) CreateTask(ctx context.Context, ownerID uuid.UUID, input usecase.CreateTaskInput) (*entity.Task, error) {
	if err := validateTitle(input.Title); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = entity.TaskStatusPending
	}
	if !status.IsValid() {
		return nil, domainerrors.ErrInvalidTaskStatus.WrapMessage("create rejected")
	}

	task := &entity.Task{
		UserID:  ownerID,
		Title:   input.Title,
		Status:  status,
		DueDate: input.DueDate,
	}
	if input.Description != nil {
		task.Description = *input.Description
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.TaskRepo().Create(ctx, task); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUnauthorized.WrapMessage("task owner no longer exists")
			}

			return errors.Wrap(err, "failed to create task")
		}

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create task")
	}

	srv.log(ctx).Debug("Task created", slog.Any("taskID", task.ID), slog.Any("ownerID", ownerID))

	return task, nil
}

// ListTasks returns the owner's tasks, newest first.
func (srv *taskService) ListTasks(ctx context.Context, ownerID uuid.UUID, statusFilter string) ([]*entity.Task, error) {
	var filter *entity.TaskStatus
	if statusFilter != "" {
		status, ok := entity.ParseTaskStatus(statusFilter)
		if !ok {
			return nil, domainerrors.ErrInvalidTaskStatus.WrapMessage("list rejected")
		}
		filter = &status
	}

	var tasks []*entity.Task
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.TaskRepo().ListByOwner(ctx, ownerID, filter)
		if err != nil {
			return errors.Wrap(err, "failed to list tasks")
		}
		tasks = found

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tasks")
	}

	if tasks == nil {
		tasks = []*entity.Task{}
	}

	return tasks, nil
}

// GetTask returns one of the owner's tasks.
func (srv *taskService) GetTask(ctx context.Context, ownerID, taskID uuid.UUID) (*entity.Task, error) {
	var task *entity.Task

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := findTask(ctx, repoFactory.TaskRepo(), ownerID, taskID)
		if err != nil {
			return err
		}
		task = found

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get task")
	}

	return task, nil
}

// UpdateTask applies a sparse update to one of the owner's tasks.
func (srv *taskService) UpdateTask(ctx context.Context, ownerID, taskID uuid.UUID, input usecase.UpdateTaskInput) (*entity.Task, error) {
	if err := validateTaskPatch(input); err != nil {
		return nil, err
	}

	var task *entity.Task
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		taskRepo := repoFactory.TaskRepo()

		found, err := findTask(ctx, taskRepo, ownerID, taskID)
		if err != nil {
			return err
		}

		applyTaskPatch(found, input)

		if err := taskRepo.Update(ctx, found); err != nil {
			if errors.Is(err, repository.ErrTaskNotFound) {
				return domainerrors.ErrTaskNotFound.WrapMessage("task disappeared during update")
			}

			return errors.Wrap(err, "failed to update task")
		}
		task = found

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to update task")
	}

	return task, nil
}

// DeleteTask removes one of the owner's tasks.
func (srv *taskService) DeleteTask(ctx context.Context, ownerID, taskID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.TaskRepo().DeleteByIDAndOwner(ctx, taskID, ownerID); err != nil {
			if errors.Is(err, repository.ErrTaskNotFound) {
				return domainerrors.ErrTaskNotFound.WrapMessage("delete rejected")
			}

			return errors.Wrap(err, "failed to delete task")
		}

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to delete task")
	}

	srv.log(ctx).Debug("Task deleted", slog.Any("taskID", taskID), slog.Any("ownerID", ownerID))

	return nil
}

func findTask(ctx context.Context, taskRepo repository.TaskRepository, ownerID, taskID uuid.UUID) (*entity.Task, error) {
	task, err := taskRepo.FindByIDAndOwner(ctx, taskID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, domainerrors.ErrTaskNotFound.WrapMessage("task not found")
		}

		return nil, errors.Wrap(err, "failed to find task")
	}

	return task, nil
}

func validateTitle(title string) error {
	length := utf8.RuneCountInString(title)
	if length == 0 || length > entity.TaskTitleMaxLength {
		return domainerrors.ErrValidationFailed.WithDetails("title must be between 1 and 200 characters")
	}

	return nil
}

func validateTaskPatch(input usecase.UpdateTaskInput) error {
	if input.Title.IsNull() {
		return domainerrors.ErrValidationFailed.WithDetails("title must not be null")
	}
	if title, ok := input.Title.Value(); ok {
		if err := validateTitle(title); err != nil {
			return err
		}
	}

	if input.Status.IsNull() {
		return domainerrors.ErrValidationFailed.WithDetails("status must not be null")
	}
	if status, ok := input.Status.Value(); ok && !status.IsValid() {
		return domainerrors.ErrInvalidTaskStatus.WrapMessage("update rejected")
	}

	return nil
}

// applyTaskPatch copies the present fields onto task. UserID is never touched.
func applyTaskPatch(task *entity.Task, input usecase.UpdateTaskInput) {
	if title, ok := input.Title.Value(); ok {
		task.Title = title
	}

	if input.Description.IsSet() {
		description, _ := input.Description.Value()
		task.Description = description
	}

	if status, ok := input.Status.Value(); ok {
		task.Status = status
	}

	if input.DueDate.IsSet() {
		task.DueDate = input.DueDate.Ptr()
	}
}
