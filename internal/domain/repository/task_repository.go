package repository

import (
	"context"
	"errors"

	"taskboard/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrTaskNotFound is returned when no task matches both the id and the owner.
var ErrTaskNotFound = errors.New("task not found")

// TaskRepository persists tasks. Every read and write is scoped to an owner.
type TaskRepository interface {
	Create(ctx context.Context, task *entity.Task) error

	// FindByIDAndOwner returns ErrTaskNotFound for missing tasks and for tasks owned by someone else.
	FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*entity.Task, error)

	// ListByOwner returns the owner's tasks newest first, optionally filtered by status.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, status *entity.TaskStatus) ([]*entity.Task, error)

	// Update writes title, description, status and due date. The owner is never changed.
	Update(ctx context.Context, task *entity.Task) error

	DeleteByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) error

	// DeleteByOwner removes every task of the owner and returns how many were removed.
	DeleteByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
}
