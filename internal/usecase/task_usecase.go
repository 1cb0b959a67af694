package usecase

import (
	"context"
	"time"

	"taskboard/internal/domain/entity"
	"taskboard/internal/util"

	"github.com/google/uuid"
)

// TaskUsecase defines task operations. Every call is scoped to ownerID, and a
// task owned by someone else is indistinguishable from a missing one.
type TaskUsecase interface {
	CreateTask(ctx context.Context, ownerID uuid.UUID, input CreateTaskInput) (*entity.Task, error)

	// ListTasks returns the owner's tasks newest first. An empty statusFilter lists all.
	ListTasks(ctx context.Context, ownerID uuid.UUID, statusFilter string) ([]*entity.Task, error)

	GetTask(ctx context.Context, ownerID, taskID uuid.UUID) (*entity.Task, error)
	UpdateTask(ctx context.Context, ownerID, taskID uuid.UUID, input UpdateTaskInput) (*entity.Task, error)
	DeleteTask(ctx context.Context, ownerID, taskID uuid.UUID) error
}

// --- Input DTOs ---

// CreateTaskInput defines a new task. Description defaults to "" and status to pending.
type CreateTaskInput struct {
	Title       string
	Description *string
	Status      entity.TaskStatus
	DueDate     *time.Time
}

// UpdateTaskInput is a sparse update: absent fields are left untouched.
// A null Description clears it to "", a null DueDate removes the due date,
// and a null Title or Status is rejected.
type UpdateTaskInput struct {
	Title       util.Optional[string]
	Description util.Optional[string]
	Status      util.Optional[entity.TaskStatus]
	DueDate     util.Optional[time.Time]
}
