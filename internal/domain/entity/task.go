package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the workflow state of a Task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

const (
	// TaskTitleMaxLength is the maximum number of characters in a title.
	TaskTitleMaxLength = 200
)

// TaskStatuses lists every valid status in display order.
func TaskStatuses() []TaskStatus {
	return []TaskStatus{TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted}
}

// ParseTaskStatus returns the status named by s, or false when s is not a valid status.
func ParseTaskStatus(s string) (TaskStatus, bool) {
	status := TaskStatus(s)

	return status, status.IsValid()
}

// IsValid reports whether s is one of the known statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

func (s TaskStatus) String() string {
	return string(s)
}

// TaskStatusList renders the valid statuses as "pending, in-progress, completed".
func TaskStatusList() string {
	statuses := TaskStatuses()
	names := make([]string, 0, len(statuses))
	for _, status := range statuses {
		names = append(names, status.String())
	}

	return strings.Join(names, ", ")
}

// Task is a unit of work owned by a single User.
// UserID is fixed at creation and never reassigned.
type Task struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Title       string
	Description string
	Status      TaskStatus
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
