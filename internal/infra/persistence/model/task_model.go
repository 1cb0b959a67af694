package model

import (
	"time"

	"github.com/google/uuid"
)

// TaskModel mirrors the 'tasks' table.
type TaskModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_tasks_user_id_created_at,priority:1"`
	Title       string     `gorm:"type:varchar(200);not null"`
	Description string     `gorm:"type:text;not null;default:''"`
	Status      string     `gorm:"type:varchar(20);not null;default:'pending'"`
	DueDate     *time.Time `gorm:"type:timestamptz"`
	CreatedAt   time.Time  `gorm:"index:idx_tasks_user_id_created_at,priority:2,sort:desc"`
	UpdatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (TaskModel) TableName() string {
	return "tasks"
}
