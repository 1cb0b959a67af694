package handler

import (
	"encoding/json"
	"testing"
	"time"

	"taskboard/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponsesAreUTC(t *testing.T) {
	taipei := time.FixedZone("CST", 8*60*60)
	created := time.Date(2026, 10, 15, 9, 30, 0, 0, taipei)
	due := time.Date(2026, 11, 1, 8, 0, 0, 0, taipei)

	task := &entity.Task{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Title:     "Write report",
		Status:    entity.TaskStatusPending,
		DueDate:   &due,
		CreatedAt: created,
	}

	raw, err := json.Marshal(toTaskResponse(task))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"created_at":"2026-10-15T01:30:00Z"`)
	assert.Contains(t, string(raw), `"due_date":"2026-11-01T00:00:00Z"`)
	assert.Equal(t, taipei, task.DueDate.Location(), "entity is left untouched")

	task.DueDate = nil
	raw, err = json.Marshal(toTaskResponse(task))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"due_date":null`)

	user := &entity.User{ID: uuid.New(), Email: "ann@example.com", Username: "ann", CreatedAt: created}
	raw, err = json.Marshal(toUserResponse(user))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"created_at":"2026-10-15T01:30:00Z"`)
}
