package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTaskStatus(t *testing.T) {
	tests := []struct {
		input string
		want  TaskStatus
		ok    bool
	}{
		{input: "pending", want: TaskStatusPending, ok: true},
		{input: "in-progress", want: TaskStatusInProgress, ok: true},
		{input: "completed", want: TaskStatusCompleted, ok: true},
		{input: "done", ok: false},
		{input: "Pending", ok: false},
		{input: "in_progress", ok: false},
		{input: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseTaskStatus(tt.input)

			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestTaskStatusList(t *testing.T) {
	assert.Equal(t, "pending, in-progress, completed", TaskStatusList())
}
