package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type codedError struct{ code string }

func (e *codedError) Error() string { return e.code }

func TestWrapKeepsTreeReachable(t *testing.T) {
	base := &codedError{code: "TASK_NOT_FOUND"}

	wrapped := Wrapf(WithStack(base), "load task %d", 7)

	assert.True(t, Is(wrapped, base))
	var target *codedError
	assert.True(t, As(wrapped, &target))
	assert.Equal(t, "TASK_NOT_FOUND", target.code)
	assert.Equal(t, "load task 7: TASK_NOT_FOUND", wrapped.Error())
}

func TestNilPassthrough(t *testing.T) {
	assert.NoError(t, Wrap(nil, "ignored"))
	assert.NoError(t, WithStack(nil))
	assert.NoError(t, Join(nil, nil))
}

func TestNewCarriesStack(t *testing.T) {
	err := New("boom")

	assert.Equal(t, "boom", err.Error())
	assert.Contains(t, fmt.Sprintf("%+v", err), "TestNewCarriesStack")
}
