package toolcall

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigError(t *testing.T) {
	err := configErrorf(ErrToolNotFound, "Tool '%s' not found", "x")
	assert.Equal(t, "configuration error: Tool 'x' not found", err.Error())
	assert.ErrorIs(t, err, ErrConfig)
	assert.ErrorIs(t, err, ErrToolNotFound)
	assert.NotErrorIs(t, err, ErrDuplicateTool)
	assert.True(t, IsConfigError(err))
	assert.True(t, IsConfigError(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsInternalError(err))

	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Tool 'x' not found", ce.Reason)
}

func TestInternalError(t *testing.T) {
	cause := errors.New("lock poisoned")
	err := &InternalError{Err: cause}
	assert.Equal(t, "internal error: lock poisoned", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsInternalError(err))
	assert.False(t, IsConfigError(err))
	assert.Equal(t, "internal error", (&InternalError{}).Error())
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Parameter: "b", Reason: "parameter 'b' must be one of: [x y]"}
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "parameter 'b' must be one of: [x y]", err.Error())
}

func TestPanicError(t *testing.T) {
	assert.Equal(t, "panic: oops", (&panicError{p: "oops"}).Error())
	assert.Equal(t, "panic: 42", (&panicError{p: 42}).Error())
}
