package toolcall

import (
	"errors"
	"fmt"
)

// Sentinel errors for toolcall. Use errors.Is to check.
var (
	ErrConfig            = errors.New("configuration error")
	ErrToolNotFound      = errors.New("tool not found")
	ErrDuplicateTool     = errors.New("tool already registered")
	ErrInvalidDefinition = errors.New("invalid tool definition")
	ErrValidation        = errors.New("validation failed")
	ErrTimeout           = errors.New("tool execution timeout")
	ErrShutdown          = errors.New("executor is shutting down")
)

// ConfigError is a setup or programming mistake reported to the immediate caller
// (bad tool name, duplicate registration, unknown tool). It always matches ErrConfig
// and optionally wraps a more specific sentinel (e.g. ErrToolNotFound).
type ConfigError struct {
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Reason
}

// Unwrap supports errors.Is/errors.As on the wrapped sentinel.
func (e *ConfigError) Unwrap() error { return e.Err }

// Is reports every ConfigError as ErrConfig.
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

func configErrorf(sentinel error, format string, args ...any) error {
	return &ConfigError{Reason: fmt.Sprintf(format, args...), Err: sentinel}
}

// InternalError represents a failure of the subsystem itself rather than of the caller.
type InternalError struct {
	Err error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return "internal error"
	}
	return "internal error: " + e.Err.Error()
}

func (e *InternalError) Unwrap() error { return e.Err }

// ValidationError describes the first argument that failed validation against a Definition.
// Parameter is empty when the failure concerns the arguments container itself.
type ValidationError struct {
	Parameter string
	Reason    string
}

func (e *ValidationError) Error() string { return e.Reason }

// Is makes errors.Is(err, ErrValidation) hold for every ValidationError.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// IsConfigError returns true if err is or wraps a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsInternalError returns true if err is or wraps an InternalError.
func IsInternalError(err error) bool {
	var ie *InternalError
	return errors.As(err, &ie)
}

// panicError wraps a recovered panic value; used by Executor and the WithRecovery middleware.
type panicError struct{ p any }

func (e *panicError) Error() string {
	return "panic: " + fmt.Sprint(e.p)
}
