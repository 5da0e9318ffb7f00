package toolcall

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// toolOptions hold optional tool settings (timeout, tags).
type toolOptions struct {
	timeout time.Duration
	tags    []string
}

// ToolOption configures a tool built with NewTool or NewTypedTool.
type ToolOption func(*toolOptions)

// WithTimeout sets a per-tool timeout that overrides the executor default.
func WithTimeout(d time.Duration) ToolOption {
	return func(o *toolOptions) {
		o.timeout = d
	}
}

// WithTags sets tool tags. Each tag becomes a category membership on registration.
func WithTags(tags ...string) ToolOption {
	return func(o *toolOptions) {
		o.tags = tags
	}
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryOptions)

type registryOptions struct {
	logger zerolog.Logger
}

// WithRegistryLogger sets the logger for registration events.
func WithRegistryLogger(l zerolog.Logger) RegistryOption {
	return func(o *registryOptions) {
		o.logger = l
	}
}

// ExecutorOption configures an Executor. Options are applied once at construction.
type ExecutorOption func(*executorOptions)

type executorOptions struct {
	timeout        time.Duration
	validate       bool
	timing         bool
	applyDefaults  bool
	maxConcurrency int
	recoverPanics  bool
	logger         zerolog.Logger
	onBefore       func(context.Context, ToolCall)
	onAfter        func(context.Context, ToolCall, *Result, time.Duration)
}

func defaultExecutorOptions() executorOptions {
	return executorOptions{
		timeout:       30 * time.Second,
		validate:      true,
		timing:        true,
		recoverPanics: true,
		logger:        zerolog.Nop(),
	}
}

// WithDefaultTimeout sets the default execution timeout. Zero or negative disables it.
func WithDefaultTimeout(d time.Duration) ExecutorOption {
	return func(o *executorOptions) {
		o.timeout = d
	}
}

// WithValidation enables or disables argument validation before invocation.
func WithValidation(enable bool) ExecutorOption {
	return func(o *executorOptions) {
		o.validate = enable
	}
}

// WithTiming enables or disables the execution_time_ms metadata entry.
func WithTiming(enable bool) ExecutorOption {
	return func(o *executorOptions) {
		o.timing = enable
	}
}

// WithApplyDefaults fills omitted optional parameters with their declared default before invocation.
func WithApplyDefaults(enable bool) ExecutorOption {
	return func(o *executorOptions) {
		o.applyDefaults = enable
	}
}

// WithMaxConcurrency limits concurrent tool executions (semaphore).
// Pass 0 or negative to disable the semaphore (unlimited concurrency).
func WithMaxConcurrency(n int) ExecutorOption {
	return func(o *executorOptions) {
		o.maxConcurrency = n
	}
}

// WithRecoverPanics enables panic recovery (an Internal Error result instead of a crash).
func WithRecoverPanics(enable bool) ExecutorOption {
	return func(o *executorOptions) {
		o.recoverPanics = enable
	}
}

// WithLogger sets the executor logger.
func WithLogger(l zerolog.Logger) ExecutorOption {
	return func(o *executorOptions) {
		o.logger = l
	}
}

// WithOnBeforeExecute sets a hook called before each tool invocation (after validation).
func WithOnBeforeExecute(fn func(context.Context, ToolCall)) ExecutorOption {
	return func(o *executorOptions) {
		o.onBefore = fn
	}
}

// WithOnAfterExecute sets a hook called with every result the executor returns.
func WithOnAfterExecute(fn func(context.Context, ToolCall, *Result, time.Duration)) ExecutorOption {
	return func(o *executorOptions) {
		o.onAfter = fn
	}
}
