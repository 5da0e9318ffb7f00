package toolcall

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Middleware wraps a Tool with cross-cutting behavior (logging, recovery, timeout).
type Middleware func(Tool) Tool

// WithLogging returns a middleware that logs start, end, duration, and failures.
func WithLogging(logger zerolog.Logger) Middleware {
	return func(next Tool) Tool {
		return &loggingTool{toolBase: toolBase{next: next}, logger: logger}
	}
}

// WithRecovery returns a middleware that turns panics into Internal Error results.
func WithRecovery() Middleware {
	return func(next Tool) Tool {
		return &recoveryTool{toolBase{next: next}}
	}
}

// WithTimeoutMiddleware returns a middleware that enforces a per-tool timeout (overrides the
// executor default for this tool). Named with "Middleware" suffix to avoid collision with
// ToolOption WithTimeout. When both apply, the shorter deadline wins.
func WithTimeoutMiddleware(d time.Duration) Middleware {
	return func(next Tool) Tool {
		return &timeoutTool{toolBase: toolBase{next: next}, timeout: d}
	}
}

// toolBase delegates Tool and ToolMetadata to the wrapped Tool; used by middleware wrappers.
type toolBase struct{ next Tool }

func (b *toolBase) Definition() *Definition { return b.next.Definition() }

func (b *toolBase) Timeout() time.Duration {
	if tm, ok := b.next.(ToolMetadata); ok {
		return tm.Timeout()
	}
	return 0
}

func (b *toolBase) Tags() []string {
	if tm, ok := b.next.(ToolMetadata); ok {
		return tm.Tags()
	}
	return nil
}

type loggingTool struct {
	toolBase
	logger zerolog.Logger
}

func (m *loggingTool) Execute(ctx context.Context, args Arguments) (*Result, error) {
	name := m.next.Definition().Name
	m.logger.Info().Str("tool", name).Msg("tool start")
	start := time.Now()
	res, err := m.next.Execute(ctx, args)
	dur := time.Since(start)
	switch {
	case err != nil:
		m.logger.Error().Str("tool", name).Dur("duration", dur).Err(err).Msg("tool error")
	case res != nil && res.IsError():
		m.logger.Warn().Str("tool", name).Dur("duration", dur).Str("error", res.Error).Msg("tool returned error result")
	default:
		m.logger.Info().Str("tool", name).Dur("duration", dur).Msg("tool end")
	}
	return res, err
}

type recoveryTool struct{ toolBase }

func (r *recoveryTool) Execute(ctx context.Context, args Arguments) (res *Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			res = panicResult(p)
			err = nil
		}
	}()
	return r.next.Execute(ctx, args)
}

func panicResult(p any) *Result {
	pe := &panicError{p: p}
	return NewErrorWithDetails("tool panicked", NewToolError(ErrorInternal, "tool panicked").WithCause(pe.Error()))
}

type timeoutTool struct {
	toolBase
	timeout time.Duration
}

func (t *timeoutTool) Timeout() time.Duration {
	if t.timeout > 0 {
		return t.timeout
	}
	return t.toolBase.Timeout()
}

func (t *timeoutTool) Execute(ctx context.Context, args Arguments) (*Result, error) {
	if t.timeout <= 0 {
		return t.next.Execute(ctx, args)
	}
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Execute(ctx, args)
}

// Use stores the given middlewares and reapplies them from scratch to all registered tools (onion order:
// first middleware is outermost). Tools registered after Use will also get these middlewares applied.
// Calling Use multiple times replaces the middleware chain and rewraps from raw tools, avoiding double-wrapping.
func (r *Registry) Use(middlewares ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middlewares = middlewares
	for _, e := range r.tools {
		e.tool = r.wrap(e.raw)
	}
}
