package toolcall

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Metadata keys attached by Executor.
const (
	MetadataExecutionTime = "execution_time_ms"
	MetadataCallID        = "call_id"
)

// Executor validates arguments, runs tools under a time bound, and annotates results.
// Its configuration is fixed at construction. It is safe for concurrent use.
type Executor struct {
	registry *Registry
	opts     executorOptions
	sem      chan struct{}
	done     chan struct{}
	mu       sync.Mutex
	running  sync.WaitGroup
}

// NewExecutor creates an Executor over reg. Defaults: 30s timeout, validation on, timing on,
// panic recovery on, unlimited concurrency.
func NewExecutor(reg *Registry, opts ...ExecutorOption) *Executor {
	o := defaultExecutorOptions()
	for _, opt := range opts {
		opt(&o)
	}
	var sem chan struct{}
	if o.maxConcurrency > 0 {
		sem = make(chan struct{}, o.maxConcurrency)
	}
	return &Executor{
		registry: reg,
		opts:     o,
		sem:      sem,
		done:     make(chan struct{}),
	}
}

// Registry returns the registry the executor runs tools from.
func (e *Executor) Registry() *Registry { return e.registry }

// HasTool reports whether the named tool is registered.
func (e *Executor) HasTool(name string) bool { return e.registry.HasTool(name) }

// AvailableTools returns the registered tool names, sorted.
func (e *Executor) AvailableTools() []string { return e.registry.Names() }

// Execute runs the named tool with already-decoded arguments.
//
// An unknown tool is a call-level ConfigError wrapping ErrToolNotFound; after Shutdown the
// error is ErrShutdown. Every other outcome, including validation failures, timeouts, tool
// errors and recovered panics, is returned as a Result with a nil error.
func (e *Executor) Execute(ctx context.Context, toolName string, args Arguments) (*Result, error) {
	start := time.Now()
	call := ToolCall{ID: uuid.NewString(), ToolName: toolName}
	var in any = args
	if args == nil {
		in = Arguments{}
	}
	return e.run(ctx, call, in, nil, start, false)
}

// ExecuteCall runs a call whose arguments are raw JSON, as produced by a model. Invalid JSON or
// a payload that is not an object yields an InvalidInput result. The call ID (generated when
// empty) is attached to the result metadata.
func (e *Executor) ExecuteCall(ctx context.Context, call ToolCall) (*Result, error) {
	start := time.Now()
	if call.ID == "" {
		call.ID = uuid.NewString()
	}
	args, err := decodeArguments(call.Args)
	return e.run(ctx, call, args, err, start, true)
}

// BatchResult is the outcome of one call in ExecuteBatch.
type BatchResult struct {
	Call   ToolCall
	Result *Result
	Err    error
}

// ExecuteBatch runs all calls in parallel and returns their outcomes in input order.
// One failing call does not affect the others.
func (e *Executor) ExecuteBatch(ctx context.Context, calls []ToolCall) []BatchResult {
	out := make([]BatchResult, len(calls))
	var g errgroup.Group
	if e.opts.maxConcurrency > 0 {
		g.SetLimit(e.opts.maxConcurrency)
	}
	for i, call := range calls {
		if call.ID == "" {
			call.ID = uuid.NewString()
		}
		g.Go(func() error {
			res, err := e.ExecuteCall(ctx, call)
			out[i] = BatchResult{Call: call, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Shutdown closes the executor for new calls and waits for in-flight executions or ctx to cancel.
func (e *Executor) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	select {
	case <-e.done:
		e.mu.Unlock()
		return nil
	default:
		close(e.done)
	}
	e.mu.Unlock()
	done := make(chan struct{})
	go func() {
		e.running.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Executor) enter() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	select {
	case <-e.done:
		return ErrShutdown
	default:
	}
	e.running.Add(1)
	return nil
}

func (e *Executor) run(ctx context.Context, call ToolCall, args any, parseErr error, start time.Time, withCallID bool) (*Result, error) {
	logger := e.opts.logger.With().Str("tool", call.ToolName).Str("call_id", call.ID).Logger()

	entry, ok, err := e.registry.lookup(call.ToolName)
	if err != nil {
		logger.Error().Err(err).Msg("registry lookup failed")
		return nil, err
	}
	if !ok {
		logger.Error().Msg("tool not found")
		return nil, configErrorf(ErrToolNotFound, "Tool '%s' not found", call.ToolName)
	}
	if err := e.enter(); err != nil {
		return nil, err
	}
	defer e.running.Done()

	var res *Result
	obj, isObject := asObject(args)
	switch {
	case parseErr != nil:
		res = invalidInputResult(&ValidationError{Reason: "json parse error: " + parseErr.Error()})
	case e.opts.validate:
		if err := validateCompiled(entry.schema, args); err != nil {
			res = invalidInputResult(err)
		}
	case !isObject:
		res = invalidInputResult(&ValidationError{Reason: "arguments must be a JSON object"})
	}
	if res != nil {
		logger.Warn().Str("error", res.Error).Msg("parameter validation failed")
		return e.finish(ctx, call, res, start, withCallID, logger), nil
	}

	toolArgs := Arguments(obj)
	if e.opts.applyDefaults {
		toolArgs = entry.def.applyDefaults(toolArgs)
	}
	if entry.def.Deprecated {
		logger.Warn().Msg("executing deprecated tool")
	}
	if e.opts.onBefore != nil {
		e.opts.onBefore(ctx, call)
	}
	res = e.invoke(ctx, entry.tool, toolArgs, logger)
	return e.finish(ctx, call, res, start, withCallID, logger), nil
}

// invoke runs the looked-up tool in its own goroutine and races it against the timeout, so
// the caller is released at the deadline even if the tool ignores ctx.
func (e *Executor) invoke(ctx context.Context, t Tool, args Arguments, logger zerolog.Logger) *Result {
	if err := e.acquireSemaphore(ctx); err != nil {
		return ResultFromError(err)
	}
	defer e.releaseSemaphore()

	timeout := e.opts.timeout
	if tm, ok := t.(ToolMetadata); ok && tm.Timeout() > 0 {
		timeout = tm.Timeout()
	}
	// limit is the bound that actually applies: the caller's deadline when it comes first.
	limit := timeout
	if dl, ok := ctx.Deadline(); ok {
		if remaining := max(time.Until(dl), 0); timeout <= 0 || remaining < timeout {
			limit = remaining
		}
	}
	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	done := make(chan *Result, 1)
	logger.Debug().Dur("timeout", limit).Msg("executing tool")
	go func() {
		if e.opts.recoverPanics {
			defer func() {
				if p := recover(); p != nil {
					logger.Error().Interface("panic", p).Msg("tool panicked")
					done <- panicResult(p)
				}
			}()
		}
		done <- callTool(runCtx, t, args)
	}()

	select {
	case res := <-done:
		// A tool that honors ctx can return before Done is observed here.
		if res.IsError() && errors.Is(runCtx.Err(), context.DeadlineExceeded) &&
			!errors.Is(ctx.Err(), context.Canceled) {
			logger.Warn().Dur("timeout", limit).Msg("tool execution timeout")
			return timeoutResult(limit)
		}
		return res
	case <-runCtx.Done():
		if err := ctx.Err(); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			logger.Warn().Err(err).Msg("tool execution cancelled")
			return ResultFromError(err)
		}
		logger.Warn().Dur("timeout", limit).Msg("tool execution timeout")
		return timeoutResult(limit)
	}
}

func (e *Executor) finish(ctx context.Context, call ToolCall, res *Result, start time.Time, withCallID bool, logger zerolog.Logger) *Result {
	res = res.clone()
	elapsed := time.Since(start)
	if e.opts.timing {
		res.Metadata[MetadataExecutionTime] = elapsed.Milliseconds()
	}
	if withCallID {
		res.Metadata[MetadataCallID] = call.ID
	}
	logger.Debug().Stringer("status", res.Status).Dur("duration", elapsed).Msg("tool execution completed")
	if e.opts.onAfter != nil {
		e.opts.onAfter(ctx, call, res, elapsed)
	}
	return res
}

func (e *Executor) acquireSemaphore(ctx context.Context) error {
	if e.sem == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	select {
	case e.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Executor) releaseSemaphore() {
	if e.sem != nil {
		<-e.sem
	}
}

func invalidInputResult(err error) *Result {
	details := NewToolError(ErrorInvalidInput, err.Error())
	var ve *ValidationError
	if errors.As(err, &ve) && ve.Parameter != "" {
		details.WithContext("parameter", ve.Parameter)
	}
	return NewErrorWithDetails("parameter validation failed: "+err.Error(), details)
}

func timeoutResult(timeout time.Duration) *Result {
	msg := fmt.Sprintf("tool execution timeout after %v", timeout)
	return NewErrorWithDetails(msg,
		NewToolError(ErrorTimeout, msg).
			WithCause(ErrTimeout.Error()).
			WithContext("timeout_ms", timeout.Milliseconds()).
			AsRetryable())
}

// decodeArguments parses raw call arguments. Empty input and JSON null mean no arguments.
func decodeArguments(raw json.RawMessage) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Arguments{}, nil
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return nil, err
	}
	if m, ok := v.(map[string]any); ok {
		return Arguments(m), nil
	}
	return v, nil
}
