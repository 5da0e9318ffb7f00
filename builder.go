package toolcall

import (
	"context"
	"time"
)

// Handler executes the logic of a tool built with NewTool.
type Handler interface {
	Handle(ctx context.Context, args Arguments) (*Result, error)
}

// HandlerFunc adapts an ordinary function to Handler.
type HandlerFunc func(ctx context.Context, args Arguments) (*Result, error)

func (f HandlerFunc) Handle(ctx context.Context, args Arguments) (*Result, error) {
	return f(ctx, args)
}

// tool is the Tool built by NewTool and NewTypedTool: a definition plus a delegate.
type tool struct {
	def     *Definition
	handler Handler
	opts    toolOptions
}

// NewTool builds a Tool from a definition and a handler so simple tools need not implement
// the Tool interface themselves. The definition is copied; it is validated when the tool is
// registered, not here.
func NewTool(def *Definition, h Handler, opts ...ToolOption) Tool {
	var o toolOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &tool{def: def.Clone(), handler: h, opts: o}
}

// NewToolFunc is NewTool for a plain function.
func NewToolFunc(def *Definition, fn func(ctx context.Context, args Arguments) (*Result, error), opts ...ToolOption) Tool {
	return NewTool(def, HandlerFunc(fn), opts...)
}

func (t *tool) Definition() *Definition { return t.def }

func (t *tool) Execute(ctx context.Context, args Arguments) (*Result, error) {
	if t.handler == nil {
		return NewErrorWithDetails("tool has no handler", NewToolError(ErrorInternal, "tool has no handler")), nil
	}
	return t.handler.Handle(ctx, args)
}

func (t *tool) Timeout() time.Duration { return t.opts.timeout }
func (t *tool) Tags() []string         { return append([]string(nil), t.opts.tags...) }

var (
	_ Tool         = (*tool)(nil)
	_ ToolMetadata = (*tool)(nil)
)
