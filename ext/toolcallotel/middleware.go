// Package toolcallotel traces tool executions with OpenTelemetry.
package toolcallotel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/skosovsky/toolcall"
)

const tracerName = "github.com/skosovsky/toolcall"

// Middleware returns a registry middleware that wraps each execution in a span named
// "tool.execute <name>". Error results set the span status to Error and record the error type.
func Middleware(tp trace.TracerProvider) toolcall.Middleware {
	tracer := tp.Tracer(tracerName)
	return func(next toolcall.Tool) toolcall.Tool {
		return &tracedTool{next: next, tracer: tracer}
	}
}

type tracedTool struct {
	next   toolcall.Tool
	tracer trace.Tracer
}

func (t *tracedTool) Definition() *toolcall.Definition { return t.next.Definition() }

func (t *tracedTool) Timeout() time.Duration {
	if tm, ok := t.next.(toolcall.ToolMetadata); ok {
		return tm.Timeout()
	}
	return 0
}

func (t *tracedTool) Tags() []string {
	if tm, ok := t.next.(toolcall.ToolMetadata); ok {
		return tm.Tags()
	}
	return nil
}

func (t *tracedTool) Execute(ctx context.Context, args toolcall.Arguments) (*toolcall.Result, error) {
	name := t.next.Definition().Name
	ctx, span := t.tracer.Start(ctx, "tool.execute "+name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("tool.name", name),
			attribute.Int("tool.args.count", len(args)),
		))
	defer span.End()

	res, err := t.next.Execute(ctx, args)
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case res == nil:
		span.SetStatus(codes.Error, "tool returned no result")
	case res.IsError():
		if res.ErrorDetails != nil {
			span.SetAttributes(
				attribute.String("tool.error_type", res.ErrorDetails.Type.String()),
				attribute.Bool("tool.retryable", res.ErrorDetails.Retryable),
			)
		}
		span.SetStatus(codes.Error, res.Error)
	default:
		span.SetAttributes(attribute.String("tool.status", res.Status.String()))
		span.SetStatus(codes.Ok, "")
	}
	return res, err
}

var (
	_ toolcall.Tool         = (*tracedTool)(nil)
	_ toolcall.ToolMetadata = (*tracedTool)(nil)
)
