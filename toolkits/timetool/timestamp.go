// Package timetool provides the current-time tool.
package timetool

import (
	"context"
	"fmt"
	"time"

	"github.com/skosovsky/toolcall"
)

// Name is the registered name of the timestamp tool.
const Name = "get_timestamp"

// Supported formats.
const (
	FormatUnix    = "unix"
	FormatISO8601 = "iso8601"
	FormatHuman   = "human"
)

// Option configures the timestamp tool.
type Option func(*timestamp)

// WithClock replaces time.Now (tests use a fixed clock).
func WithClock(now func() time.Time) Option {
	return func(t *timestamp) { t.now = now }
}

// WithLocation sets the zone used by the iso8601 and human formats. Default is UTC.
func WithLocation(loc *time.Location) Option {
	return func(t *timestamp) { t.loc = loc }
}

// WithToolOptions passes options (timeout, tags) to the underlying tool.
func WithToolOptions(opts ...toolcall.ToolOption) Option {
	return func(t *timestamp) { t.toolOpts = append(t.toolOpts, opts...) }
}

type timestamp struct {
	now      func() time.Time
	loc      *time.Location
	toolOpts []toolcall.ToolOption
}

// New returns the "get_timestamp" tool. It answers {"timestamp", "format"}: seconds since the
// Unix epoch for "unix" (the default), RFC 3339 for "iso8601", or a readable date for "human".
func New(opts ...Option) toolcall.Tool {
	ts := &timestamp{now: time.Now, loc: time.UTC}
	for _, opt := range opts {
		opt(ts)
	}
	def := toolcall.NewDefinition(Name, "Get the current timestamp in various formats").
		WithParameter(toolcall.NewParameter("format", toolcall.TypeString).
			WithDescription("The format for the timestamp").
			WithEnum(FormatUnix, FormatISO8601, FormatHuman).
			WithDefault(FormatUnix))
	return toolcall.NewToolFunc(def, ts.execute, ts.toolOpts...)
}

func (t *timestamp) execute(_ context.Context, args toolcall.Arguments) (*toolcall.Result, error) {
	format, ok := args.String("format")
	if !ok {
		format = FormatUnix
	}
	now := t.now().In(t.loc)
	var value any
	switch format {
	case FormatUnix:
		value = now.Unix()
	case FormatISO8601:
		value = now.Format(time.RFC3339)
	case FormatHuman:
		value = now.Format("Monday, January 2, 2006 at 15:04:05 MST")
	default:
		msg := fmt.Sprintf("Unknown format: %s", format)
		return toolcall.NewErrorWithDetails(msg,
			toolcall.NewToolError(toolcall.ErrorInvalidInput, "Invalid format").WithContext("parameter", "format")), nil
	}
	return toolcall.NewSuccess(map[string]any{
		"timestamp": value,
		"format":    format,
	}), nil
}
