// Package testutil provides test helpers for toolcall (e.g. MockTool).
package testutil

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/skosovsky/toolcall"
)

// MockTool is a configurable Tool implementation for tests.
type MockTool struct {
	Def        *toolcall.Definition
	ExecuteFn  func(ctx context.Context, args toolcall.Arguments) (*toolcall.Result, error)
	TimeoutVal time.Duration
	TagsVal    []string

	calls atomic.Int64
}

// NewMockTool returns a MockTool named name with no parameters that succeeds with data.
func NewMockTool(name string, data any) *MockTool {
	return &MockTool{
		Def: toolcall.NewDefinition(name, "Mock tool "+name),
		ExecuteFn: func(context.Context, toolcall.Arguments) (*toolcall.Result, error) {
			return toolcall.NewSuccess(data), nil
		},
	}
}

// Definition returns Def, or a parameterless "mock" definition when Def is nil.
func (m *MockTool) Definition() *toolcall.Definition {
	if m.Def != nil {
		return m.Def
	}
	return toolcall.NewDefinition("mock", "Mock tool")
}

// Execute runs ExecuteFn if set, otherwise returns an empty Success result.
func (m *MockTool) Execute(ctx context.Context, args toolcall.Arguments) (*toolcall.Result, error) {
	m.calls.Add(1)
	if m.ExecuteFn != nil {
		return m.ExecuteFn(ctx, args)
	}
	return toolcall.NewSuccess(nil), nil
}

// Calls returns how many times Execute ran.
func (m *MockTool) Calls() int64 { return m.calls.Load() }

func (m *MockTool) Timeout() time.Duration { return m.TimeoutVal }
func (m *MockTool) Tags() []string         { return m.TagsVal }

var (
	_ toolcall.Tool         = (*MockTool)(nil)
	_ toolcall.ToolMetadata = (*MockTool)(nil)
)
