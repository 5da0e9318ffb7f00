package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/skosovsky/toolcall"
)

// NewTestRegistry returns a Registry holding tools. Registration failures fail the test.
func NewTestRegistry(t testing.TB, tools ...toolcall.Tool) *toolcall.Registry {
	t.Helper()
	reg := toolcall.NewRegistry()
	for _, tool := range tools {
		require.NoError(t, reg.Register(tool))
	}
	return reg
}

// NewTestExecutor returns an Executor over tools with a long timeout and panic recovery,
// suitable for tests. Extra options are applied after the defaults.
func NewTestExecutor(t testing.TB, tools []toolcall.Tool, opts ...toolcall.ExecutorOption) *toolcall.Executor {
	t.Helper()
	base := []toolcall.ExecutorOption{
		toolcall.WithDefaultTimeout(30 * time.Second),
		toolcall.WithRecoverPanics(true),
	}
	return toolcall.NewExecutor(NewTestRegistry(t, tools...), append(base, opts...)...)
}
