package toolcall

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStub(name string, opts ...ToolOption) Tool {
	return NewToolFunc(NewDefinition(name, "Stub "+name), func(_ context.Context, _ Arguments) (*Result, error) {
		return NewSuccess(map[string]any{"tool": name}), nil
	}, opts...)
}

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()
	assert.True(t, reg.IsEmpty())
	require.NoError(t, reg.Register(newStub("alpha")))
	require.NoError(t, reg.Register(newStub("beta")))

	assert.Equal(t, 2, reg.Len())
	assert.False(t, reg.IsEmpty())
	assert.True(t, reg.HasTool("alpha"))
	assert.False(t, reg.HasTool("gamma"))
	assert.Equal(t, []string{"alpha", "beta"}, reg.Names())

	def, ok := reg.Definition("alpha")
	require.True(t, ok)
	assert.Equal(t, "Stub alpha", def.Description)
	_, ok = reg.Definition("gamma")
	assert.False(t, ok)
}

func TestRegistry_Register_Duplicate(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(newStub("dup")))
	err := reg.Register(newStub("dup"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateTool)
	assert.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "tool with name 'dup' is already registered")
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_Register_Invalid(t *testing.T) {
	reg := NewRegistry()
	tests := []struct {
		name string
		tool Tool
	}{
		{"nil tool", nil},
		{"nil definition", &stubTool{}},
		{"bad name", newStub("Bad-Name")},
		{"empty description", &stubTool{def: NewDefinition("ok_name", "")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reg.Register(tt.tool)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidDefinition)
		})
	}
	assert.True(t, reg.IsEmpty(), "failed registrations must not mutate the registry")
}

func TestRegistry_Register_ConcurrentSameName(t *testing.T) {
	reg := NewRegistry()
	const workers = 32
	var ok atomic.Int32
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if reg.Register(newStub("race")) == nil {
				ok.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, ok.Load())
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_Definition_IsCopy(t *testing.T) {
	def := NewDefinition("copy", "Copy check").WithParameter(NewParameter("a", TypeString))
	reg := NewRegistry()
	require.NoError(t, reg.Register(&stubTool{def: def}))

	def.Description = "mutated after registration"
	got, _ := reg.Definition("copy")
	assert.Equal(t, "Copy check", got.Description)

	got.Parameters["b"] = NewParameter("b", TypeString)
	again, _ := reg.Definition("copy")
	assert.NotContains(t, again.Parameters, "b")
}

func TestRegistry_Unregister(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(newStub("a")))
	require.NoError(t, reg.Register(newStub("b")))
	require.NoError(t, reg.AddToCategory("letters", "a"))
	require.NoError(t, reg.AddToCategory("letters", "b"))
	require.NoError(t, reg.AddToCategory("first", "a"))

	assert.True(t, reg.Unregister("a"))
	assert.False(t, reg.Unregister("a"))
	assert.False(t, reg.HasTool("a"))
	assert.Equal(t, []string{"b"}, reg.ToolsInCategory("letters"))
	assert.Equal(t, []string{"letters"}, reg.CategoryNames(), "emptied category is dropped")
}

func TestRegistry_Clear(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(newStub("a", WithTags("x"))))
	reg.Clear()
	assert.True(t, reg.IsEmpty())
	assert.Empty(t, reg.CategoryNames())
	require.NoError(t, reg.Register(newStub("a")), "name is free again after Clear")
}

func TestRegistry_Categories(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(newStub("calc")))
	require.NoError(t, reg.Register(newStub("rand")))
	require.NoError(t, reg.Register(newStub("clock")))

	require.NoError(t, reg.AddToCategory("math", "calc"))
	require.NoError(t, reg.AddToCategory("math", "rand"))
	require.NoError(t, reg.AddToCategory("utility", "clock"))
	require.NoError(t, reg.AddToCategory("utility", "rand"))
	require.NoError(t, reg.AddToCategory("math", "calc"), "adding twice is a no-op")

	assert.Equal(t, []string{"calc", "rand"}, reg.ToolsInCategory("math"))
	assert.Equal(t, []string{"clock", "rand"}, reg.ToolsInCategory("utility"))
	assert.Equal(t, []string{"math", "utility"}, reg.CategoryNames())
	assert.Empty(t, reg.ToolsInCategory("unknown"))

	defs := reg.CategoryDefinitions("math")
	require.Len(t, defs, 2)
	assert.Equal(t, "calc", defs[0].Name)

	assert.True(t, reg.RemoveFromCategory("math", "calc"))
	assert.False(t, reg.RemoveFromCategory("math", "calc"))
	assert.False(t, reg.RemoveFromCategory("nope", "calc"))
	assert.Equal(t, []string{"rand"}, reg.ToolsInCategory("math"))
	assert.True(t, reg.HasTool("calc"), "leaving a category keeps the tool")
}

func TestRegistry_AddToCategory_Errors(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(newStub("a")))

	err := reg.AddToCategory("cat", "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrToolNotFound)
	assert.Contains(t, err.Error(), "tool 'missing' not found in registry")

	err = reg.AddToCategory("", "a")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
	assert.Empty(t, reg.CategoryNames())
}

func TestRegistry_ToolsInCategory_ReturnsCopy(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(newStub("a", WithTags("cat"))))
	got := reg.ToolsInCategory("cat")
	got[0] = "mutated"
	assert.Equal(t, []string{"a"}, reg.ToolsInCategory("cat"))
}

func TestRegistry_TagsBecomeCategories(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(newStub("both", WithTags("math", "utility", ""))))
	assert.Equal(t, []string{"math", "utility"}, reg.CategoryNames())
}

func TestRegistry_JSONSchema(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&stubTool{def: calcDefinition()}))
	require.NoError(t, reg.Register(newStub("alpha")))

	doc := reg.JSONSchema()
	assert.Equal(t, "auto", doc["tool_choice"])
	tools, ok := doc["tools"].([]any)
	require.True(t, ok)
	require.Len(t, tools, 2)

	first, ok := tools[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "function", first["type"])
	fn, ok := first["function"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alpha", fn["name"])
	assert.Equal(t, "Stub alpha", fn["description"])
	assert.Contains(t, fn, "parameters")

	a, err := json.Marshal(reg.JSONSchema())
	require.NoError(t, err)
	b, err := json.Marshal(reg.JSONSchema())
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRegistry_ConcurrentReadWrite(t *testing.T) {
	reg := NewRegistry()
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			name := fmt.Sprintf("tool_%d", i)
			_ = reg.Register(newStub(name, WithTags("all")))
			_ = reg.AddToCategory("even", name)
			reg.Unregister(name)
		}()
		go func() {
			defer wg.Done()
			_ = reg.Names()
			_ = reg.JSONSchema()
			for _, name := range reg.ToolsInCategory("all") {
				_, _ = reg.Definition(name)
			}
		}()
	}
	wg.Wait()
	assert.True(t, reg.IsEmpty())
	assert.Empty(t, reg.CategoryNames())
}

func TestRegistry_Execute_ConvertsToolErrors(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(NewToolFunc(NewDefinition("fails", "Fails"),
		func(context.Context, Arguments) (*Result, error) {
			return nil, NewToolError(ErrorAuthentication, "bad token")
		})))
	require.NoError(t, reg.Register(NewToolFunc(NewDefinition("empty", "Returns nothing"),
		func(context.Context, Arguments) (*Result, error) { return nil, nil })))

	res, err := reg.execute(context.Background(), "fails", Arguments{})
	require.NoError(t, err)
	require.True(t, res.IsError())
	assert.Equal(t, ErrorAuthentication, res.ErrorDetails.Type)

	res, err = reg.execute(context.Background(), "empty", Arguments{})
	require.NoError(t, err)
	assert.True(t, res.IsError())

	_, err = reg.execute(context.Background(), "missing", Arguments{})
	require.ErrorIs(t, err, ErrToolNotFound)
}
