package toolcall

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReflectSchema_StripsIDs(t *testing.T) {
	schemaMap, err := reflectSchema[weatherArgs]()
	require.NoError(t, err)
	walkSchema(schemaMap, func(n map[string]any) {
		assert.NotContains(t, n, "$schema")
		assert.NotContains(t, n, "$id")
	})
	assert.Equal(t, "object", schemaMap["type"])
	assert.Equal(t, false, schemaMap["additionalProperties"])
}

func TestWalkSchema_VisitsNested(t *testing.T) {
	schemaMap := map[string]any{
		"properties": map[string]any{
			"a": map[string]any{"type": "string"},
		},
		"anyOf": []any{map[string]any{"type": "number"}},
	}
	var visited int
	walkSchema(schemaMap, func(map[string]any) { visited++ })
	assert.Equal(t, 4, visited)
}

func TestCompileRawSchema_DoesNotMutate(t *testing.T) {
	schemaMap := calcDefinition().JSONSchema()
	before := len(schemaMap)
	_, err := compileRawSchema(schemaMap)
	require.NoError(t, err)
	assert.Len(t, schemaMap, before)
}

func TestCompileRawSchema_Invalid(t *testing.T) {
	_, err := compileRawSchema(map[string]any{"type": 12})
	require.Error(t, err)
}

func TestParametersFromSchema_Errors(t *testing.T) {
	_, err := parametersFromSchema(map[string]any{"type": "integer"})
	require.Error(t, err)

	_, err = parametersFromSchema(map[string]any{
		"properties": map[string]any{"x": map[string]any{"type": []any{"string", "null"}}},
	})
	require.Error(t, err)
}
