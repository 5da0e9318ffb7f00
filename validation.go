package toolcall

import (
	jsv "github.com/santhosh-tekuri/jsonschema/v6"
)

// Validatable is implemented by argument structs of typed tools that need business validation
// beyond the schema. It runs after schema validation and decoding.
type Validatable interface {
	Validate() error
}

// ValidateArguments checks args against the JSON Schema of def. The schema is closed: every
// required parameter must be present, every key must be a declared parameter, and each value
// must have the declared JSON kind and satisfy its enum, range, length and item constraints.
// Integers accept any integral number; nothing is coerced. The first failure is returned as a
// *ValidationError. Executor validates against the schema compiled at registration instead.
func ValidateArguments(def *Definition, args any) error {
	schema, err := def.CompileSchema()
	if err != nil {
		return configErrorf(ErrInvalidDefinition, "tool '%s': compile schema: %v", def.Name, err)
	}
	return validateCompiled(schema, args)
}

func validateCompiled(schema *jsv.Schema, args any) error {
	if _, ok := asObject(args); !ok {
		return &ValidationError{Reason: "arguments must be a JSON object"}
	}
	return validateAgainstSchema(schema, args)
}

func asObject(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case Arguments:
		if m == nil {
			return map[string]any{}, true
		}
		return m, true
	case map[string]any:
		if m == nil {
			return map[string]any{}, true
		}
		return m, true
	}
	return nil, false
}

// validateCustom runs Validatable.Validate if args (or a pointer to it) implements it.
func validateCustom(args any) error {
	if v, ok := args.(Validatable); ok {
		return v.Validate()
	}
	return nil
}
