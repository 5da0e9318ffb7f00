package toolcall

import (
	"context"
	"errors"
	"reflect"

	jsv "github.com/santhosh-tekuri/jsonschema/v6"
)

// NewTypedTool builds a Tool from a typed function. The parameters of its Definition are
// reflected from the json and jsonschema tags of T (a struct), e.g.
//
//	type Args struct {
//	    City  string `json:"city" jsonschema:"description=City name,minLength=1"`
//	    Units string `json:"units,omitempty" jsonschema:"enum=metric,enum=imperial"`
//	}
//
// The Definition exports the full reflected schema, so the contract shown to a model is the
// one enforced. Before fn runs, the arguments are validated against the full reflected schema (including
// nested objects), decoded into T, and checked with Validatable when T implements it. Any of
// these failing yields an InvalidInput result. The value returned by fn becomes the data of a
// Success result; an error from fn is converted by the registry.
func NewTypedTool[T any, R any](
	name, description string,
	fn func(ctx context.Context, args T) (R, error),
	opts ...ToolOption,
) (Tool, error) {
	if fn == nil {
		return nil, configErrorf(ErrInvalidDefinition, "tool '%s': handler must not be nil", name)
	}
	schemaMap, err := reflectSchema[T]()
	if err != nil {
		return nil, configErrorf(ErrInvalidDefinition, "tool '%s': %v", name, err)
	}
	params, err := parametersFromSchema(schemaMap)
	if err != nil {
		return nil, configErrorf(ErrInvalidDefinition, "tool '%s': %v", name, err)
	}
	closeObjectSchema(schemaMap)
	compiled, err := compileRawSchema(schemaMap)
	if err != nil {
		return nil, configErrorf(ErrInvalidDefinition, "tool '%s': compile schema: %v", name, err)
	}
	def := &Definition{Name: name, Description: description, Parameters: params, schema: schemaMap}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	ext := &extractor[T]{schema: compiled}
	handler := HandlerFunc(func(ctx context.Context, args Arguments) (*Result, error) {
		v, err := ext.parseAndValidate(args)
		if err != nil {
			return invalidInputFromError(err), nil
		}
		out, err := fn(ctx, v)
		if err != nil {
			return nil, err
		}
		return NewSuccess(out), nil
	})
	var o toolOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &tool{def: def, handler: handler, opts: o}, nil
}

// extractor runs two-layer validation (schema + Validatable) and decoding for type T.
type extractor[T any] struct {
	schema *jsv.Schema
}

func (e *extractor[T]) parseAndValidate(args Arguments) (T, error) {
	var zero T
	if args == nil {
		args = Arguments{}
	}
	if err := validateAgainstSchema(e.schema, args); err != nil {
		return zero, err
	}
	var v T
	if err := args.Decode(&v); err != nil {
		return zero, &ValidationError{Reason: "json parse error: " + err.Error()}
	}
	if err := runLayer2Validation(v); err != nil {
		return zero, err
	}
	return v, nil
}

// runLayer2Validation runs Validatable.Validate() on args; if args does not implement Validatable,
// it tries &args for value types (pointer receiver). Never calls Validate twice for the same receiver.
func runLayer2Validation[T any](args T) error {
	if err := validateCustom(any(args)); err != nil {
		return err
	}
	if _, ok := any(args).(Validatable); ok {
		return nil
	}
	typ := reflect.TypeOf(args)
	if typ == nil || typ.Kind() == reflect.Pointer {
		return nil
	}
	return validateCustom(any(&args))
}

// invalidInputFromError keeps a *ToolError returned by Validatable and wraps anything else
// as InvalidInput.
func invalidInputFromError(err error) *Result {
	var te *ToolError
	if errors.As(err, &te) {
		return NewErrorWithDetails(te.Message, te.clone())
	}
	return invalidInputResult(err)
}
