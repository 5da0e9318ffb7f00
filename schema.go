package toolcall

import (
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/invopop/jsonschema"
	jsv "github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// schemaResourceURL is absolute so the compiler never resolves it against the working directory.
const schemaResourceURL = "urn:toolcall:arguments"

var schemaErrorPrinter = message.NewPrinter(language.English)

// CompileSchema compiles the exported argument schema (draft 2020-12). The Registry compiles
// every definition once at registration and validates calls against the result.
func (d *Definition) CompileSchema() (*jsv.Schema, error) {
	return compileRawSchema(d.JSONSchema())
}

// reflectSchema produces the JSON Schema map for the argument struct T. Nested structs are
// inlined and objects reject additional properties.
func reflectSchema[T any]() (map[string]any, error) {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: true,
		Anonymous:      true,
	}
	schema := r.Reflect(new(T))
	if schema == nil {
		return nil, errNilSchema
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(data, &schemaMap); err != nil {
		return nil, err
	}
	stripSchemaIDs(schemaMap)
	return schemaMap, nil
}

// parametersFromSchema converts the root-level properties of an object schema into parameters.
// Nested object and array contents are not represented; the compiled schema covers them.
func parametersFromSchema(schemaMap map[string]any) (map[string]Parameter, error) {
	props, ok := schemaMap["properties"].(map[string]any)
	if !ok {
		if schemaMap["type"] != "object" {
			return nil, errors.New("argument type must be a struct")
		}
		props = map[string]any{}
	}
	required := make(map[string]bool)
	if list, ok := schemaMap["required"].([]any); ok {
		for _, name := range list {
			if s, ok := name.(string); ok {
				required[s] = true
			}
		}
	}
	params := make(map[string]Parameter, len(props))
	for name, val := range props {
		prop, ok := val.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("property %q: unsupported schema", name)
		}
		typ, _ := prop["type"].(string)
		p := NewParameter(name, ParameterType(typ))
		if !p.Type.Valid() {
			return nil, fmt.Errorf("property %q: unsupported type %v", name, prop["type"])
		}
		p.Required = required[name]
		if desc, ok := prop["description"].(string); ok {
			p.Description = desc
		}
		if def, ok := prop["default"]; ok {
			p.Default = def
		}
		if enum, ok := prop["enum"].([]any); ok && p.Type == TypeString {
			for _, v := range enum {
				if s, ok := v.(string); ok {
					p.Enum = append(p.Enum, s)
				}
			}
		}
		p.Minimum = floatField(prop, "minimum")
		p.Maximum = floatField(prop, "maximum")
		p.MinLength = intField(prop, "minLength")
		p.MaxLength = intField(prop, "maxLength")
		p.MinItems = intField(prop, "minItems")
		p.MaxItems = intField(prop, "maxItems")
		params[name] = p
	}
	return params, nil
}

// closeObjectSchema gives a reflected root schema the shape Definition.JSONSchema promises:
// properties and required always present, additional properties rejected.
func closeObjectSchema(schemaMap map[string]any) {
	if _, ok := schemaMap["properties"]; !ok {
		schemaMap["properties"] = map[string]any{}
	}
	if _, ok := schemaMap["required"]; !ok {
		schemaMap["required"] = []any{}
	}
	schemaMap["additionalProperties"] = false
}

func floatField(m map[string]any, key string) *float64 {
	if f, ok := m[key].(float64); ok {
		return &f
	}
	return nil
}

func intField(m map[string]any, key string) *int {
	if f, ok := m[key].(float64); ok && isIntegral(f) {
		n := int(f)
		return &n
	}
	return nil
}

// walkSchema recursively visits every map node in the schema tree (including $defs and definitions).
func walkSchema(schemaMap map[string]any, visit func(map[string]any)) {
	if schemaMap == nil {
		return
	}
	visit(schemaMap)
	for _, val := range schemaMap {
		switch v := val.(type) {
		case map[string]any:
			walkSchema(v, visit)
		case []any:
			for _, item := range v {
				if m2, ok := item.(map[string]any); ok {
					walkSchema(m2, visit)
				}
			}
		}
	}
}

// stripSchemaIDs removes id, $id and $schema so resolution does not depend on them.
func stripSchemaIDs(schemaMap map[string]any) {
	walkSchema(schemaMap, func(n map[string]any) {
		delete(n, "id")
		delete(n, "$id")
		delete(n, "$schema")
	})
}

var errNilSchema = errors.New("schema reflection returned nil")

// compileRawSchema compiles a raw JSON Schema map into a validator. The map is not mutated.
// It is round-tripped through JSON so Go-typed values ([]string, int) reach the compiler as
// plain JSON values.
func compileRawSchema(schemaMap map[string]any) (*jsv.Schema, error) {
	data, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, err
	}
	doc, err := jsv.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	c := jsv.NewCompiler()
	if err := c.AddResource(schemaResourceURL, doc); err != nil {
		return nil, err
	}
	return c.Compile(schemaResourceURL)
}

// validateAgainstSchema validates already-decoded arguments against a compiled schema. Values
// are normalized through JSON so typed Go values (int, []string) validate like decoded ones.
func validateAgainstSchema(schema *jsv.Schema, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return &ValidationError{Reason: "arguments are not JSON encodable: " + err.Error()}
	}
	inst, err := jsv.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return &ValidationError{Reason: "json parse error: " + err.Error()}
	}
	if err := schema.Validate(inst); err != nil {
		return fromSchemaError(err)
	}
	return nil
}

// fromSchemaError reduces a schema validation failure to the single most relevant violation:
// missing parameters first, then unknown ones, then the first offending value by location.
func fromSchemaError(err error) *ValidationError {
	var ve *jsv.ValidationError
	if !errors.As(err, &ve) {
		return &ValidationError{Reason: err.Error()}
	}
	leaf := slices.MinFunc(schemaLeaves(ve, nil), compareViolations)
	loc := leaf.InstanceLocation
	var out ValidationError
	switch k := leaf.ErrorKind.(type) {
	case *kind.Required:
		path := append(slices.Clone(loc), k.Missing[0])
		out.Parameter = path[0]
		out.Reason = fmt.Sprintf("required parameter '%s' is missing", strings.Join(path, "."))
	case *kind.AdditionalProperties:
		path := append(slices.Clone(loc), k.Properties[0])
		out.Parameter = path[0]
		out.Reason = fmt.Sprintf("unknown parameter '%s'", strings.Join(path, "."))
	default:
		msg := leaf.ErrorKind.LocalizedString(schemaErrorPrinter)
		if len(loc) == 0 {
			out.Reason = "arguments: " + msg
			break
		}
		out.Parameter = loc[0]
		out.Reason = fmt.Sprintf("parameter '%s': %s", strings.Join(loc, "."), msg)
	}
	return &out
}

func schemaLeaves(ve *jsv.ValidationError, acc []*jsv.ValidationError) []*jsv.ValidationError {
	if len(ve.Causes) == 0 {
		return append(acc, ve)
	}
	for _, c := range ve.Causes {
		acc = schemaLeaves(c, acc)
	}
	return acc
}

func violationRank(ve *jsv.ValidationError) int {
	switch ve.ErrorKind.(type) {
	case *kind.Required:
		return 0
	case *kind.AdditionalProperties:
		return 1
	case *kind.Type:
		return 2
	}
	return 3
}

func compareViolations(a, b *jsv.ValidationError) int {
	ra, rb := violationRank(a), violationRank(b)
	if ra < 2 || rb < 2 {
		if c := cmp.Compare(ra, rb); c != 0 {
			return c
		}
	}
	if c := slices.Compare(a.InstanceLocation, b.InstanceLocation); c != 0 {
		return c
	}
	return cmp.Compare(ra, rb)
}
