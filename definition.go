package toolcall

import (
	"maps"
	"regexp"
	"slices"
)

// ParameterType is the JSON type of a tool parameter.
type ParameterType string

const (
	TypeString  ParameterType = "string"
	TypeNumber  ParameterType = "number"
	TypeInteger ParameterType = "integer"
	TypeBoolean ParameterType = "boolean"
	TypeArray   ParameterType = "array"
	TypeObject  ParameterType = "object"
)

// Valid reports whether t is one of the six supported JSON types.
func (t ParameterType) Valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeInteger, TypeBoolean, TypeArray, TypeObject:
		return true
	}
	return false
}

// Parameter describes one argument of a tool. Build it with NewParameter and the With*
// methods; every method returns a modified copy, so a Parameter value is never shared.
// Constraint fields are nil when unset.
type Parameter struct {
	Name        string        `json:"name"`
	Type        ParameterType `json:"type"`
	Description string        `json:"description,omitempty"`
	Required    bool          `json:"required"`
	Default     any           `json:"default,omitempty"`
	Enum        []string      `json:"enum,omitempty"`
	Minimum     *float64      `json:"minimum,omitempty"`
	Maximum     *float64      `json:"maximum,omitempty"`
	MinLength   *int          `json:"minLength,omitempty"`
	MaxLength   *int          `json:"maxLength,omitempty"`
	MinItems    *int          `json:"minItems,omitempty"`
	MaxItems    *int          `json:"maxItems,omitempty"`
}

// NewParameter returns an optional parameter of the given type.
func NewParameter(name string, typ ParameterType) Parameter {
	return Parameter{Name: name, Type: typ}
}

func (p Parameter) WithDescription(description string) Parameter {
	p.Description = description
	return p
}

// AsRequired marks the parameter as required.
func (p Parameter) AsRequired() Parameter {
	p.Required = true
	return p
}

// WithDefault sets the value used when the argument is omitted (see WithApplyDefaults).
func (p Parameter) WithDefault(v any) Parameter {
	p.Default = cloneJSON(v)
	return p
}

// WithEnum restricts a string parameter to the given values.
func (p Parameter) WithEnum(values ...string) Parameter {
	p.Enum = slices.Clone(values)
	return p
}

func (p Parameter) WithMinimum(v float64) Parameter {
	p.Minimum = &v
	return p
}

func (p Parameter) WithMaximum(v float64) Parameter {
	p.Maximum = &v
	return p
}

// WithRange sets both numeric bounds (inclusive).
func (p Parameter) WithRange(minimum, maximum float64) Parameter {
	return p.WithMinimum(minimum).WithMaximum(maximum)
}

func (p Parameter) WithMinLength(n int) Parameter {
	p.MinLength = &n
	return p
}

func (p Parameter) WithMaxLength(n int) Parameter {
	p.MaxLength = &n
	return p
}

// WithLengthRange sets both string length bounds, counted in characters.
func (p Parameter) WithLengthRange(minimum, maximum int) Parameter {
	return p.WithMinLength(minimum).WithMaxLength(maximum)
}

func (p Parameter) WithMinItems(n int) Parameter {
	p.MinItems = &n
	return p
}

func (p Parameter) WithMaxItems(n int) Parameter {
	p.MaxItems = &n
	return p
}

// WithItemsRange sets both array size bounds.
func (p Parameter) WithItemsRange(minimum, maximum int) Parameter {
	return p.WithMinItems(minimum).WithMaxItems(maximum)
}

// Validate checks the parameter declaration itself (not an argument value).
func (p Parameter) Validate() error {
	if p.Name == "" {
		return configErrorf(ErrInvalidDefinition, "parameter name cannot be empty")
	}
	if !p.Type.Valid() {
		return configErrorf(ErrInvalidDefinition, "parameter '%s' has unsupported type %q", p.Name, p.Type)
	}
	if p.Minimum != nil && p.Maximum != nil && *p.Minimum > *p.Maximum {
		return configErrorf(ErrInvalidDefinition, "parameter '%s': minimum value cannot be greater than maximum", p.Name)
	}
	if p.MinLength != nil && p.MaxLength != nil && *p.MinLength > *p.MaxLength {
		return configErrorf(ErrInvalidDefinition, "parameter '%s': minimum length cannot be greater than maximum", p.Name)
	}
	if p.MinItems != nil && p.MaxItems != nil && *p.MinItems > *p.MaxItems {
		return configErrorf(ErrInvalidDefinition, "parameter '%s': minimum items cannot be greater than maximum", p.Name)
	}
	for _, n := range []*int{p.MinLength, p.MaxLength, p.MinItems, p.MaxItems} {
		if n != nil && *n < 0 {
			return configErrorf(ErrInvalidDefinition, "parameter '%s': length and item bounds must not be negative", p.Name)
		}
	}
	return nil
}

// JSONSchema returns the property schema for this parameter. Constraints that do not
// apply to the parameter's type, or are unset, are omitted.
func (p Parameter) JSONSchema() map[string]any {
	s := map[string]any{"type": string(p.Type)}
	if p.Description != "" {
		s["description"] = p.Description
	}
	if p.Default != nil {
		s["default"] = cloneJSON(p.Default)
	}
	switch p.Type {
	case TypeString:
		if len(p.Enum) > 0 {
			enum := make([]any, len(p.Enum))
			for i, v := range p.Enum {
				enum[i] = v
			}
			s["enum"] = enum
		}
		if p.MinLength != nil {
			s["minLength"] = *p.MinLength
		}
		if p.MaxLength != nil {
			s["maxLength"] = *p.MaxLength
		}
	case TypeNumber, TypeInteger:
		if p.Minimum != nil {
			s["minimum"] = *p.Minimum
		}
		if p.Maximum != nil {
			s["maximum"] = *p.Maximum
		}
	case TypeArray:
		if p.MinItems != nil {
			s["minItems"] = *p.MinItems
		}
		if p.MaxItems != nil {
			s["maxItems"] = *p.MaxItems
		}
	}
	return s
}

func (p Parameter) clone() Parameter {
	p.Default = cloneJSON(p.Default)
	p.Enum = slices.Clone(p.Enum)
	p.Minimum = clonePtr(p.Minimum)
	p.Maximum = clonePtr(p.Maximum)
	p.MinLength = clonePtr(p.MinLength)
	p.MaxLength = clonePtr(p.MaxLength)
	p.MinItems = clonePtr(p.MinItems)
	p.MaxItems = clonePtr(p.MaxItems)
	return p
}

var toolNamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// Definition is the static description of a tool: what the model is told about it.
// Parameters is keyed by parameter name; every key must equal the parameter's Name.
type Definition struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Parameters  map[string]Parameter `json:"parameters"`
	Deprecated  bool                 `json:"deprecated,omitempty"`

	// schema, when set, is the full argument schema the parameters were derived from
	// (typed tools). It is exported and enforced in place of the parameter-built schema.
	schema map[string]any
}

// NewDefinition creates a definition with no parameters. name should be snake_case.
func NewDefinition(name, description string) *Definition {
	return &Definition{
		Name:        name,
		Description: description,
		Parameters:  make(map[string]Parameter),
	}
}

// WithParameter adds (or replaces) a parameter keyed by its name and returns d.
func (d *Definition) WithParameter(p Parameter) *Definition {
	if d.Parameters == nil {
		d.Parameters = make(map[string]Parameter)
	}
	d.Parameters[p.Name] = p.clone()
	d.schema = nil
	return d
}

// MarkDeprecated flags the tool as deprecated and returns d.
func (d *Definition) MarkDeprecated() *Definition {
	d.Deprecated = true
	return d
}

// Validate reports a ConfigError (wrapping ErrInvalidDefinition) when the name is empty or not
// snake_case, the description is empty, a parameter key differs from its parameter's name,
// or a parameter declaration is inconsistent.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return configErrorf(ErrInvalidDefinition, "tool name cannot be empty")
	}
	if !toolNamePattern.MatchString(d.Name) {
		return configErrorf(ErrInvalidDefinition,
			"tool name '%s' should use snake_case (lowercase letters, numbers, and underscores only)", d.Name)
	}
	if d.Description == "" {
		return configErrorf(ErrInvalidDefinition, "tool '%s': description cannot be empty", d.Name)
	}
	for _, key := range sortedKeys(d.Parameters) {
		p := d.Parameters[key]
		if key != p.Name {
			return configErrorf(ErrInvalidDefinition,
				"tool '%s': parameter name mismatch: key '%s' vs parameter name '%s'", d.Name, key, p.Name)
		}
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// RequiredParameters returns the required parameters sorted by name.
func (d *Definition) RequiredParameters() []Parameter {
	return d.filterParameters(true)
}

// OptionalParameters returns the optional parameters sorted by name.
func (d *Definition) OptionalParameters() []Parameter {
	return d.filterParameters(false)
}

func (d *Definition) filterParameters(required bool) []Parameter {
	out := []Parameter{}
	for _, key := range sortedKeys(d.Parameters) {
		if p := d.Parameters[key]; p.Required == required {
			out = append(out, p.clone())
		}
	}
	return out
}

// JSONSchema returns the object schema of the tool's arguments. It never fails; "required"
// is always present (possibly empty) and sorted, and additional properties are rejected.
// For typed tools it is the schema reflected from the argument type, including nested
// objects, array items and non-string enums.
func (d *Definition) JSONSchema() map[string]any {
	if d.schema != nil {
		out, _ := cloneJSON(d.schema).(map[string]any)
		return out
	}
	properties := make(map[string]any, len(d.Parameters))
	required := []string{}
	for _, key := range sortedKeys(d.Parameters) {
		p := d.Parameters[key]
		properties[p.Name] = p.JSONSchema()
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

// Clone returns a deep copy; mutating it never affects d.
func (d *Definition) Clone() *Definition {
	if d == nil {
		return nil
	}
	out := *d
	out.Parameters = make(map[string]Parameter, len(d.Parameters))
	for k, p := range d.Parameters {
		out.Parameters[k] = p.clone()
	}
	if d.schema != nil {
		out.schema, _ = cloneJSON(d.schema).(map[string]any)
	}
	return &out
}

// applyDefaults returns args extended with the declared default of every omitted parameter.
// args is not mutated.
func (d *Definition) applyDefaults(args Arguments) Arguments {
	out := maps.Clone(args)
	if out == nil {
		out = Arguments{}
	}
	for name, p := range d.Parameters {
		if _, ok := out[name]; !ok && p.Default != nil {
			out[name] = cloneJSON(p.Default)
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// cloneJSON deep-copies maps and slices of a decoded JSON value. Other values are returned as is.
func cloneJSON(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneJSON(val)
		}
		return out
	case Arguments:
		out := make(Arguments, len(t))
		for k, val := range t {
			out[k] = cloneJSON(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneJSON(val)
		}
		return out
	default:
		return v
	}
}
