package toolcall

import (
	"context"
	"encoding/json"
	"math"
	"time"
)

// Tool is the contract for an LLM-callable operation. It is provider-agnostic.
type Tool interface {
	// Definition describes the tool. The registry copies it at registration time, so later
	// changes to the returned value are not observed.
	Definition() *Definition
	// Execute runs the tool. Malformed input must be reported as an Error result, never as a
	// panic. A returned error is converted into an Error result by the registry.
	Execute(ctx context.Context, args Arguments) (*Result, error)
}

// ToolMetadata is optionally implemented by tools (including those built with NewTool).
// Executor uses Timeout() to override its default timeout when positive; Registry adds the tool
// to every category in Tags() on registration.
type ToolMetadata interface {
	Timeout() time.Duration
	Tags() []string
}

// ToolCall is a single invocation request as produced by a model-response parser.
type ToolCall struct {
	ID       string
	ToolName string
	Args     json.RawMessage // JSON object of arguments
}

// Arguments is the decoded JSON object passed to a tool.
type Arguments map[string]any

// String returns the named argument if it is a string.
func (a Arguments) String(name string) (string, bool) {
	s, ok := a[name].(string)
	return s, ok
}

// Number returns the named argument if it is any JSON number.
func (a Arguments) Number(name string) (float64, bool) {
	v, ok := a[name]
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

// Integer returns the named argument if it is a number without a fractional part.
func (a Arguments) Integer(name string) (int64, bool) {
	f, ok := a.Number(name)
	if !ok || !isIntegral(f) || f >= 1<<63 || f < -1<<63 {
		return 0, false
	}
	return int64(f), true
}

// Bool returns the named argument if it is a boolean.
func (a Arguments) Bool(name string) (bool, bool) {
	b, ok := a[name].(bool)
	return b, ok
}

// Decode copies the arguments into v (typically a pointer to a struct with json tags).
func (a Arguments) Decode(v any) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func isIntegral(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f) && math.Trunc(f) == f
}
