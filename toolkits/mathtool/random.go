package mathtool

import (
	"context"
	"math/rand/v2"

	"github.com/skosovsky/toolcall"
)

// RandomNumberName is the registered name of the random number tool.
const RandomNumberName = "random_number"

const (
	defaultMin = 0
	defaultMax = 100
)

// NewRandomNumber returns the "random_number" tool: a uniformly distributed integer in
// [min, max] (defaults 0 and 100). min > max is an InvalidInput error result.
func NewRandomNumber(opts ...toolcall.ToolOption) toolcall.Tool {
	def := toolcall.NewDefinition(RandomNumberName, "Generate a random number within a specified range").
		WithParameter(toolcall.NewParameter("min", toolcall.TypeInteger).
			WithDescription("Minimum value (inclusive)").
			WithDefault(defaultMin)).
		WithParameter(toolcall.NewParameter("max", toolcall.TypeInteger).
			WithDescription("Maximum value (inclusive)").
			WithDefault(defaultMax))
	return toolcall.NewToolFunc(def, randomNumber, opts...)
}

func randomNumber(_ context.Context, args toolcall.Arguments) (*toolcall.Result, error) {
	lo, errRes := boundArg(args, "min", defaultMin)
	if errRes != nil {
		return errRes, nil
	}
	hi, errRes := boundArg(args, "max", defaultMax)
	if errRes != nil {
		return errRes, nil
	}
	if lo > hi {
		return toolcall.NewErrorWithDetails("Minimum value cannot be greater than maximum",
			toolcall.NewToolError(toolcall.ErrorInvalidInput, "Invalid range").
				WithContext("min", lo).
				WithContext("max", hi)), nil
	}
	span := uint64(hi - lo)
	var offset uint64
	if span == ^uint64(0) {
		offset = rand.Uint64()
	} else {
		offset = rand.Uint64N(span + 1)
	}
	return toolcall.NewSuccess(map[string]any{
		"value": lo + int64(offset),
		"min":   lo,
		"max":   hi,
	}), nil
}

// boundArg reads an optional int64 bound. A present value outside the int64 range is an
// InvalidInput result rather than a silent fallback to the default.
func boundArg(args toolcall.Arguments, name string, def int64) (int64, *toolcall.Result) {
	if _, present := args[name]; !present {
		return def, nil
	}
	v, ok := args.Integer(name)
	if !ok {
		return 0, toolcall.NewErrorWithDetails(name+" must be an integer within the 64-bit range",
			toolcall.NewToolError(toolcall.ErrorInvalidInput, "Invalid range").WithContext("parameter", name))
	}
	return v, nil
}
