// Package mathtool provides arithmetic and random-number tools.
package mathtool

import (
	"context"
	"fmt"

	"github.com/skosovsky/toolcall"
)

// Calculator operations.
const (
	OpAdd      = "add"
	OpSubtract = "subtract"
	OpMultiply = "multiply"
	OpDivide   = "divide"
)

// CalculatorName is the registered name of the calculator tool.
const CalculatorName = "calculator"

// NewCalculator returns the "calculator" tool: one arithmetic operation on two numbers.
// It answers {"result", "operation", "operands": [a, b]}. Division by zero is an
// InvalidInput error result.
func NewCalculator(opts ...toolcall.ToolOption) toolcall.Tool {
	def := toolcall.NewDefinition(CalculatorName, "Performs basic arithmetic operations on two numbers").
		WithParameter(toolcall.NewParameter("operation", toolcall.TypeString).
			WithDescription("The operation to perform").
			WithEnum(OpAdd, OpSubtract, OpMultiply, OpDivide).
			AsRequired()).
		WithParameter(toolcall.NewParameter("a", toolcall.TypeNumber).
			WithDescription("First number").
			AsRequired()).
		WithParameter(toolcall.NewParameter("b", toolcall.TypeNumber).
			WithDescription("Second number").
			AsRequired())
	return toolcall.NewToolFunc(def, calculate, opts...)
}

func calculate(_ context.Context, args toolcall.Arguments) (*toolcall.Result, error) {
	op, ok := args.String("operation")
	if !ok {
		return invalidInput("missing operation parameter", "operation"), nil
	}
	a, ok := args.Number("a")
	if !ok {
		return invalidInput("missing or invalid parameter 'a'", "a"), nil
	}
	b, ok := args.Number("b")
	if !ok {
		return invalidInput("missing or invalid parameter 'b'", "b"), nil
	}

	var result float64
	switch op {
	case OpAdd:
		result = a + b
	case OpSubtract:
		result = a - b
	case OpMultiply:
		result = a * b
	case OpDivide:
		if b == 0 {
			return toolcall.NewErrorWithDetails("Division by zero",
				toolcall.NewToolError(toolcall.ErrorInvalidInput, "Cannot divide by zero").
					WithContext("parameter", "b")), nil
		}
		result = a / b
	default:
		return invalidInput(fmt.Sprintf("Unknown operation: %s", op), "operation"), nil
	}
	return toolcall.NewSuccess(map[string]any{
		"result":    result,
		"operation": op,
		"operands":  []float64{a, b},
	}), nil
}

func invalidInput(msg, param string) *toolcall.Result {
	return toolcall.NewErrorWithDetails(msg,
		toolcall.NewToolError(toolcall.ErrorInvalidInput, msg).WithContext("parameter", param))
}
