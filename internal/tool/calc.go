package tool

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/expr-lang/expr"
)

// CalcDefinition describes the built-in calculator.
var CalcDefinition = Definition{
	Name:        "calculate",
	Description: "Evaluate an arithmetic expression",
}

// calcEnv exposes the constants available inside expressions. The expr
// VM has no filesystem or process access, so evaluation stays safe.
var calcEnv = map[string]interface{}{
	"pi": math.Pi,
	"e":  math.E,
}

// Calculate evaluates an arithmetic expression and formats the result.
func Calculate(ctx context.Context, input string) (string, error) {
	if input == "" {
		return "", errors.New("empty expression")
	}

	program, err := expr.Compile(input, expr.Env(calcEnv))
	if err != nil {
		return "", fmt.Errorf("expression compile error: %w", err)
	}

	result, err := expr.Run(program, calcEnv)
	if err != nil {
		return "", fmt.Errorf("expression eval error for %q: %w", input, err)
	}

	return fmt.Sprintf("%v", result), nil
}

// RegisterBuiltins wires the built-in tools into a registry.
func RegisterBuiltins(r *Registry) error {
	return r.Register(CalcDefinition, Calculate)
}
