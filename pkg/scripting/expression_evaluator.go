// Package scripting evaluates JavaScript expressions against event data
// using the goja engine.
package scripting

import (
	"fmt"
	"time"

	"github.com/dop251/goja"
)

// ExpressionEvaluator evaluates JavaScript expressions with event data bound
// into the runtime as global variables.
type ExpressionEvaluator struct {
	timeout time.Duration
}

// NewExpressionEvaluator creates a new expression evaluator
func NewExpressionEvaluator() *ExpressionEvaluator {
	return &ExpressionEvaluator{timeout: 100 * time.Millisecond}
}

// Evaluate runs the expression and returns its result. The data map is
// exposed both as individual globals and under a single "data" object, so
// "bits > 100" and "data.bits > 100" are equivalent.
func (e *ExpressionEvaluator) Evaluate(expression string, data map[string]interface{}) (interface{}, error) {
	if expression == "" {
		return nil, fmt.Errorf("expression is empty")
	}

	vm := goja.New()
	vm.SetFieldNameMapper(goja.UncapFieldNameMapper())

	for key, value := range data {
		if err := vm.Set(key, value); err != nil {
			return nil, fmt.Errorf("failed to bind variable %q: %w", key, err)
		}
	}
	if err := vm.Set("data", data); err != nil {
		return nil, fmt.Errorf("failed to bind data object: %w", err)
	}

	// Runaway expressions are interrupted rather than hanging a matcher.
	timer := time.AfterFunc(e.timeout, func() {
		vm.Interrupt("expression timed out")
	})
	defer timer.Stop()

	value, err := vm.RunString(expression)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate expression: %w", err)
	}
	if value == nil {
		return nil, nil
	}
	return value.Export(), nil
}

// EvaluateBool runs the expression and coerces the result to a boolean using
// JavaScript truthiness. Evaluation errors report false.
func (e *ExpressionEvaluator) EvaluateBool(expression string, data map[string]interface{}) (bool, error) {
	result, err := e.Evaluate(expression, data)
	if err != nil {
		return false, err
	}

	switch v := result.(type) {
	case bool:
		return v, nil
	case nil:
		return false, nil
	case string:
		return v != "", nil
	case int64:
		return v != 0, nil
	case float64:
		return v != 0, nil
	default:
		return true, nil
	}
}
