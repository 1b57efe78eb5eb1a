package workflow

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/justedave0/obscopilot-sub001/pkg/scripting"
	"github.com/justedave0/obscopilot-sub001/pkg/template"
)

// ConditionKind identifies the comparison a condition performs
type ConditionKind string

const (
	ConditionEquals      ConditionKind = "equals"
	ConditionNotEquals   ConditionKind = "not_equals"
	ConditionContains    ConditionKind = "contains"
	ConditionNotContains ConditionKind = "not_contains"
	ConditionStartsWith  ConditionKind = "starts_with"
	ConditionEndsWith    ConditionKind = "ends_with"
	ConditionGreaterThan ConditionKind = "greater_than"
	ConditionLessThan    ConditionKind = "less_than"
	ConditionRegexMatch  ConditionKind = "regex_match"

	// ConditionExpression evaluates a JavaScript expression against the
	// whole data bag; Field is ignored and Value holds the expression.
	ConditionExpression ConditionKind = "expression"
)

// Condition is a single field-level predicate evaluated against event data
type Condition struct {
	Kind  ConditionKind `json:"kind" yaml:"kind"`
	Field string        `json:"field" yaml:"field"`
	Value interface{}   `json:"value" yaml:"value"`
}

var (
	conditionEvaluator = scripting.NewExpressionEvaluator()

	regexCache sync.Map // pattern string -> *regexp.Regexp
)

// Evaluate checks the condition against the data bag. Every failure mode
// resolves to false: a missing field path, a type mismatch, a bad regex or
// an unknown kind all mean "not satisfied". It never panics and never
// returns an error.
func (c Condition) Evaluate(data map[string]interface{}) bool {
	if c.Kind == ConditionExpression {
		expression, ok := c.Value.(string)
		if !ok {
			return false
		}
		result, err := conditionEvaluator.EvaluateBool(expression, data)
		if err != nil {
			return false
		}
		return result
	}

	fieldValue, ok := template.LookupPath(data, c.Field)
	if !ok {
		return false
	}

	switch c.Kind {
	case ConditionEquals:
		return valuesEqual(fieldValue, c.Value)
	case ConditionNotEquals:
		return !valuesEqual(fieldValue, c.Value)
	case ConditionContains:
		return containsValue(fieldValue, c.Value)
	case ConditionNotContains:
		// Only meaningful on containers; a non-container field is false
		// for both contains and not_contains.
		if !isContainer(fieldValue) {
			return false
		}
		return !containsValue(fieldValue, c.Value)
	case ConditionStartsWith:
		s, prefix, ok := stringPair(fieldValue, c.Value)
		return ok && strings.HasPrefix(s, prefix)
	case ConditionEndsWith:
		s, suffix, ok := stringPair(fieldValue, c.Value)
		return ok && strings.HasSuffix(s, suffix)
	case ConditionGreaterThan:
		a, b, ok := numericPair(fieldValue, c.Value)
		return ok && a > b
	case ConditionLessThan:
		a, b, ok := numericPair(fieldValue, c.Value)
		return ok && a < b
	case ConditionRegexMatch:
		pattern, ok := c.Value.(string)
		if !ok {
			return false
		}
		re, err := compilePattern(pattern)
		if err != nil {
			return false
		}
		return re.MatchString(toString(fieldValue))
	default:
		return false
	}
}

// compilePattern compiles and caches a regular expression
func compilePattern(pattern string) (*regexp.Regexp, error) {
	if cached, ok := regexCache.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	regexCache.Store(pattern, re)
	return re, nil
}

// valuesEqual compares with numeric normalization so a JSON-decoded float64
// equals the int an author wrote in code.
func valuesEqual(a, b interface{}) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
		return false
	}
	return a == b
}

func isContainer(value interface{}) bool {
	switch value.(type) {
	case string, []interface{}, []string, map[string]interface{}:
		return true
	default:
		return false
	}
}

// containsValue checks substring membership on strings, element membership
// on slices, and key membership on maps.
func containsValue(container, needle interface{}) bool {
	switch c := container.(type) {
	case string:
		return strings.Contains(c, toString(needle))
	case []interface{}:
		for _, item := range c {
			if valuesEqual(item, needle) {
				return true
			}
		}
		return false
	case []string:
		target := toString(needle)
		for _, item := range c {
			if item == target {
				return true
			}
		}
		return false
	case map[string]interface{}:
		_, ok := c[toString(needle)]
		return ok
	default:
		return false
	}
}

func stringPair(a, b interface{}) (string, string, bool) {
	as, aok := a.(string)
	bs, bok := b.(string)
	return as, bs, aok && bok
}

// numericPair coerces both sides to float64, rejecting non-numeric types
func numericPair(a, b interface{}) (float64, float64, bool) {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	return af, bf, aok && bok
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func toString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
