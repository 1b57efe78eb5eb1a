// Package template substitutes {variable} placeholders in action
// configuration strings against a layered variable scope.
package template

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/justedave0/obscopilot-sub001/pkg/logging"
)

// Placeholders look like {name} or {path.to.value}. Doubled braces escape a
// literal brace: {{name}} renders as {name} without substitution.
var placeholderPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// Sentinels used to protect escaped braces during substitution
const (
	openSentinel  = "\x00"
	closeSentinel = "\x01"
)

// Resolver substitutes placeholders in template strings
type Resolver struct {
	logger logging.Logger
}

// NewResolver creates a new template resolver
func NewResolver(logger logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Resolver{logger: logger}
}

// Scope is the layered variable namespace a template resolves against.
// Execution variables take precedence over trigger data; trigger data is
// visible both flattened at the top level and nested under "trigger_data".
type Scope struct {
	// Variables holds per-execution variables (highest precedence)
	Variables map[string]interface{}

	// TriggerData holds the payload of the event that fired the workflow
	TriggerData map[string]interface{}
}

// Resolve substitutes every {placeholder} in the template from the scope.
//
// If any placeholder cannot be resolved the original template is returned
// unmodified and a warning is logged; partial substitution never happens and
// no error is ever surfaced to the caller.
func (r *Resolver) Resolve(template string, scope Scope) string {
	if template == "" || !strings.ContainsRune(template, '{') {
		return template
	}

	// Protect escaped braces before looking for placeholders.
	escaped := strings.ReplaceAll(template, "{{", openSentinel)
	escaped = strings.ReplaceAll(escaped, "}}", closeSentinel)

	failed := false
	resolved := placeholderPattern.ReplaceAllStringFunc(escaped, func(match string) string {
		name := strings.TrimSpace(match[1 : len(match)-1])
		value, ok := lookup(name, scope)
		if !ok {
			failed = true
			return match
		}
		return stringify(value)
	})

	if failed {
		r.logger.Warn("unresolved template placeholder, passing template through",
			logging.F("template", template))
		return template
	}

	resolved = strings.ReplaceAll(resolved, openSentinel, "{")
	resolved = strings.ReplaceAll(resolved, closeSentinel, "}")
	return resolved
}

// lookup finds a (possibly dotted) placeholder name in the scope, checking
// execution variables first, then trigger data.
func lookup(name string, scope Scope) (interface{}, bool) {
	if value, ok := LookupPath(scope.Variables, name); ok {
		return value, true
	}
	if value, ok := LookupPath(scope.TriggerData, name); ok {
		return value, true
	}
	// Explicit access to the raw payload: {trigger_data.username}
	if rest, ok := strings.CutPrefix(name, "trigger_data."); ok {
		return LookupPath(scope.TriggerData, rest)
	}
	if name == "trigger_data" {
		return scope.TriggerData, scope.TriggerData != nil
	}
	return nil, false
}

// LookupPath retrieves a nested value from a map using dot notation,
// e.g. "reward.cost". A missing path reports false rather than erroring.
func LookupPath(data map[string]interface{}, path string) (interface{}, bool) {
	if data == nil {
		return nil, false
	}

	var current interface{} = data
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		// JSON numbers decode as float64; render integers without a decimal
		// point so "{bits} bits" reads naturally.
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
