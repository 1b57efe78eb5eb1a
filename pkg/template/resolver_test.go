package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveExecutionVariableWins(t *testing.T) {
	r := NewResolver(nil)
	scope := Scope{
		Variables:   map[string]interface{}{"username": "override"},
		TriggerData: map[string]interface{}{"username": "original"},
	}

	assert.Equal(t, "hello override", r.Resolve("hello {username}", scope))
}

func TestResolveTriggerDataFlattened(t *testing.T) {
	r := NewResolver(nil)
	scope := Scope{
		TriggerData: map[string]interface{}{"username": "bob", "bits": float64(250)},
	}

	assert.Equal(t, "bob cheered 250 bits", r.Resolve("{username} cheered {bits} bits", scope))
}

func TestResolveNestedPath(t *testing.T) {
	r := NewResolver(nil)
	scope := Scope{
		TriggerData: map[string]interface{}{
			"reward": map[string]interface{}{"title": "Hydrate", "cost": float64(500)},
		},
	}

	assert.Equal(t, "Hydrate for 500", r.Resolve("{reward.title} for {reward.cost}", scope))
	assert.Equal(t, "Hydrate", r.Resolve("{trigger_data.reward.title}", scope))
}

func TestResolveEscapedBraces(t *testing.T) {
	r := NewResolver(nil)

	// {{a}} renders a literal {a} whether or not "a" is defined.
	assert.Equal(t, "{a}", r.Resolve("{{a}}", Scope{}))
	assert.Equal(t, "{a}", r.Resolve("{{a}}", Scope{
		Variables: map[string]interface{}{"a": "value"},
	}))
}

func TestResolveUnresolvableReturnsOriginal(t *testing.T) {
	r := NewResolver(nil)
	scope := Scope{Variables: map[string]interface{}{"known": "yes"}}

	// No partial substitution: one bad placeholder leaves the whole
	// template untouched.
	original := "{known} and {unknown}"
	assert.Equal(t, original, r.Resolve(original, scope))
}

func TestResolveNoPlaceholders(t *testing.T) {
	r := NewResolver(nil)
	assert.Equal(t, "plain text", r.Resolve("plain text", Scope{}))
	assert.Equal(t, "", r.Resolve("", Scope{}))
}
