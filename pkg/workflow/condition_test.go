package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateMissingFieldIsFalse(t *testing.T) {
	data := map[string]interface{}{"username": "bob"}

	kinds := []ConditionKind{
		ConditionEquals, ConditionNotEquals, ConditionContains,
		ConditionNotContains, ConditionStartsWith, ConditionEndsWith,
		ConditionGreaterThan, ConditionLessThan, ConditionRegexMatch,
	}
	for _, kind := range kinds {
		c := Condition{Kind: kind, Field: "missing.path", Value: "anything"}
		assert.False(t, c.Evaluate(data), "kind %s", kind)
	}
}

func TestEvaluateEquals(t *testing.T) {
	data := map[string]interface{}{"username": "bob", "bits": float64(100)}

	assert.True(t, Condition{Kind: ConditionEquals, Field: "username", Value: "bob"}.Evaluate(data))
	assert.False(t, Condition{Kind: ConditionEquals, Field: "username", Value: "alice"}.Evaluate(data))

	// JSON numbers decode as float64 but should still equal int literals
	assert.True(t, Condition{Kind: ConditionEquals, Field: "bits", Value: 100}.Evaluate(data))

	assert.True(t, Condition{Kind: ConditionNotEquals, Field: "username", Value: "alice"}.Evaluate(data))
}

func TestEvaluateContains(t *testing.T) {
	data := map[string]interface{}{
		"message": "hello world",
		"badges":  []interface{}{"moderator", "subscriber"},
		"bits":    float64(100),
	}

	assert.True(t, Condition{Kind: ConditionContains, Field: "message", Value: "world"}.Evaluate(data))
	assert.True(t, Condition{Kind: ConditionContains, Field: "badges", Value: "moderator"}.Evaluate(data))
	assert.False(t, Condition{Kind: ConditionContains, Field: "badges", Value: "vip"}.Evaluate(data))
	assert.True(t, Condition{Kind: ConditionNotContains, Field: "badges", Value: "vip"}.Evaluate(data))

	// Numbers are not containers, so both contains and not_contains fail
	assert.False(t, Condition{Kind: ConditionContains, Field: "bits", Value: "1"}.Evaluate(data))
	assert.False(t, Condition{Kind: ConditionNotContains, Field: "bits", Value: "1"}.Evaluate(data))
}

func TestEvaluateStringAffixes(t *testing.T) {
	data := map[string]interface{}{"message": "!so streamer"}

	assert.True(t, Condition{Kind: ConditionStartsWith, Field: "message", Value: "!so"}.Evaluate(data))
	assert.True(t, Condition{Kind: ConditionEndsWith, Field: "message", Value: "streamer"}.Evaluate(data))
	assert.False(t, Condition{Kind: ConditionStartsWith, Field: "message", Value: "!shoutout"}.Evaluate(data))
}

func TestEvaluateNumericComparisons(t *testing.T) {
	data := map[string]interface{}{"bits": float64(250), "username": "bob"}

	assert.True(t, Condition{Kind: ConditionGreaterThan, Field: "bits", Value: 100}.Evaluate(data))
	assert.False(t, Condition{Kind: ConditionGreaterThan, Field: "bits", Value: 500}.Evaluate(data))
	assert.True(t, Condition{Kind: ConditionLessThan, Field: "bits", Value: 500}.Evaluate(data))

	// Non-numeric operands are false, not an error
	assert.False(t, Condition{Kind: ConditionGreaterThan, Field: "username", Value: 100}.Evaluate(data))
	assert.False(t, Condition{Kind: ConditionGreaterThan, Field: "bits", Value: "100"}.Evaluate(data))
}

func TestEvaluateRegexMatch(t *testing.T) {
	data := map[string]interface{}{"message": "hello chat", "bits": float64(250)}

	assert.True(t, Condition{Kind: ConditionRegexMatch, Field: "message", Value: "^hello"}.Evaluate(data))
	assert.False(t, Condition{Kind: ConditionRegexMatch, Field: "message", Value: "^bye"}.Evaluate(data))

	// Numeric fields are coerced to string before matching
	assert.True(t, Condition{Kind: ConditionRegexMatch, Field: "bits", Value: `^\d+$`}.Evaluate(data))

	// Invalid pattern fails closed
	assert.False(t, Condition{Kind: ConditionRegexMatch, Field: "message", Value: "[invalid"}.Evaluate(data))
}

func TestEvaluateExpression(t *testing.T) {
	data := map[string]interface{}{"bits": 250, "username": "bob"}

	assert.True(t, Condition{Kind: ConditionExpression, Value: "bits > 100"}.Evaluate(data))
	assert.False(t, Condition{Kind: ConditionExpression, Value: "bits > 1000"}.Evaluate(data))
	assert.False(t, Condition{Kind: ConditionExpression, Value: "syntax error ((("}.Evaluate(data))
	assert.False(t, Condition{Kind: ConditionExpression, Value: 42}.Evaluate(data))
}

func TestEvaluateUnknownKindIsFalse(t *testing.T) {
	data := map[string]interface{}{"field": "value"}
	c := Condition{Kind: "no_such_kind", Field: "field", Value: "value"}

	assert.False(t, c.Evaluate(data))
}

func TestEvaluateNestedFieldPath(t *testing.T) {
	data := map[string]interface{}{
		"reward": map[string]interface{}{"cost": float64(500)},
	}

	assert.True(t, Condition{Kind: ConditionEquals, Field: "reward.cost", Value: 500}.Evaluate(data))
	assert.False(t, Condition{Kind: ConditionEquals, Field: "reward.missing", Value: 500}.Evaluate(data))
}
