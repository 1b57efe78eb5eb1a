package scripting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateArithmetic(t *testing.T) {
	e := NewExpressionEvaluator()

	result, err := e.Evaluate("1 + 2", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), result)
}

func TestEvaluateWithData(t *testing.T) {
	e := NewExpressionEvaluator()
	data := map[string]interface{}{"bits": 250, "username": "bob"}

	ok, err := e.EvaluateBool("bits > 100 && username === 'bob'", data)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.EvaluateBool("data.bits > 1000", data)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvaluateSyntaxError(t *testing.T) {
	e := NewExpressionEvaluator()

	_, err := e.Evaluate("this is not javascript", nil)
	assert.Error(t, err)

	ok, err := e.EvaluateBool("(((", nil)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestEvaluateEmptyExpression(t *testing.T) {
	e := NewExpressionEvaluator()

	_, err := e.Evaluate("", nil)
	assert.Error(t, err)
}

func TestEvaluateBoolTruthiness(t *testing.T) {
	e := NewExpressionEvaluator()

	ok, err := e.EvaluateBool("'non-empty'", nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.EvaluateBool("0", nil)
	require.NoError(t, err)
	assert.False(t, ok)
}
