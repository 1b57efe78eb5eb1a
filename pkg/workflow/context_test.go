package workflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutionContextLifecycle(t *testing.T) {
	ctx := NewExecutionContext("wf-1", map[string]interface{}{"username": "bob"})
	assert.Equal(t, StatusReady, ctx.Status)
	assert.NotEmpty(t, ctx.ExecutionID)

	ctx.MarkRunning()
	assert.Equal(t, StatusRunning, ctx.Status)
	assert.False(t, ctx.StartTime.IsZero())

	ctx.RecordNode("n1")
	ctx.RecordNode("n2")
	assert.Equal(t, []string{"n1", "n2"}, ctx.ExecutionPath)
	assert.Equal(t, "n2", ctx.CurrentNodeID)

	ctx.MarkCompleted()
	assert.Equal(t, StatusCompleted, ctx.Status)
	assert.False(t, ctx.EndTime.IsZero())
}

func TestExecutionContextFailure(t *testing.T) {
	ctx := NewExecutionContext("wf-1", nil)
	ctx.MarkRunning()
	ctx.MarkFailed(errors.New("webhook timed out"))

	assert.Equal(t, StatusFailed, ctx.Status)
	assert.Equal(t, "webhook timed out", ctx.Error)

	record := ctx.Record()
	assert.Equal(t, "failed", record["status"])
	assert.Equal(t, "webhook timed out", record["error"])
}

func TestExecutionContextScope(t *testing.T) {
	ctx := NewExecutionContext("wf-1", map[string]interface{}{"username": "bob"})
	ctx.SetVariable("greeting", "hi")

	scope := ctx.Scope()
	assert.Equal(t, "hi", scope.Variables["greeting"])
	assert.Equal(t, "bob", scope.TriggerData["username"])

	value, ok := ctx.GetVariable("greeting")
	require.True(t, ok)
	assert.Equal(t, "hi", value)

	_, ok = ctx.GetVariable("missing")
	assert.False(t, ok)
}
