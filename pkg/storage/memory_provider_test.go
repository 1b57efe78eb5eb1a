package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justedave0/obscopilot-sub001/pkg/workflow"
)

func sampleWorkflow(t *testing.T, name string, enabled bool) *workflow.Workflow {
	t.Helper()

	w := workflow.NewWorkflow(name)
	w.Enabled = enabled
	w.AddTrigger(workflow.NewTrigger("on follow", workflow.TriggerTwitchFollow, nil))

	action, err := workflow.NewAction("thank follower", workflow.ActionTwitchSendChatMessage, map[string]interface{}{
		"message": "Thanks for the follow, {username}!",
	})
	require.NoError(t, err)
	w.AddNode(action)
	return w
}

func TestMemoryWorkflowStoreRoundTrip(t *testing.T) {
	provider := NewMemoryProvider()
	require.NoError(t, provider.Initialize())
	defer provider.Close()

	store := provider.WorkflowStore()
	w := sampleWorkflow(t, "follow alert", true)

	require.NoError(t, store.SaveWorkflow(w))

	loaded, err := store.GetWorkflow(w.ID)
	require.NoError(t, err)
	assert.Equal(t, w.ID, loaded.ID)
	assert.Equal(t, "follow alert", loaded.Name)
	assert.Len(t, loaded.Triggers, 1)
	assert.Len(t, loaded.Nodes, 1)
	assert.Equal(t, w.EntryNodeID, loaded.EntryNodeID)
}

func TestMemoryWorkflowStoreGetMissing(t *testing.T) {
	store := NewMemoryProvider().WorkflowStore()

	_, err := store.GetWorkflow("missing")
	assert.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestMemoryWorkflowStoreReturnsCopies(t *testing.T) {
	store := NewMemoryProvider().WorkflowStore()
	w := sampleWorkflow(t, "original", true)
	require.NoError(t, store.SaveWorkflow(w))

	loaded, err := store.GetWorkflow(w.ID)
	require.NoError(t, err)
	loaded.Name = "mutated"

	again, err := store.GetWorkflow(w.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", again.Name)
}

func TestMemoryWorkflowStoreSaveOverwrites(t *testing.T) {
	store := NewMemoryProvider().WorkflowStore()
	w := sampleWorkflow(t, "before", true)
	require.NoError(t, store.SaveWorkflow(w))

	w.Name = "after"
	require.NoError(t, store.SaveWorkflow(w))

	loaded, err := store.GetWorkflow(w.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", loaded.Name)

	all, err := store.GetAllWorkflows(false)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMemoryWorkflowStoreEnabledFilter(t *testing.T) {
	store := NewMemoryProvider().WorkflowStore()
	enabled := sampleWorkflow(t, "enabled", true)
	disabled := sampleWorkflow(t, "disabled", false)
	require.NoError(t, store.SaveWorkflow(enabled))
	require.NoError(t, store.SaveWorkflow(disabled))

	all, err := store.GetAllWorkflows(false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyEnabled, err := store.GetAllWorkflows(true)
	require.NoError(t, err)
	require.Len(t, onlyEnabled, 1)
	assert.Equal(t, enabled.ID, onlyEnabled[0].ID)
}

func TestMemoryWorkflowStoreDeleteRemovesLogs(t *testing.T) {
	provider := NewMemoryProvider()
	store := provider.WorkflowStore()
	executions := provider.ExecutionStore()

	w := sampleWorkflow(t, "doomed", true)
	require.NoError(t, store.SaveWorkflow(w))

	_, err := executions.LogExecution(ExecutionLog{
		WorkflowID: w.ID,
		Status:     "completed",
		StartTime:  time.Now(),
	})
	require.NoError(t, err)

	require.NoError(t, store.DeleteWorkflow(w.ID))

	_, err = store.GetWorkflow(w.ID)
	assert.ErrorIs(t, err, ErrWorkflowNotFound)

	logs, err := executions.GetExecutionLogs(w.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, logs)

	assert.ErrorIs(t, store.DeleteWorkflow(w.ID), ErrWorkflowNotFound)
}

func TestMemoryExecutionStoreNewestFirstWithLimit(t *testing.T) {
	store := NewMemoryExecutionStore()
	base := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_, err := store.LogExecution(ExecutionLog{
			WorkflowID: "wf-1",
			Status:     "completed",
			StartTime:  base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	logs, err := store.GetExecutionLogs("wf-1", 3)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, base.Add(4*time.Minute), logs[0].StartTime)
	assert.Equal(t, base.Add(2*time.Minute), logs[2].StartTime)
}

func TestMemoryExecutionStoreAssignsLogID(t *testing.T) {
	store := NewMemoryExecutionStore()

	id, err := store.LogExecution(ExecutionLog{
		WorkflowID: "wf-1",
		Status:     "failed",
		StartTime:  time.Now(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	logs, err := store.GetExecutionLogs("wf-1", 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, id, logs[0].ID)
}
