package storage

import (
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPostgreSQLProvider runs against a real PostgreSQL instance and is
// skipped when POSTGRES_HOST is not set.
func TestPostgreSQLProvider(t *testing.T) {
	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		t.Skip("Skipping PostgreSQL tests as POSTGRES_HOST is not set")
	}

	port, _ := strconv.Atoi(os.Getenv("POSTGRES_PORT"))
	provider, err := NewPostgreSQLProvider(PostgreSQLProviderConfig{
		Host:     host,
		Port:     port,
		User:     os.Getenv("POSTGRES_USER"),
		Password: os.Getenv("POSTGRES_PASSWORD"),
		Database: os.Getenv("POSTGRES_DB"),
	})
	require.NoError(t, err)
	require.NoError(t, provider.Initialize())
	defer provider.Close()

	store := provider.WorkflowStore()
	w := sampleWorkflow(t, "postgres round trip", true)

	require.NoError(t, store.SaveWorkflow(w))
	defer store.DeleteWorkflow(w.ID)

	loaded, err := store.GetWorkflow(w.ID)
	require.NoError(t, err)
	assert.Equal(t, w.ID, loaded.ID)
	assert.Equal(t, w.Name, loaded.Name)

	w.Name = "renamed"
	require.NoError(t, store.SaveWorkflow(w))
	loaded, err = store.GetWorkflow(w.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", loaded.Name)

	executions := provider.ExecutionStore()
	logID, err := executions.LogExecution(ExecutionLog{
		WorkflowID:    w.ID,
		TriggerType:   "twitch_follow",
		TriggerData:   map[string]interface{}{"username": "bob"},
		Status:        "completed",
		ExecutionPath: []string{w.EntryNodeID},
		StartTime:     time.Now(),
		EndTime:       time.Now(),
	})
	require.NoError(t, err)

	logs, err := executions.GetExecutionLogs(w.ID, 10)
	require.NoError(t, err)
	require.NotEmpty(t, logs)
	assert.Equal(t, logID, logs[0].ID)
	assert.Equal(t, "bob", logs[0].TriggerData["username"])

	_, err = store.GetWorkflow("does-not-exist")
	assert.ErrorIs(t, err, ErrWorkflowNotFound)
}
