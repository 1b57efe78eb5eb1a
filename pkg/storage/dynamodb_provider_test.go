package storage

import (
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	_ = godotenv.Load("../../.env")
}

// TestDynamoDBProvider runs against a local DynamoDB instance or real AWS.
// It is skipped when neither credentials nor an endpoint are configured.
func TestDynamoDBProvider(t *testing.T) {
	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")
	endpoint := os.Getenv("DYNAMODB_ENDPOINT")

	if (accessKey == "" || secretKey == "") && endpoint == "" {
		t.Skip("Skipping DynamoDB tests as neither AWS credentials nor local endpoint are set")
	}

	provider, err := NewDynamoDBProvider(DynamoDBProviderConfig{
		Region:      "us-east-1",
		AccessKey:   accessKey,
		SecretKey:   secretKey,
		TablePrefix: "obscopilot_test_",
		Endpoint:    endpoint,
	})
	require.NoError(t, err)
	require.NoError(t, provider.Initialize())
	defer provider.Close()

	store := provider.WorkflowStore()
	w := sampleWorkflow(t, "dynamo round trip", true)

	require.NoError(t, store.SaveWorkflow(w))
	defer store.DeleteWorkflow(w.ID)

	loaded, err := store.GetWorkflow(w.ID)
	require.NoError(t, err)
	assert.Equal(t, w.ID, loaded.ID)
	assert.Equal(t, w.Name, loaded.Name)

	enabled, err := store.GetAllWorkflows(true)
	require.NoError(t, err)
	found := false
	for _, got := range enabled {
		if got.ID == w.ID {
			found = true
		}
	}
	assert.True(t, found)

	executions := provider.ExecutionStore()
	logID, err := executions.LogExecution(ExecutionLog{
		WorkflowID: w.ID,
		Status:     "completed",
		StartTime:  time.Now(),
		EndTime:    time.Now(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, logID)

	logs, err := executions.GetExecutionLogs(w.ID, 10)
	require.NoError(t, err)
	require.NotEmpty(t, logs)
	assert.Equal(t, logID, logs[0].ID)

	_, err = store.GetWorkflow("does-not-exist")
	assert.ErrorIs(t, err, ErrWorkflowNotFound)
}
