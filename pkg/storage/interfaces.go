// Package storage provides persistence for workflow definitions and
// execution history.
package storage

import (
	"errors"
	"time"

	"github.com/justedave0/obscopilot-sub001/pkg/workflow"
)

// Errors returned by storage providers
var (
	ErrWorkflowNotFound = errors.New("workflow not found")
)

// Provider defines the interface for persistence backends
type Provider interface {
	// Initialize sets up the storage backend
	Initialize() error

	// Close cleans up resources
	Close() error

	// WorkflowStore returns the store for workflow definitions
	WorkflowStore() WorkflowStore

	// ExecutionStore returns the store for execution history
	ExecutionStore() ExecutionStore
}

// WorkflowStore manages workflow definition persistence
type WorkflowStore interface {
	// SaveWorkflow persists a workflow, inserting or updating by id
	SaveWorkflow(w *workflow.Workflow) error

	// GetWorkflow retrieves a workflow by id
	GetWorkflow(workflowID string) (*workflow.Workflow, error)

	// GetAllWorkflows returns every stored workflow, optionally only
	// the enabled ones
	GetAllWorkflows(enabledOnly bool) ([]*workflow.Workflow, error)

	// DeleteWorkflow removes a workflow and its execution logs
	DeleteWorkflow(workflowID string) error
}

// ExecutionStore manages execution history persistence
type ExecutionStore interface {
	// LogExecution persists one finished run and returns the log id
	LogExecution(log ExecutionLog) (string, error)

	// GetExecutionLogs returns the most recent runs of a workflow,
	// newest first, at most limit entries
	GetExecutionLogs(workflowID string, limit int) ([]ExecutionLog, error)
}

// ExecutionLog is the persisted record of one workflow run
type ExecutionLog struct {
	ID            string                 `json:"id"`
	WorkflowID    string                 `json:"workflow_id"`
	TriggerID     string                 `json:"trigger_id,omitempty"`
	TriggerType   string                 `json:"trigger_type,omitempty"`
	TriggerData   map[string]interface{} `json:"trigger_data,omitempty"`
	Status        string                 `json:"status"`
	ExecutionPath []string               `json:"execution_path,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
	Error         string                 `json:"error,omitempty"`
	StartTime     time.Time              `json:"start_time"`
	EndTime       time.Time              `json:"end_time"`
}
