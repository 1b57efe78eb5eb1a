package workflow

import (
	"time"

	"github.com/google/uuid"

	"github.com/justedave0/obscopilot-sub001/pkg/template"
)

// ExecutionStatus tracks the lifecycle of one workflow run
type ExecutionStatus string

const (
	StatusReady     ExecutionStatus = "ready"
	StatusRunning   ExecutionStatus = "running"
	StatusCompleted ExecutionStatus = "completed"
	StatusFailed    ExecutionStatus = "failed"
	StatusCancelled ExecutionStatus = "cancelled"
)

// ExecutionContext is the mutable state of one workflow run. It is created
// fresh per firing and owned exclusively by that execution; the engine never
// shares a context between concurrent runs, so no locking is needed.
type ExecutionContext struct {
	ExecutionID   string
	WorkflowID    string
	TriggerData   map[string]interface{}
	Variables     map[string]interface{}
	ExecutionPath []string
	CurrentNodeID string
	Status        ExecutionStatus
	StartTime     time.Time
	EndTime       time.Time
	Error         string
}

// NewExecutionContext creates a context for a single workflow firing
func NewExecutionContext(workflowID string, triggerData map[string]interface{}) *ExecutionContext {
	if triggerData == nil {
		triggerData = make(map[string]interface{})
	}
	return &ExecutionContext{
		ExecutionID: uuid.New().String(),
		WorkflowID:  workflowID,
		TriggerData: triggerData,
		Variables:   make(map[string]interface{}),
		Status:      StatusReady,
	}
}

// SetVariable stores a value for later nodes and templates to reference
func (c *ExecutionContext) SetVariable(key string, value interface{}) {
	c.Variables[key] = value
}

// GetVariable reads a previously stored variable
func (c *ExecutionContext) GetVariable(key string) (interface{}, bool) {
	value, ok := c.Variables[key]
	return value, ok
}

// Scope returns the template variable scope for this execution
func (c *ExecutionContext) Scope() template.Scope {
	return template.Scope{
		Variables:   c.Variables,
		TriggerData: c.TriggerData,
	}
}

// RecordNode appends a node to the execution path audit trail
func (c *ExecutionContext) RecordNode(nodeID string) {
	c.CurrentNodeID = nodeID
	c.ExecutionPath = append(c.ExecutionPath, nodeID)
}

// MarkRunning moves the context from ready to running
func (c *ExecutionContext) MarkRunning() {
	c.Status = StatusRunning
	c.StartTime = time.Now()
}

// MarkCompleted finishes the run successfully
func (c *ExecutionContext) MarkCompleted() {
	c.Status = StatusCompleted
	c.EndTime = time.Now()
}

// MarkFailed finishes the run with an error
func (c *ExecutionContext) MarkFailed(err error) {
	c.Status = StatusFailed
	c.EndTime = time.Now()
	if err != nil {
		c.Error = err.Error()
	}
}

// MarkCancelled finishes the run without completing it
func (c *ExecutionContext) MarkCancelled() {
	c.Status = StatusCancelled
	c.EndTime = time.Now()
}

// Duration reports how long the run took, or time spent so far if still
// running.
func (c *ExecutionContext) Duration() time.Duration {
	if c.StartTime.IsZero() {
		return 0
	}
	if c.EndTime.IsZero() {
		return time.Since(c.StartTime)
	}
	return c.EndTime.Sub(c.StartTime)
}

// Record builds the execution log entry persisted after the run
func (c *ExecutionContext) Record() map[string]interface{} {
	record := map[string]interface{}{
		"execution_id":   c.ExecutionID,
		"workflow_id":    c.WorkflowID,
		"status":         string(c.Status),
		"execution_path": append([]string(nil), c.ExecutionPath...),
		"variables":      c.Variables,
		"trigger_data":   c.TriggerData,
		"start_time":     c.StartTime,
		"end_time":       c.EndTime,
		"duration_ms":    c.Duration().Milliseconds(),
	}
	if c.Error != "" {
		record["error"] = c.Error
	}
	return record
}
