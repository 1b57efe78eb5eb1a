package storage

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/justedave0/obscopilot-sub001/pkg/workflow"
)

// MemoryProvider implements the Provider interface using in-memory maps.
// It is the default backend and the one tests run against.
type MemoryProvider struct {
	workflowStore  *MemoryWorkflowStore
	executionStore *MemoryExecutionStore
}

// NewMemoryProvider creates a new in-memory storage provider
func NewMemoryProvider() *MemoryProvider {
	executionStore := NewMemoryExecutionStore()
	return &MemoryProvider{
		workflowStore:  NewMemoryWorkflowStore(executionStore),
		executionStore: executionStore,
	}
}

// Initialize sets up the storage backend
func (p *MemoryProvider) Initialize() error {
	return nil
}

// Close cleans up resources
func (p *MemoryProvider) Close() error {
	return nil
}

// WorkflowStore returns the store for workflow definitions
func (p *MemoryProvider) WorkflowStore() WorkflowStore {
	return p.workflowStore
}

// ExecutionStore returns the store for execution history
func (p *MemoryProvider) ExecutionStore() ExecutionStore {
	return p.executionStore
}

// MemoryWorkflowStore keeps workflows as serialized JSON so callers never
// share mutable state with the store.
type MemoryWorkflowStore struct {
	workflows map[string][]byte
	enabled   map[string]bool
	logs      *MemoryExecutionStore
	mu        sync.RWMutex
}

// NewMemoryWorkflowStore creates a new in-memory workflow store. Deleting
// a workflow also drops its logs from the given execution store.
func NewMemoryWorkflowStore(logs *MemoryExecutionStore) *MemoryWorkflowStore {
	return &MemoryWorkflowStore{
		workflows: make(map[string][]byte),
		enabled:   make(map[string]bool),
		logs:      logs,
	}
}

// SaveWorkflow persists a workflow, inserting or updating by id
func (s *MemoryWorkflowStore) SaveWorkflow(w *workflow.Workflow) error {
	data, err := json.Marshal(w)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.workflows[w.ID] = data
	s.enabled[w.ID] = w.Enabled
	return nil
}

// GetWorkflow retrieves a workflow by id
func (s *MemoryWorkflowStore) GetWorkflow(workflowID string) (*workflow.Workflow, error) {
	s.mu.RLock()
	data, ok := s.workflows[workflowID]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrWorkflowNotFound
	}
	return workflow.ParseWorkflow(data)
}

// GetAllWorkflows returns every stored workflow, optionally only the
// enabled ones. Order is deterministic by workflow id.
func (s *MemoryWorkflowStore) GetAllWorkflows(enabledOnly bool) ([]*workflow.Workflow, error) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.workflows))
	for id := range s.workflows {
		if enabledOnly && !s.enabled[id] {
			continue
		}
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	sort.Strings(ids)

	workflows := make([]*workflow.Workflow, 0, len(ids))
	for _, id := range ids {
		w, err := s.GetWorkflow(id)
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, w)
	}
	return workflows, nil
}

// DeleteWorkflow removes a workflow and its execution logs
func (s *MemoryWorkflowStore) DeleteWorkflow(workflowID string) error {
	s.mu.Lock()
	_, ok := s.workflows[workflowID]
	if ok {
		delete(s.workflows, workflowID)
		delete(s.enabled, workflowID)
	}
	s.mu.Unlock()

	if !ok {
		return ErrWorkflowNotFound
	}
	if s.logs != nil {
		s.logs.deleteWorkflow(workflowID)
	}
	return nil
}

// MemoryExecutionStore keeps execution logs per workflow, newest first
type MemoryExecutionStore struct {
	logs map[string][]ExecutionLog
	mu   sync.RWMutex
}

// NewMemoryExecutionStore creates a new in-memory execution store
func NewMemoryExecutionStore() *MemoryExecutionStore {
	return &MemoryExecutionStore{
		logs: make(map[string][]ExecutionLog),
	}
}

// LogExecution persists one finished run and returns the log id
func (s *MemoryExecutionStore) LogExecution(log ExecutionLog) (string, error) {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[log.WorkflowID] = append(s.logs[log.WorkflowID], log)
	return log.ID, nil
}

// GetExecutionLogs returns the most recent runs of a workflow, newest
// first, at most limit entries
func (s *MemoryExecutionStore) GetExecutionLogs(workflowID string, limit int) ([]ExecutionLog, error) {
	s.mu.RLock()
	stored := s.logs[workflowID]
	logs := make([]ExecutionLog, len(stored))
	copy(logs, stored)
	s.mu.RUnlock()

	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].StartTime.After(logs[j].StartTime)
	})

	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

func (s *MemoryExecutionStore) deleteWorkflow(workflowID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.logs, workflowID)
}
