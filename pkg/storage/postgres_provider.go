package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/justedave0/obscopilot-sub001/pkg/workflow"
)

// PostgreSQLProvider implements the Provider interface using PostgreSQL
type PostgreSQLProvider struct {
	db             *sql.DB
	workflowStore  *PostgreSQLWorkflowStore
	executionStore *PostgreSQLExecutionStore
}

// PostgreSQLProviderConfig contains configuration for the PostgreSQL provider
type PostgreSQLProviderConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// NewPostgreSQLProvider creates a new PostgreSQL storage provider
func NewPostgreSQLProvider(config PostgreSQLProviderConfig) (*PostgreSQLProvider, error) {
	if config.Port == 0 {
		config.Port = 5432
	}
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.Database, config.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	return &PostgreSQLProvider{
		db:             db,
		workflowStore:  NewPostgreSQLWorkflowStore(db),
		executionStore: NewPostgreSQLExecutionStore(db),
	}, nil
}

// Initialize creates the tables if they don't exist
func (p *PostgreSQLProvider) Initialize() error {
	if err := p.workflowStore.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize workflow store: %w", err)
	}
	if err := p.executionStore.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize execution store: %w", err)
	}
	return nil
}

// Close cleans up resources
func (p *PostgreSQLProvider) Close() error {
	return p.db.Close()
}

// WorkflowStore returns the store for workflow definitions
func (p *PostgreSQLProvider) WorkflowStore() WorkflowStore {
	return p.workflowStore
}

// ExecutionStore returns the store for execution history
func (p *PostgreSQLProvider) ExecutionStore() ExecutionStore {
	return p.executionStore
}

// PostgreSQLWorkflowStore implements the WorkflowStore interface using PostgreSQL
type PostgreSQLWorkflowStore struct {
	db *sql.DB
}

// NewPostgreSQLWorkflowStore creates a new PostgreSQL workflow store
func NewPostgreSQLWorkflowStore(db *sql.DB) *PostgreSQLWorkflowStore {
	return &PostgreSQLWorkflowStore{db: db}
}

// Initialize creates the workflows table if it doesn't exist
func (s *PostgreSQLWorkflowStore) Initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS workflows (
			workflow_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			enabled BOOLEAN NOT NULL DEFAULT TRUE,
			definition BYTEA NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create workflows table: %w", err)
	}
	return nil
}

// SaveWorkflow persists a workflow, inserting or updating by id
func (s *PostgreSQLWorkflowStore) SaveWorkflow(w *workflow.Workflow) error {
	definition, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow: %w", err)
	}

	var exists bool
	err = s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM workflows WHERE workflow_id = $1)", w.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check if workflow exists: %w", err)
	}

	now := time.Now()
	if exists {
		_, err = s.db.Exec(
			"UPDATE workflows SET name = $1, description = $2, enabled = $3, definition = $4, updated_at = $5 WHERE workflow_id = $6",
			w.Name, w.Description, w.Enabled, definition, now, w.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update workflow: %w", err)
		}
	} else {
		_, err = s.db.Exec(
			"INSERT INTO workflows (workflow_id, name, description, enabled, definition, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)",
			w.ID, w.Name, w.Description, w.Enabled, definition, now, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert workflow: %w", err)
		}
	}
	return nil
}

// GetWorkflow retrieves a workflow by id
func (s *PostgreSQLWorkflowStore) GetWorkflow(workflowID string) (*workflow.Workflow, error) {
	var definition []byte
	err := s.db.QueryRow("SELECT definition FROM workflows WHERE workflow_id = $1", workflowID).Scan(&definition)
	if err == sql.ErrNoRows {
		return nil, ErrWorkflowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}
	return workflow.ParseWorkflow(definition)
}

// GetAllWorkflows returns every stored workflow, optionally only the
// enabled ones
func (s *PostgreSQLWorkflowStore) GetAllWorkflows(enabledOnly bool) ([]*workflow.Workflow, error) {
	query := "SELECT definition FROM workflows ORDER BY workflow_id"
	if enabledOnly {
		query = "SELECT definition FROM workflows WHERE enabled = TRUE ORDER BY workflow_id"
	}

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}
	defer rows.Close()

	var workflows []*workflow.Workflow
	for rows.Next() {
		var definition []byte
		if err := rows.Scan(&definition); err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}
		w, err := workflow.ParseWorkflow(definition)
		if err != nil {
			return nil, fmt.Errorf("failed to parse workflow: %w", err)
		}
		workflows = append(workflows, w)
	}
	return workflows, rows.Err()
}

// DeleteWorkflow removes a workflow and its execution logs
func (s *PostgreSQLWorkflowStore) DeleteWorkflow(workflowID string) error {
	result, err := s.db.Exec("DELETE FROM workflows WHERE workflow_id = $1", workflowID)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrWorkflowNotFound
	}

	_, err = s.db.Exec("DELETE FROM workflow_execution_logs WHERE workflow_id = $1", workflowID)
	if err != nil {
		return fmt.Errorf("failed to delete execution logs: %w", err)
	}
	return nil
}

// PostgreSQLExecutionStore implements the ExecutionStore interface using PostgreSQL
type PostgreSQLExecutionStore struct {
	db *sql.DB
}

// NewPostgreSQLExecutionStore creates a new PostgreSQL execution store
func NewPostgreSQLExecutionStore(db *sql.DB) *PostgreSQLExecutionStore {
	return &PostgreSQLExecutionStore{db: db}
}

// Initialize creates the execution logs table if it doesn't exist
func (s *PostgreSQLExecutionStore) Initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS workflow_execution_logs (
			log_id TEXT PRIMARY KEY,
			workflow_id TEXT NOT NULL,
			trigger_id TEXT,
			trigger_type TEXT,
			trigger_data JSONB,
			status TEXT NOT NULL,
			execution_path JSONB,
			variables JSONB,
			error TEXT,
			start_time TIMESTAMP NOT NULL,
			end_time TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS workflow_execution_logs_workflow_id_idx
			ON workflow_execution_logs (workflow_id, start_time DESC);
	`)
	if err != nil {
		return fmt.Errorf("failed to create execution logs table: %w", err)
	}
	return nil
}

// LogExecution persists one finished run and returns the log id
func (s *PostgreSQLExecutionStore) LogExecution(log ExecutionLog) (string, error) {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}

	triggerData, err := json.Marshal(log.TriggerData)
	if err != nil {
		return "", fmt.Errorf("failed to marshal trigger data: %w", err)
	}
	executionPath, err := json.Marshal(log.ExecutionPath)
	if err != nil {
		return "", fmt.Errorf("failed to marshal execution path: %w", err)
	}
	variables, err := json.Marshal(log.Variables)
	if err != nil {
		return "", fmt.Errorf("failed to marshal variables: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO workflow_execution_logs (
			log_id, workflow_id, trigger_id, trigger_type, trigger_data,
			status, execution_path, variables, error, start_time, end_time
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		log.ID, log.WorkflowID, log.TriggerID, log.TriggerType, triggerData,
		log.Status, executionPath, variables, log.Error, log.StartTime, log.EndTime,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert execution log: %w", err)
	}
	return log.ID, nil
}

// GetExecutionLogs returns the most recent runs of a workflow, newest
// first, at most limit entries
func (s *PostgreSQLExecutionStore) GetExecutionLogs(workflowID string, limit int) ([]ExecutionLog, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.Query(`
		SELECT log_id, trigger_id, trigger_type, trigger_data, status,
		       execution_path, variables, error, start_time, end_time
		FROM workflow_execution_logs
		WHERE workflow_id = $1
		ORDER BY start_time DESC
		LIMIT $2`,
		workflowID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query execution logs: %w", err)
	}
	defer rows.Close()

	var logs []ExecutionLog
	for rows.Next() {
		var (
			log           ExecutionLog
			triggerData   []byte
			executionPath []byte
			variables     []byte
			endTime       sql.NullTime
		)
		err := rows.Scan(
			&log.ID, &log.TriggerID, &log.TriggerType, &triggerData, &log.Status,
			&executionPath, &variables, &log.Error, &log.StartTime, &endTime,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution log: %w", err)
		}

		log.WorkflowID = workflowID
		if endTime.Valid {
			log.EndTime = endTime.Time
		}
		if len(triggerData) > 0 {
			if err := json.Unmarshal(triggerData, &log.TriggerData); err != nil {
				return nil, fmt.Errorf("failed to unmarshal trigger data: %w", err)
			}
		}
		if len(executionPath) > 0 {
			if err := json.Unmarshal(executionPath, &log.ExecutionPath); err != nil {
				return nil, fmt.Errorf("failed to unmarshal execution path: %w", err)
			}
		}
		if len(variables) > 0 {
			if err := json.Unmarshal(variables, &log.Variables); err != nil {
				return nil, fmt.Errorf("failed to unmarshal variables: %w", err)
			}
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
