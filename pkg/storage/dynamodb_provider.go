package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/aws/aws-sdk-go/service/dynamodb/expression"
	"github.com/google/uuid"

	"github.com/justedave0/obscopilot-sub001/pkg/workflow"
)

// DynamoDBProvider implements the Provider interface using DynamoDB
type DynamoDBProvider struct {
	client         dynamodbiface.DynamoDBAPI
	workflowStore  *DynamoDBWorkflowStore
	executionStore *DynamoDBExecutionStore
}

// DynamoDBProviderConfig contains configuration for the DynamoDB provider
type DynamoDBProviderConfig struct {
	Region      string
	AccessKey   string
	SecretKey   string
	TablePrefix string
	Endpoint    string // Optional, for local DynamoDB
}

// NewDynamoDBProvider creates a new DynamoDB storage provider
func NewDynamoDBProvider(config DynamoDBProviderConfig) (*DynamoDBProvider, error) {
	awsConfig := &aws.Config{
		Region: aws.String(config.Region),
	}
	if config.AccessKey != "" && config.SecretKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(config.AccessKey, config.SecretKey, "")
	}
	if config.Endpoint != "" {
		awsConfig.Endpoint = aws.String(config.Endpoint)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return NewDynamoDBProviderWithClient(dynamodb.New(sess), config.TablePrefix), nil
}

// NewDynamoDBProviderWithClient creates a DynamoDB storage provider with a
// custom client, primarily for testing with mocks
func NewDynamoDBProviderWithClient(client dynamodbiface.DynamoDBAPI, tablePrefix string) *DynamoDBProvider {
	return &DynamoDBProvider{
		client:         client,
		workflowStore:  NewDynamoDBWorkflowStore(client, tablePrefix),
		executionStore: NewDynamoDBExecutionStore(client, tablePrefix),
	}
}

// Initialize creates the tables if they don't exist
func (p *DynamoDBProvider) Initialize() error {
	if err := p.workflowStore.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize workflow store: %w", err)
	}
	if err := p.executionStore.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize execution store: %w", err)
	}
	return nil
}

// Close cleans up resources
func (p *DynamoDBProvider) Close() error {
	return nil
}

// WorkflowStore returns the store for workflow definitions
func (p *DynamoDBProvider) WorkflowStore() WorkflowStore {
	return p.workflowStore
}

// ExecutionStore returns the store for execution history
func (p *DynamoDBProvider) ExecutionStore() ExecutionStore {
	return p.executionStore
}

// ensureTable creates a DynamoDB table if it does not exist and waits for
// it to become active.
func ensureTable(client dynamodbiface.DynamoDBAPI, input *dynamodb.CreateTableInput) error {
	_, err := client.DescribeTable(&dynamodb.DescribeTableInput{
		TableName: input.TableName,
	})
	if err == nil {
		return nil
	}

	if aerr, ok := err.(awserr.Error); ok && aerr.Code() == dynamodb.ErrCodeResourceNotFoundException {
		if _, err := client.CreateTable(input); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
		err = client.WaitUntilTableExists(&dynamodb.DescribeTableInput{
			TableName: input.TableName,
		})
		if err != nil {
			return fmt.Errorf("failed to wait for table creation: %w", err)
		}
		return nil
	}

	return fmt.Errorf("failed to check if table exists: %w", err)
}

// DynamoDBWorkflowStore implements the WorkflowStore interface using DynamoDB
type DynamoDBWorkflowStore struct {
	client    dynamodbiface.DynamoDBAPI
	tableName string
}

// NewDynamoDBWorkflowStore creates a new DynamoDB workflow store
func NewDynamoDBWorkflowStore(client dynamodbiface.DynamoDBAPI, tablePrefix string) *DynamoDBWorkflowStore {
	return &DynamoDBWorkflowStore{
		client:    client,
		tableName: tablePrefix + "workflows",
	}
}

type dynamoDBWorkflowItem struct {
	WorkflowID string `json:"WorkflowID"`
	Name       string `json:"Name"`
	Enabled    bool   `json:"Enabled"`
	Definition string `json:"Definition"`
	UpdatedAt  int64  `json:"UpdatedAt"`
}

// Initialize creates the workflows table if it doesn't exist
func (s *DynamoDBWorkflowStore) Initialize() error {
	return ensureTable(s.client, &dynamodb.CreateTableInput{
		TableName: aws.String(s.tableName),
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{
				AttributeName: aws.String("WorkflowID"),
				AttributeType: aws.String("S"),
			},
		},
		KeySchema: []*dynamodb.KeySchemaElement{
			{
				AttributeName: aws.String("WorkflowID"),
				KeyType:       aws.String("HASH"),
			},
		},
		BillingMode: aws.String("PAY_PER_REQUEST"),
	})
}

// SaveWorkflow persists a workflow, inserting or updating by id
func (s *DynamoDBWorkflowStore) SaveWorkflow(w *workflow.Workflow) error {
	definition, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow: %w", err)
	}

	av, err := dynamodbattribute.MarshalMap(dynamoDBWorkflowItem{
		WorkflowID: w.ID,
		Name:       w.Name,
		Enabled:    w.Enabled,
		Definition: string(definition),
		UpdatedAt:  time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal workflow item: %w", err)
	}

	_, err = s.client.PutItem(&dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to save workflow: %w", err)
	}
	return nil
}

// GetWorkflow retrieves a workflow by id
func (s *DynamoDBWorkflowStore) GetWorkflow(workflowID string) (*workflow.Workflow, error) {
	result, err := s.client.GetItem(&dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]*dynamodb.AttributeValue{
			"WorkflowID": {
				S: aws.String(workflowID),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}
	if result.Item == nil {
		return nil, ErrWorkflowNotFound
	}

	var item dynamoDBWorkflowItem
	if err := dynamodbattribute.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow item: %w", err)
	}
	return workflow.ParseWorkflow([]byte(item.Definition))
}

// GetAllWorkflows returns every stored workflow, optionally only the
// enabled ones
func (s *DynamoDBWorkflowStore) GetAllWorkflows(enabledOnly bool) ([]*workflow.Workflow, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(s.tableName),
	}

	if enabledOnly {
		filter := expression.Name("Enabled").Equal(expression.Value(true))
		expr, err := expression.NewBuilder().WithFilter(filter).Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build expression: %w", err)
		}
		input.FilterExpression = expr.Filter()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	result, err := s.client.Scan(input)
	if err != nil {
		return nil, fmt.Errorf("failed to scan workflows: %w", err)
	}

	workflows := make([]*workflow.Workflow, 0, len(result.Items))
	for _, rawItem := range result.Items {
		var item dynamoDBWorkflowItem
		if err := dynamodbattribute.UnmarshalMap(rawItem, &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal workflow item: %w", err)
		}
		w, err := workflow.ParseWorkflow([]byte(item.Definition))
		if err != nil {
			return nil, fmt.Errorf("failed to parse workflow: %w", err)
		}
		workflows = append(workflows, w)
	}
	return workflows, nil
}

// DeleteWorkflow removes a workflow and its execution logs
func (s *DynamoDBWorkflowStore) DeleteWorkflow(workflowID string) error {
	_, err := s.client.DeleteItem(&dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]*dynamodb.AttributeValue{
			"WorkflowID": {
				S: aws.String(workflowID),
			},
		},
		ConditionExpression: aws.String("attribute_exists(WorkflowID)"),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == dynamodb.ErrCodeConditionalCheckFailedException {
			return ErrWorkflowNotFound
		}
		return fmt.Errorf("failed to delete workflow: %w", err)
	}
	return nil
}

// DynamoDBExecutionStore implements the ExecutionStore interface using DynamoDB
type DynamoDBExecutionStore struct {
	client    dynamodbiface.DynamoDBAPI
	tableName string
}

// NewDynamoDBExecutionStore creates a new DynamoDB execution store
func NewDynamoDBExecutionStore(client dynamodbiface.DynamoDBAPI, tablePrefix string) *DynamoDBExecutionStore {
	return &DynamoDBExecutionStore{
		client:    client,
		tableName: tablePrefix + "workflow_execution_logs",
	}
}

type dynamoDBExecutionLogItem struct {
	WorkflowID string `json:"WorkflowID"`
	StartedAt  int64  `json:"StartedAt"`
	LogID      string `json:"LogID"`
	Record     string `json:"Record"`
}

// Initialize creates the execution logs table if it doesn't exist
func (s *DynamoDBExecutionStore) Initialize() error {
	return ensureTable(s.client, &dynamodb.CreateTableInput{
		TableName: aws.String(s.tableName),
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{
				AttributeName: aws.String("WorkflowID"),
				AttributeType: aws.String("S"),
			},
			{
				AttributeName: aws.String("StartedAt"),
				AttributeType: aws.String("N"),
			},
		},
		KeySchema: []*dynamodb.KeySchemaElement{
			{
				AttributeName: aws.String("WorkflowID"),
				KeyType:       aws.String("HASH"),
			},
			{
				AttributeName: aws.String("StartedAt"),
				KeyType:       aws.String("RANGE"),
			},
		},
		BillingMode: aws.String("PAY_PER_REQUEST"),
	})
}

// LogExecution persists one finished run and returns the log id
func (s *DynamoDBExecutionStore) LogExecution(log ExecutionLog) (string, error) {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}

	record, err := json.Marshal(log)
	if err != nil {
		return "", fmt.Errorf("failed to marshal execution log: %w", err)
	}

	av, err := dynamodbattribute.MarshalMap(dynamoDBExecutionLogItem{
		WorkflowID: log.WorkflowID,
		StartedAt:  log.StartTime.UnixNano(),
		LogID:      log.ID,
		Record:     string(record),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal execution log item: %w", err)
	}

	_, err = s.client.PutItem(&dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return "", fmt.Errorf("failed to save execution log: %w", err)
	}
	return log.ID, nil
}

// GetExecutionLogs returns the most recent runs of a workflow, newest
// first, at most limit entries
func (s *DynamoDBExecutionStore) GetExecutionLogs(workflowID string, limit int) ([]ExecutionLog, error) {
	if limit <= 0 {
		limit = 100
	}

	keyCond := expression.Key("WorkflowID").Equal(expression.Value(workflowID))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	result, err := s.client.Query(&dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false), // Newest first
		Limit:                     aws.Int64(int64(limit)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query execution logs: %w", err)
	}

	logs := make([]ExecutionLog, 0, len(result.Items))
	for _, rawItem := range result.Items {
		var item dynamoDBExecutionLogItem
		if err := dynamodbattribute.UnmarshalMap(rawItem, &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal execution log item: %w", err)
		}

		var log ExecutionLog
		if err := json.Unmarshal([]byte(item.Record), &log); err != nil {
			return nil, fmt.Errorf("failed to unmarshal execution log: %w", err)
		}
		logs = append(logs, log)
	}
	return logs, nil
}
