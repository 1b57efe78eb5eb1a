// Package config provides configuration handling for obscopilot.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/justedave0/obscopilot-sub001/pkg/logging"
)

// Config represents the application configuration.
//
// A Config is built once at startup and passed by reference into the engine
// and its collaborators; there is no process-wide mutable settings object.
type Config struct {
	// Engine configuration
	Engine EngineConfig `json:"engine"`

	// Scheduler configuration
	Scheduler SchedulerConfig `json:"scheduler"`

	// Storage configuration
	Storage StorageConfig `json:"storage"`

	// SMTP configuration for the send-email action
	SMTP SMTPConfig `json:"smtp"`

	// Twitch configuration
	Twitch TwitchConfig `json:"twitch"`

	// Logging configuration
	Logging logging.LogConfig `json:"logging"`
}

// EngineConfig contains workflow engine settings
type EngineConfig struct {
	// WorkflowDir is the directory workflow definition files are loaded from
	WorkflowDir string `json:"workflow_dir"`

	// DefaultActionTimeoutSeconds bounds actions that do not set their own timeout
	DefaultActionTimeoutSeconds float64 `json:"default_action_timeout_seconds"`

	// MaxConcurrentExecutions limits simultaneously running workflow executions.
	// Zero means unlimited.
	MaxConcurrentExecutions int `json:"max_concurrent_executions"`
}

// SchedulerConfig contains time-trigger polling settings
type SchedulerConfig struct {
	// PollIntervalSeconds is how often schedule/interval triggers are checked
	PollIntervalSeconds float64 `json:"poll_interval_seconds"`

	// LastRunStore selects where trigger last-run timestamps are kept
	LastRunStore string `json:"last_run_store"` // "memory", "redis"

	// Redis contains settings for the redis last-run store
	Redis RedisConfig `json:"redis"`
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	// Addr is the host:port of the Redis server
	Addr string `json:"addr"`

	// Password for the Redis server, if any
	Password string `json:"password"`

	// DB is the Redis database number
	DB int `json:"db"`

	// KeyPrefix is prepended to all keys written by the scheduler
	KeyPrefix string `json:"key_prefix"`
}

// StorageConfig contains storage settings
type StorageConfig struct {
	// Type of storage to use
	Type string `json:"type"` // "memory", "postgresql", "dynamodb"

	// PostgreSQL configuration
	Postgres PostgresConfig `json:"postgres"`

	// DynamoDB configuration
	DynamoDB DynamoDBConfig `json:"dynamodb"`
}

// PostgresConfig contains PostgreSQL settings
type PostgresConfig struct {
	// Host is the database host
	Host string `json:"host"`

	// Port is the database port
	Port int `json:"port"`

	// Database is the database name
	Database string `json:"database"`

	// User is the database user
	User string `json:"user"`

	// Password is the database password
	Password string `json:"password"`

	// SSLMode is the SSL mode
	SSLMode string `json:"ssl_mode"`
}

// DynamoDBConfig contains DynamoDB settings
type DynamoDBConfig struct {
	// Region is the AWS region
	Region string `json:"region"`

	// Endpoint is the DynamoDB endpoint (for local development)
	Endpoint string `json:"endpoint"`

	// TablePrefix is the prefix for all tables
	TablePrefix string `json:"table_prefix"`
}

// SMTPConfig contains SMTP settings for outgoing email
type SMTPConfig struct {
	// Host is the SMTP server hostname
	Host string `json:"host"`

	// Port is the SMTP server port
	Port int `json:"port"`

	// Username for SMTP authentication
	Username string `json:"username"`

	// Password for SMTP authentication
	Password string `json:"password"`

	// From is the default sender address
	From string `json:"from"`
}

// TwitchConfig contains Twitch-side defaults used by executors
type TwitchConfig struct {
	// Channel is the default channel used when an action config omits one
	Channel string `json:"channel"`
}

// LoadConfig loads the configuration from a file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			WorkflowDir:                 "./workflows",
			DefaultActionTimeoutSeconds: 30,
		},
		Scheduler: SchedulerConfig{
			PollIntervalSeconds: 1,
			LastRunStore:        "memory",
			Redis: RedisConfig{
				Addr:      "localhost:6379",
				KeyPrefix: "obscopilot:",
			},
		},
		Storage: StorageConfig{
			Type: "memory",
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "obscopilot",
				User:     "obscopilot",
				SSLMode:  "disable",
			},
			DynamoDB: DynamoDBConfig{
				Region:      "us-west-2",
				TablePrefix: "obscopilot_",
			},
		},
		SMTP: SMTPConfig{
			Host: "localhost",
			Port: 25,
		},
		Logging: logging.LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// SaveConfig saves the configuration to a file
func SaveConfig(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
