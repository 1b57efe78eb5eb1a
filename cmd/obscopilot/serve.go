package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"

	"github.com/justedave0/obscopilot-sub001/pkg/action"
	"github.com/justedave0/obscopilot-sub001/pkg/config"
	"github.com/justedave0/obscopilot-sub001/pkg/engine"
	"github.com/justedave0/obscopilot-sub001/pkg/events"
	"github.com/justedave0/obscopilot-sub001/pkg/logging"
	"github.com/justedave0/obscopilot-sub001/pkg/storage"
	"github.com/justedave0/obscopilot-sub001/pkg/template"
	"github.com/justedave0/obscopilot-sub001/pkg/trigger"
	"github.com/justedave0/obscopilot-sub001/pkg/utils"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the workflow engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return serve(cfg)
		},
	}
}

func serve(cfg *config.Config) error {
	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	provider, err := newStorageProvider(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage provider: %w", err)
	}
	if err := provider.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer provider.Close()

	lastRunStore, err := newLastRunStore(cfg.Scheduler)
	if err != nil {
		return err
	}
	timeChecker := trigger.NewTimeChecker(lastRunStore, logger)

	bus := events.NewBus()
	resolver := template.NewResolver(logger)

	actionDeps := action.Deps{
		HTTP:           utils.NewHTTPClient(),
		Resolver:       resolver,
		Logger:         logger,
		DefaultChannel: cfg.Twitch.Channel,
	}
	if cfg.SMTP.Host != "" {
		actionDeps.Email = utils.NewEmailClient(
			cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	}

	actions := action.NewRegistry(actionDeps)
	if cfg.Engine.DefaultActionTimeoutSeconds > 0 {
		actions.SetDefaultTimeout(time.Duration(cfg.Engine.DefaultActionTimeoutSeconds * float64(time.Second)))
	}

	eng := engine.NewEngine(engine.Deps{
		Bus:                     bus,
		Triggers:                trigger.NewRegistry(logger),
		Actions:                 actions,
		Storage:                 provider,
		TimeChecker:             timeChecker,
		Logger:                  logger,
		MaxConcurrentExecutions: cfg.Engine.MaxConcurrentExecutions,
	})
	eng.Start()

	stored, err := eng.LoadStoredWorkflows()
	if err != nil {
		return err
	}
	fromDir := 0
	if cfg.Engine.WorkflowDir != "" {
		if _, statErr := os.Stat(cfg.Engine.WorkflowDir); statErr == nil {
			fromDir, err = eng.LoadWorkflowDir(cfg.Engine.WorkflowDir)
			if err != nil {
				return err
			}
		}
	}
	logger.Info("workflows loaded",
		logging.F("from_storage", stored),
		logging.F("from_directory", fromDir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pollInterval := time.Duration(cfg.Scheduler.PollIntervalSeconds * float64(time.Second))
	scheduler := engine.NewScheduler(eng, timeChecker, pollInterval, logger)
	scheduler.Start(ctx)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	scheduler.Stop()
	return nil
}

// newStorageProvider maps the application config onto the storage factory
func newStorageProvider(cfg config.StorageConfig) (storage.Provider, error) {
	providerConfig := storage.ProviderConfig{
		Type: storage.ProviderType(cfg.Type),
	}

	switch providerConfig.Type {
	case storage.PostgreSQLProviderType:
		providerConfig.PostgreSQL = &storage.PostgreSQLProviderConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
			SSLMode:  cfg.Postgres.SSLMode,
		}
	case storage.DynamoDBProviderType:
		providerConfig.DynamoDB = &storage.DynamoDBProviderConfig{
			Region:      cfg.DynamoDB.Region,
			AccessKey:   os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretKey:   os.Getenv("AWS_SECRET_ACCESS_KEY"),
			TablePrefix: cfg.DynamoDB.TablePrefix,
			Endpoint:    cfg.DynamoDB.Endpoint,
		}
	}

	return storage.NewProvider(providerConfig)
}

// newLastRunStore builds the scheduler's last-run store from config
func newLastRunStore(cfg config.SchedulerConfig) (trigger.LastRunStore, error) {
	switch cfg.LastRunStore {
	case "", "memory":
		return trigger.NewMemoryLastRunStore(), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return trigger.NewRedisLastRunStore(client, cfg.Redis.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unknown last run store: %s", cfg.LastRunStore)
	}
}
