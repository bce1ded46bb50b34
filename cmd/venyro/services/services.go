// Package services builds the storage, eventstream and gateway components
// shared by the serve commands from a resolved config.
package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/papercomputeco/venyro/gateway"
	"github.com/papercomputeco/venyro/pkg/config"
	"github.com/papercomputeco/venyro/pkg/eventstream"
	"github.com/papercomputeco/venyro/pkg/eventstream/kafka"
	"github.com/papercomputeco/venyro/pkg/eventstream/nop"
	"github.com/papercomputeco/venyro/pkg/llm"
	"github.com/papercomputeco/venyro/pkg/retry"
	"github.com/papercomputeco/venyro/pkg/storage"
	"github.com/papercomputeco/venyro/pkg/storage/inmemory"
	"github.com/papercomputeco/venyro/pkg/storage/postgres"
	"github.com/papercomputeco/venyro/pkg/storage/sqlite"
)

// NewStorageDriver picks the record store: PostgreSQL when a DSN is set,
// then SQLite when a path is set, otherwise in-memory.
func NewStorageDriver(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Driver, error) {
	switch {
	case cfg.Storage.PostgresDSN != "":
		driver, err := postgres.NewDriver(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL driver: %w", err)
		}
		logger.Info("using PostgreSQL storage")
		return driver, nil

	case cfg.Storage.SQLitePath != "":
		driver, err := sqlite.NewSQLiteDriver(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite driver: %w", err)
		}
		logger.Info("using SQLite storage", zap.String("path", cfg.Storage.SQLitePath))
		return driver, nil

	default:
		logger.Info("using in-memory storage")
		return inmemory.NewDriver(), nil
	}
}

// NewPublisher returns a Kafka publisher when brokers are configured and a
// nop publisher otherwise.
func NewPublisher(cfg *config.Config, logger *zap.Logger) (eventstream.Publisher, error) {
	if len(cfg.Events.KafkaBrokers) == 0 {
		return nop.NewPublisher(), nil
	}

	publisher, err := kafka.NewPublisher(kafka.Config{
		Brokers: cfg.Events.KafkaBrokers,
		Topic:   cfg.Events.KafkaTopic,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	logger.Info("publishing record events to kafka",
		zap.Strings("brokers", cfg.Events.KafkaBrokers),
		zap.String("topic", cfg.Events.KafkaTopic),
	)
	return publisher, nil
}

// GatewayConfig maps the resolved config onto the gateway. The API key is
// resolved here, once, through getenv.
func GatewayConfig(cfg *config.Config, getenv func(string) string) gateway.Config {
	return gateway.Config{
		ListenAddr:      cfg.Gateway.Listen,
		Path:            cfg.Gateway.Path,
		Model:           cfg.Gateway.Model,
		APIKey:          cfg.ResolveAPIKey(getenv),
		ProviderBaseURL: cfg.Provider.BaseURL,
		Timeout:         cfg.Timeout(),
		Retry: retry.Config{
			MaxAttempts:  int(cfg.Retry.MaxAttempts),
			InitialDelay: cfg.InitialDelay(),
		},
		History: llm.HistoryPolicy{
			MaxTurns: int(cfg.Gateway.MaxHistoryTurns),
		},
	}
}
