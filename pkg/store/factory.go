package store

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
)

// Config selects and configures a backend. It is built once at startup and
// never consulted from request handling.
type Config struct {
	Type     Type
	DynamoDB DynamoDBConfig
	S3       S3Config
	GCS      GCSConfig
	Redis    RedisConfig
	SQL      SQLConfig
	DataDir  string
	Retry    RetryConfig
}

// GCSConfig holds configuration for the GCS backend.
type GCSConfig struct {
	Bucket string
	Prefix string // Optional key prefix
}

// New creates the configured backend and wraps it with the retry policy.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	backend, err := newBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "contact store ready",
		"component", "store",
		"backend", string(cfg.Type),
		"max_attempts", cfg.Retry.MaxAttempts,
	)
	return WithRetry(backend, cfg.Retry, logger), nil
}

func newBackend(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Type {
	case TypeDynamoDB, "":
		return NewDynamoDBStoreFromConfig(ctx, cfg.DynamoDB)
	case TypeS3:
		if cfg.S3.Bucket == "" {
			return nil, fmt.Errorf("an S3 bucket is required for S3 storage")
		}
		return NewS3StoreFromConfig(ctx, cfg.S3)
	case TypeGCS:
		if cfg.GCS.Bucket == "" {
			return nil, fmt.Errorf("a GCS bucket is required for GCS storage")
		}
		return newGCSStore(ctx, cfg.GCS)
	case TypeRedis:
		if cfg.Redis.Addr == "" {
			return nil, fmt.Errorf("a Redis address is required for Redis storage")
		}
		return NewRedisStoreFromConfig(cfg.Redis), nil
	case TypePostgres:
		return NewSQLStoreFromConfig(ctx, DialectPostgres, cfg.SQL)
	case TypeSQLite:
		return NewSQLStoreFromConfig(ctx, DialectSQLite, cfg.SQL)
	case TypeFS:
		dataDir := cfg.DataDir
		if dataDir == "" {
			dataDir = "data"
		}
		return NewFileStore(filepath.Join(dataDir, "contacts"))
	case TypeMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported contact storage type: %s", cfg.Type)
	}
}
