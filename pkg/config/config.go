// Package config builds the process configuration once at startup. Request
// handling never reads the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Mindburn-Labs/contacts/pkg/observability"
	"github.com/Mindburn-Labs/contacts/pkg/store"
)

// DefaultRegion is used when neither the config nor the AWS environment
// names a region.
const DefaultRegion = "us-east-1"

// Config holds the function configuration.
type Config struct {
	Store       StoreConfig     `yaml:"store"`
	EventFormat string          `yaml:"event_format"` // "rest" | "http"
	Server      ServerConfig    `yaml:"server"`
	Log         LogConfig       `yaml:"log"`
	Telemetry   TelemetryConfig `yaml:"telemetry"`
}

// StoreConfig selects and configures the record store.
type StoreConfig struct {
	Type     string `yaml:"type"`
	Table    string `yaml:"table"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`

	S3Bucket  string `yaml:"s3_bucket"`
	S3Prefix  string `yaml:"s3_prefix"`
	GCSBucket string `yaml:"gcs_bucket"`
	GCSPrefix string `yaml:"gcs_prefix"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	RedisPrefix   string `yaml:"redis_prefix"`

	DatabaseURL string `yaml:"database_url"`
	DataDir     string `yaml:"data_dir"`

	Retry RetryConfig `yaml:"retry"`
}

// RetryConfig bounds store retries.
type RetryConfig struct {
	MaxAttempts     int           `yaml:"max_attempts"`
	InitialInterval time.Duration `yaml:"initial_interval"`
	MaxInterval     time.Duration `yaml:"max_interval"`
}

// ServerConfig configures the local HTTP server.
type ServerConfig struct {
	Port           string  `yaml:"port"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

// LogConfig configures slog.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" | "text"
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	SampleRate  float64 `yaml:"sample_rate"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	retry := store.DefaultRetryConfig()
	return &Config{
		Store: StoreConfig{
			Type:        string(store.TypeDynamoDB),
			Table:       store.DefaultTable,
			S3Prefix:    "contacts/",
			GCSPrefix:   "contacts/",
			RedisAddr:   "localhost:6379",
			RedisPrefix: "contact:",
			DataDir:     "data",
			Retry: RetryConfig{
				MaxAttempts:     retry.MaxAttempts,
				InitialInterval: retry.InitialInterval,
				MaxInterval:     retry.MaxInterval,
			},
		},
		EventFormat: "rest",
		Server: ServerConfig{
			Port:           "8080",
			RateLimitRPS:   50,
			RateLimitBurst: 100,
		},
		Log: LogConfig{
			Level:  "INFO",
			Format: "json",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "createcontact",
			Endpoint:    "localhost:4317",
			SampleRate:  1.0,
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by CONTACTS_CONFIG_FILE, and environment variables, in that order of
// increasing precedence. The result is validated.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONTACTS_CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.Store.Region = resolveRegion(cfg.Store.Region)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load config file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %q: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var e envReader

	e.setString("CONTACTS_STORE", &c.Store.Type)
	e.setString("CONTACTS_TABLE", &c.Store.Table)
	e.setString("CONTACTS_REGION", &c.Store.Region)
	e.setString("CONTACTS_ENDPOINT", &c.Store.Endpoint)
	e.setString("CONTACTS_S3_BUCKET", &c.Store.S3Bucket)
	e.setPresentString("CONTACTS_S3_PREFIX", &c.Store.S3Prefix)
	e.setString("CONTACTS_GCS_BUCKET", &c.Store.GCSBucket)
	e.setPresentString("CONTACTS_GCS_PREFIX", &c.Store.GCSPrefix)
	e.setString("CONTACTS_REDIS_ADDR", &c.Store.RedisAddr)
	e.setString("CONTACTS_REDIS_PASSWORD", &c.Store.RedisPassword)
	e.setInt("CONTACTS_REDIS_DB", &c.Store.RedisDB)
	e.setPresentString("CONTACTS_REDIS_PREFIX", &c.Store.RedisPrefix)
	e.setString("CONTACTS_DATABASE_URL", &c.Store.DatabaseURL)
	e.setString("DATA_DIR", &c.Store.DataDir)
	e.setInt("CONTACTS_RETRY_MAX_ATTEMPTS", &c.Store.Retry.MaxAttempts)
	e.setDuration("CONTACTS_RETRY_INITIAL_INTERVAL", &c.Store.Retry.InitialInterval)
	e.setDuration("CONTACTS_RETRY_MAX_INTERVAL", &c.Store.Retry.MaxInterval)

	e.setString("CONTACTS_EVENT_FORMAT", &c.EventFormat)

	e.setString("PORT", &c.Server.Port)
	e.setFloat("CONTACTS_RATE_LIMIT_RPS", &c.Server.RateLimitRPS)
	e.setInt("CONTACTS_RATE_LIMIT_BURST", &c.Server.RateLimitBurst)

	e.setString("LOG_LEVEL", &c.Log.Level)
	e.setString("LOG_FORMAT", &c.Log.Format)

	e.setBool("OTEL_ENABLED", &c.Telemetry.Enabled)
	e.setString("OTEL_SERVICE_NAME", &c.Telemetry.ServiceName)
	e.setString("OTEL_EXPORTER_OTLP_ENDPOINT", &c.Telemetry.Endpoint)
	e.setBool("OTEL_INSECURE", &c.Telemetry.Insecure)
	e.setFloat("OTEL_SAMPLE_RATE", &c.Telemetry.SampleRate)

	return e.err()
}

// resolveRegion applies the region chain: explicit config, AWS_REGION,
// AWS_DEFAULT_REGION, then DefaultRegion.
func resolveRegion(explicit string) string {
	for _, r := range []string{explicit, os.Getenv("AWS_REGION"), os.Getenv("AWS_DEFAULT_REGION")} {
		if r = strings.TrimSpace(r); r != "" {
			return r
		}
	}
	return DefaultRegion
}

var storeTypes = map[store.Type]bool{
	store.TypeDynamoDB: true,
	store.TypeS3:       true,
	store.TypeGCS:      true,
	store.TypeRedis:    true,
	store.TypePostgres: true,
	store.TypeSQLite:   true,
	store.TypeFS:       true,
	store.TypeMemory:   true,
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	var errs []error

	st := store.Type(c.Store.Type)
	if !storeTypes[st] {
		errs = append(errs, fmt.Errorf("unsupported store type %q", c.Store.Type))
	}
	switch st {
	case store.TypeS3:
		if c.Store.S3Bucket == "" {
			errs = append(errs, errors.New("CONTACTS_S3_BUCKET is required for the s3 store"))
		}
	case store.TypeGCS:
		if c.Store.GCSBucket == "" {
			errs = append(errs, errors.New("CONTACTS_GCS_BUCKET is required for the gcs store"))
		}
	case store.TypeRedis:
		if c.Store.RedisAddr == "" {
			errs = append(errs, errors.New("CONTACTS_REDIS_ADDR is required for the redis store"))
		}
	case store.TypePostgres, store.TypeSQLite:
		if c.Store.DatabaseURL == "" {
			errs = append(errs, fmt.Errorf("CONTACTS_DATABASE_URL is required for the %s store", st))
		}
	}

	if c.Store.Retry.MaxAttempts < 1 {
		errs = append(errs, errors.New("retry max attempts must be at least 1"))
	}
	if c.Store.Retry.InitialInterval < 0 || c.Store.Retry.MaxInterval < 0 {
		errs = append(errs, errors.New("retry intervals must not be negative"))
	}

	switch c.EventFormat {
	case "rest", "http":
	default:
		errs = append(errs, fmt.Errorf("unsupported event format %q", c.EventFormat))
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("unsupported log format %q", c.Log.Format))
	}

	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("sample rate %v is outside [0, 1]", c.Telemetry.SampleRate))
	}

	return errors.Join(errs...)
}

// StoreConfig translates the settings for store.New.
func (c *Config) StoreConfig() store.Config {
	aws := store.AWSConfig{Region: c.Store.Region, Endpoint: c.Store.Endpoint}
	return store.Config{
		Type:     store.Type(c.Store.Type),
		DynamoDB: store.DynamoDBConfig{AWS: aws, Table: c.Store.Table},
		S3:       store.S3Config{AWS: aws, Bucket: c.Store.S3Bucket, Prefix: c.Store.S3Prefix},
		GCS:      store.GCSConfig{Bucket: c.Store.GCSBucket, Prefix: c.Store.GCSPrefix},
		Redis: store.RedisConfig{
			Addr:     c.Store.RedisAddr,
			Password: c.Store.RedisPassword,
			DB:       c.Store.RedisDB,
			Prefix:   c.Store.RedisPrefix,
		},
		SQL:     store.SQLConfig{DSN: c.Store.DatabaseURL, Table: c.Store.Table},
		DataDir: c.Store.DataDir,
		Retry: store.RetryConfig{
			MaxAttempts:     c.Store.Retry.MaxAttempts,
			InitialInterval: c.Store.Retry.InitialInterval,
			MaxInterval:     c.Store.Retry.MaxInterval,
		},
	}
}

// ObservabilityConfig translates the telemetry settings.
func (c *Config) ObservabilityConfig(version string) *observability.Config {
	oc := observability.DefaultConfig()
	oc.Enabled = c.Telemetry.Enabled
	oc.ServiceName = c.Telemetry.ServiceName
	oc.ServiceVersion = version
	oc.OTLPEndpoint = c.Telemetry.Endpoint
	oc.Insecure = c.Telemetry.Insecure
	oc.SampleRate = c.Telemetry.SampleRate
	return oc
}
