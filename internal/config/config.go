package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration shared by the lifelog binaries.
type Config struct {
	// Service Configuration
	ServiceName        string        `env:"SERVICE_NAME" envDefault:"lifelog-api"`
	Environment        string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort           int           `env:"LIFELOG_API_PORT" envDefault:"8290"`
	LogLevel           string        `env:"LIFELOG_LOG_LEVEL" envDefault:"info"`
	LogFormat          string        `env:"LIFELOG_LOG_FORMAT" envDefault:"console"` // "console" or "json"
	EnableTracing      bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint       string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTLPMetricInterval time.Duration `env:"OTEL_METRIC_EXPORT_INTERVAL" envDefault:"30s"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	CORSOrigins        []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// AWS
	AWSRegion          string `env:"AWS_REGION" envDefault:"us-east-1"`
	AWSAccessKeyID     string `env:"LIFELOG_AWS_ACCESS_KEY_ID"`     // optional, default credential chain otherwise
	AWSSecretAccessKey string `env:"LIFELOG_AWS_SECRET_ACCESS_KEY"` // optional

	// Storage Backend Selection
	StorageBackend string `env:"LIFELOG_STORAGE_BACKEND" envDefault:"s3"` // Options: "s3" or "local"

	// Local Storage Configuration
	LocalStoragePath    string `env:"LIFELOG_LOCAL_STORAGE_PATH"`     // Path to store objects (e.g. "./lifelog-data")
	LocalStorageBaseURL string `env:"LIFELOG_LOCAL_STORAGE_BASE_URL"` // Base URL serving the local objects

	// S3 Storage Configuration
	S3Endpoint       string `env:"LIFELOG_S3_ENDPOINT"`
	S3PublicEndpoint string `env:"LIFELOG_S3_PUBLIC_ENDPOINT"`
	S3Bucket         string `env:"BUCKET_NAME"`
	S3UsePathStyle   bool   `env:"LIFELOG_S3_USE_PATH_STYLE" envDefault:"false"`

	// Layout of the lake
	ChatSourceType     string `env:"CHAT_SOURCE_TYPE" envDefault:"whatsapp"`
	BronzePrefix       string `env:"BRONZE_PREFIX" envDefault:"bronze/"`
	SilverPrefix       string `env:"SILVER_PREFIX" envDefault:"silver/"`
	PhotoOriginals     string `env:"PHOTO_ORIGINALS_PREFIX" envDefault:"photos/originals/"`
	PhotoThumbnails    string `env:"PHOTO_THUMBNAILS_PREFIX" envDefault:"photos/thumbnails/"`
	MaxValidationBytes int64  `env:"CHAT_MAX_VALIDATION_BYTES" envDefault:"1048576"`

	// Media processing
	ThumbnailMaxPx  int    `env:"THUMBNAIL_MAX_PX" envDefault:"300"`
	MaxMediaBytes   int64  `env:"MEDIA_MAX_BYTES" envDefault:"52428800"`
	PhotoIDStrategy string `env:"PHOTO_ID_STRATEGY" envDefault:"random"` // "random" or "deterministic"

	// Metadata store
	MetadataBackend   string        `env:"METADATA_BACKEND" envDefault:"dynamodb"` // "dynamodb" or "postgres"
	DynamoDBTable     string        `env:"TABLE_NAME"`
	DynamoDBEndpoint  string        `env:"DYNAMODB_ENDPOINT"`
	DatabaseURL       string        `env:"DB_POSTGRESQL_WRITE_DSN"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime    time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
	MetadataScanLimit int32         `env:"METADATA_SCAN_PAGE_SIZE" envDefault:"100"`

	// Signed URLs
	ThumbnailURLTTL time.Duration `env:"THUMBNAIL_URL_TTL" envDefault:"1h"`
	OriginalURLTTL  time.Duration `env:"ORIGINAL_URL_TTL" envDefault:"24h"`

	// Catalog and analytical engine
	GlueDatabase       string        `env:"GLUE_DATABASE"`
	ChatTable          string        `env:"CHAT_TABLE" envDefault:"whatsapp_messages"`
	AthenaDatabase     string        `env:"ATHENA_DATABASE"`
	AthenaWorkgroup    string        `env:"ATHENA_WORKGROUP"`
	AthenaOutput       string        `env:"ATHENA_OUTPUT_LOCATION"`
	AthenaPollInterval time.Duration `env:"ATHENA_POLL_INTERVAL" envDefault:"500ms"`
	AthenaMaxPolls     int           `env:"ATHENA_MAX_POLLS" envDefault:"60"`
	ChatQueryCacheTTL  time.Duration `env:"CHAT_QUERY_CACHE_TTL" envDefault:"30s"`
	ChatQueryCacheSize int           `env:"CHAT_QUERY_CACHE_SIZE" envDefault:"256"`

	// Transformer scheduling
	TransformSchedule string        `env:"TRANSFORM_SCHEDULE"` // cron expression, empty runs once
	TransformTimeout  time.Duration `env:"TRANSFORM_TIMEOUT" envDefault:"30m"`

	// Authentication
	AuthEnabled  bool   `env:"AUTH_ENABLED" envDefault:"false"`
	AuthIssuer   string `env:"AUTH_ISSUER"`
	AuthAudience string `env:"AUTH_AUDIENCE"`
	AuthJWKSURL  string `env:"AUTH_JWKS_URL"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.S3Bucket = strings.TrimSpace(cfg.S3Bucket)
	cfg.S3Endpoint = strings.TrimSpace(cfg.S3Endpoint)
	cfg.S3PublicEndpoint = strings.TrimSpace(cfg.S3PublicEndpoint)
	cfg.AWSAccessKeyID = strings.TrimSpace(cfg.AWSAccessKeyID)
	cfg.AWSSecretAccessKey = strings.TrimSpace(cfg.AWSSecretAccessKey)
	cfg.BronzePrefix = ensureTrailingSlash(cfg.BronzePrefix)
	cfg.SilverPrefix = ensureTrailingSlash(cfg.SilverPrefix)
	cfg.PhotoOriginals = ensureTrailingSlash(cfg.PhotoOriginals)
	cfg.PhotoThumbnails = ensureTrailingSlash(cfg.PhotoThumbnails)

	if cfg.ThumbnailMaxPx <= 0 {
		cfg.ThumbnailMaxPx = 300
	}
	if cfg.MaxMediaBytes <= 0 {
		cfg.MaxMediaBytes = 50 * 1024 * 1024
	}
	if cfg.OTLPMetricInterval <= 0 {
		cfg.OTLPMetricInterval = 30 * time.Second
	}
	if cfg.AthenaMaxPolls <= 0 {
		cfg.AthenaMaxPolls = 60
	}
	if cfg.AthenaDatabase == "" {
		cfg.AthenaDatabase = cfg.GlueDatabase
	}
	switch strings.ToLower(strings.TrimSpace(cfg.PhotoIDStrategy)) {
	case "", "random":
		cfg.PhotoIDStrategy = "random"
	case "deterministic":
		cfg.PhotoIDStrategy = "deterministic"
	default:
		return nil, fmt.Errorf("PHOTO_ID_STRATEGY must be deterministic or random, got %q", cfg.PhotoIDStrategy)
	}
	if cfg.AuthEnabled {
		if strings.TrimSpace(cfg.AuthIssuer) == "" {
			return nil, fmt.Errorf("AUTH_ISSUER is required when AUTH_ENABLED is true")
		}
		if strings.TrimSpace(cfg.AuthJWKSURL) == "" {
			return nil, fmt.Errorf("AUTH_JWKS_URL is required when AUTH_ENABLED is true")
		}
	}
	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// IsLocalStorage returns true if local storage backend is configured.
func (c *Config) IsLocalStorage() bool {
	return strings.ToLower(strings.TrimSpace(c.StorageBackend)) == "local"
}

// IsPostgresMetadata returns true when photo metadata lives in PostgreSQL instead of DynamoDB.
func (c *Config) IsPostgresMetadata() bool {
	return strings.ToLower(strings.TrimSpace(c.MetadataBackend)) == "postgres"
}

// ChatBronzePrefix is the bronze prefix holding validated chat exports, e.g. bronze/whatsapp/.
func (c *Config) ChatBronzePrefix() string {
	return c.BronzePrefix + c.ChatSourceType + "/"
}

// ChatSilverPrefix is the prefix holding the partitioned chat messages, e.g. silver/whatsapp/.
func (c *Config) ChatSilverPrefix() string {
	return c.SilverPrefix + c.ChatSourceType + "/"
}

// ChatSilverLocation is the catalog location of the chat table.
func (c *Config) ChatSilverLocation() string {
	return fmt.Sprintf("s3://%s/%s", c.S3Bucket, c.ChatSilverPrefix())
}

func ensureTrailingSlash(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" || strings.HasSuffix(prefix, "/") {
		return prefix
	}
	return prefix + "/"
}
