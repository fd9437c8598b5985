package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"careercast/pkg/errors"
)

type Config struct {
	App           AppConfig
	HTTP          HTTPConfig
	Mongo         MongoConfig
	SQLite        SQLiteConfig
	Artifacts     ArtifactsConfig
	Auth          AuthConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"careercast"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Version  string `envconfig:"APP_VERSION" default:"dev"`
}

type HTTPConfig struct {
	Port            int           `envconfig:"HTTP_PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"15s"`
}

// MongoConfig configures the document storage engine. An empty URI means the
// engine is unconfigured and the relational fallback is used.
type MongoConfig struct {
	URI         string        `envconfig:"MONGO_URI"`
	Database    string        `envconfig:"MONGO_DB" default:"careercast"`
	PingTimeout time.Duration `envconfig:"MONGO_PING_TIMEOUT" default:"5s"`
}

// SQLiteConfig configures the single-file relational fallback engine.
type SQLiteConfig struct {
	Path string `envconfig:"SQLITE_PATH" default:"data/careercast.db"`
}

// ArtifactsConfig points at the directory scanned for model, label-map and
// feature-schema files at startup.
type ArtifactsConfig struct {
	Dir string `envconfig:"ARTIFACTS_DIR" default:"models"`
}

type AuthConfig struct {
	JWTSecret string        `envconfig:"JWT_SECRET" default:"dev-secret-change-this"`
	JWTIssuer string        `envconfig:"JWT_ISSUER" default:"careercast"`
	TokenTTL  time.Duration `envconfig:"JWT_TOKEN_TTL" default:"24h"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"true"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
