// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Environment is the deployment environment (e.g., "development", "production").
	// Weak secret values are fatal in production and a warning elsewhere.
	Environment string

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// SecretsProvider selects the secrets backend ("env", "aws", "gcp").
	SecretsProvider string
	// SecretsCacheTTL is how long resolved secret values are cached in memory.
	SecretsCacheTTL time.Duration
	// SecretsProviderTimeout bounds each call to a remote secrets backend.
	SecretsProviderTimeout time.Duration

	// AWSRegion is the region used by the AWS Secrets Manager provider.
	AWSRegion string
	// AWSEndpoint is an optional custom endpoint (LocalStack or testing).
	AWSEndpoint string

	// GCPProjectID is the project used by the GCP Secret Manager provider.
	GCPProjectID string

	// KMSKeyURI, when set, wraps the secrets provider with a KMS-unwrapping
	// decorator. Supports gocloud.dev keeper URIs (awskms://, gcpkms://,
	// base64key://, ...).
	KMSKeyURI string

	// RotationGracePeriod is how long a demoted key version remains valid
	// for verification after rotation.
	RotationGracePeriod time.Duration
	// RotationMaxVersions is the maximum number of key versions retained per
	// secret name after rotation.
	RotationMaxVersions int
	// AutoRotationEnabled turns on scheduled background rotation of the
	// signing secrets.
	AutoRotationEnabled bool
	// AutoRotationInterval is the interval between scheduled rotations.
	AutoRotationInterval time.Duration

	// TokenIssuer is the value of the "iss" claim on issued tokens.
	TokenIssuer string
	// TokenExpiration is the default lifetime of issued tokens.
	TokenExpiration time.Duration

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		Environment: env.GetString("ENVIRONMENT", "development"),
		LogLevel:    env.GetString("LOG_LEVEL", "info"),

		// Secrets facade
		SecretsProvider:        env.GetString("SECRETS_PROVIDER", "env"),
		SecretsCacheTTL:        env.GetDuration("SECRETS_CACHE_TTL_SECONDS", 300, time.Second),
		SecretsProviderTimeout: env.GetDuration("SECRETS_PROVIDER_TIMEOUT_SECONDS", 5, time.Second),

		// AWS Secrets Manager
		AWSRegion:   env.GetString("AWS_REGION", "us-east-1"),
		AWSEndpoint: env.GetString("AWS_SECRETS_ENDPOINT", ""),

		// GCP Secret Manager
		GCPProjectID: env.GetString("GCP_PROJECT_ID", ""),

		// KMS unwrapping
		KMSKeyURI: env.GetString("KMS_KEY_URI", ""),

		// Rotation
		RotationGracePeriod:  env.GetDuration("ROTATION_GRACE_PERIOD_HOURS", 24, time.Hour),
		RotationMaxVersions:  env.GetInt("ROTATION_MAX_VERSIONS", 3),
		AutoRotationEnabled:  env.GetBool("AUTO_ROTATION_ENABLED", false),
		AutoRotationInterval: env.GetDuration("AUTO_ROTATION_INTERVAL_HOURS", 720, time.Hour),

		// Tokens
		TokenIssuer:     env.GetString("TOKEN_ISSUER", "venuekit"),
		TokenExpiration: env.GetDuration("TOKEN_EXPIRATION_SECONDS", 3600, time.Second),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "credentials"),
	}
}

// IsProduction reports whether the application runs in the production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	// Search for .env file recursively up the directory tree
	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// .env file found, load it
			_ = godotenv.Load(envPath)
			return
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}
}
