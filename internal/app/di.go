// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/venuekit/credentials/internal/config"
	cryptoService "github.com/venuekit/credentials/internal/crypto/service"
	"github.com/venuekit/credentials/internal/metrics"
	rotationService "github.com/venuekit/credentials/internal/rotation/service"
	secretsDomain "github.com/venuekit/credentials/internal/secrets/domain"
	"github.com/venuekit/credentials/internal/secrets/provider"
	secretsService "github.com/venuekit/credentials/internal/secrets/service"
	tokenService "github.com/venuekit/credentials/internal/token/service"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	metricsProvider *metrics.Provider
	recorder        metrics.CredentialMetrics

	// Secrets facade
	secretsProvider provider.Provider
	secretsManager  *secretsService.Manager

	// Credential services
	rotationSvc       *rotationService.Service
	accessTokenSvc    *tokenService.TokenService
	refreshTokenSvc   *tokenService.TokenService
	encryptionService *cryptoService.EncryptionService

	// Initialization flags and mutex for thread-safety
	mu                  sync.Mutex
	loggerInit          sync.Once
	metricsInit         sync.Once
	recorderInit        sync.Once
	secretsProviderInit sync.Once
	secretsManagerInit  sync.Once
	rotationInit        sync.Once
	accessTokenInit     sync.Once
	refreshTokenInit    sync.Once
	encryptionInit      sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// MetricsProvider returns the Prometheus-backed OpenTelemetry meter provider.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsInit.Do(func() {
		mp, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = err
			return
		}
		c.metricsProvider = mp
	})
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// Metrics returns the credential metrics recorder. When metrics are disabled
// by configuration, a no-op recorder is returned.
func (c *Container) Metrics() (metrics.CredentialMetrics, error) {
	c.recorderInit.Do(func() {
		if !c.config.MetricsEnabled {
			c.recorder = metrics.NewNoopMetrics()
			return
		}
		mp, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["recorder"] = err
			return
		}
		recorder, err := metrics.NewCredentialMetrics(mp.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["recorder"] = err
			return
		}
		c.recorder = recorder
	})
	if storedErr, exists := c.initErrors["recorder"]; exists {
		return nil, storedErr
	}
	return c.recorder, nil
}

// SecretsProvider returns the secrets backend selected by configuration.
// When a KMS key URI is configured, the backend is wrapped with the
// KMS-unwrapping decorator.
func (c *Container) SecretsProvider(ctx context.Context) (provider.Provider, error) {
	c.secretsProviderInit.Do(func() {
		p, err := c.initSecretsProvider(ctx)
		if err != nil {
			c.initErrors["secretsProvider"] = err
			return
		}
		c.secretsProvider = p
	})
	if storedErr, exists := c.initErrors["secretsProvider"]; exists {
		return nil, storedErr
	}
	return c.secretsProvider, nil
}

// SecretsManager returns the caching secrets facade.
func (c *Container) SecretsManager(ctx context.Context) (*secretsService.Manager, error) {
	c.secretsManagerInit.Do(func() {
		m, err := c.initSecretsManager(ctx)
		if err != nil {
			c.initErrors["secretsManager"] = err
			return
		}
		c.secretsManager = m
	})
	if storedErr, exists := c.initErrors["secretsManager"]; exists {
		return nil, storedErr
	}
	return c.secretsManager, nil
}

// RotationService returns the key rotation service.
func (c *Container) RotationService() (*rotationService.Service, error) {
	c.rotationInit.Do(func() {
		recorder, err := c.Metrics()
		if err != nil {
			c.initErrors["rotationService"] = err
			return
		}
		c.rotationSvc = rotationService.NewService(
			c.Logger(),
			rotationService.WithGracePeriod(c.config.RotationGracePeriod),
			rotationService.WithMaxVersions(c.config.RotationMaxVersions),
			rotationService.WithAutoRotationInterval(c.config.AutoRotationInterval),
			rotationService.WithMetrics(recorder),
		)
	})
	if storedErr, exists := c.initErrors["rotationService"]; exists {
		return nil, storedErr
	}
	return c.rotationSvc, nil
}

// AccessTokenService returns the token service bound to the access-token
// signing secret.
func (c *Container) AccessTokenService() (*tokenService.TokenService, error) {
	c.accessTokenInit.Do(func() {
		svc, err := c.initTokenService(secretsDomain.AccessTokenSecret)
		if err != nil {
			c.initErrors["accessTokenService"] = err
			return
		}
		c.accessTokenSvc = svc
	})
	if storedErr, exists := c.initErrors["accessTokenService"]; exists {
		return nil, storedErr
	}
	return c.accessTokenSvc, nil
}

// RefreshTokenService returns the token service bound to the refresh-token
// signing secret.
func (c *Container) RefreshTokenService() (*tokenService.TokenService, error) {
	c.refreshTokenInit.Do(func() {
		svc, err := c.initTokenService(secretsDomain.RefreshTokenSecret)
		if err != nil {
			c.initErrors["refreshTokenService"] = err
			return
		}
		c.refreshTokenSvc = svc
	})
	if storedErr, exists := c.initErrors["refreshTokenService"]; exists {
		return nil, storedErr
	}
	return c.refreshTokenSvc, nil
}

// EncryptionService returns the field-encryption service.
func (c *Container) EncryptionService() (*cryptoService.EncryptionService, error) {
	c.encryptionInit.Do(func() {
		c.encryptionService = cryptoService.NewEncryptionService()
	})
	return c.encryptionService, nil
}

// Bootstrap validates the required secrets and seeds the rotation service with
// the signing secrets from the facade. It must be called before token services
// are used.
func (c *Container) Bootstrap(ctx context.Context) error {
	manager, err := c.SecretsManager(ctx)
	if err != nil {
		return fmt.Errorf("failed to get secrets manager: %w", err)
	}

	if err := manager.ValidateRequired(ctx); err != nil {
		return fmt.Errorf("secret validation failed: %w", err)
	}

	rotation, err := c.RotationService()
	if err != nil {
		return fmt.Errorf("failed to get rotation service: %w", err)
	}

	for _, name := range secretsDomain.SigningSecrets() {
		value, err := manager.GetSecret(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to resolve signing secret %s: %w", name, err)
		}
		if err := rotation.InitializeSecret(string(name), value); err != nil {
			return fmt.Errorf("failed to seed rotation for %s: %w", name, err)
		}
		if c.config.AutoRotationEnabled {
			if err := rotation.EnableAutoRotation(string(name)); err != nil {
				return fmt.Errorf("failed to enable auto-rotation for %s: %w", name, err)
			}
		}
	}

	c.Logger().Info("container bootstrapped",
		"environment", c.config.Environment,
		"secrets_provider", c.config.SecretsProvider,
		"auto_rotation", c.config.AutoRotationEnabled,
	)
	return nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	// Stop rotation schedulers and wipe key material if initialized
	if c.rotationSvc != nil {
		c.rotationSvc.Shutdown()
	}

	if closer, ok := c.secretsProvider.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("secrets provider close: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initSecretsProvider selects the backend by configured kind.
func (c *Container) initSecretsProvider(ctx context.Context) (provider.Provider, error) {
	var (
		p   provider.Provider
		err error
	)

	switch c.config.SecretsProvider {
	case "env":
		p = provider.NewEnvProvider()
	case "aws":
		p, err = provider.NewAWSProvider(ctx, provider.AWSConfig{
			Region:   c.config.AWSRegion,
			Endpoint: c.config.AWSEndpoint,
		})
	case "gcp":
		p, err = provider.NewGCPProvider(ctx, provider.GCPConfig{
			ProjectID: c.config.GCPProjectID,
		})
	default:
		return nil, fmt.Errorf("%w: %s", secretsDomain.ErrUnknownProvider, c.config.SecretsProvider)
	}
	if err != nil {
		return nil, err
	}

	if c.config.KMSKeyURI != "" {
		p, err = provider.NewKMSProvider(ctx, p, c.config.KMSKeyURI)
		if err != nil {
			return nil, err
		}
	}

	return p, nil
}

// initSecretsManager creates the caching facade over the selected provider.
func (c *Container) initSecretsManager(ctx context.Context) (*secretsService.Manager, error) {
	p, err := c.SecretsProvider(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get secrets provider for manager: %w", err)
	}

	recorder, err := c.Metrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics for secrets manager: %w", err)
	}

	return secretsService.NewManager(
		p,
		c.Logger(),
		secretsService.WithCacheTTL(c.config.SecretsCacheTTL),
		secretsService.WithProviderTimeout(c.config.SecretsProviderTimeout),
		secretsService.WithProductionMode(c.config.IsProduction()),
		secretsService.WithManagerMetrics(recorder),
	), nil
}

// initTokenService creates a token service backed by the rotation service.
func (c *Container) initTokenService(name secretsDomain.SecretName) (*tokenService.TokenService, error) {
	rotation, err := c.RotationService()
	if err != nil {
		return nil, fmt.Errorf("failed to get rotation service for token service: %w", err)
	}

	recorder, err := c.Metrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics for token service: %w", err)
	}

	return tokenService.NewTokenService(
		rotation,
		string(name),
		c.Logger(),
		tokenService.WithIssuer(c.config.TokenIssuer),
		tokenService.WithDefaultTTL(c.config.TokenExpiration),
		tokenService.WithMetrics(recorder),
	), nil
}
