// Package service implements the secrets access facade: a read-through cache
// over a pluggable provider, plus boot-time validation of required secrets.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/venuekit/credentials/internal/metrics"
	secretsDomain "github.com/venuekit/credentials/internal/secrets/domain"
	"github.com/venuekit/credentials/internal/secrets/provider"
	"github.com/venuekit/credentials/internal/validation"
)

// DefaultCacheTTL is how long resolved secret values are served from cache.
const DefaultCacheTTL = 5 * time.Minute

// CachedSecret is one cache slot.
type CachedSecret struct {
	Value     string
	ExpiresAt time.Time
}

// Manager fronts a secrets provider with a TTL cache. Concurrent misses for
// the same name are collapsed into a single provider call. Every provider
// call runs under the configured timeout so a hung backend cannot block
// callers (or their singleflight waiters) indefinitely.
type Manager struct {
	provider        provider.Provider
	cacheTTL        time.Duration
	providerTimeout time.Duration
	production      bool
	logger          *slog.Logger
	metrics         metrics.CredentialMetrics

	mu    sync.RWMutex
	cache map[secretsDomain.SecretName]CachedSecret
	group singleflight.Group

	now func() time.Time
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithCacheTTL overrides the default cache TTL.
func WithCacheTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		if ttl > 0 {
			m.cacheTTL = ttl
		}
	}
}

// WithProviderTimeout bounds each call to the underlying provider. Zero or
// negative disables the bound.
func WithProviderTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.providerTimeout = d
	}
}

// WithProductionMode controls whether weak secret values are fatal.
func WithProductionMode(production bool) ManagerOption {
	return func(m *Manager) {
		m.production = production
	}
}

// WithManagerMetrics sets the metrics recorder.
func WithManagerMetrics(recorder metrics.CredentialMetrics) ManagerOption {
	return func(m *Manager) {
		m.metrics = recorder
	}
}

// NewManager creates a secrets manager over the given provider.
func NewManager(p provider.Provider, logger *slog.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		provider: p,
		cacheTTL: DefaultCacheTTL,
		logger:   logger,
		metrics:  metrics.NewNoopMetrics(),
		cache:    make(map[secretsDomain.SecretName]CachedSecret),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// GetSecret resolves one secret, serving from cache when fresh.
func (m *Manager) GetSecret(ctx context.Context, name secretsDomain.SecretName) (string, error) {
	start := m.now()

	if value, ok := m.cached(name); ok {
		m.metrics.RecordOperation(ctx, "secrets", "secret_get", "cache_hit")
		return value, nil
	}

	result, err, _ := m.group.Do(string(name), func() (any, error) {
		// recheck under singleflight: another caller may have just filled it
		if value, ok := m.cached(name); ok {
			return value, nil
		}

		value, ok, err := m.fetch(ctx, name)
		if err != nil {
			return "", fmt.Errorf("provider %s: %w", m.provider.Kind(), err)
		}
		if !ok {
			return "", fmt.Errorf("%w: %s", secretsDomain.ErrSecretNotFound, name)
		}

		m.store(name, value)
		return value, nil
	})

	status := "success"
	if err != nil {
		status = "error"
	}
	m.metrics.RecordOperation(ctx, "secrets", "secret_get", status)
	m.metrics.RecordDuration(ctx, "secrets", "secret_get", m.now().Sub(start), status)

	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// GetSecrets resolves several names. Fails on the first unresolvable name.
func (m *Manager) GetSecrets(
	ctx context.Context,
	names []secretsDomain.SecretName,
) (map[secretsDomain.SecretName]string, error) {
	values := make(map[secretsDomain.SecretName]string, len(names))
	for _, name := range names {
		value, err := m.GetSecret(ctx, name)
		if err != nil {
			return nil, err
		}
		values[name] = value
	}
	return values, nil
}

// HealthCheck reports whether the underlying provider is reachable.
func (m *Manager) HealthCheck(ctx context.Context) bool {
	ctx, cancel := m.boundedContext(ctx)
	defer cancel()

	healthy := m.provider.HealthCheck(ctx)
	status := "success"
	if !healthy {
		status = "error"
	}
	m.metrics.RecordOperation(ctx, "secrets", "health_check", status)
	return healthy
}

// InvalidateCache drops all cached values. The next reads go to the provider.
func (m *Manager) InvalidateCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = make(map[secretsDomain.SecretName]CachedSecret)
}

// ValidateRequired checks that every boot-required secret resolves and meets
// the strength bar. In production the production-only set is also required.
// Values below the minimum length are fatal in every environment; weak-pattern
// values are fatal in production and a warning elsewhere.
func (m *Manager) ValidateRequired(ctx context.Context) error {
	required := secretsDomain.RequiredAtBoot()
	if m.production {
		required = append(required, secretsDomain.RequiredInProduction()...)
	}

	minLength := validation.SecretStrength{MinLength: secretsDomain.MinSecretLength}
	weakPatterns := validation.SecretStrength{WeakPatterns: secretsDomain.WeakPatterns}

	for _, name := range required {
		value, ok, err := m.fetch(ctx, name)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", name, err)
		}
		if !ok {
			return fmt.Errorf("%w: %s", secretsDomain.ErrMissingRequiredSecret, name)
		}

		if err := minLength.Validate(value); err != nil {
			return fmt.Errorf("%w: %s: %s", secretsDomain.ErrWeakSecretValue, name, err)
		}

		if err := weakPatterns.Validate(value); err != nil {
			if m.production {
				return fmt.Errorf("%w: %s: %s", secretsDomain.ErrWeakSecretValue, name, err)
			}
			m.logger.Warn("secret fails strength validation",
				"secret", string(name),
				"reason", err.Error(),
			)
		}
	}

	m.logger.Info("required secrets validated",
		"provider", m.provider.Kind(),
		"count", len(required),
		"production", m.production,
	)
	return nil
}

// fetch is the single provider read path, run under the configured timeout.
func (m *Manager) fetch(ctx context.Context, name secretsDomain.SecretName) (string, bool, error) {
	ctx, cancel := m.boundedContext(ctx)
	defer cancel()
	return m.provider.GetSecret(ctx, name)
}

func (m *Manager) boundedContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.providerTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, m.providerTimeout)
}

func (m *Manager) cached(name secretsDomain.SecretName) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.cache[name]
	if !ok || m.now().After(entry.ExpiresAt) {
		return "", false
	}
	return entry.Value, true
}

func (m *Manager) store(name secretsDomain.SecretName, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[name] = CachedSecret{
		Value:     value,
		ExpiresAt: m.now().Add(m.cacheTTL),
	}
}
