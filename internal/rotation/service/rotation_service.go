// Package service implements the in-memory key version store and the credential
// rotation service built on top of it.
//
// The store owns every KeyVersion for its process lifetime. Nothing is
// persisted: a restart re-seeds from the secrets facade, so values rotated via
// RotateAuto are ephemeral to the process. Callers needing cross-restart
// consistency must persist an explicit new value to their secret backend in the
// same operation as calling Rotate.
package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/venuekit/credentials/internal/crypto/domain"
	"github.com/venuekit/credentials/internal/metrics"
	rotationDomain "github.com/venuekit/credentials/internal/rotation/domain"
)

// ValidSecret pairs a version id with its key material, as returned by
// ValidSecrets for exhaustive verification fallback.
type ValidSecret struct {
	VersionID string
	Key       string
}

// secretEntry holds the ordered version set for one secret name.
//
// The mutex is the critical section required for this name: rotation,
// force-expiry and cleanup must not interleave in a way that leaves two
// primaries or prunes a version mid-lookup. Reads copy a snapshot under the
// same lock.
type secretEntry struct {
	mu               sync.Mutex
	versions         []*rotationDomain.KeyVersion // newest first, primary at head
	nextAutoRotation time.Time
	autoCancel       context.CancelFunc
}

// Service is the credential rotation service. It is safe for concurrent use.
type Service struct {
	mu      sync.RWMutex
	secrets map[string]*secretEntry
	closed  bool

	gracePeriod  time.Duration
	maxVersions  int
	autoInterval time.Duration

	logger  *slog.Logger
	metrics metrics.CredentialMetrics
	wg      sync.WaitGroup
	now     func() time.Time
}

// Option configures the rotation service.
type Option func(*Service)

// WithGracePeriod overrides how long a demoted primary remains valid.
func WithGracePeriod(d time.Duration) Option {
	return func(s *Service) { s.gracePeriod = d }
}

// WithMaxVersions overrides how many versions are retained per secret name.
func WithMaxVersions(n int) Option {
	return func(s *Service) { s.maxVersions = n }
}

// WithAutoRotationInterval overrides the scheduled auto-rotation interval.
func WithAutoRotationInterval(d time.Duration) Option {
	return func(s *Service) { s.autoInterval = d }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m metrics.CredentialMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a rotation service with the given logger and options.
func NewService(logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		secrets:      make(map[string]*secretEntry),
		gracePeriod:  rotationDomain.DefaultGracePeriod,
		maxVersions:  rotationDomain.DefaultMaxVersions,
		autoInterval: rotationDomain.DefaultAutoRotationInterval,
		logger:       logger,
		metrics:      metrics.NewNoopMetrics(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// entry returns the secretEntry for name, or nil if uninitialized.
func (s *Service) entry(name string) *secretEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.secrets[name]
}

// newVersionID returns a time-ordered opaque version identifier.
func newVersionID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// InitializeSecret registers the first version of a secret name as the
// non-expiring primary. Calling it again for an initialized name is a no-op
// with a warning; the existing version set is never overwritten.
func (s *Service) InitializeSecret(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return rotationDomain.ErrServiceClosed
	}

	if _, ok := s.secrets[name]; ok {
		s.logger.Warn("secret already initialized, ignoring", slog.String("secret", name))
		return nil
	}

	version := &rotationDomain.KeyVersion{
		ID:        newVersionID(),
		Key:       value,
		CreatedAt: s.now().UTC(),
		Primary:   true,
	}
	s.secrets[name] = &secretEntry{versions: []*rotationDomain.KeyVersion{version}}

	s.logger.Info("secret initialized",
		slog.String("secret", name),
		slog.String("version", version.ID),
	)
	return nil
}

// PrimarySecret returns the key material of the current primary version.
func (s *Service) PrimarySecret(name string) (string, error) {
	primary, err := s.primary(name)
	if err != nil {
		return "", err
	}
	return primary.Key, nil
}

// PrimaryVersionID returns the version id of the current primary version.
func (s *Service) PrimaryVersionID(name string) (string, error) {
	primary, err := s.primary(name)
	if err != nil {
		return "", err
	}
	return primary.ID, nil
}

func (s *Service) primary(name string) (rotationDomain.KeyVersion, error) {
	entry := s.entry(name)
	if entry == nil {
		return rotationDomain.KeyVersion{}, fmt.Errorf("%w: %s", rotationDomain.ErrSecretNotInitialized, name)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	for _, v := range entry.versions {
		if v.Primary {
			return *v, nil
		}
	}
	return rotationDomain.KeyVersion{}, fmt.Errorf("%w: %s", rotationDomain.ErrNoPrimaryVersion, name)
}

// ValidSecrets returns every version whose expiry is nil or in the future,
// newest-primary first. Used for exhaustive verification fallback when a token
// carries no resolvable key identifier.
func (s *Service) ValidSecrets(name string) ([]ValidSecret, error) {
	entry := s.entry(name)
	if entry == nil {
		return nil, fmt.Errorf("%w: %s", rotationDomain.ErrSecretNotInitialized, name)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := s.now()
	valid := make([]ValidSecret, 0, len(entry.versions))
	for _, v := range entry.versions {
		if v.Valid(now) {
			valid = append(valid, ValidSecret{VersionID: v.ID, Key: v.Key})
		}
	}
	return valid, nil
}

// SecretByVersion returns the key material for an exact version id. Unknown
// ids and ids whose version has already expired both return
// ErrVersionNotFound, even if the expired version is still present pending
// cleanup.
func (s *Service) SecretByVersion(name, versionID string) (string, error) {
	entry := s.entry(name)
	if entry == nil {
		return "", fmt.Errorf("%w: %s", rotationDomain.ErrSecretNotInitialized, name)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := s.now()
	for _, v := range entry.versions {
		if v.ID == versionID {
			if !v.Valid(now) {
				return "", fmt.Errorf("%w: %s", rotationDomain.ErrVersionNotFound, versionID)
			}
			return v.Key, nil
		}
	}
	return "", fmt.Errorf("%w: %s", rotationDomain.ErrVersionNotFound, versionID)
}

// Rotate makes newValue the primary version of name. In a single critical
// section it demotes the current primary (grace-period expiry), inserts the
// new primary at the head, prunes expired non-primary versions, and truncates
// to the retention limit keeping the newest entries.
func (s *Service) Rotate(name, newValue string) (string, error) {
	entry := s.entry(name)
	if entry == nil {
		s.metrics.RecordOperation(context.Background(), "rotation", "rotate", "error")
		return "", fmt.Errorf("%w: %s", rotationDomain.ErrSecretNotInitialized, name)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := s.now().UTC()
	for _, v := range entry.versions {
		if v.Primary {
			expiry := now.Add(s.gracePeriod)
			v.Primary = false
			v.ExpiresAt = &expiry
		}
	}

	version := &rotationDomain.KeyVersion{
		ID:        newVersionID(),
		Key:       newValue,
		CreatedAt: now,
		Primary:   true,
	}
	entry.versions = append([]*rotationDomain.KeyVersion{version}, entry.versions...)
	s.pruneLocked(entry, now)

	s.logger.Info("secret rotated",
		slog.String("secret", name),
		slog.String("version", version.ID),
		slog.Int("versions_retained", len(entry.versions)),
	)
	s.metrics.RecordOperation(context.Background(), "rotation", "rotate", "success")
	return version.ID, nil
}

// RotateAuto rotates name to a fresh cryptographically random value of the
// default length. The plaintext value never leaves the store unless read
// back, which is intentional for zero-touch rotation; it is also ephemeral to
// the process.
func (s *Service) RotateAuto(name string) (string, error) {
	return s.RotateAutoN(name, rotationDomain.DefaultAutoSecretLength)
}

// RotateAutoN is RotateAuto with an explicit random value length in bytes.
func (s *Service) RotateAutoN(name string, length int) (string, error) {
	raw := make([]byte, length)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate secret value: %w", err)
	}
	value := base64.StdEncoding.EncodeToString(raw)
	cryptoDomain.Zero(raw)

	return s.Rotate(name, value)
}

// ForceExpireOldVersions expires every non-primary version immediately,
// bypassing the grace period, and prunes them. Use when a compromise is
// suspected: tokens and ciphertexts keyed to non-primary versions become
// unverifiable right away.
func (s *Service) ForceExpireOldVersions(name string) error {
	entry := s.entry(name)
	if entry == nil {
		return fmt.Errorf("%w: %s", rotationDomain.ErrSecretNotInitialized, name)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := s.now().UTC()
	for _, v := range entry.versions {
		if !v.Primary {
			expiry := now
			v.ExpiresAt = &expiry
		}
	}
	s.pruneLocked(entry, now)

	s.logger.Warn("old key versions force-expired", slog.String("secret", name))
	s.metrics.RecordOperation(context.Background(), "rotation", "force_expire", "success")
	return nil
}

// pruneLocked drops expired non-primary versions and truncates to the
// retention limit, zeroing the key material of every dropped version. The
// backing array's tail slots are nilled so dropped versions do not linger
// behind the shortened slice. Caller must hold entry.mu.
func (s *Service) pruneLocked(entry *secretEntry, now time.Time) {
	old := entry.versions
	kept := old[:0]
	for _, v := range old {
		if v.Primary || v.Valid(now) {
			kept = append(kept, v)
		} else {
			v.Key = ""
		}
	}

	if len(kept) > s.maxVersions {
		for _, v := range kept[s.maxVersions:] {
			v.Key = ""
		}
		kept = kept[:s.maxVersions]
	}

	for i := len(kept); i < len(old); i++ {
		old[i] = nil
	}
	entry.versions = kept
}

// Status returns a read-only snapshot of name's rotation state. It never
// fails: uninitialized names yield the zero-value status.
func (s *Service) Status(name string) rotationDomain.RotationStatus {
	entry := s.entry(name)
	if entry == nil {
		return rotationDomain.RotationStatus{}
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	status := rotationDomain.RotationStatus{
		Initialized:  true,
		VersionCount: len(entry.versions),
	}

	now := s.now()
	for _, v := range entry.versions {
		if v.Primary {
			status.PrimaryVersionID = v.ID
			status.PrimaryCreatedAt = v.CreatedAt
		}
		if v.Valid(now) {
			// newest first, so the last valid entry is the oldest
			status.OldestValidVersion = v.ID
		}
	}
	if !entry.nextAutoRotation.IsZero() {
		next := entry.nextAutoRotation
		status.NextAutoRotation = &next
	}
	return status
}

// EnableAutoRotation schedules recurring auto-rotation for name on the
// configured interval. The scheduler runs on a background goroutine and does
// not keep an otherwise-idle process alive; Shutdown cancels it. Enabling
// twice is a no-op.
func (s *Service) EnableAutoRotation(name string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return rotationDomain.ErrServiceClosed
	}
	entry, ok := s.secrets[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", rotationDomain.ErrSecretNotInitialized, name)
	}

	entry.mu.Lock()
	if entry.autoCancel != nil {
		entry.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	entry.autoCancel = cancel
	entry.nextAutoRotation = s.now().Add(s.autoInterval)
	entry.mu.Unlock()

	s.wg.Add(1)
	go s.runScheduler(ctx, name, entry)

	s.logger.Info("auto-rotation enabled",
		slog.String("secret", name),
		slog.Duration("interval", s.autoInterval),
	)
	return nil
}

// runScheduler rotates name on every tick until the context is cancelled.
func (s *Service) runScheduler(ctx context.Context, name string, entry *secretEntry) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.autoInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RotateAuto(name); err != nil {
				s.logger.Error("scheduled rotation failed",
					slog.String("secret", name),
					slog.Any("error", err),
				)
				s.metrics.RecordOperation(ctx, "rotation", "auto_rotate", "error")
				continue
			}
			entry.mu.Lock()
			entry.nextAutoRotation = s.now().Add(s.autoInterval)
			entry.mu.Unlock()
			s.metrics.RecordOperation(ctx, "rotation", "auto_rotate", "success")
		}
	}
}

// Shutdown cancels all scheduled rotations, waits for them to stop, and
// clears all in-memory version state, zeroing key material. It is idempotent
// and safe to call multiple times.
func (s *Service) Shutdown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for _, entry := range s.secrets {
		entry.mu.Lock()
		if entry.autoCancel != nil {
			entry.autoCancel()
			entry.autoCancel = nil
		}
		entry.mu.Unlock()
	}
	s.mu.Unlock()

	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	for name, entry := range s.secrets {
		entry.mu.Lock()
		for _, v := range entry.versions {
			v.Key = ""
		}
		entry.versions = nil
		entry.mu.Unlock()
		delete(s.secrets, name)
	}

	s.logger.Info("rotation service shut down")
}
