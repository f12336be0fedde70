// Package provider implements the pluggable secrets backends consumed by the
// secrets facade. One implementation exists per backend kind, selected by
// configuration at construction time.
package provider

import (
	"context"

	secretsDomain "github.com/venuekit/credentials/internal/secrets/domain"
)

// Provider defines the read contract of a secrets backend.
//
// GetSecret reports absence via the boolean rather than an error so callers
// can distinguish "not configured" from "backend failed". Implementations
// backed by remote stores must honor context deadlines.
type Provider interface {
	// GetSecret resolves one secret value. The boolean is false when the
	// backend has no value for the name.
	GetSecret(ctx context.Context, name secretsDomain.SecretName) (string, bool, error)

	// GetSecrets resolves several names at once. Absent names are omitted
	// from the result map.
	GetSecrets(ctx context.Context, names []secretsDomain.SecretName) (map[secretsDomain.SecretName]string, error)

	// HealthCheck reports whether the backend is reachable.
	HealthCheck(ctx context.Context) bool

	// Kind names the backend (e.g., "env", "aws", "gcp").
	Kind() string
}

// getSecrets is the shared GetSecrets implementation: sequential point
// lookups, failing fast on the first backend error.
func getSecrets(
	ctx context.Context,
	p Provider,
	names []secretsDomain.SecretName,
) (map[secretsDomain.SecretName]string, error) {
	values := make(map[secretsDomain.SecretName]string, len(names))
	for _, name := range names {
		value, ok, err := p.GetSecret(ctx, name)
		if err != nil {
			return nil, err
		}
		if ok {
			values[name] = value
		}
	}
	return values, nil
}
