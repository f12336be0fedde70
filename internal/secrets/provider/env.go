package provider

import (
	"context"
	"os"

	secretsDomain "github.com/venuekit/credentials/internal/secrets/domain"
)

// EnvProvider resolves secrets from process environment variables. The secret
// name is used as the variable name verbatim.
type EnvProvider struct{}

// NewEnvProvider creates an environment-variable secrets provider.
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{}
}

// GetSecret looks the name up in the environment. Empty values count as absent.
func (p *EnvProvider) GetSecret(_ context.Context, name secretsDomain.SecretName) (string, bool, error) {
	value, ok := os.LookupEnv(string(name))
	if !ok || value == "" {
		return "", false, nil
	}
	return value, true, nil
}

// GetSecrets resolves several names from the environment.
func (p *EnvProvider) GetSecrets(
	ctx context.Context,
	names []secretsDomain.SecretName,
) (map[secretsDomain.SecretName]string, error) {
	return getSecrets(ctx, p, names)
}

// HealthCheck always succeeds; the environment is local.
func (p *EnvProvider) HealthCheck(context.Context) bool {
	return true
}

// Kind returns "env".
func (p *EnvProvider) Kind() string {
	return "env"
}
