// Package domain defines the managed secret names and their boot requirements.
package domain

// SecretName identifies one of the fixed logical secrets the platform manages.
type SecretName string

const (
	// AccessTokenSecret signs short-lived access tokens.
	AccessTokenSecret SecretName = "ACCESS_TOKEN_SECRET"
	// RefreshTokenSecret signs refresh tokens.
	RefreshTokenSecret SecretName = "REFRESH_TOKEN_SECRET"
	// SessionSecret protects server-side session state.
	SessionSecret SecretName = "SESSION_SECRET"
	// CSRFSecret signs anti-CSRF tokens.
	CSRFSecret SecretName = "CSRF_SECRET"
	// DatabaseURL is the database connection string.
	DatabaseURL SecretName = "DATABASE_URL"
	// MFAEncryptionKey encrypts MFA enrollment material at rest.
	MFAEncryptionKey SecretName = "MFA_ENCRYPTION_KEY"
	// APIEncryptionKey is the general at-rest field-encryption key.
	APIEncryptionKey SecretName = "API_ENCRYPTION_KEY"
)

// MinSecretLength is the minimum accepted length for a managed secret value.
const MinSecretLength = 32

// RequiredAtBoot returns the secrets that must resolve before the process may
// start serving traffic in any environment.
func RequiredAtBoot() []SecretName {
	return []SecretName{
		AccessTokenSecret,
		RefreshTokenSecret,
		SessionSecret,
		DatabaseURL,
	}
}

// RequiredInProduction returns the additional secrets that are mandatory only
// in the production environment.
func RequiredInProduction() []SecretName {
	return []SecretName{
		CSRFSecret,
		MFAEncryptionKey,
		APIEncryptionKey,
	}
}

// SigningSecrets returns the secrets that seed the rotation service as key
// material for token signing.
func SigningSecrets() []SecretName {
	return []SecretName{
		AccessTokenSecret,
		RefreshTokenSecret,
	}
}

// WeakPatterns are substrings that mark a secret value as guessable.
// Matching values fail validation in production and log a warning elsewhere.
var WeakPatterns = []string{
	"password",
	"secret",
	"test",
	"12345",
	"changeme",
	"default",
}
