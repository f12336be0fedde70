// Package service implements the versioned bearer-token service.
//
// Tokens are standard JWTs (HS256) whose header carries a "kid" claim naming
// the exact key version used to sign them, so verification can target that
// version and fall back to trying all valid versions only when the identifier
// is absent or unresolvable.
package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	rotationService "github.com/venuekit/credentials/internal/rotation/service"
)

// Rotator is the slice of the rotation service the token service consumes.
type Rotator interface {
	PrimarySecret(name string) (string, error)
	PrimaryVersionID(name string) (string, error)
	ValidSecrets(name string) ([]rotationService.ValidSecret, error)
	SecretByVersion(name, versionID string) (string, error)
	Rotate(name, newValue string) (string, error)
	RotateAuto(name string) (string, error)
	ForceExpireOldVersions(name string) error
}

// SignedToken is the result of signing: the compact JWT plus the key version
// that signed it.
type SignedToken struct {
	Token      string
	KeyVersion string
}

// VerifiedToken is the result of a successful verification.
type VerifiedToken struct {
	// Claims is the verified payload.
	Claims jwt.MapClaims
	// KeyVersion is the version id whose key verified the signature.
	KeyVersion string
	// IsOldKey is true when the verifying version is no longer the primary,
	// signalling that the presenter should be nudged to refresh.
	IsOldKey bool
}

// SignOptions customizes an individual signing operation. Zero values fall
// back to the service defaults.
type SignOptions struct {
	// TTL overrides the default token lifetime.
	TTL time.Duration
	// Subject sets the "sub" claim when non-empty.
	Subject string
}
