// Package domain defines versioned-token domain errors.
package domain

import (
	"github.com/venuekit/credentials/internal/errors"
)

// Versioned token error definitions.
//
// Verification failures surface to callers as a generic authentication
// failure; which key version was tried and why it failed must never leak to
// the client.
var (
	// ErrNotInitialized indicates the token service was used before being
	// bound to a secret name.
	ErrNotInitialized = errors.Wrap(errors.ErrInternal, "token service not initialized")

	// ErrInvalidTokenFormat indicates the token structure could not be
	// decoded. Raised before any key lookup is attempted.
	ErrInvalidTokenFormat = errors.Wrap(errors.ErrUnauthorized, "invalid token format")

	// ErrTokenVerificationFailed indicates no valid key version verified the
	// token signature, or the version named by the token's key identifier
	// rejected it.
	ErrTokenVerificationFailed = errors.Wrap(errors.ErrUnauthorized, "token verification failed")
)
