package domain

import (
	"github.com/venuekit/credentials/internal/errors"
)

// Key-rotation error definitions.
//
// There is deliberately no silent fallback to an empty or default key when a
// name is uninitialized: that would let unauthenticated tokens appear to
// verify. Every read and mutate operation fails fast instead.
var (
	// ErrSecretNotInitialized indicates the secret name has no versions yet.
	// Fatal at startup; boot should abort.
	ErrSecretNotInitialized = errors.Wrap(errors.ErrNotFound, "secret not initialized")

	// ErrNoPrimaryVersion indicates the one-primary invariant was violated.
	// Unreachable given correct rotation logic; treated as an internal
	// invariant failure.
	ErrNoPrimaryVersion = errors.Wrap(errors.ErrInternal, "no primary version")

	// ErrVersionNotFound indicates the requested version id is unknown or has
	// already expired.
	ErrVersionNotFound = errors.Wrap(errors.ErrNotFound, "key version not found")

	// ErrServiceClosed indicates the rotation service has been shut down.
	ErrServiceClosed = errors.Wrap(errors.ErrConflict, "rotation service closed")
)
