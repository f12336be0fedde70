package domain

import (
	"github.com/venuekit/credentials/internal/errors"
)

// Secret resolution and validation error definitions.
var (
	// ErrSecretNotFound indicates the provider has no value for the name.
	ErrSecretNotFound = errors.Wrap(errors.ErrNotFound, "secret not found")

	// ErrMissingRequiredSecret indicates a boot-required secret is absent.
	// Fatal: the process must not start serving traffic.
	ErrMissingRequiredSecret = errors.Wrap(errors.ErrInvalidInput, "missing required secret")

	// ErrWeakSecretValue indicates a secret value fails strength validation
	// (too short or containing a well-known weak pattern). Fatal in
	// production, a warning elsewhere.
	ErrWeakSecretValue = errors.Wrap(errors.ErrInvalidInput, "weak secret value")

	// ErrUnknownProvider indicates the configured secrets provider kind is
	// not supported.
	ErrUnknownProvider = errors.Wrap(errors.ErrInvalidInput, "unknown secrets provider")
)
