package domain

import "time"

const (
	// DefaultGracePeriod is how long a demoted primary remains valid for
	// verification after rotation.
	DefaultGracePeriod = 24 * time.Hour

	// DefaultMaxVersions is the number of key versions retained per secret
	// name after rotation. The oldest entries are dropped beyond this,
	// regardless of expiry.
	DefaultMaxVersions = 3

	// DefaultAutoRotationInterval is the interval between scheduled
	// auto-rotations when auto-rotation is enabled for a secret name.
	DefaultAutoRotationInterval = 30 * 24 * time.Hour

	// DefaultAutoSecretLength is the number of random bytes generated for an
	// auto-rotated secret value before base64 encoding.
	DefaultAutoSecretLength = 64
)
