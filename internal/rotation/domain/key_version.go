// Package domain defines key-rotation domain models and errors.
package domain

import (
	"time"
)

// KeyVersion represents one version of a named secret's key material.
//
// Exactly one version per secret name is primary at any time once the name is
// initialized. Only the primary version has a nil ExpiresAt; demoted versions
// carry the grace-period deadline after which they stop verifying.
type KeyVersion struct {
	// ID is the opaque version identifier (UUIDv7, time-ordered). It is safe
	// to embed in a token header field.
	ID string
	// Key is the raw secret material for this version.
	Key string
	// CreatedAt is when this version was created.
	CreatedAt time.Time
	// ExpiresAt is the grace-period deadline; nil means never expires and is
	// only true for the current primary.
	ExpiresAt *time.Time
	// Primary marks the version used for new signing operations.
	Primary bool
}

// Valid reports whether the version may still be used for verification at the
// given instant.
func (v *KeyVersion) Valid(now time.Time) bool {
	return v.ExpiresAt == nil || v.ExpiresAt.After(now)
}

// RotationStatus is a read-only snapshot of a secret name's rotation state.
// The zero value (Initialized false) is returned for uninitialized names.
type RotationStatus struct {
	Initialized        bool
	VersionCount       int
	PrimaryVersionID   string
	PrimaryCreatedAt   time.Time
	OldestValidVersion string
	NextAutoRotation   *time.Time
}
