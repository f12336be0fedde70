// Package domain defines core field-encryption domain models.
package domain

const (
	// KeySize is the required key length in bytes for AES-256-GCM.
	KeySize = 32

	// NonceSize is the nonce length in bytes prepended to every encrypted payload.
	NonceSize = 16

	// TagSize is the GCM authentication tag length in bytes.
	TagSize = 16

	// SaltSize is the key-derivation salt length in bytes.
	SaltSize = 32

	// MinPayloadSize is the minimum decoded length of an encrypted payload.
	// Anything shorter cannot contain a nonce and an authentication tag and
	// is rejected before splitting.
	MinPayloadSize = NonceSize + TagSize
)
