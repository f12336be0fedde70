package domain

import (
	"github.com/venuekit/credentials/internal/errors"
)

// Field-encryption error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors
// to provide context for cryptographic failures. All errors are mapped to
// appropriate status codes by the error handling layer of callers.
var (
	// ErrInvalidKeyLength indicates the encryption key is not exactly 32 bytes.
	// Always a caller bug, never retried.
	ErrInvalidKeyLength = errors.Wrap(errors.ErrInvalidInput, "invalid key length")

	// ErrInvalidSaltLength indicates the key-derivation salt is not exactly 32 bytes.
	ErrInvalidSaltLength = errors.Wrap(errors.ErrInvalidInput, "invalid salt length")

	// ErrMalformedCiphertext indicates the encrypted payload could not be decoded
	// or is too short to contain a nonce and an authentication tag.
	ErrMalformedCiphertext = errors.Wrap(errors.ErrInvalidInput, "malformed ciphertext")

	// ErrDecryptionFailed indicates an authenticated decryption failed.
	//
	// This error can occur due to:
	//   - Wrong decryption key used
	//   - Ciphertext has been tampered with (authentication failure)
	//   - AAD mismatch between encryption and decryption
	//   - Corrupted encrypted data
	//
	// For security reasons, the specific cause is never disclosed to prevent
	// oracle attacks.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")
)
