// Package service provides the authenticated field-encryption engine.
// Implements AES-256-GCM with a self-describing payload format, Argon2id key
// derivation, and constant-time comparison helpers.
package service

// VersionedCiphertext bundles an encrypted payload with the key-version label
// the caller supplied at encryption time. The label is metadata for the
// caller's own key lookup and is not authenticated by the engine; bind it via
// AAD if tamper resistance of the label itself is required.
type VersionedCiphertext struct {
	Ciphertext string
	KeyVersion string
}

// Encryptor defines the interface for authenticated field encryption.
//
// Implementations are stateless per call and safe for concurrent use from
// multiple goroutines without synchronization.
type Encryptor interface {
	// Encrypt encrypts a UTF-8 plaintext with a 32-byte key and returns the
	// base64-encoded payload nonce || tag || ciphertext.
	Encrypt(plaintext string, key []byte) (string, error)

	// Decrypt reverses Encrypt. Returns ErrMalformedCiphertext for
	// undecodable or too-short input and ErrDecryptionFailed for any
	// authentication failure, without distinguishing the cause.
	Decrypt(ciphertext string, key []byte) (string, error)

	// EncryptWithAAD is Encrypt with caller-supplied associated data bound
	// into the authentication tag without being encrypted.
	EncryptWithAAD(plaintext string, key []byte, aad string) (string, error)

	// DecryptWithAAD is Decrypt with associated data. Decryption fails if the
	// AAD does not match what was used at encryption time.
	DecryptWithAAD(ciphertext string, key []byte, aad string) (string, error)

	// EncryptWithVersion encrypts and bundles the given key-version label
	// alongside the ciphertext.
	EncryptWithVersion(plaintext string, key []byte, keyVersion string) (VersionedCiphertext, error)

	// DeriveKey derives a 32-byte key from a password and a 32-byte salt
	// using a deterministic, memory-hard KDF.
	DeriveKey(password string, salt []byte) ([]byte, error)

	// GenerateKey returns a fresh cryptographically random 32-byte key.
	GenerateKey() ([]byte, error)

	// GenerateSalt returns a fresh cryptographically random 32-byte salt.
	GenerateSalt() ([]byte, error)

	// SecureCompare performs a constant-time equality check between two
	// strings. It does not short-circuit on length mismatch.
	SecureCompare(a, b string) bool
}
