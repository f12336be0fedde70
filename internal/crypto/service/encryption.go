package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"

	cryptoDomain "github.com/venuekit/credentials/internal/crypto/domain"
)

// Argon2id parameters for DeriveKey. Chosen per the RFC 9106 second
// recommended option (64 MiB, 3 passes) so derivation stays memory-hard
// while remaining usable on modest hardware.
const (
	argonTime    = 3
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// EncryptionService implements Encryptor using AES-256-GCM.
//
// Payload wire format: base64( nonce (16 bytes) || tag (16 bytes) || body ).
// The nonce is randomly generated per call and never reused for a given key.
// Go's GCM appends the tag to the sealed output, so Encrypt moves it to the
// fixed offset the payload format requires and Decrypt moves it back.
//
// The service holds no mutable state and is safe for concurrent use.
type EncryptionService struct{}

// NewEncryptionService creates a new EncryptionService.
func NewEncryptionService() *EncryptionService {
	return &EncryptionService{}
}

// newAEAD builds an AES-256-GCM cipher with the 16-byte nonce size the
// payload format uses. Returns ErrInvalidKeyLength unless the key is exactly
// 32 bytes.
func (s *EncryptionService) newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeyLength
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCMWithNonceSize(block, cryptoDomain.NonceSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return aead, nil
}

// Encrypt encrypts plaintext with a 32-byte key and returns the base64-encoded
// payload. A fresh random nonce is generated for every call.
func (s *EncryptionService) Encrypt(plaintext string, key []byte) (string, error) {
	return s.seal(plaintext, key, nil)
}

// EncryptWithAAD encrypts plaintext and binds the associated data into the
// authentication tag without encrypting it.
func (s *EncryptionService) EncryptWithAAD(plaintext string, key []byte, aad string) (string, error) {
	return s.seal(plaintext, key, []byte(aad))
}

// Decrypt decrypts a payload produced by Encrypt.
func (s *EncryptionService) Decrypt(ciphertext string, key []byte) (string, error) {
	return s.open(ciphertext, key, nil)
}

// DecryptWithAAD decrypts a payload produced by EncryptWithAAD. The same AAD
// used at encryption time must be provided.
func (s *EncryptionService) DecryptWithAAD(ciphertext string, key []byte, aad string) (string, error) {
	return s.open(ciphertext, key, []byte(aad))
}

// EncryptWithVersion encrypts plaintext and bundles the caller's key-version
// label alongside the ciphertext. The label is not authenticated by the
// engine; use AAD to bind it if required.
func (s *EncryptionService) EncryptWithVersion(
	plaintext string,
	key []byte,
	keyVersion string,
) (VersionedCiphertext, error) {
	ciphertext, err := s.Encrypt(plaintext, key)
	if err != nil {
		return VersionedCiphertext{}, err
	}

	return VersionedCiphertext{
		Ciphertext: ciphertext,
		KeyVersion: keyVersion,
	}, nil
}

// seal runs authenticated encryption and assembles nonce || tag || body.
func (s *EncryptionService) seal(plaintext string, key, aad []byte) (string, error) {
	aead, err := s.newAEAD(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, cryptoDomain.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Seal returns body || tag; the payload format carries the tag at a
	// fixed offset right after the nonce.
	sealed := aead.Seal(nil, nonce, []byte(plaintext), aad)
	bodyLen := len(sealed) - cryptoDomain.TagSize
	body, tag := sealed[:bodyLen], sealed[bodyLen:]

	payload := make([]byte, 0, cryptoDomain.MinPayloadSize+bodyLen)
	payload = append(payload, nonce...)
	payload = append(payload, tag...)
	payload = append(payload, body...)

	return base64.StdEncoding.EncodeToString(payload), nil
}

// open splits a payload by fixed offsets and runs authenticated decryption.
func (s *EncryptionService) open(ciphertext string, key, aad []byte) (string, error) {
	aead, err := s.newAEAD(key)
	if err != nil {
		return "", err
	}

	payload, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", cryptoDomain.ErrMalformedCiphertext
	}
	if len(payload) < cryptoDomain.MinPayloadSize {
		return "", cryptoDomain.ErrMalformedCiphertext
	}

	nonce := payload[:cryptoDomain.NonceSize]
	tag := payload[cryptoDomain.NonceSize:cryptoDomain.MinPayloadSize]
	body := payload[cryptoDomain.MinPayloadSize:]

	// Reassemble body || tag for Open.
	sealed := make([]byte, 0, len(body)+cryptoDomain.TagSize)
	sealed = append(sealed, body...)
	sealed = append(sealed, tag...)

	plaintext, err := aead.Open(nil, nonce, sealed, aad)
	if err != nil {
		// Single opaque failure: wrong key, tampering, and AAD mismatch are
		// indistinguishable to the caller.
		return "", cryptoDomain.ErrDecryptionFailed
	}

	return string(plaintext), nil
}

// DeriveKey derives a 32-byte key from a password and salt using Argon2id.
// The same (password, salt) pair always yields the same key.
func (s *EncryptionService) DeriveKey(password string, salt []byte) ([]byte, error) {
	if len(salt) != cryptoDomain.SaltSize {
		return nil, cryptoDomain.ErrInvalidSaltLength
	}

	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, cryptoDomain.KeySize)
	return key, nil
}

// GenerateKey returns a fresh cryptographically random 32-byte key.
func (s *EncryptionService) GenerateKey() ([]byte, error) {
	return s.randomBytes(cryptoDomain.KeySize)
}

// GenerateSalt returns a fresh cryptographically random 32-byte salt.
func (s *EncryptionService) GenerateSalt() ([]byte, error) {
	return s.randomBytes(cryptoDomain.SaltSize)
}

func (s *EncryptionService) randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}

// SecureCompare performs a constant-time equality check between two strings.
//
// When lengths differ the comparison still runs against a dummy of matching
// length before returning false, so timing does not leak where the strings
// first differ or whether the lengths matched.
func (s *EncryptionService) SecureCompare(a, b string) bool {
	ab := []byte(a)
	bb := []byte(b)

	if len(ab) != len(bb) {
		subtle.ConstantTimeCompare(ab, ab)
		return false
	}

	return subtle.ConstantTimeCompare(ab, bb) == 1
}
