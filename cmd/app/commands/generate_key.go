package commands

import (
	"encoding/base64"
	"fmt"
	"io"

	cryptoDomain "github.com/venuekit/credentials/internal/crypto/domain"
	cryptoService "github.com/venuekit/credentials/internal/crypto/service"
)

// RunGenerateKey prints a fresh base64-encoded 32-byte encryption key, and
// optionally a salt for password-based key derivation. Raw key material is
// zeroed after encoding.
func RunGenerateKey(encryptor cryptoService.Encryptor, withSalt bool, w io.Writer) error {
	key, err := encryptor.GenerateKey()
	if err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}
	fmt.Fprintf(w, "ENCRYPTION_KEY=%s\n", base64.StdEncoding.EncodeToString(key))
	cryptoDomain.Zero(key)

	if withSalt {
		salt, err := encryptor.GenerateSalt()
		if err != nil {
			return fmt.Errorf("failed to generate salt: %w", err)
		}
		fmt.Fprintf(w, "KEY_DERIVATION_SALT=%s\n", base64.StdEncoding.EncodeToString(salt))
		cryptoDomain.Zero(salt)
	}

	return nil
}
