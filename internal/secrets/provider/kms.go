package provider

import (
	"context"
	"encoding/base64"
	"fmt"

	"gocloud.dev/secrets"

	secretsDomain "github.com/venuekit/credentials/internal/secrets/domain"

	// Register KMS keeper drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/localsecrets"
)

// KMSProvider decorates another provider, unwrapping values that were stored
// KMS-encrypted. Stored values are expected to be base64-encoded KMS
// ciphertexts; the decrypted plaintext is returned to callers.
//
// Keeper URIs follow gocloud.dev conventions (awskms://, gcpkms://,
// base64key:// for tests).
type KMSProvider struct {
	inner  Provider
	keeper *secrets.Keeper
}

// NewKMSProvider opens a keeper for keyURI and wraps inner with it.
func NewKMSProvider(ctx context.Context, inner Provider, keyURI string) (*KMSProvider, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}

	return &KMSProvider{inner: inner, keeper: keeper}, nil
}

// GetSecret resolves the wrapped value from the inner provider and decrypts it.
func (p *KMSProvider) GetSecret(ctx context.Context, name secretsDomain.SecretName) (string, bool, error) {
	wrapped, ok, err := p.inner.GetSecret(ctx, name)
	if err != nil || !ok {
		return "", ok, err
	}

	ciphertext, err := base64.StdEncoding.DecodeString(wrapped)
	if err != nil {
		return "", false, fmt.Errorf("secret %s is not base64-encoded KMS ciphertext: %w", name, err)
	}

	plaintext, err := p.keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return "", false, fmt.Errorf("failed to unwrap secret %s: %w", name, err)
	}

	return string(plaintext), true, nil
}

// GetSecrets resolves and unwraps several names.
func (p *KMSProvider) GetSecrets(
	ctx context.Context,
	names []secretsDomain.SecretName,
) (map[secretsDomain.SecretName]string, error) {
	return getSecrets(ctx, p, names)
}

// HealthCheck combines the inner provider's health with the keeper's.
func (p *KMSProvider) HealthCheck(ctx context.Context) bool {
	if !p.inner.HealthCheck(ctx) {
		return false
	}
	// round-trip a probe through the keeper
	probe, err := p.keeper.Encrypt(ctx, []byte("probe"))
	if err != nil {
		return false
	}
	_, err = p.keeper.Decrypt(ctx, probe)
	return err == nil
}

// Kind returns the inner kind with a "+kms" suffix.
func (p *KMSProvider) Kind() string {
	return p.inner.Kind() + "+kms"
}

// Close releases the keeper.
func (p *KMSProvider) Close() error {
	return p.keeper.Close()
}
