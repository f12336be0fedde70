package commands

import (
	"fmt"
	"io"
	"log/slog"
)

// SecretRotator rotates a named secret's key material.
type SecretRotator interface {
	Rotate(name, newValue string) (string, error)
	RotateAuto(name string) (string, error)
}

// RunRotateSecret rotates the named secret. With a value, the rotation uses
// the caller's key material; without one, a fresh random value is generated.
// The new primary version id is printed on success.
func RunRotateSecret(rotator SecretRotator, logger *slog.Logger, name, value string, w io.Writer) error {
	if name == "" {
		return fmt.Errorf("--name is required")
	}

	var (
		versionID string
		err       error
	)
	if value != "" {
		versionID, err = rotator.Rotate(name, value)
	} else {
		versionID, err = rotator.RotateAuto(name)
	}
	if err != nil {
		return fmt.Errorf("failed to rotate %s: %w", name, err)
	}

	logger.Info("secret rotated",
		slog.String("secret", name),
		slog.String("version_id", versionID),
	)
	fmt.Fprintf(w, "rotated %s, new primary version: %s\n", name, versionID)
	return nil
}
