// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// SecretsValidator validates the boot-required secrets.
type SecretsValidator interface {
	ValidateRequired(ctx context.Context) error
	HealthCheck(ctx context.Context) bool
}

// RunValidateSecrets runs the boot-time secret validation against the
// configured provider. It returns a non-nil error when any required secret is
// missing or, in production, weak — making the process exit non-zero.
func RunValidateSecrets(ctx context.Context, validator SecretsValidator, logger *slog.Logger, w io.Writer) error {
	if !validator.HealthCheck(ctx) {
		return fmt.Errorf("secrets provider is not reachable")
	}

	if err := validator.ValidateRequired(ctx); err != nil {
		logger.Error("secret validation failed", slog.Any("error", err))
		return err
	}

	fmt.Fprintln(w, "all required secrets are present and valid")
	return nil
}
