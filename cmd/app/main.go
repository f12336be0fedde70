// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/venuekit/credentials/cmd/app/commands"
	"github.com/venuekit/credentials/internal/app"
	"github.com/venuekit/credentials/internal/config"
)

func main() {
	cmd := &cli.Command{
		Name:    "credentials",
		Usage:   "Credential lifecycle management for the venue platform",
		Version: "1.0.0",
		Commands: []*cli.Command{
			{
				Name:  "validate-secrets",
				Usage: "Validate that all boot-required secrets are present and strong",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					container := app.NewContainer(config.Load())
					logger := container.Logger()
					defer closeContainer(container, logger)

					manager, err := container.SecretsManager(ctx)
					if err != nil {
						return err
					}
					return commands.RunValidateSecrets(ctx, manager, logger, os.Stdout)
				},
			},
			{
				Name:  "generate-key",
				Usage: "Generate a fresh base64-encoded 32-byte encryption key",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "salt",
						Aliases: []string{"s"},
						Value:   false,
						Usage:   "Also generate a salt for password-based key derivation",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					container := app.NewContainer(config.Load())
					defer closeContainer(container, container.Logger())

					encryptor, err := container.EncryptionService()
					if err != nil {
						return err
					}
					return commands.RunGenerateKey(encryptor, cmd.Bool("salt"), os.Stdout)
				},
			},
			{
				Name:  "rotate-secret",
				Usage: "Rotate a signing secret's key material",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Required: true,
						Usage:    "Secret name (e.g., ACCESS_TOKEN_SECRET)",
					},
					&cli.StringFlag{
						Name:    "value",
						Aliases: []string{"v"},
						Value:   "",
						Usage:   "New key material (omit to generate a random value)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					container := app.NewContainer(config.Load())
					logger := container.Logger()
					defer closeContainer(container, logger)

					if err := container.Bootstrap(ctx); err != nil {
						return err
					}
					rotation, err := container.RotationService()
					if err != nil {
						return err
					}
					return commands.RunRotateSecret(rotation, logger, cmd.String("name"), cmd.String("value"), os.Stdout)
				},
			},
			{
				Name:  "rotation-status",
				Usage: "Print the rotation state of a signing secret",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Required: true,
						Usage:    "Secret name (e.g., ACCESS_TOKEN_SECRET)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					container := app.NewContainer(config.Load())
					logger := container.Logger()
					defer closeContainer(container, logger)

					if err := container.Bootstrap(ctx); err != nil {
						return err
					}
					rotation, err := container.RotationService()
					if err != nil {
						return err
					}
					return commands.RunRotationStatus(rotation, cmd.String("name"), os.Stdout)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// closeContainer shuts the container down and logs any errors.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}
