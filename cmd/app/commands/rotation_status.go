package commands

import (
	"fmt"
	"io"

	rotationDomain "github.com/venuekit/credentials/internal/rotation/domain"
)

// RotationStatusReader reports the rotation state of a named secret.
type RotationStatusReader interface {
	Status(name string) rotationDomain.RotationStatus
}

// RunRotationStatus prints the rotation state of the named secret.
func RunRotationStatus(reader RotationStatusReader, name string, w io.Writer) error {
	if name == "" {
		return fmt.Errorf("--name is required")
	}

	status := reader.Status(name)
	if !status.Initialized {
		return fmt.Errorf("secret %s is not initialized", name)
	}

	fmt.Fprintf(w, "secret: %s\n", name)
	fmt.Fprintf(w, "versions: %d\n", status.VersionCount)
	fmt.Fprintf(w, "primary version: %s\n", status.PrimaryVersionID)
	fmt.Fprintf(w, "primary created: %s\n", status.PrimaryCreatedAt.Format("2006-01-02T15:04:05Z07:00"))
	if status.OldestValidVersion != "" {
		fmt.Fprintf(w, "oldest valid version: %s\n", status.OldestValidVersion)
	}
	if status.NextAutoRotation != nil {
		fmt.Fprintf(w, "next auto rotation: %s\n", status.NextAutoRotation.Format("2006-01-02T15:04:05Z07:00"))
	}
	return nil
}
