// Package validation provides custom validation rules for the application.
package validation

import (
	"fmt"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/venuekit/credentials/internal/errors"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// SecretStrength validates that a secret value meets the minimum security bar:
// a minimum length and no well-known weak substrings.
type SecretStrength struct {
	MinLength    int
	WeakPatterns []string
}

// Validate checks if the secret value meets the configured requirements.
func (s SecretStrength) Validate(value interface{}) error {
	v, ok := value.(string)
	if !ok {
		return validation.NewError("validation_secret_strength", "secret must be a string")
	}

	if len(v) < s.MinLength {
		return validation.NewError(
			"validation_secret_min_length",
			fmt.Sprintf("secret must be at least %d characters", s.MinLength),
		)
	}

	lower := strings.ToLower(v)
	for _, pattern := range s.WeakPatterns {
		if strings.Contains(lower, pattern) {
			return validation.NewError(
				"validation_secret_weak_pattern",
				fmt.Sprintf("secret contains weak pattern %q", pattern),
			)
		}
	}

	return nil
}
