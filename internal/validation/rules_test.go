package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/venuekit/credentials/internal/errors"
)

func TestSecretStrength(t *testing.T) {
	rule := SecretStrength{
		MinLength:    32,
		WeakPatterns: []string{"password", "secret", "changeme"},
	}

	tests := []struct {
		name      string
		value     string
		shouldErr bool
		errMsg    string
	}{
		{
			name:      "strong value",
			value:     "dGhpcyBpcyBhIHJhbmRvbSBzdHJvbmcga2V5IHZhbHVl",
			shouldErr: false,
		},
		{
			name:      "too short",
			value:     "abc123",
			shouldErr: true,
			errMsg:    "at least 32 characters",
		},
		{
			name:      "contains weak pattern",
			value:     "xxxxxxxxxxxxxxpasswordxxxxxxxxxxxxxx",
			shouldErr: true,
			errMsg:    "weak pattern",
		},
		{
			name:      "weak pattern is case-insensitive",
			value:     "xxxxxxxxxxxxxxCHANGEMExxxxxxxxxxxxxx",
			shouldErr: true,
			errMsg:    "weak pattern",
		},
		{
			name:      "exactly minimum length",
			value:     "abcdefghijklmnopqrstuvwxyz123490",
			shouldErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rule.Validate(tt.value)
			if tt.shouldErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	t.Run("non-string value", func(t *testing.T) {
		err := rule.Validate(12345)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "must be a string")
	})
}

func TestWrapValidationError(t *testing.T) {
	t.Run("nil error passes through", func(t *testing.T) {
		assert.NoError(t, WrapValidationError(nil))
	})

	t.Run("errors are wrapped as invalid input", func(t *testing.T) {
		rule := SecretStrength{MinLength: 32}
		err := WrapValidationError(rule.Validate("short"))

		assert.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}
