package commands

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRotator struct {
	rotateCalls     []string
	rotateAutoCalls []string
	versionID       string
	err             error
}

func (m *mockRotator) Rotate(name, newValue string) (string, error) {
	m.rotateCalls = append(m.rotateCalls, name+"="+newValue)
	return m.versionID, m.err
}

func (m *mockRotator) RotateAuto(name string) (string, error) {
	m.rotateAutoCalls = append(m.rotateAutoCalls, name)
	return m.versionID, m.err
}

func TestRunRotateSecret(t *testing.T) {
	t.Run("manual rotation with a value", func(t *testing.T) {
		var out bytes.Buffer
		rotator := &mockRotator{versionID: "v-123"}

		err := RunRotateSecret(rotator, testLogger(), "ACCESS_TOKEN_SECRET", "new-material", &out)

		require.NoError(t, err)
		assert.Equal(t, []string{"ACCESS_TOKEN_SECRET=new-material"}, rotator.rotateCalls)
		assert.Empty(t, rotator.rotateAutoCalls)
		assert.Contains(t, out.String(), "v-123")
	})

	t.Run("auto rotation without a value", func(t *testing.T) {
		var out bytes.Buffer
		rotator := &mockRotator{versionID: "v-456"}

		err := RunRotateSecret(rotator, testLogger(), "REFRESH_TOKEN_SECRET", "", &out)

		require.NoError(t, err)
		assert.Equal(t, []string{"REFRESH_TOKEN_SECRET"}, rotator.rotateAutoCalls)
		assert.Empty(t, rotator.rotateCalls)
		assert.Contains(t, out.String(), "v-456")
	})

	t.Run("missing name", func(t *testing.T) {
		var out bytes.Buffer
		err := RunRotateSecret(&mockRotator{}, testLogger(), "", "", &out)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "--name is required")
	})

	t.Run("rotation failure", func(t *testing.T) {
		var out bytes.Buffer
		rotator := &mockRotator{err: errors.New("secret not initialized")}

		err := RunRotateSecret(rotator, testLogger(), "ACCESS_TOKEN_SECRET", "", &out)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "ACCESS_TOKEN_SECRET")
	})
}
