package service

import (
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	rotationDomain "github.com/venuekit/credentials/internal/rotation/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	svc := NewService(testLogger(), opts...)
	t.Cleanup(svc.Shutdown)
	return svc
}

func TestService_InitializeSecret(t *testing.T) {
	svc := newTestService(t)

	t.Run("first initialization creates non-expiring primary", func(t *testing.T) {
		require.NoError(t, svc.InitializeSecret("access-token", "k1"))

		key, err := svc.PrimarySecret("access-token")
		require.NoError(t, err)
		assert.Equal(t, "k1", key)

		status := svc.Status("access-token")
		assert.True(t, status.Initialized)
		assert.Equal(t, 1, status.VersionCount)
	})

	t.Run("duplicate initialization is a no-op", func(t *testing.T) {
		require.NoError(t, svc.InitializeSecret("access-token", "other-value"))

		key, err := svc.PrimarySecret("access-token")
		require.NoError(t, err)
		assert.Equal(t, "k1", key)
	})
}

func TestService_UninitializedName(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.PrimarySecret("missing")
	assert.ErrorIs(t, err, rotationDomain.ErrSecretNotInitialized)

	_, err = svc.PrimaryVersionID("missing")
	assert.ErrorIs(t, err, rotationDomain.ErrSecretNotInitialized)

	_, err = svc.ValidSecrets("missing")
	assert.ErrorIs(t, err, rotationDomain.ErrSecretNotInitialized)

	_, err = svc.SecretByVersion("missing", "v1")
	assert.ErrorIs(t, err, rotationDomain.ErrSecretNotInitialized)

	_, err = svc.Rotate("missing", "value")
	assert.ErrorIs(t, err, rotationDomain.ErrSecretNotInitialized)

	err = svc.ForceExpireOldVersions("missing")
	assert.ErrorIs(t, err, rotationDomain.ErrSecretNotInitialized)

	err = svc.EnableAutoRotation("missing")
	assert.ErrorIs(t, err, rotationDomain.ErrSecretNotInitialized)

	status := svc.Status("missing")
	assert.False(t, status.Initialized)
	assert.Zero(t, status.VersionCount)
}

func TestService_Rotate_GracePeriod(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.InitializeSecret("session", "v1-key"))

	v1ID, err := svc.PrimaryVersionID("session")
	require.NoError(t, err)

	v2ID, err := svc.Rotate("session", "v2-key")
	require.NoError(t, err)
	assert.NotEqual(t, v1ID, v2ID)

	t.Run("new primary serves signing", func(t *testing.T) {
		key, err := svc.PrimarySecret("session")
		require.NoError(t, err)
		assert.Equal(t, "v2-key", key)
	})

	t.Run("demoted version stays valid during grace period", func(t *testing.T) {
		valid, err := svc.ValidSecrets("session")
		require.NoError(t, err)
		require.Len(t, valid, 2)
		// newest-primary first
		assert.Equal(t, v2ID, valid[0].VersionID)
		assert.Equal(t, v1ID, valid[1].VersionID)

		key, err := svc.SecretByVersion("session", v1ID)
		require.NoError(t, err)
		assert.Equal(t, "v1-key", key)
	})

	t.Run("demoted version drops out once grace elapses", func(t *testing.T) {
		svc.now = func() time.Time { return time.Now().Add(rotationDomain.DefaultGracePeriod + time.Minute) }
		defer func() { svc.now = time.Now }()

		valid, err := svc.ValidSecrets("session")
		require.NoError(t, err)
		require.Len(t, valid, 1)
		assert.Equal(t, v2ID, valid[0].VersionID)

		_, err = svc.SecretByVersion("session", v1ID)
		assert.ErrorIs(t, err, rotationDomain.ErrVersionNotFound)
	})
}

func TestService_SecretByVersion_UnknownID(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.InitializeSecret("csrf", "value"))

	_, err := svc.SecretByVersion("csrf", "not-a-version")
	assert.ErrorIs(t, err, rotationDomain.ErrVersionNotFound)
}

func TestService_RotateAuto(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.InitializeSecret("refresh-token", "seed"))

	versionID, err := svc.RotateAuto("refresh-token")
	require.NoError(t, err)
	assert.NotEmpty(t, versionID)

	key, err := svc.PrimarySecret("refresh-token")
	require.NoError(t, err)
	assert.NotEqual(t, "seed", key)

	// 64 random bytes, base64-encoded
	raw, err := base64.StdEncoding.DecodeString(key)
	require.NoError(t, err)
	assert.Len(t, raw, rotationDomain.DefaultAutoSecretLength)
}

func TestService_ForceExpireOldVersions(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.InitializeSecret("api-key", "v1"))

	v1ID, err := svc.PrimaryVersionID("api-key")
	require.NoError(t, err)

	v2ID, err := svc.Rotate("api-key", "v2")
	require.NoError(t, err)

	require.NoError(t, svc.ForceExpireOldVersions("api-key"))

	t.Run("demoted version is unverifiable immediately", func(t *testing.T) {
		_, err := svc.SecretByVersion("api-key", v1ID)
		assert.ErrorIs(t, err, rotationDomain.ErrVersionNotFound)

		valid, err := svc.ValidSecrets("api-key")
		require.NoError(t, err)
		require.Len(t, valid, 1)
		assert.Equal(t, v2ID, valid[0].VersionID)
	})

	t.Run("primary is untouched", func(t *testing.T) {
		key, err := svc.PrimarySecret("api-key")
		require.NoError(t, err)
		assert.Equal(t, "v2", key)
	})
}

func TestService_MaxVersionsEviction(t *testing.T) {
	svc := newTestService(t, WithMaxVersions(3))
	require.NoError(t, svc.InitializeSecret("mfa", "v1"))

	// rotate maxVersions + 1 times
	for i := 2; i <= 5; i++ {
		_, err := svc.Rotate("mfa", fmt.Sprintf("v%d", i))
		require.NoError(t, err)
	}

	status := svc.Status("mfa")
	assert.Equal(t, 3, status.VersionCount)

	key, err := svc.PrimarySecret("mfa")
	require.NoError(t, err)
	assert.Equal(t, "v5", key)
}

func TestService_PruneZeroesDroppedKeys(t *testing.T) {
	svc := newTestService(t, WithMaxVersions(2))
	require.NoError(t, svc.InitializeSecret("session", "v0"))

	entry := svc.entry("session")
	require.NotNil(t, entry)
	v0 := entry.versions[0]

	t.Run("retention eviction wipes the key", func(t *testing.T) {
		_, err := svc.Rotate("session", "v1")
		require.NoError(t, err)
		// newest-first
		v1 := entry.versions[0]
		assert.Equal(t, "v1", v1.Key)

		_, err = svc.Rotate("session", "v2")
		require.NoError(t, err)

		assert.Empty(t, v0.Key, "evicted version must not retain key material")
		assert.Equal(t, "v1", v1.Key, "retained version keeps its key")
	})

	t.Run("force-expire wipes the pruned keys", func(t *testing.T) {
		v1 := entry.versions[1]
		require.NoError(t, svc.ForceExpireOldVersions("session"))

		assert.Empty(t, v1.Key)

		key, err := svc.PrimarySecret("session")
		require.NoError(t, err)
		assert.Equal(t, "v2", key)
	})
}

func TestService_Status(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.InitializeSecret("db", "v1"))

	v1ID, err := svc.PrimaryVersionID("db")
	require.NoError(t, err)

	v2ID, err := svc.Rotate("db", "v2")
	require.NoError(t, err)

	status := svc.Status("db")
	assert.True(t, status.Initialized)
	assert.Equal(t, 2, status.VersionCount)
	assert.Equal(t, v2ID, status.PrimaryVersionID)
	assert.False(t, status.PrimaryCreatedAt.IsZero())
	assert.Equal(t, v1ID, status.OldestValidVersion)
	assert.Nil(t, status.NextAutoRotation)
}

func TestService_AutoRotation(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc := NewService(testLogger(), WithAutoRotationInterval(20*time.Millisecond))
	require.NoError(t, svc.InitializeSecret("scheduled", "seed"))
	require.NoError(t, svc.EnableAutoRotation("scheduled"))

	// enabling twice is a no-op
	require.NoError(t, svc.EnableAutoRotation("scheduled"))

	status := svc.Status("scheduled")
	require.NotNil(t, status.NextAutoRotation)

	assert.Eventually(t, func() bool {
		key, err := svc.PrimarySecret("scheduled")
		return err == nil && key != "seed"
	}, time.Second, 5*time.Millisecond)

	svc.Shutdown()
}

func TestService_Shutdown(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc := NewService(testLogger(), WithAutoRotationInterval(time.Hour))
	require.NoError(t, svc.InitializeSecret("short-lived", "value"))
	require.NoError(t, svc.EnableAutoRotation("short-lived"))

	svc.Shutdown()

	t.Run("state is cleared", func(t *testing.T) {
		_, err := svc.PrimarySecret("short-lived")
		assert.ErrorIs(t, err, rotationDomain.ErrSecretNotInitialized)
	})

	t.Run("idempotent", func(t *testing.T) {
		svc.Shutdown()
		svc.Shutdown()
	})

	t.Run("initialization after shutdown is rejected", func(t *testing.T) {
		err := svc.InitializeSecret("late", "value")
		assert.ErrorIs(t, err, rotationDomain.ErrServiceClosed)
	})
}

func TestService_ConcurrentRotationAndReads(t *testing.T) {
	svc := newTestService(t, WithMaxVersions(4))
	require.NoError(t, svc.InitializeSecret("contended", "v0"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if i%2 == 0 {
					_, err := svc.Rotate("contended", fmt.Sprintf("w%d-%d", i, j))
					assert.NoError(t, err)
				} else {
					valid, err := svc.ValidSecrets("contended")
					assert.NoError(t, err)
					// a consistent snapshot always contains the primary
					assert.NotEmpty(t, valid)

					_, err = svc.PrimarySecret("contended")
					assert.NoError(t, err)
				}
			}
		}(i)
	}
	wg.Wait()

	status := svc.Status("contended")
	assert.True(t, status.Initialized)
	assert.LessOrEqual(t, status.VersionCount, 4)
	assert.NotEmpty(t, status.PrimaryVersionID)
}
