package provider

import (
	"context"
	"testing"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	secretsDomain "github.com/venuekit/credentials/internal/secrets/domain"
)

type mockGCPClient struct {
	accessSecretVersion func(*secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error)
}

func (m *mockGCPClient) AccessSecretVersion(
	_ context.Context,
	req *secretmanagerpb.AccessSecretVersionRequest,
	_ ...gax.CallOption,
) (*secretmanagerpb.AccessSecretVersionResponse, error) {
	return m.accessSecretVersion(req)
}

func TestGCPProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a project id", func(t *testing.T) {
		_, err := NewGCPProvider(ctx, GCPConfig{})
		require.Error(t, err)
		assert.ErrorIs(t, err, secretsDomain.ErrUnknownProvider)
	})

	t.Run("resolves the latest version by resource name", func(t *testing.T) {
		client := &mockGCPClient{
			accessSecretVersion: func(req *secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error) {
				assert.Equal(t, "projects/venuekit-prod/secrets/SESSION_SECRET/versions/latest", req.GetName())
				return &secretmanagerpb.AccessSecretVersionResponse{
					Payload: &secretmanagerpb.SecretPayload{Data: []byte("gcp-session-value")},
				}, nil
			},
		}
		p, err := NewGCPProvider(ctx, GCPConfig{ProjectID: "venuekit-prod"}, WithGCPClient(client))
		require.NoError(t, err)

		value, ok, err := p.GetSecret(ctx, secretsDomain.SessionSecret)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "gcp-session-value", value)
	})

	t.Run("maps NotFound to absence", func(t *testing.T) {
		client := &mockGCPClient{
			accessSecretVersion: func(*secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error) {
				return nil, status.Error(codes.NotFound, "secret not found")
			},
		}
		p, err := NewGCPProvider(ctx, GCPConfig{ProjectID: "venuekit-prod"}, WithGCPClient(client))
		require.NoError(t, err)

		_, ok, err := p.GetSecret(ctx, secretsDomain.MFAEncryptionKey)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("propagates other backend errors", func(t *testing.T) {
		client := &mockGCPClient{
			accessSecretVersion: func(*secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error) {
				return nil, status.Error(codes.PermissionDenied, "access denied")
			},
		}
		p, err := NewGCPProvider(ctx, GCPConfig{ProjectID: "venuekit-prod"}, WithGCPClient(client))
		require.NoError(t, err)

		_, _, err = p.GetSecret(ctx, secretsDomain.MFAEncryptionKey)
		require.Error(t, err)
		assert.Equal(t, codes.PermissionDenied, status.Code(err))
	})

	t.Run("kind", func(t *testing.T) {
		p, err := NewGCPProvider(ctx, GCPConfig{ProjectID: "p"}, WithGCPClient(&mockGCPClient{}))
		require.NoError(t, err)
		assert.Equal(t, "gcp", p.Kind())
	})
}
