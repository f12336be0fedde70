package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	secretsDomain "github.com/venuekit/credentials/internal/secrets/domain"
)

type mockSecretsManagerClient struct {
	getSecretValue func(*secretsmanager.GetSecretValueInput) (*secretsmanager.GetSecretValueOutput, error)
	listSecrets    func(*secretsmanager.ListSecretsInput) (*secretsmanager.ListSecretsOutput, error)
}

func (m *mockSecretsManagerClient) GetSecretValue(
	_ context.Context,
	params *secretsmanager.GetSecretValueInput,
	_ ...func(*secretsmanager.Options),
) (*secretsmanager.GetSecretValueOutput, error) {
	return m.getSecretValue(params)
}

func (m *mockSecretsManagerClient) ListSecrets(
	_ context.Context,
	params *secretsmanager.ListSecretsInput,
	_ ...func(*secretsmanager.Options),
) (*secretsmanager.ListSecretsOutput, error) {
	return m.listSecrets(params)
}

func TestAWSProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the secret string with the prefix applied", func(t *testing.T) {
		client := &mockSecretsManagerClient{
			getSecretValue: func(in *secretsmanager.GetSecretValueInput) (*secretsmanager.GetSecretValueOutput, error) {
				assert.Equal(t, "venuekit/prod/DATABASE_URL", aws.ToString(in.SecretId))
				return &secretsmanager.GetSecretValueOutput{
					SecretString: aws.String("postgres://example"),
				}, nil
			},
		}
		p, err := NewAWSProvider(ctx, AWSConfig{Prefix: "venuekit/prod/"}, WithSecretsManagerClient(client))
		require.NoError(t, err)

		value, ok, err := p.GetSecret(ctx, secretsDomain.DatabaseURL)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "postgres://example", value)
	})

	t.Run("maps ResourceNotFound to absence", func(t *testing.T) {
		client := &mockSecretsManagerClient{
			getSecretValue: func(*secretsmanager.GetSecretValueInput) (*secretsmanager.GetSecretValueOutput, error) {
				return nil, &types.ResourceNotFoundException{}
			},
		}
		p, err := NewAWSProvider(ctx, AWSConfig{}, WithSecretsManagerClient(client))
		require.NoError(t, err)

		_, ok, err := p.GetSecret(ctx, secretsDomain.SessionSecret)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("propagates other backend errors", func(t *testing.T) {
		backendErr := errors.New("throttled")
		client := &mockSecretsManagerClient{
			getSecretValue: func(*secretsmanager.GetSecretValueInput) (*secretsmanager.GetSecretValueOutput, error) {
				return nil, backendErr
			},
		}
		p, err := NewAWSProvider(ctx, AWSConfig{}, WithSecretsManagerClient(client))
		require.NoError(t, err)

		_, _, err = p.GetSecret(ctx, secretsDomain.SessionSecret)
		require.Error(t, err)
		assert.ErrorIs(t, err, backendErr)
	})

	t.Run("falls back to binary payloads", func(t *testing.T) {
		client := &mockSecretsManagerClient{
			getSecretValue: func(*secretsmanager.GetSecretValueInput) (*secretsmanager.GetSecretValueOutput, error) {
				return &secretsmanager.GetSecretValueOutput{
					SecretBinary: []byte("binary-value"),
				}, nil
			},
		}
		p, err := NewAWSProvider(ctx, AWSConfig{}, WithSecretsManagerClient(client))
		require.NoError(t, err)

		value, ok, err := p.GetSecret(ctx, secretsDomain.APIEncryptionKey)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "binary-value", value)
	})

	t.Run("constructs a client with static credentials and a custom endpoint", func(t *testing.T) {
		p, err := NewAWSProvider(ctx, AWSConfig{
			Region:          "us-east-1",
			Endpoint:        "http://localhost:4566",
			AccessKeyID:     "test",
			SecretAccessKey: "test",
		})
		require.NoError(t, err)
		assert.Equal(t, "aws", p.Kind())
	})

	t.Run("health check uses a minimal list call", func(t *testing.T) {
		client := &mockSecretsManagerClient{
			listSecrets: func(in *secretsmanager.ListSecretsInput) (*secretsmanager.ListSecretsOutput, error) {
				assert.Equal(t, int32(1), aws.ToInt32(in.MaxResults))
				return &secretsmanager.ListSecretsOutput{}, nil
			},
		}
		p, err := NewAWSProvider(ctx, AWSConfig{}, WithSecretsManagerClient(client))
		require.NoError(t, err)

		assert.True(t, p.HealthCheck(ctx))
	})

	t.Run("health check fails when the backend is unreachable", func(t *testing.T) {
		client := &mockSecretsManagerClient{
			listSecrets: func(*secretsmanager.ListSecretsInput) (*secretsmanager.ListSecretsOutput, error) {
				return nil, errors.New("connection refused")
			},
		}
		p, err := NewAWSProvider(ctx, AWSConfig{}, WithSecretsManagerClient(client))
		require.NoError(t, err)

		assert.False(t, p.HealthCheck(ctx))
	})
}
