package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"

	secretsDomain "github.com/venuekit/credentials/internal/secrets/domain"
)

// SecretsManagerClientAPI defines the AWS Secrets Manager operations this
// provider uses. This allows for mocking in tests.
type SecretsManagerClientAPI interface {
	GetSecretValue(
		ctx context.Context,
		params *secretsmanager.GetSecretValueInput,
		optFns ...func(*secretsmanager.Options),
	) (*secretsmanager.GetSecretValueOutput, error)
	ListSecrets(
		ctx context.Context,
		params *secretsmanager.ListSecretsInput,
		optFns ...func(*secretsmanager.Options),
	) (*secretsmanager.ListSecretsOutput, error)
}

// AWSConfig configures the AWS Secrets Manager provider.
type AWSConfig struct {
	Region string
	// Endpoint is an optional custom endpoint for LocalStack or testing.
	Endpoint string
	// AccessKeyID and SecretAccessKey, when both set, override the default
	// credential chain with static credentials. Intended for LocalStack.
	AccessKeyID     string
	SecretAccessKey string
	// Prefix is prepended to secret names (e.g., "venuekit/prod/").
	Prefix string
}

// AWSProvider resolves secrets from AWS Secrets Manager.
type AWSProvider struct {
	client SecretsManagerClientAPI
	prefix string
}

// AWSOption is a functional option for configuring the AWS provider.
type AWSOption func(*AWSProvider)

// WithSecretsManagerClient sets a custom Secrets Manager client (for testing).
func WithSecretsManagerClient(client SecretsManagerClientAPI) AWSOption {
	return func(p *AWSProvider) {
		p.client = client
	}
}

// NewAWSProvider creates an AWS Secrets Manager provider. Without a client
// option, credentials are resolved through the default AWS config chain.
func NewAWSProvider(ctx context.Context, cfg AWSConfig, opts ...AWSOption) (*AWSProvider, error) {
	p := &AWSProvider{prefix: cfg.Prefix}

	for _, opt := range opts {
		opt(p)
	}

	if p.client == nil {
		loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
		if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
			loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
			))
		}

		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}

		var clientOpts []func(*secretsmanager.Options)
		if cfg.Endpoint != "" {
			clientOpts = append(clientOpts, func(o *secretsmanager.Options) {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
			})
		}
		p.client = secretsmanager.NewFromConfig(awsCfg, clientOpts...)
	}

	return p, nil
}

// GetSecret fetches one secret value. ResourceNotFound maps to absence, not
// an error.
func (p *AWSProvider) GetSecret(ctx context.Context, name secretsDomain.SecretName) (string, bool, error) {
	out, err := p.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(p.prefix + string(name)),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get secret %s: %w", name, err)
	}

	if out.SecretString != nil {
		return *out.SecretString, true, nil
	}
	if out.SecretBinary != nil {
		return string(out.SecretBinary), true, nil
	}
	return "", false, nil
}

// GetSecrets resolves several names from AWS Secrets Manager.
func (p *AWSProvider) GetSecrets(
	ctx context.Context,
	names []secretsDomain.SecretName,
) (map[secretsDomain.SecretName]string, error) {
	return getSecrets(ctx, p, names)
}

// HealthCheck verifies the backend is reachable with a minimal list call.
func (p *AWSProvider) HealthCheck(ctx context.Context) bool {
	_, err := p.client.ListSecrets(ctx, &secretsmanager.ListSecretsInput{
		MaxResults: aws.Int32(1),
	})
	return err == nil
}

// Kind returns "aws".
func (p *AWSProvider) Kind() string {
	return "aws"
}
