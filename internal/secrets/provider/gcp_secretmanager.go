package provider

import (
	"context"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	secretsDomain "github.com/venuekit/credentials/internal/secrets/domain"
)

// GCPClientAPI defines the GCP Secret Manager operations this provider uses.
// This allows for mocking in tests.
type GCPClientAPI interface {
	AccessSecretVersion(
		ctx context.Context,
		req *secretmanagerpb.AccessSecretVersionRequest,
		opts ...gax.CallOption,
	) (*secretmanagerpb.AccessSecretVersionResponse, error)
}

// GCPConfig configures the GCP Secret Manager provider.
type GCPConfig struct {
	ProjectID string
}

// GCPProvider resolves secrets from Google Cloud Secret Manager. Secret names
// map to the latest enabled version of the same-named secret in the project.
type GCPProvider struct {
	client    GCPClientAPI
	projectID string
}

// GCPOption is a functional option for configuring the GCP provider.
type GCPOption func(*GCPProvider)

// WithGCPClient sets a custom Secret Manager client (for testing).
func WithGCPClient(client GCPClientAPI) GCPOption {
	return func(p *GCPProvider) {
		p.client = client
	}
}

// NewGCPProvider creates a GCP Secret Manager provider. Without a client
// option, credentials are resolved through Application Default Credentials.
func NewGCPProvider(ctx context.Context, cfg GCPConfig, opts ...GCPOption) (*GCPProvider, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("%w: gcp provider requires a project id", secretsDomain.ErrUnknownProvider)
	}

	p := &GCPProvider{projectID: cfg.ProjectID}

	for _, opt := range opts {
		opt(p)
	}

	if p.client == nil {
		client, err := secretmanager.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create secret manager client: %w", err)
		}
		p.client = client
	}

	return p, nil
}

// GetSecret fetches the latest version of one secret. NotFound maps to
// absence, not an error.
func (p *GCPProvider) GetSecret(ctx context.Context, name secretsDomain.SecretName) (string, bool, error) {
	resource := fmt.Sprintf("projects/%s/secrets/%s/versions/latest", p.projectID, name)

	resp, err := p.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: resource,
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to access secret %s: %w", name, err)
	}

	return string(resp.GetPayload().GetData()), true, nil
}

// GetSecrets resolves several names from GCP Secret Manager.
func (p *GCPProvider) GetSecrets(
	ctx context.Context,
	names []secretsDomain.SecretName,
) (map[secretsDomain.SecretName]string, error) {
	return getSecrets(ctx, p, names)
}

// HealthCheck probes the backend with a lookup that is allowed to miss.
func (p *GCPProvider) HealthCheck(ctx context.Context) bool {
	_, _, err := p.GetSecret(ctx, "health-check-probe")
	return err == nil
}

// Kind returns "gcp".
func (p *GCPProvider) Kind() string {
	return "gcp"
}
