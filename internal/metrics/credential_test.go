package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertMetricLine checks that the Prometheus output contains a metric
// matching the given name, partial label pattern, and value. Uses regex to
// handle extra OTel scope labels injected by the Prometheus exporter.
func assertMetricLine(t *testing.T, output, name, labels, value string) {
	t.Helper()
	pattern := name + `\{[^}]*` + strings.Join(strings.Split(labels, ","), `[^}]*`) + `[^}]*\} ` + value
	assert.Regexp(t, pattern, output)
}

func scrape(t *testing.T, provider *Provider) string {
	t.Helper()
	server := httptest.NewServer(provider.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestNewCredentialMetrics(t *testing.T) {
	provider, err := NewProvider("test_credentials")
	require.NoError(t, err)

	recorder, err := NewCredentialMetrics(provider.MeterProvider(), "test_credentials")

	require.NoError(t, err)
	assert.NotNil(t, recorder)
}

func TestCredentialMetrics_RecordOperation(t *testing.T) {
	provider, err := NewProvider("test_credentials")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	recorder, err := NewCredentialMetrics(provider.MeterProvider(), "test_credentials")
	require.NoError(t, err)

	ctx := context.Background()
	recorder.RecordOperation(ctx, "rotation", "rotate", "success")
	recorder.RecordOperation(ctx, "rotation", "rotate", "success")
	recorder.RecordOperation(ctx, "token", "verify", "error")

	output := scrape(t, provider)
	assertMetricLine(t, output, "test_credentials_operations_total",
		`domain="rotation",operation="rotate",status="success"`, "2")
	assertMetricLine(t, output, "test_credentials_operations_total",
		`domain="token",operation="verify",status="error"`, "1")
}

func TestCredentialMetrics_RecordDuration(t *testing.T) {
	provider, err := NewProvider("test_credentials")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	recorder, err := NewCredentialMetrics(provider.MeterProvider(), "test_credentials")
	require.NoError(t, err)

	recorder.RecordDuration(context.Background(), "secrets", "secret_get", 125*time.Millisecond, "success")

	output := scrape(t, provider)
	assert.Contains(t, output, "test_credentials_operation_duration_seconds")
}

func TestNewNoopMetrics(t *testing.T) {
	recorder := NewNoopMetrics()
	assert.NotNil(t, recorder)

	// Should not panic or do anything
	recorder.RecordOperation(context.Background(), "rotation", "rotate", "success")
	recorder.RecordDuration(context.Background(), "token", "sign", 100*time.Millisecond, "error")
}
