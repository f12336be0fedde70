package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// CredentialMetrics defines the interface for recording credential operation metrics.
// Implementations track operation counts and durations for observability across
// the credential domains (rotation, token, encryption, secrets).
type CredentialMetrics interface {
	// RecordOperation records a credential operation with its status.
	// Domain examples: "rotation", "token", "secrets"
	// Operation examples: "rotate", "sign", "verify", "secret_get"
	// Status examples: "success", "error"
	RecordOperation(ctx context.Context, domain, operation, status string)

	// RecordDuration records the duration of a credential operation with its status.
	// Duration is recorded in seconds as a histogram for percentile calculations.
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)
}

// credentialMetrics implements CredentialMetrics using OpenTelemetry metrics.
type credentialMetrics struct {
	operationCounter metric.Int64Counter
	durationHisto    metric.Float64Histogram
}

// NewCredentialMetrics creates a new CredentialMetrics implementation using the
// provided meter provider. The namespace parameter is used as a prefix for all
// metric names. Returns error if meters cannot be initialized.
func NewCredentialMetrics(meterProvider metric.MeterProvider, namespace string) (CredentialMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operationCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_operations_total", namespace),
		metric.WithDescription("Total number of credential operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_operation_duration_seconds", namespace),
		metric.WithDescription("Duration of credential operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return &credentialMetrics{
		operationCounter: operationCounter,
		durationHisto:    durationHisto,
	}, nil
}

// RecordOperation increments the operation counter with domain, operation, and status labels.
func (c *credentialMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	c.operationCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

// RecordDuration records the operation duration in seconds with domain, operation, and status labels.
func (c *credentialMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	c.durationHisto.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

// noopMetrics discards all recordings. Used when metrics are disabled.
type noopMetrics struct{}

// NewNoopMetrics returns a CredentialMetrics that records nothing.
func NewNoopMetrics() CredentialMetrics {
	return noopMetrics{}
}

func (noopMetrics) RecordOperation(context.Context, string, string, string) {}

func (noopMetrics) RecordDuration(context.Context, string, string, time.Duration, string) {}
