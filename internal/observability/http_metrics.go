package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTP metric instrument names.
const (
	MetricNameRequests            = "aura_http_requests_total"
	MetricNameRequestDuration     = "aura_http_request_duration_seconds"
	MetricNameRequestBodyTooLarge = "aura_http_request_body_too_large_total"
)

// HTTPMetrics records request-level HTTP metrics.
// All call sites accept a nil HTTPMetrics (metrics disabled).
type HTTPMetrics interface {
	RecordRequest(ctx context.Context, method, route, statusClass string, duration time.Duration)
	RecordRequestBodyTooLarge(ctx context.Context)
}

type httpMetrics struct {
	requests        metric.Int64Counter
	requestDuration metric.Float64Histogram
	bodyTooLarge    metric.Int64Counter
}

// NewHTTPMetrics creates HTTPMetrics on the given meter.
// Returns (nil, nil) when meter is nil (metrics disabled).
func NewHTTPMetrics(meter metric.Meter) (HTTPMetrics, error) {
	if meter == nil {
		//nolint:nilnil // intentional: callers use "if metrics != nil" when metrics disabled
		return nil, nil
	}

	requests, err := meter.Int64Counter(
		MetricNameRequests,
		metric.WithDescription("Total HTTP requests by method, route, and status class"),
	)
	if err != nil {
		return nil, fmt.Errorf("create requests counter: %w", err)
	}

	requestDuration, err := meter.Float64Histogram(
		MetricNameRequestDuration,
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create request duration histogram: %w", err)
	}

	bodyTooLarge, err := meter.Int64Counter(
		MetricNameRequestBodyTooLarge,
		metric.WithDescription("Total requests rejected for exceeding the body size limit"),
	)
	if err != nil {
		return nil, fmt.Errorf("create body too large counter: %w", err)
	}

	return &httpMetrics{
		requests:        requests,
		requestDuration: requestDuration,
		bodyTooLarge:    bodyTooLarge,
	}, nil
}

func (m *httpMetrics) RecordRequest(ctx context.Context, method, route, statusClass string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.String("status_class", statusClass),
	)
	m.requests.Add(ctx, 1, attrs)
	m.requestDuration.Record(ctx, duration.Seconds(), attrs)
}

func (m *httpMetrics) RecordRequestBodyTooLarge(ctx context.Context) {
	m.bodyTooLarge.Add(ctx, 1)
}
