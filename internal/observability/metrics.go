package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric instrument names.
const (
	MetricNameDocumentsIngested = "aura_documents_ingested_total"
	MetricNameChunksIndexed     = "aura_chunks_indexed_total"
	MetricNameEmbeddingCalls    = "aura_embedding_calls_total"
	MetricNameChatRequests      = "aura_chat_requests_total"
)

// PipelineMetrics records ingestion and chat pipeline metrics.
// All call sites accept a nil PipelineMetrics (metrics disabled).
type PipelineMetrics interface {
	RecordDocumentIngested(ctx context.Context, status string)
	RecordChunksIndexed(ctx context.Context, count int64)
	RecordEmbeddingCall(ctx context.Context, intent, status string)
	RecordChatRequest(ctx context.Context, outcome string)
}

type pipelineMetrics struct {
	documentsIngested metric.Int64Counter
	chunksIndexed     metric.Int64Counter
	embeddingCalls    metric.Int64Counter
	chatRequests      metric.Int64Counter
}

// NewPipelineMetrics creates PipelineMetrics on the given meter.
// Returns (nil, nil) when meter is nil (metrics disabled).
func NewPipelineMetrics(meter metric.Meter) (PipelineMetrics, error) {
	if meter == nil {
		//nolint:nilnil // intentional: callers use "if metrics != nil" when metrics disabled
		return nil, nil
	}

	documentsIngested, err := meter.Int64Counter(
		MetricNameDocumentsIngested,
		metric.WithDescription("Total documents processed by the ingestion pipeline, by status"),
	)
	if err != nil {
		return nil, fmt.Errorf("create documents ingested counter: %w", err)
	}

	chunksIndexed, err := meter.Int64Counter(
		MetricNameChunksIndexed,
		metric.WithDescription("Total chunks upserted into the vector index"),
	)
	if err != nil {
		return nil, fmt.Errorf("create chunks indexed counter: %w", err)
	}

	embeddingCalls, err := meter.Int64Counter(
		MetricNameEmbeddingCalls,
		metric.WithDescription("Total embedding calls by retrieval intent and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("create embedding calls counter: %w", err)
	}

	chatRequests, err := meter.Int64Counter(
		MetricNameChatRequests,
		metric.WithDescription("Total chat requests by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("create chat requests counter: %w", err)
	}

	return &pipelineMetrics{
		documentsIngested: documentsIngested,
		chunksIndexed:     chunksIndexed,
		embeddingCalls:    embeddingCalls,
		chatRequests:      chatRequests,
	}, nil
}

func (m *pipelineMetrics) RecordDocumentIngested(ctx context.Context, status string) {
	m.documentsIngested.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

func (m *pipelineMetrics) RecordChunksIndexed(ctx context.Context, count int64) {
	m.chunksIndexed.Add(ctx, count)
}

func (m *pipelineMetrics) RecordEmbeddingCall(ctx context.Context, intent, status string) {
	m.embeddingCalls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("intent", intent),
		attribute.String("status", status),
	))
}

func (m *pipelineMetrics) RecordChatRequest(ctx context.Context, outcome string) {
	m.chatRequests.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
