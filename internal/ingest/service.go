// Package ingest orchestrates the document ingestion pipeline:
// extract chunks, classify once, embed each chunk, upsert each record.
package ingest

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/aura-sadaqa/aura/internal/auraerrors"
	"github.com/aura-sadaqa/aura/internal/classify"
	"github.com/aura-sadaqa/aura/internal/embeddings"
	"github.com/aura-sadaqa/aura/internal/extract"
	"github.com/aura-sadaqa/aura/internal/models"
	"github.com/aura-sadaqa/aura/internal/observability"
	"github.com/aura-sadaqa/aura/internal/vectorindex"
)

// defaultMaxChunks bounds the number of chunks embedded and indexed per
// document. Chunks beyond the cap are dropped deliberately: each retained
// chunk costs one embedding call and one upsert.
const defaultMaxChunks = 100

// VectorIndex is the subset of the index the ingestion pipeline needs.
type VectorIndex interface {
	Upsert(ctx context.Context, records []vectorindex.Record) error
}

// DocumentClassifier derives document-level metadata with default substitution on failure.
type DocumentClassifier interface {
	ClassifyOrDefault(ctx context.Context, chunks []models.Chunk) models.GlobalMetadata
}

// Service runs the ingestion pipeline for one uploaded file at a time.
type Service struct {
	embedder   embeddings.Client
	index      VectorIndex
	classifier DocumentClassifier
	limiter    *rate.Limiter
	maxChunks  int
	metrics    observability.PipelineMetrics
}

// Option configures the Service.
type Option func(*Service)

// WithMaxChunks overrides the per-document chunk cap.
func WithMaxChunks(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxChunks = n
		}
	}
}

// WithRateLimiter throttles embedding calls during ingestion.
func WithRateLimiter(limiter *rate.Limiter) Option {
	return func(s *Service) {
		s.limiter = limiter
	}
}

// WithMetrics enables pipeline metrics. metrics may be nil.
func WithMetrics(metrics observability.PipelineMetrics) Option {
	return func(s *Service) {
		s.metrics = metrics
	}
}

// NewService creates the ingestion orchestrator.
func NewService(embedder embeddings.Client, index VectorIndex, classifier DocumentClassifier, opts ...Option) *Service {
	s := &Service{
		embedder:   embedder,
		index:      index,
		classifier: classifier,
		maxChunks:  defaultMaxChunks,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// IngestDocument extracts, classifies, embeds, and indexes the uploaded file.
//
// Chunks are processed strictly sequentially in extraction order: one chunk
// is fully embedded and upserted before the next begins. The first
// embedding or index error aborts the remaining chunks; records already
// upserted stay in the index and a re-upload overwrites nothing it does not
// regenerate. Extraction errors propagate verbatim and are never retried.
func (s *Service) IngestDocument(ctx context.Context, data []byte, mediaType, filename string) (*models.IngestReport, error) {
	chunks, err := extract.Chunks(data, mediaType, filename)
	if err != nil {
		s.recordDocument(ctx, "extract_failed")

		return nil, err
	}

	meta := s.classifier.ClassifyOrDefault(ctx, chunks)

	if len(chunks) > s.maxChunks {
		slog.InfoContext(ctx, "Truncating document to chunk cap",
			"source", filename, "extracted", len(chunks), "cap", s.maxChunks)
		chunks = chunks[:s.maxChunks]
	}

	for i, chunk := range chunks {
		if err := s.wait(ctx); err != nil {
			s.recordDocument(ctx, "canceled")

			return nil, auraerrors.NewEmbeddingError(err)
		}

		vector, err := s.embedder.CreateEmbedding(ctx, chunk.Text, embeddings.IntentDocument)
		if err != nil {
			s.recordEmbedding(ctx, "error")
			s.recordDocument(ctx, "embed_failed")
			slog.ErrorContext(ctx, "Embedding failed, aborting ingestion",
				"source", filename, "chunk", i, "indexed", i, "error", err)

			return nil, auraerrors.NewEmbeddingError(err)
		}
		s.recordEmbedding(ctx, "success")

		record := vectorindex.Record{
			ID:     newRecordID(),
			Vector: vector,
			Metadata: map[string]any{
				"name":         filename,
				"text":         chunk.Text,
				"source":       chunk.Source,
				"category":     vectorindex.CategoryFamily,
				"neighborhood": meta.Neighborhood,
				"need":         meta.Need,
				"status":       meta.Status,
			},
		}

		if err := s.index.Upsert(ctx, []vectorindex.Record{record}); err != nil {
			s.recordDocument(ctx, "index_failed")
			slog.ErrorContext(ctx, "Upsert failed, aborting ingestion",
				"source", filename, "chunk", i, "indexed", i, "error", err)

			return nil, auraerrors.NewIndexError(err)
		}
	}

	s.recordDocument(ctx, "success")
	if s.metrics != nil {
		s.metrics.RecordChunksIndexed(ctx, int64(len(chunks)))
	}

	slog.InfoContext(ctx, "Document ingested", "source", filename, "indexed", len(chunks))

	return &models.IngestReport{Source: filename, Indexed: len(chunks)}, nil
}

func (s *Service) wait(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}

	return s.limiter.Wait(ctx)
}

func (s *Service) recordDocument(ctx context.Context, status string) {
	if s.metrics != nil {
		s.metrics.RecordDocumentIngested(ctx, status)
	}
}

func (s *Service) recordEmbedding(ctx context.Context, status string) {
	if s.metrics != nil {
		s.metrics.RecordEmbeddingCall(ctx, string(embeddings.IntentDocument), status)
	}
}

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// newRecordID generates a unique record id. Uniqueness comes from the
// generation policy (millisecond timestamp plus random suffix), not from the
// index, which treats a repeated id as an overwrite.
func newRecordID() string {
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = idAlphabet[rand.IntN(len(idAlphabet))]
	}

	return "doc-" + strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + string(suffix)
}

// Ensure the default classifier satisfies the consumer interface.
var _ DocumentClassifier = (*classify.Classifier)(nil)
