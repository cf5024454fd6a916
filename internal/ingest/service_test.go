package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-sadaqa/aura/internal/auraerrors"
	"github.com/aura-sadaqa/aura/internal/embeddings"
	"github.com/aura-sadaqa/aura/internal/extract"
	"github.com/aura-sadaqa/aura/internal/models"
	"github.com/aura-sadaqa/aura/internal/vectorindex"
)

type mockEmbedder struct {
	embedFunc func(ctx context.Context, text string, intent embeddings.Intent) ([]float32, error)
	calls     int
	intents   []embeddings.Intent
}

func (m *mockEmbedder) CreateEmbedding(ctx context.Context, text string, intent embeddings.Intent) ([]float32, error) {
	m.calls++
	m.intents = append(m.intents, intent)
	if m.embedFunc != nil {
		return m.embedFunc(ctx, text, intent)
	}

	return []float32{0.1, 0.2, 0.3}, nil
}

type mockIndex struct {
	upsertFunc func(ctx context.Context, records []vectorindex.Record) error
	records    []vectorindex.Record
}

func (m *mockIndex) Upsert(ctx context.Context, records []vectorindex.Record) error {
	if m.upsertFunc != nil {
		if err := m.upsertFunc(ctx, records); err != nil {
			return err
		}
	}
	m.records = append(m.records, records...)

	return nil
}

type mockClassifier struct {
	meta  models.GlobalMetadata
	calls int
}

func (m *mockClassifier) ClassifyOrDefault(_ context.Context, _ []models.Chunk) models.GlobalMetadata {
	m.calls++

	return m.meta
}

// registryCSV builds a CSV registry that extracts into n row chunks.
func registryCSV(n int) []byte {
	var b strings.Builder
	b.WriteString("nom,quartier\n")
	for i := range n {
		fmt.Fprintf(&b, "Famille %d,Sidi Moumen\n", i)
	}

	return []byte(b.String())
}

func TestIngestDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("should index every chunk and report the count", func(t *testing.T) {
		embedder := &mockEmbedder{}
		index := &mockIndex{}
		classifier := &mockClassifier{meta: models.GlobalMetadata{
			Neighborhood: "Sidi Moumen", Need: "Alimentaire", Status: "Urgent",
		}}
		svc := NewService(embedder, index, classifier)

		report, err := svc.IngestDocument(ctx, registryCSV(4), extract.MediaTypeCSV, "registre.csv")

		require.NoError(t, err)
		assert.Equal(t, 4, report.Indexed)
		assert.Equal(t, "registre.csv", report.Source)
		assert.Equal(t, 4, embedder.calls)
		assert.Len(t, index.records, 4)
		assert.Equal(t, 1, classifier.calls)
	})

	t.Run("should embed chunks with the document intent", func(t *testing.T) {
		embedder := &mockEmbedder{}
		svc := NewService(embedder, &mockIndex{}, &mockClassifier{})

		_, err := svc.IngestDocument(ctx, registryCSV(2), extract.MediaTypeCSV, "registre.csv")

		require.NoError(t, err)
		for _, intent := range embedder.intents {
			assert.Equal(t, embeddings.IntentDocument, intent)
		}
	})

	t.Run("should merge global metadata into every record", func(t *testing.T) {
		index := &mockIndex{}
		classifier := &mockClassifier{meta: models.GlobalMetadata{
			Neighborhood: "Hay Hassani", Need: "Ramadan", Status: "Standard",
		}}
		svc := NewService(&mockEmbedder{}, index, classifier)

		_, err := svc.IngestDocument(ctx, registryCSV(2), extract.MediaTypeCSV, "registre.csv")

		require.NoError(t, err)
		require.Len(t, index.records, 2)
		for _, record := range index.records {
			assert.Equal(t, "registre.csv", record.Metadata["name"])
			assert.Equal(t, "famille", record.Metadata["category"])
			assert.Equal(t, "Hay Hassani", record.Metadata["neighborhood"])
			assert.Equal(t, "Ramadan", record.Metadata["need"])
			assert.Equal(t, "Standard", record.Metadata["status"])
			assert.NotEmpty(t, record.Metadata["text"])
		}
	})

	t.Run("should cap indexing at the chunk limit", func(t *testing.T) {
		embedder := &mockEmbedder{}
		index := &mockIndex{}
		svc := NewService(embedder, index, &mockClassifier{}, WithMaxChunks(100))

		report, err := svc.IngestDocument(ctx, registryCSV(250), extract.MediaTypeCSV, "registre.csv")

		require.NoError(t, err)
		assert.Equal(t, 100, report.Indexed)
		assert.Equal(t, 100, embedder.calls)
		assert.Len(t, index.records, 100)
	})

	t.Run("should abort on the first embedding failure", func(t *testing.T) {
		embedder := &mockEmbedder{}
		embedder.embedFunc = func(_ context.Context, _ string, _ embeddings.Intent) ([]float32, error) {
			if embedder.calls == 3 {
				return nil, errors.New("quota exhausted")
			}

			return []float32{0.5}, nil
		}
		index := &mockIndex{}
		svc := NewService(embedder, index, &mockClassifier{})

		report, err := svc.IngestDocument(ctx, registryCSV(5), extract.MediaTypeCSV, "registre.csv")

		require.ErrorIs(t, err, auraerrors.ErrEmbedding)
		assert.Nil(t, report)
		assert.Equal(t, 3, embedder.calls)
		assert.Len(t, index.records, 2, "chunks before the failure stay indexed")
	})

	t.Run("should abort on the first upsert failure", func(t *testing.T) {
		embedder := &mockEmbedder{}
		index := &mockIndex{}
		index.upsertFunc = func(_ context.Context, _ []vectorindex.Record) error {
			if len(index.records) == 1 {
				return errors.New("connection reset")
			}

			return nil
		}
		svc := NewService(embedder, index, &mockClassifier{})

		_, err := svc.IngestDocument(ctx, registryCSV(4), extract.MediaTypeCSV, "registre.csv")

		require.ErrorIs(t, err, auraerrors.ErrIndex)
		assert.Equal(t, 2, embedder.calls, "no further embeddings after the failed upsert")
		assert.Len(t, index.records, 1)
	})

	t.Run("should propagate extraction errors without embedding", func(t *testing.T) {
		embedder := &mockEmbedder{}
		svc := NewService(embedder, &mockIndex{}, &mockClassifier{})

		_, err := svc.IngestDocument(ctx, []byte("data"), "text/html", "page.html")

		require.ErrorIs(t, err, auraerrors.ErrUnsupportedFormat)
		assert.Zero(t, embedder.calls)
	})

	t.Run("should upsert one record per call in extraction order", func(t *testing.T) {
		var batchSizes []int
		index := &mockIndex{}
		index.upsertFunc = func(_ context.Context, records []vectorindex.Record) error {
			batchSizes = append(batchSizes, len(records))

			return nil
		}
		svc := NewService(&mockEmbedder{}, index, &mockClassifier{})

		_, err := svc.IngestDocument(ctx, registryCSV(3), extract.MediaTypeCSV, "registre.csv")

		require.NoError(t, err)
		assert.Equal(t, []int{1, 1, 1}, batchSizes)
		for i, record := range index.records {
			text, ok := record.Metadata["text"].(string)
			require.True(t, ok)
			assert.Contains(t, text, fmt.Sprintf("Famille %d", i))
		}
	})
}

func TestNewRecordID(t *testing.T) {
	seen := map[string]bool{}
	for range 100 {
		id := newRecordID()
		assert.True(t, strings.HasPrefix(id, "doc-"), id)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
