package vectorindex

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/pinecone-io/go-pinecone/v2/pinecone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpinecone "github.com/testcontainers/testcontainers-go/modules/pinecone"
	"github.com/testcontainers/testcontainers-go/wait"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// testIndex is connected to a pinecone-local emulator started in TestMain.
// It stays nil when SKIP_PINECONE_TESTS is set; integration tests then skip.
var testIndex *PineconeIndex

const testIndexName = "aura-test"

func TestMain(m *testing.M) {
	if os.Getenv("SKIP_PINECONE_TESTS") != "" {
		os.Exit(m.Run())
	}

	ctx := context.Background()

	container, err := tcpinecone.Run(ctx,
		"ghcr.io/pinecone-io/pinecone-local:v0.7.0",
		testcontainers.WithWaitStrategy(
			wait.ForHTTP("/indexes").
				WithPort("5080/tcp").
				WithStartupTimeout(120*time.Second),
		),
		testcontainers.WithExposedPorts("5081/tcp"),
	)
	if err != nil {
		log.Fatalf("failed to start pinecone container: %v", err)
	}

	httpEndpoint, err := container.HttpEndpoint()
	if err != nil {
		log.Fatalf("failed to get http endpoint: %v", err)
	}

	grpcHost, err := container.Host(ctx)
	if err != nil {
		log.Fatalf("failed to get container host: %v", err)
	}

	grpcPort, err := container.MappedPort(ctx, "5081/tcp")
	if err != nil {
		log.Fatalf("failed to get gRPC port: %v", err)
	}

	// Any API key works against the local emulator.
	client, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey: "test-api-key",
		Host:   httpEndpoint,
	})
	if err != nil {
		log.Fatalf("failed to create pinecone client: %v", err)
	}

	if _, err := client.CreateServerlessIndex(ctx, &pinecone.CreateServerlessIndexRequest{
		Name:      testIndexName,
		Dimension: 3,
		Metric:    pinecone.Cosine,
		Cloud:     pinecone.Aws,
		Region:    "us-east-1",
	}); err != nil {
		log.Fatalf("failed to create index: %v", err)
	}

	// The emulator serves gRPC without TLS; the http:// prefix makes the
	// v2 SDK treat the endpoint as insecure.
	conn, err := client.Index(pinecone.NewIndexConnParams{
		Host: fmt.Sprintf("http://%s:%s", grpcHost, grpcPort.Port()),
	}, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("failed to connect to index: %v", err)
	}

	testIndex = NewPineconeIndex(conn)

	code := m.Run()

	_ = conn.Close()
	_ = client.DeleteIndex(ctx, testIndexName)
	_ = container.Terminate(ctx)

	os.Exit(code)
}

func setupTestIndex(t *testing.T) *PineconeIndex {
	t.Helper()
	if testIndex == nil {
		t.Skip("pinecone tests skipped")
	}

	return testIndex
}

// waitForCount polls the index until it reports the expected record count.
// Upserts against the emulator become visible with a small delay.
func waitForCount(t *testing.T, index *PineconeIndex, want uint32) {
	t.Helper()
	require.Eventually(t, func() bool {
		count, err := index.Stats(context.Background())

		return err == nil && count == want
	}, 30*time.Second, 250*time.Millisecond)
}

func TestPineconeIndex_UpsertOverwrites(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	before, err := index.Stats(ctx)
	require.NoError(t, err)

	record := Record{
		ID:     "doc-benali-0",
		Vector: []float32{1, 0, 0},
		Metadata: map[string]any{
			"text":     "Famille Benali, Hay Hassani",
			"category": CategoryFamily,
			"status":   "Standard",
		},
	}
	require.NoError(t, index.Upsert(ctx, []Record{record}))

	record.Metadata["status"] = "Urgent"
	require.NoError(t, index.Upsert(ctx, []Record{record}))

	// Same id twice is one record, carrying the second metadata.
	waitForCount(t, index, before+1)

	matches, err := index.Query(ctx, []float32{1, 0, 0}, 10, nil)
	require.NoError(t, err)

	var found *Match
	for i, m := range matches {
		if m.ID == record.ID {
			found = &matches[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "Urgent", found.Metadata["status"])
	assert.Equal(t, "Famille Benali, Hay Hassani", found.Metadata["text"])
}

func TestPineconeIndex_QueryFiltered(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	before, err := index.Stats(ctx)
	require.NoError(t, err)

	records := []Record{
		{
			ID:     "doc-filter-sidi",
			Vector: []float32{0, 1, 0},
			Metadata: map[string]any{
				"text":         "Famille Tazi, Sidi Moumen",
				"category":     CategoryFamily,
				"neighborhood": "Sidi Moumen",
			},
		},
		{
			ID:     "doc-filter-maarif",
			Vector: []float32{0, 1, 0.1},
			Metadata: map[string]any{
				"text":         "Famille Alami, Maarif",
				"type":         typeFamily,
				"neighborhood": "Maarif",
			},
		},
		{
			ID:     "doc-filter-other",
			Vector: []float32{0, 1, 0.2},
			Metadata: map[string]any{
				"text":     "Rapport annuel de l'association",
				"category": "rapport",
			},
		},
	}
	require.NoError(t, index.Upsert(ctx, records))
	waitForCount(t, index, before+3)

	t.Run("should match both category and type tags", func(t *testing.T) {
		matches, err := index.Query(ctx, []float32{0, 1, 0}, 10, FamilyFilter(""))
		require.NoError(t, err)

		ids := matchIDs(matches)
		assert.Contains(t, ids, "doc-filter-sidi")
		assert.Contains(t, ids, "doc-filter-maarif")
		assert.NotContains(t, ids, "doc-filter-other")
	})

	t.Run("should narrow to the neighborhood", func(t *testing.T) {
		matches, err := index.Query(ctx, []float32{0, 1, 0}, 10, FamilyFilter("Sidi Moumen"))
		require.NoError(t, err)

		ids := matchIDs(matches)
		assert.Contains(t, ids, "doc-filter-sidi")
		assert.NotContains(t, ids, "doc-filter-maarif")
		assert.NotContains(t, ids, "doc-filter-other")
	})
}

func matchIDs(matches []Match) []string {
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}

	return ids
}

func TestPineconeIndex_NoopCalls(t *testing.T) {
	index := &PineconeIndex{}
	ctx := context.Background()

	t.Run("should accept an empty upsert", func(t *testing.T) {
		assert.NoError(t, index.Upsert(ctx, nil))
	})

	t.Run("should return nothing for a non-positive topK", func(t *testing.T) {
		matches, err := index.Query(ctx, []float32{1, 0, 0}, 0, nil)

		require.NoError(t, err)
		assert.Nil(t, matches)
	})
}
