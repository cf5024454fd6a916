package embeddings

import (
	"context"
	"crypto/sha256"
	"errors"
	"math"
)

// ErrMockEmptyText is returned by MockClient when the input text is empty.
var ErrMockEmptyText = errors.New("text cannot be empty")

// MockClient implements the Client interface for testing purposes.
// It generates deterministic embeddings based on the input text hash, so the
// same text always maps to the same vector regardless of intent.
type MockClient struct {
	dimensions int
}

// NewMockClient creates a mock embedding client with the given dimensions.
func NewMockClient(dimensions int) *MockClient {
	return &MockClient{dimensions: dimensions}
}

// CreateEmbedding generates a deterministic embedding based on the text hash.
func (c *MockClient) CreateEmbedding(_ context.Context, text string, _ Intent) ([]float32, error) {
	if text == "" {
		return nil, ErrMockEmptyText
	}

	hash := sha256.Sum256([]byte(text))
	embedding := make([]float32, c.dimensions)

	for i := 0; i < c.dimensions; i++ {
		byteIdx := i % len(hash)
		// Map each hash byte into [-1, 1].
		embedding[i] = (float32(hash[byteIdx]) / 127.5) - 1.0
	}

	return normalize(embedding), nil
}

// normalize normalizes a vector to unit length.
func normalize(v []float32) []float32 {
	var sum float64
	for _, val := range v {
		sum += float64(val * val)
	}
	magnitude := float32(math.Sqrt(sum))

	if magnitude == 0 {
		return v
	}

	normalized := make([]float32, len(v))
	for i, val := range v {
		normalized[i] = val / magnitude
	}
	return normalized
}

// Ensure MockClient implements Client interface
var _ Client = (*MockClient)(nil)
