// Package embeddings defines the embedding-provider contract shared by the
// ingestion and chat pipelines.
package embeddings

import "context"

// Intent tags an embedding request with its retrieval role. Asymmetric
// embedding models produce different vectors for stored passages and for
// queries; documents must be embedded with IntentDocument and questions
// with IntentQuery for the pairing to retrieve well.
type Intent string

const (
	// IntentDocument marks text that will be stored in the index.
	IntentDocument Intent = "RETRIEVAL_DOCUMENT"
	// IntentQuery marks a question used to search the index.
	IntentQuery Intent = "RETRIEVAL_QUERY"
)

// Client defines the interface for generating text embeddings.
type Client interface {
	// CreateEmbedding generates a fixed-dimension embedding vector for the
	// given text, tagged with the retrieval intent.
	CreateEmbedding(ctx context.Context, text string, intent Intent) ([]float32, error)
}
