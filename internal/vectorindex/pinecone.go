// Package vectorindex provides the Pinecone-backed vector index used for
// chunk storage and similarity search.
package vectorindex

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pinecone-io/go-pinecone/v2/pinecone"
)

// Record is the unit of storage: a unique id, a fixed-dimension vector, and
// the chunk metadata retrieval depends on (text, source, classification tags).
type Record struct {
	ID       string
	Vector   []float32
	Metadata map[string]any
}

// Match is one nearest-neighbor query result, ordered by descending similarity.
type Match struct {
	ID       string
	Score    float32
	Metadata map[string]any
}

// PineconeIndex wraps a Pinecone index connection.
type PineconeIndex struct {
	conn *pinecone.IndexConnection
}

// Connect resolves the index host by name and opens a connection to it.
func Connect(ctx context.Context, apiKey, indexName string) (*PineconeIndex, error) {
	client, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("pinecone client: %w", err)
	}

	idx, err := client.DescribeIndex(ctx, indexName)
	if err != nil {
		return nil, fmt.Errorf("describe index %q: %w", indexName, err)
	}

	conn, err := client.Index(pinecone.NewIndexConnParams{Host: idx.Host})
	if err != nil {
		return nil, fmt.Errorf("connect to index %q: %w", indexName, err)
	}

	return &PineconeIndex{conn: conn}, nil
}

// NewPineconeIndex wraps an existing index connection (used by tests against
// a local emulator).
func NewPineconeIndex(conn *pinecone.IndexConnection) *PineconeIndex {
	return &PineconeIndex{conn: conn}
}

// Upsert stores the records, overwriting any existing record with the same id.
func (x *PineconeIndex) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	vectors := make([]*pinecone.Vector, len(records))
	for i, r := range records {
		meta, err := toStruct(r.Metadata)
		if err != nil {
			return fmt.Errorf("record %q metadata: %w", r.ID, err)
		}

		vectors[i] = &pinecone.Vector{
			Id:       r.ID,
			Values:   r.Vector,
			Metadata: meta,
		}
	}

	if _, err := x.conn.UpsertVectors(ctx, vectors); err != nil {
		return fmt.Errorf("upsert %d vectors: %w", len(vectors), err)
	}

	return nil
}

// Query returns the topK nearest matches for the vector under the optional
// metadata filter, with metadata included, ordered by descending similarity.
func (x *PineconeIndex) Query(ctx context.Context, vector []float32, topK int, filter map[string]any) ([]Match, error) {
	if topK <= 0 {
		return nil, nil
	}

	req := &pinecone.QueryByVectorValuesRequest{
		Vector:          vector,
		TopK:            uint32(topK),
		IncludeMetadata: true,
	}

	if len(filter) > 0 {
		filterStruct, err := toStruct(filter)
		if err != nil {
			return nil, fmt.Errorf("metadata filter: %w", err)
		}
		req.MetadataFilter = filterStruct
	}

	resp, err := x.conn.QueryByVectorValues(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("query top %d: %w", topK, err)
	}

	matches := make([]Match, len(resp.Matches))
	for i, m := range resp.Matches {
		matches[i] = Match{
			ID:    m.Vector.Id,
			Score: m.Score,
		}
		if m.Vector.Metadata != nil {
			matches[i].Metadata = m.Vector.Metadata.AsMap()
		}
	}

	return matches, nil
}

// Stats returns the total number of records in the index.
func (x *PineconeIndex) Stats(ctx context.Context) (uint32, error) {
	resp, err := x.conn.DescribeIndexStats(ctx)
	if err != nil {
		return 0, fmt.Errorf("describe index stats: %w", err)
	}

	return resp.TotalVectorCount, nil
}

// toStruct converts map[string]any to *pinecone.Metadata via a JSON round trip.
func toStruct(m map[string]any) (*pinecone.Metadata, error) {
	if m == nil {
		return nil, nil
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}

	var meta pinecone.Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}
