// Package models contains the domain types shared across services and repositories.
package models

// Chunk is a span of text extracted from an uploaded document.
// Ordering within a document is extraction order.
type Chunk struct {
	Text   string
	Source string
}

// GlobalMetadata is the document-level classification attached to every
// chunk indexed from one upload. One classification call is amortized
// across all chunks of the document.
type GlobalMetadata struct {
	Neighborhood string `json:"neighborhood"`
	Need         string `json:"need"`
	Status       string `json:"status"`
}

// IngestReport summarizes a completed ingestion.
type IngestReport struct {
	Source  string `json:"source"`
	Indexed int    `json:"indexed"`
}
