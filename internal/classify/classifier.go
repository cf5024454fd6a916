// Package classify derives document-level metadata (neighborhood, need,
// priority) from a sample of extracted chunks via a generative-text call.
package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/aura-sadaqa/aura/internal/auraerrors"
	"github.com/aura-sadaqa/aura/internal/models"
)

// Generator is the text-generation capability the classifier depends on.
type Generator interface {
	GenerateText(ctx context.Context, systemInstruction, prompt string) (string, error)
}

// DefaultMetadata is substituted whenever classification fails. Ingestion
// must never abort because of a classification problem.
var DefaultMetadata = models.GlobalMetadata{
	Neighborhood: "Casablanca",
	Need:         "Sadaqa",
	Status:       "Standard",
}

const classifyPrompt = `Analyse ce document d'une association caritative à Casablanca.
Extrais ces informations globales pour le document entier:
1. Le quartier (ex: Hay Hassani, Maarif, Sidi Moumen).
2. Le type de besoin principal (ex: Panier Alimentaire, Zakat).
3. Le niveau de priorité global (Prioritaire, Standard, Urgent).

Texte: "%s"

Réponds UNIQUEMENT en JSON: {"neighborhood": "...", "need": "...", "status": "..."}`

// Classifier requests one classification per document, amortized across all
// of its chunks. Per-chunk classification would multiply external-call cost.
type Classifier struct {
	gen          Generator
	sampleChunks int
	sampleBytes  int
}

// NewClassifier creates a classifier that samples at most sampleChunks chunks
// truncated to sampleBytes characters.
func NewClassifier(gen Generator, sampleChunks, sampleBytes int) *Classifier {
	return &Classifier{
		gen:          gen,
		sampleChunks: sampleChunks,
		sampleBytes:  sampleBytes,
	}
}

// Classify derives global metadata from a bounded prefix of the chunks.
// It is pure with respect to failure: any network error, non-JSON response,
// or missing field yields a ClassificationError and no partial result.
func (c *Classifier) Classify(ctx context.Context, chunks []models.Chunk) (models.GlobalMetadata, error) {
	sample := c.sample(chunks)
	if sample == "" {
		return models.GlobalMetadata{}, auraerrors.NewClassificationError("empty sample", nil)
	}

	raw, err := c.gen.GenerateText(ctx, "", fmt.Sprintf(classifyPrompt, sample))
	if err != nil {
		return models.GlobalMetadata{}, auraerrors.NewClassificationError("generation call failed", err)
	}

	var meta models.GlobalMetadata
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &meta); err != nil {
		return models.GlobalMetadata{}, auraerrors.NewClassificationError("response is not valid JSON", err)
	}

	if meta.Neighborhood == "" || meta.Need == "" || meta.Status == "" {
		return models.GlobalMetadata{}, auraerrors.NewClassificationError("response is missing required fields", nil)
	}

	return meta, nil
}

// ClassifyOrDefault wraps Classify with the documented default substitution.
// This is the only place in the pipeline where a failure is absorbed silently
// (beyond a warning log).
func (c *Classifier) ClassifyOrDefault(ctx context.Context, chunks []models.Chunk) models.GlobalMetadata {
	meta, err := c.Classify(ctx, chunks)
	if err != nil {
		slog.WarnContext(ctx, "Classification failed, using default metadata", "error", err)

		return DefaultMetadata
	}

	return meta
}

// sample concatenates a bounded prefix of the chunks, truncated to the
// character budget.
func (c *Classifier) sample(chunks []models.Chunk) string {
	n := c.sampleChunks
	if n > len(chunks) {
		n = len(chunks)
	}

	parts := make([]string, 0, n)
	for _, chunk := range chunks[:n] {
		parts = append(parts, chunk.Text)
	}

	sample := strings.Join(parts, "\n")
	if len(sample) > c.sampleBytes {
		// Back up to a rune boundary so the cut never splits a multibyte
		// character; accented French text would otherwise reach the
		// generation API as invalid UTF-8.
		cut := c.sampleBytes
		for cut > 0 && !utf8.RuneStart(sample[cut]) {
			cut--
		}
		sample = sample[:cut]
	}

	return sample
}

// stripCodeFence removes a ```json ... ``` (or bare ```) wrapper that
// generative models often add around JSON output.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	return strings.TrimSpace(s)
}
