// Package chat orchestrates grounded question answering: embed the
// question, retrieve family records from the vector index, and stream a
// generated answer built on the retrieved context.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/aura-sadaqa/aura/internal/auraerrors"
	"github.com/aura-sadaqa/aura/internal/embeddings"
	"github.com/aura-sadaqa/aura/internal/observability"
	"github.com/aura-sadaqa/aura/internal/vectorindex"
	"github.com/aura-sadaqa/aura/pkg/cache"
)

const (
	defaultTopK            = 5
	defaultMaxMessageChars = 2000
	defaultQueryCacheSize  = 256

	// contextDelimiter separates retrieved passages inside the prompt so the
	// model does not blend adjacent records into one family.
	contextDelimiter = "\n\n---\n\n"

	// fallbackContext replaces an empty retrieval result. The persona
	// instructs the model to answer from general knowledge and say so.
	fallbackContext = "Aucun document spécifique trouvé."
)

const systemInstruction = `Tu es Aura-Sadaqa, l'assistant expert des associations caritatives de Casablanca.
Ta mission est d'aider les bénévoles et donateurs en te basant sur le contexte récupéré des documents internes de l'association.

Réponds en français de manière chaleureuse, précise et respectueuse des valeurs du Ramadan.
Utilise un ton professionnel mais fraternel, typique des interactions à Casablanca.
Si le contexte ne contient pas l'information, réponds en fonction de tes connaissances générales sur la Zakat et la Sadaqa dans le rite Malékite (Maroc), mais précise que ce n'est pas spécifié dans les fichiers internes.`

// VectorQuerier is the subset of the index the chat pipeline needs.
type VectorQuerier interface {
	Query(ctx context.Context, vector []float32, topK int, filter map[string]any) ([]vectorindex.Match, error)
}

// StreamGenerator produces a streamed completion, invoking onFragment for
// each fragment as it arrives.
type StreamGenerator interface {
	GenerateTextStream(ctx context.Context, systemInstruction, prompt string, onFragment func(string) error) error
}

// Event is one element of the answer stream. Exactly one terminal event is
// delivered per stream: either Done or Err.
type Event struct {
	Fragment string
	Done     bool
	Err      error
}

// Service answers questions grounded in the vector index.
type Service struct {
	embedder        embeddings.Client
	index           VectorQuerier
	generator       StreamGenerator
	topK            int
	maxMessageChars int
	queryCache      *cache.LoaderCache[string, []float32]
	metrics         observability.PipelineMetrics
}

// Option configures the Service.
type Option func(*Service)

// WithTopK overrides how many matches are retrieved per question.
func WithTopK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithMaxMessageChars overrides the question length limit.
func WithMaxMessageChars(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxMessageChars = n
		}
	}
}

// WithMetrics enables pipeline metrics. metrics may be nil.
func WithMetrics(metrics observability.PipelineMetrics) Option {
	return func(s *Service) {
		s.metrics = metrics
	}
}

// NewService creates the chat orchestrator. Query embeddings are cached so
// a repeated question skips the embedding call.
func NewService(embedder embeddings.Client, index VectorQuerier, generator StreamGenerator, opts ...Option) (*Service, error) {
	queryCache, err := cache.NewLoaderCache[string, []float32](defaultQueryCacheSize, func(k string) string { return k })
	if err != nil {
		return nil, fmt.Errorf("creating query embedding cache: %w", err)
	}

	s := &Service{
		embedder:        embedder,
		index:           index,
		generator:       generator,
		topK:            defaultTopK,
		maxMessageChars: defaultMaxMessageChars,
		queryCache:      queryCache,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Ask validates the question and returns a stream of answer events. The
// returned channel always carries exactly one terminal event and is then
// closed. neighborhood is optional; when set it narrows retrieval to that
// neighborhood. Validation failures are returned synchronously, before any
// stream exists.
func (s *Service) Ask(ctx context.Context, message, neighborhood string) (<-chan Event, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		s.recordChat(ctx, "invalid")

		return nil, auraerrors.NewValidationError("message", "le message ne peut pas être vide")
	}
	if utf8.RuneCountInString(message) > s.maxMessageChars {
		s.recordChat(ctx, "invalid")

		return nil, auraerrors.NewValidationError("message",
			fmt.Sprintf("le message dépasse la limite de %d caractères", s.maxMessageChars))
	}

	events := make(chan Event)
	go s.answer(ctx, message, neighborhood, events)

	return events, nil
}

func (s *Service) answer(ctx context.Context, message, neighborhood string, events chan<- Event) {
	defer close(events)

	vector, err := s.queryCache.Get(ctx, message, func(ctx context.Context, q string) ([]float32, error) {
		return s.embedder.CreateEmbedding(ctx, q, embeddings.IntentQuery)
	})
	if err != nil {
		s.recordChat(ctx, "embed_failed")
		s.recordEmbedding(ctx, "error")
		s.emit(ctx, events, Event{Err: auraerrors.NewEmbeddingError(err)})

		return
	}
	s.recordEmbedding(ctx, "success")

	filter := vectorindex.FamilyFilter(neighborhood)
	matches, err := s.index.Query(ctx, vector, s.topK, filter)
	if err != nil {
		s.recordChat(ctx, "query_failed")
		s.emit(ctx, events, Event{Err: auraerrors.NewIndexError(err)})

		return
	}

	promptContext := buildContext(matches)
	slog.DebugContext(ctx, "Retrieved chat context",
		"matches", len(matches), "neighborhood", neighborhood, "fallback", promptContext == fallbackContext)

	prompt := fmt.Sprintf("Contexte récupéré :\n%s\n\nQuestion : %s", promptContext, message)

	err = s.generator.GenerateTextStream(ctx, systemInstruction, prompt, func(fragment string) error {
		if fragment == "" {
			return nil
		}
		if !s.emit(ctx, events, Event{Fragment: fragment}) {
			return ctx.Err()
		}

		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			// Client went away; nobody is reading the channel anymore.
			s.recordChat(ctx, "canceled")

			return
		}
		s.recordChat(ctx, "generation_failed")
		s.emit(ctx, events, Event{Err: auraerrors.NewGenerationError(err)})

		return
	}

	s.recordChat(ctx, "success")
	s.emit(ctx, events, Event{Done: true})
}

// emit delivers an event unless the context is done. Reports whether the
// event was delivered.
func (s *Service) emit(ctx context.Context, events chan<- Event, event Event) bool {
	select {
	case events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

// buildContext joins the retrieved passages into the prompt context,
// skipping matches without text. An empty result yields the fallback.
func buildContext(matches []vectorindex.Match) string {
	passages := make([]string, 0, len(matches))
	for _, match := range matches {
		text, ok := match.Metadata["text"].(string)
		if !ok || text == "" {
			continue
		}
		passages = append(passages, text)
	}

	if len(passages) == 0 {
		return fallbackContext
	}

	return strings.Join(passages, contextDelimiter)
}

func (s *Service) recordChat(ctx context.Context, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordChatRequest(ctx, outcome)
	}
}

func (s *Service) recordEmbedding(ctx context.Context, status string) {
	if s.metrics != nil {
		s.metrics.RecordEmbeddingCall(ctx, string(embeddings.IntentQuery), status)
	}
}
