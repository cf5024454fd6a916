// Package googleai provides a thin wrapper around the Google Gen AI SDK for
// embeddings and text generation (Gemini API).
package googleai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"google.golang.org/genai"

	"github.com/aura-sadaqa/aura/internal/embeddings"
)

var (
	// ErrEmptyInput is returned when CreateEmbedding is called with empty input.
	ErrEmptyInput = errors.New("googleai: input text is empty")
	// ErrInvalidDims is returned when dimensions is not positive.
	ErrInvalidDims = errors.New("googleai: embedding dimensions must be positive")
	// ErrNoEmbeddingInResponse is returned when the API response contains no embedding data.
	ErrNoEmbeddingInResponse = errors.New("googleai: no embedding in response")
	// ErrDimensionMismatch is returned when the response embedding length does not match configured dimensions.
	ErrDimensionMismatch = errors.New("googleai: embedding dimension mismatch")
	// ErrEmptyPrompt is returned when a generation call is made with an empty prompt.
	ErrEmptyPrompt = errors.New("googleai: prompt is empty")
)

const (
	defaultDimension       = 768
	defaultEmbeddingModel  = "text-embedding-004"
	defaultGenerationModel = "gemini-1.5-flash"
)

// Client calls the Gemini embeddings and generation APIs via the Google Gen AI SDK.
type Client struct {
	client          *genai.Client
	embeddingModel  string
	generationModel string
	dimensions      int
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithDimensions sets the requested embedding dimension (must match the index dimension).
func WithDimensions(dim int) ClientOption {
	return func(c *Client) {
		c.dimensions = dim
	}
}

// WithEmbeddingModel sets the embedding model name. Empty uses the default.
func WithEmbeddingModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.embeddingModel = model
		}
	}
}

// WithGenerationModel sets the generation model name. Empty uses the default.
func WithGenerationModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.generationModel = model
		}
	}
}

// NewClient creates a Gemini client.
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("googleai client: %w", err)
	}

	client := &Client{
		client:          genaiClient,
		embeddingModel:  defaultEmbeddingModel,
		generationModel: defaultGenerationModel,
		dimensions:      defaultDimension,
	}
	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// CreateEmbedding returns the embedding vector for the given text, tagged with
// the retrieval intent (document vs query). The returned slice length equals
// the configured dimensions; a mismatched response fails rather than being
// silently truncated.
func (c *Client) CreateEmbedding(ctx context.Context, input string, intent embeddings.Intent) ([]float32, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyInput
	}

	if c.dimensions <= 0 || c.dimensions > math.MaxInt32 {
		return nil, ErrInvalidDims
	}

	contents := []*genai.Content{genai.NewContentFromText(input, genai.RoleUser)}
	//nolint:gosec // G115: c.dimensions is bounded above by math.MaxInt32
	dimInt32 := int32(c.dimensions)

	resp, err := c.client.Models.EmbedContent(ctx, c.embeddingModel, contents, &genai.EmbedContentConfig{
		TaskType:             string(intent),
		OutputDimensionality: &dimInt32,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini embedding: %w", err)
	}

	if len(resp.Embeddings) == 0 {
		return nil, ErrNoEmbeddingInResponse
	}

	emb := resp.Embeddings[0].Values
	if len(emb) != c.dimensions {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(emb), c.dimensions)
	}

	out := make([]float32, len(emb))
	copy(out, emb)

	return out, nil
}

// GenerateText returns the full generated response for the prompt.
// systemInstruction may be empty.
func (c *Client) GenerateText(ctx context.Context, systemInstruction, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.generationModel,
		genai.Text(prompt), generateConfig(systemInstruction))
	if err != nil {
		return "", fmt.Errorf("gemini generation: %w", err)
	}

	return resp.Text(), nil
}

// GenerateTextStream generates a response incrementally, invoking onFragment
// for each non-empty text fragment as it arrives. A non-nil error from
// onFragment stops the stream and is returned unchanged, so callers can abort
// delivery (e.g. on client disconnect) without it being wrapped as a
// generation failure.
func (c *Client) GenerateTextStream(ctx context.Context, systemInstruction, prompt string, onFragment func(string) error) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrEmptyPrompt
	}

	for resp, err := range c.client.Models.GenerateContentStream(ctx, c.generationModel,
		genai.Text(prompt), generateConfig(systemInstruction)) {
		if err != nil {
			return fmt.Errorf("gemini generation stream: %w", err)
		}

		fragment := resp.Text()
		if fragment == "" {
			continue
		}

		if err := onFragment(fragment); err != nil {
			return err
		}
	}

	return nil
}

func generateConfig(systemInstruction string) *genai.GenerateContentConfig {
	if systemInstruction == "" {
		return nil
	}

	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	}
}

// Ensure Client satisfies the embedding provider contract.
var _ embeddings.Client = (*Client)(nil)
