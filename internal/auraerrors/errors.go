// Package auraerrors provides sentinel and custom error types for the application.
package auraerrors

// ErrUnsupportedFormat represents an upload with a media type the extractor cannot handle.
var ErrUnsupportedFormat = &UnsupportedFormatError{}

// UnsupportedFormatError is a sentinel error for unsupported upload formats.
type UnsupportedFormatError struct {
	MediaType string
}

// NewUnsupportedFormatError creates an UnsupportedFormatError for the given media type.
func NewUnsupportedFormatError(mediaType string) *UnsupportedFormatError {
	return &UnsupportedFormatError{MediaType: mediaType}
}

// Error implements the error interface.
func (e *UnsupportedFormatError) Error() string {
	if e.MediaType != "" {
		return "unsupported document format: " + e.MediaType
	}

	return "unsupported document format"
}

// Is implements the error interface for error comparison.
func (e *UnsupportedFormatError) Is(target error) bool {
	_, ok := target.(*UnsupportedFormatError)

	return ok
}

// ErrEmptyDocument represents a document with no extractable text.
var ErrEmptyDocument = &EmptyDocumentError{}

// EmptyDocumentError is a sentinel error for empty or unreadable documents.
type EmptyDocumentError struct {
	Source string
}

// NewEmptyDocumentError creates an EmptyDocumentError for the given source file.
func NewEmptyDocumentError(source string) *EmptyDocumentError {
	return &EmptyDocumentError{Source: source}
}

// Error implements the error interface.
func (e *EmptyDocumentError) Error() string {
	if e.Source != "" {
		return "document is empty or unreadable: " + e.Source
	}

	return "document is empty or unreadable"
}

// Is implements the error interface for error comparison.
func (e *EmptyDocumentError) Is(target error) bool {
	_, ok := target.(*EmptyDocumentError)

	return ok
}

// ErrClassification represents a failed document classification.
// It is always recovered locally with default metadata; it never reaches a caller.
var ErrClassification = &ClassificationError{}

// ClassificationError is a sentinel error for classification failures.
type ClassificationError struct {
	Message string
	Err     error
}

// NewClassificationError creates a ClassificationError wrapping err.
func NewClassificationError(message string, err error) *ClassificationError {
	return &ClassificationError{Message: message, Err: err}
}

// Error implements the error interface.
func (e *ClassificationError) Error() string {
	if e.Message != "" {
		return "classification failed: " + e.Message
	}

	return "classification failed"
}

// Is implements the error interface for error comparison.
func (e *ClassificationError) Is(target error) bool {
	_, ok := target.(*ClassificationError)

	return ok
}

// Unwrap returns the underlying error.
func (e *ClassificationError) Unwrap() error {
	return e.Err
}

// ErrEmbedding represents a failure of the embedding service.
var ErrEmbedding = &EmbeddingError{}

// EmbeddingError is a sentinel error for embedding-service failures.
type EmbeddingError struct {
	Err error
}

// NewEmbeddingError creates an EmbeddingError wrapping err.
func NewEmbeddingError(err error) *EmbeddingError {
	return &EmbeddingError{Err: err}
}

// Error implements the error interface.
func (e *EmbeddingError) Error() string {
	if e.Err != nil {
		return "embedding service: " + e.Err.Error()
	}

	return "embedding service error"
}

// Is implements the error interface for error comparison.
func (e *EmbeddingError) Is(target error) bool {
	_, ok := target.(*EmbeddingError)

	return ok
}

// Unwrap returns the underlying error.
func (e *EmbeddingError) Unwrap() error {
	return e.Err
}

// ErrIndex represents a failure of the vector index service.
var ErrIndex = &IndexError{}

// IndexError is a sentinel error for vector-index failures.
type IndexError struct {
	Err error
}

// NewIndexError creates an IndexError wrapping err.
func NewIndexError(err error) *IndexError {
	return &IndexError{Err: err}
}

// Error implements the error interface.
func (e *IndexError) Error() string {
	if e.Err != nil {
		return "vector index: " + e.Err.Error()
	}

	return "vector index error"
}

// Is implements the error interface for error comparison.
func (e *IndexError) Is(target error) bool {
	_, ok := target.(*IndexError)

	return ok
}

// Unwrap returns the underlying error.
func (e *IndexError) Unwrap() error {
	return e.Err
}

// ErrGeneration represents a failure of the text-generation service.
var ErrGeneration = &GenerationError{}

// GenerationError is a sentinel error for generation-service failures.
type GenerationError struct {
	Err error
}

// NewGenerationError creates a GenerationError wrapping err.
func NewGenerationError(err error) *GenerationError {
	return &GenerationError{Err: err}
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	if e.Err != nil {
		return "generation service: " + e.Err.Error()
	}

	return "generation service error"
}

// Is implements the error interface for error comparison.
func (e *GenerationError) Is(target error) bool {
	_, ok := target.(*GenerationError)

	return ok
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// ErrUnauthorized represents a request without a valid session.
var ErrUnauthorized = &UnauthorizedError{}

// UnauthorizedError is a sentinel error for unauthenticated requests.
type UnauthorizedError struct {
	Message string
}

// NewUnauthorizedError creates an UnauthorizedError with a custom message.
func NewUnauthorizedError(message string) *UnauthorizedError {
	return &UnauthorizedError{Message: message}
}

// Error implements the error interface.
func (e *UnauthorizedError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	return "unauthorized"
}

// Is implements the error interface for error comparison.
func (e *UnauthorizedError) Is(target error) bool {
	_, ok := target.(*UnauthorizedError)

	return ok
}

// ErrValidation represents a validation error.
// Use when client input fails validation at the HTTP boundary.
var ErrValidation = &ValidationError{}

// ValidationError is a sentinel error for validation failures.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new ValidationError with a custom message.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Field != "" {
		return "validation failed for field: " + e.Field
	}

	return "validation error"
}

// Is implements the error interface for error comparison.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)

	return ok
}
