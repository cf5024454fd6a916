package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aura-sadaqa/aura/internal/api/response"
	"github.com/aura-sadaqa/aura/internal/api/validation"
	"github.com/aura-sadaqa/aura/internal/auraerrors"
	"github.com/aura-sadaqa/aura/internal/chat"
)

// streamErrorMarker terminates the plain-text stream when generation fails
// after fragments have already reached the client. Errors before the first
// fragment get a regular problem response instead.
const streamErrorMarker = "\n\n[ERREUR] La génération a été interrompue. Veuillez réessayer."

// ChatService answers a question with a stream of events.
type ChatService interface {
	Ask(ctx context.Context, message, neighborhood string) (<-chan chat.Event, error)
}

// ChatHandler handles grounded chat requests.
type ChatHandler struct {
	service ChatService
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(service ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// ChatRequest is the body for POST /v1/chat. The message limit mirrors the
// chat service's default; the service re-checks it against its configured cap.
type ChatRequest struct {
	Message      string `json:"message"                validate:"required,max=2000"`
	Neighborhood string `json:"neighborhood,omitempty"`
}

// Chat handles POST /v1/chat. The answer streams as chunked plain text;
// headers are only written once the first event arrives, so failures before
// the first fragment still produce a proper problem response.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		response.RespondBadRequest(w, "Corps de requête invalide")

		return
	}

	if err := validation.ValidateStruct(&req); err != nil {
		validation.RespondValidationError(w, err)

		return
	}

	events, err := h.service.Ask(r.Context(), req.Message, req.Neighborhood)
	if err != nil {
		if errors.Is(err, auraerrors.ErrValidation) {
			response.RespondBadRequest(w, err.Error())

			return
		}
		response.RespondInternalServerError(w, "Erreur lors de la génération.")

		return
	}

	flusher, canFlush := w.(http.Flusher)

	started := false
	for event := range events {
		switch {
		case event.Err != nil:
			if !started {
				h.respondStreamError(w, r, event.Err)

				return
			}
			// Headers are gone; the marker is the only way to signal failure.
			slog.ErrorContext(r.Context(), "Chat stream failed mid-answer", "error", event.Err)
			_, _ = w.Write([]byte(streamErrorMarker))
			if canFlush {
				flusher.Flush()
			}

			return
		case event.Done:
			return
		default:
			if !started {
				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				w.Header().Set("X-Accel-Buffering", "no")
				w.WriteHeader(http.StatusOK)
				started = true
			}
			if _, err := w.Write([]byte(event.Fragment)); err != nil {
				slog.WarnContext(r.Context(), "Client disconnected during chat stream", "error", err)

				return
			}
			if canFlush {
				flusher.Flush()
			}
		}
	}
}

func (h *ChatHandler) respondStreamError(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "Chat request failed", "error", err)

	switch {
	case errors.Is(err, auraerrors.ErrEmbedding),
		errors.Is(err, auraerrors.ErrIndex),
		errors.Is(err, auraerrors.ErrGeneration):
		response.RespondBadGateway(w, "Erreur lors de la génération. Vérifiez vos clés API.")
	default:
		response.RespondInternalServerError(w, "Erreur lors de la génération.")
	}
}
