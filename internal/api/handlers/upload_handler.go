// Package handlers contains the HTTP handlers for the API.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/aura-sadaqa/aura/internal/api/response"
	"github.com/aura-sadaqa/aura/internal/auraerrors"
	"github.com/aura-sadaqa/aura/internal/extract"
	"github.com/aura-sadaqa/aura/internal/models"
)

// DocumentIngester runs the ingestion pipeline for one uploaded file.
type DocumentIngester interface {
	IngestDocument(ctx context.Context, data []byte, mediaType, filename string) (*models.IngestReport, error)
}

// UploadHandler handles document uploads into the knowledge base.
type UploadHandler struct {
	ingester DocumentIngester
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(ingester DocumentIngester) *UploadHandler {
	return &UploadHandler{ingester: ingester}
}

// UploadResponse is the body returned after a successful ingestion.
type UploadResponse struct {
	Message string `json:"message"`
	Source  string `json:"source"`
	Indexed int    `json:"indexed"`
}

// Upload handles POST /v1/documents. The file arrives as the multipart form
// field "file". The request body size is capped by the MaxBody middleware.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		response.RespondBadRequest(w, "Champ multipart 'file' manquant ou invalide")

		return
	}
	defer file.Close()

	mediaType := resolveMediaType(header)
	if !extract.Supported(mediaType) {
		response.RespondUnsupportedMediaType(w,
			fmt.Sprintf("Format non supporté: %s. Formats acceptés: PDF, CSV, XLSX.", mediaType))

		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		response.RespondBadRequest(w, "Lecture du fichier impossible")

		return
	}

	report, err := h.ingester.IngestDocument(r.Context(), data, mediaType, header.Filename)
	if err != nil {
		h.respondIngestError(w, r, header.Filename, err)

		return
	}

	response.RespondJSON(w, http.StatusOK, UploadResponse{
		Message: fmt.Sprintf("%d segments indexés avec succès.", report.Indexed),
		Source:  report.Source,
		Indexed: report.Indexed,
	})
}

func (h *UploadHandler) respondIngestError(w http.ResponseWriter, r *http.Request, filename string, err error) {
	slog.ErrorContext(r.Context(), "Document ingestion failed", "source", filename, "error", err)

	switch {
	case errors.Is(err, auraerrors.ErrUnsupportedFormat):
		response.RespondUnsupportedMediaType(w, "Format non supporté. Formats acceptés: PDF, CSV, XLSX.")
	case errors.Is(err, auraerrors.ErrEmptyDocument):
		response.RespondUnprocessableEntity(w, "Le document ne contient aucun contenu exploitable.")
	case errors.Is(err, auraerrors.ErrValidation):
		response.RespondBadRequest(w, err.Error())
	case errors.Is(err, auraerrors.ErrEmbedding),
		errors.Is(err, auraerrors.ErrIndex),
		errors.Is(err, auraerrors.ErrGeneration):
		response.RespondBadGateway(w, "Échec de l'indexation: service en amont indisponible. Réessayez.")
	default:
		response.RespondInternalServerError(w, "Échec de l'indexation du document.")
	}
}

// extensionMediaTypes maps file extensions to media types for clients that
// send a generic part content type.
var extensionMediaTypes = map[string]string{
	".pdf":  extract.MediaTypePDF,
	".csv":  extract.MediaTypeCSV,
	".xls":  extract.MediaTypeXLS,
	".xlsx": extract.MediaTypeXLSX,
}

// resolveMediaType prefers the declared part content type; browsers that
// upload with application/octet-stream fall back to the file extension.
func resolveMediaType(header *multipart.FileHeader) string {
	declared := header.Header.Get("Content-Type")
	if declared != "" {
		if parsed, _, err := mime.ParseMediaType(declared); err == nil {
			declared = parsed
		}
	}
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if mediaType, ok := extensionMediaTypes[ext]; ok {
		return mediaType
	}

	return declared
}
