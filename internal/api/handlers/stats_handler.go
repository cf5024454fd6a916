package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aura-sadaqa/aura/internal/api/response"
)

// FamilyCounter counts registered families in the relational store.
type FamilyCounter interface {
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// IndexStats reports the vector index size.
type IndexStats interface {
	Stats(ctx context.Context) (uint32, error)
}

// StatsHandler handles GET /v1/stats.
type StatsHandler struct {
	families FamilyCounter
	index    IndexStats
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(families FamilyCounter, index IndexStats) *StatsHandler {
	return &StatsHandler{families: families, index: index}
}

// StatsResponse is the body for GET /v1/stats.
type StatsResponse struct {
	Families         int64            `json:"families"`
	FamiliesByStatus map[string]int64 `json:"families_by_status"`
	IndexedChunks    uint32           `json:"indexed_chunks"`
}

// Stats handles GET /v1/stats. Index stats are best-effort: when the vector
// index is unreachable the relational counts are still returned.
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	count, err := h.families.Count(r.Context())
	if err != nil {
		response.RespondInternalServerError(w, "Erreur lors du calcul des statistiques")

		return
	}

	byStatus, err := h.families.CountByStatus(r.Context())
	if err != nil {
		response.RespondInternalServerError(w, "Erreur lors du calcul des statistiques")

		return
	}

	var indexedChunks uint32
	if h.index != nil {
		indexedChunks, err = h.index.Stats(r.Context())
		if err != nil {
			slog.WarnContext(r.Context(), "Vector index stats unavailable", "error", err)
			indexedChunks = 0
		}
	}

	response.RespondJSON(w, http.StatusOK, StatsResponse{
		Families:         count,
		FamiliesByStatus: byStatus,
		IndexedChunks:    indexedChunks,
	})
}
