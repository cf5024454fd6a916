package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aura-sadaqa/aura/internal/api/response"
	"github.com/aura-sadaqa/aura/internal/api/validation"
	"github.com/aura-sadaqa/aura/internal/models"
)

// FamiliesStore is the data access the families endpoints need.
type FamiliesStore interface {
	Create(ctx context.Context, req *models.CreateFamilyRequest) (*models.Family, error)
	List(ctx context.Context, neighborhood string, limit int) ([]models.Family, error)
}

// FamiliesHandler handles family registry requests.
type FamiliesHandler struct {
	store FamiliesStore
}

// NewFamiliesHandler creates a new families handler.
func NewFamiliesHandler(store FamiliesStore) *FamiliesHandler {
	return &FamiliesHandler{store: store}
}

// FamiliesResponse is the body for GET /v1/families.
type FamiliesResponse struct {
	Families []models.Family `json:"families"`
}

const (
	defaultFamiliesLimit = 50
	maxFamiliesLimit     = 200
)

// ListFamiliesParams are the query parameters accepted by GET /v1/families.
type ListFamiliesParams struct {
	Neighborhood string `form:"neighborhood"`
	Limit        int    `form:"limit"        validate:"omitempty,gte=1"`
}

// List handles GET /v1/families?neighborhood=&limit=.
func (h *FamiliesHandler) List(w http.ResponseWriter, r *http.Request) {
	var params ListFamiliesParams
	if err := validation.DecodeQueryParams(r, &params); err != nil {
		response.RespondBadRequest(w, "Paramètres de requête invalides")

		return
	}

	if err := validation.ValidateStruct(&params); err != nil {
		validation.RespondValidationError(w, err)

		return
	}

	limit := params.Limit
	if limit == 0 {
		limit = defaultFamiliesLimit
	}
	limit = min(limit, maxFamiliesLimit)

	neighborhood := strings.TrimSpace(params.Neighborhood)

	families, err := h.store.List(r.Context(), neighborhood, limit)
	if err != nil {
		response.RespondInternalServerError(w, "Erreur lors de la récupération des données")

		return
	}

	response.RespondJSON(w, http.StatusOK, FamiliesResponse{Families: families})
}

// Create handles POST /v1/families.
func (h *FamiliesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateFamilyRequest

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

	family, err := h.store.Create(r.Context(), &req)
	if err != nil {
		response.RespondInternalServerError(w, "Erreur lors de l'enregistrement de la famille")

		return
	}

	response.RespondJSON(w, http.StatusCreated, family)
}
