package validation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-sadaqa/aura/internal/api/response"
)

type registration struct {
	Name    string `validate:"notblank"`
	Message string `validate:"required,max=10"`
	Members int    `validate:"gte=0"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("should accept a valid struct", func(t *testing.T) {
		err := ValidateStruct(&registration{Name: "Famille Tazi", Message: "salam", Members: 4})

		assert.NoError(t, err)
	})

	t.Run("should reject a whitespace-only notblank field", func(t *testing.T) {
		err := ValidateStruct(&registration{Name: "   ", Message: "salam"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Name est requis")
	})

	t.Run("should count runes for the max tag", func(t *testing.T) {
		tenRunes := strings.Repeat("é", 10)

		assert.NoError(t, ValidateStruct(&registration{Name: "F", Message: tenRunes}))

		err := ValidateStruct(&registration{Name: "F", Message: tenRunes + "é"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dépasse la limite de 10")
	})

	t.Run("should reject a negative gte field", func(t *testing.T) {
		err := ValidateStruct(&registration{Name: "F", Message: "salam", Members: -1})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Members")
	})
}

func TestRespondValidationError(t *testing.T) {
	t.Run("should write field details as problem JSON", func(t *testing.T) {
		err := ValidateStruct(&registration{Name: "", Message: "", Members: -1})
		require.Error(t, err)

		rec := httptest.NewRecorder()
		RespondValidationError(rec, err)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

		var problem response.ProblemDetails
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
		assert.Equal(t, http.StatusBadRequest, problem.Status)
		require.Len(t, problem.Errors, 3)
		assert.Equal(t, "Name", problem.Errors[0].Location)
	})
}

func TestDecodeQueryParams(t *testing.T) {
	type params struct {
		Neighborhood string `form:"neighborhood"`
		Limit        int    `form:"limit"        validate:"omitempty,gte=1"`
	}

	t.Run("should decode known parameters", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/families?neighborhood=Maarif&limit=20", nil)

		var p params
		require.NoError(t, ValidateAndDecodeQueryParams(req, &p))
		assert.Equal(t, "Maarif", p.Neighborhood)
		assert.Equal(t, 20, p.Limit)
	})

	t.Run("should fail on a non-numeric value", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/families?limit=beaucoup", nil)

		var p params
		assert.Error(t, ValidateAndDecodeQueryParams(req, &p))
	})

	t.Run("should fail validation on a negative value", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/families?limit=-3", nil)

		var p params
		err := ValidateAndDecodeQueryParams(req, &p)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Limit")
	})
}
