package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-sadaqa/aura/internal/models"
)

func TestFamiliesRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFamiliesRepository(db)
	ctx := context.Background()

	t.Run("creates family successfully", func(t *testing.T) {
		family, err := repo.Create(ctx, &models.CreateFamilyRequest{
			Name:         "Famille Benali",
			Neighborhood: "Hay Hassani",
			Need:         "Alimentaire",
			Status:       "Urgent",
			Members:      6,
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, family.ID)
		assert.Equal(t, "Famille Benali", family.Name)
		assert.Equal(t, "Urgent", family.Status)
		assert.Equal(t, 6, family.Members)
		assert.False(t, family.CreatedAt.IsZero())
	})

	t.Run("defaults empty status to Standard", func(t *testing.T) {
		family, err := repo.Create(ctx, &models.CreateFamilyRequest{
			Name:         "Famille Tazi",
			Neighborhood: "Sidi Moumen",
			Need:         "Ramadan",
		})
		require.NoError(t, err)
		assert.Equal(t, "Standard", family.Status)
	})
}

func TestFamiliesRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFamiliesRepository(db)
	ctx := context.Background()

	seedFamilies(t, repo, "Hay Hassani", 3)
	seedFamilies(t, repo, "Sidi Moumen", 2)

	t.Run("lists all families", func(t *testing.T) {
		families, err := repo.List(ctx, "", 50)
		require.NoError(t, err)
		assert.Len(t, families, 5)
	})

	t.Run("filters by neighborhood", func(t *testing.T) {
		families, err := repo.List(ctx, "Sidi Moumen", 50)
		require.NoError(t, err)
		require.Len(t, families, 2)
		for _, family := range families {
			assert.Equal(t, "Sidi Moumen", family.Neighborhood)
		}
	})

	t.Run("respects limit", func(t *testing.T) {
		families, err := repo.List(ctx, "", 2)
		require.NoError(t, err)
		assert.Len(t, families, 2)
	})

	t.Run("returns empty slice for unknown neighborhood", func(t *testing.T) {
		families, err := repo.List(ctx, "Ain Diab", 50)
		require.NoError(t, err)
		assert.Empty(t, families)
		assert.NotNil(t, families)
	})
}

func TestFamiliesRepository_Counts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFamiliesRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, &models.CreateFamilyRequest{
		Name: "Famille A", Neighborhood: "Hay Hassani", Need: "Alimentaire", Status: "Urgent",
	})
	require.NoError(t, err)
	seedFamilies(t, repo, "Hay Hassani", 2)

	t.Run("counts all families", func(t *testing.T) {
		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("groups counts by status", func(t *testing.T) {
		counts, err := repo.CountByStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts["Urgent"])
		assert.Equal(t, int64(2), counts["Standard"])
	})
}
