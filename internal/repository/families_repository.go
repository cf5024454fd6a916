// Package repository handles data access against Postgres.
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-sadaqa/aura/internal/models"
)

// FamiliesRepository handles data access for beneficiary families.
type FamiliesRepository struct {
	db *pgxpool.Pool
}

// NewFamiliesRepository creates a new families repository.
func NewFamiliesRepository(db *pgxpool.Pool) *FamiliesRepository {
	return &FamiliesRepository{db: db}
}

// Create registers a family. Empty status defaults to 'Standard'.
func (r *FamiliesRepository) Create(ctx context.Context, req *models.CreateFamilyRequest) (*models.Family, error) {
	status := req.Status
	if status == "" {
		status = "Standard"
	}

	query := `
		INSERT INTO families (name, neighborhood, need, status, members)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, neighborhood, need, status, members, created_at
	`

	var family models.Family
	err := r.db.QueryRow(ctx, query, req.Name, req.Neighborhood, req.Need, status, req.Members).Scan(
		&family.ID, &family.Name, &family.Neighborhood, &family.Need,
		&family.Status, &family.Members, &family.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create family: %w", err)
	}

	return &family, nil
}

// List returns families ordered by most recent, optionally filtered by neighborhood.
func (r *FamiliesRepository) List(ctx context.Context, neighborhood string, limit int) ([]models.Family, error) {
	if limit <= 0 {
		limit = 50
	}

	var sb strings.Builder
	sb.WriteString(`
		SELECT id, name, neighborhood, need, status, members, created_at
		FROM families
	`)

	args := []any{}
	if neighborhood != "" {
		args = append(args, neighborhood)
		fmt.Fprintf(&sb, " WHERE neighborhood = $%d", len(args))
	}
	args = append(args, limit)
	fmt.Fprintf(&sb, " ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list families: %w", err)
	}
	defer rows.Close()

	families := []models.Family{}
	for rows.Next() {
		var family models.Family
		if err := rows.Scan(
			&family.ID, &family.Name, &family.Neighborhood, &family.Need,
			&family.Status, &family.Members, &family.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan family: %w", err)
		}
		families = append(families, family)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate families: %w", err)
	}

	return families, nil
}

// Count returns the total number of registered families.
func (r *FamiliesRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM families`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count families: %w", err)
	}

	return count, nil
}

// CountByStatus returns family counts grouped by status.
func (r *FamiliesRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM families GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count families by status: %w", err)
	}
	defer rows.Close()

	counts := map[string]int64{}
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate status counts: %w", err)
	}

	return counts, nil
}
