package models

import (
	"time"

	"github.com/google/uuid"
)

// Family is one beneficiary record in the relational store.
// The Postgres table is the single source of truth for structured listing
// and statistics; the vector index is used for similarity search only.
type Family struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Neighborhood string    `json:"neighborhood"`
	Need         string    `json:"need"`
	Status       string    `json:"status"`
	Members      int       `json:"members"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateFamilyRequest carries the fields accepted when registering a family.
type CreateFamilyRequest struct {
	Name         string `json:"name"         validate:"notblank"`
	Neighborhood string `json:"neighborhood"`
	Need         string `json:"need"`
	Status       string `json:"status"`
	Members      int    `json:"members"      validate:"gte=0"`
}
