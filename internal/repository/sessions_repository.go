package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-sadaqa/aura/internal/auraerrors"
	"github.com/aura-sadaqa/aura/internal/models"
)

// SessionsRepository handles data access for volunteer sessions.
// Only the SHA-256 hash of a token is ever stored or queried.
type SessionsRepository struct {
	db *pgxpool.Pool
}

// NewSessionsRepository creates a new sessions repository.
func NewSessionsRepository(db *pgxpool.Pool) *SessionsRepository {
	return &SessionsRepository{db: db}
}

// HashToken derives the storage key for a bearer token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))

	return hex.EncodeToString(sum[:])
}

// GetByToken looks up the session for a bearer token. Unknown and expired
// tokens both return an UnauthorizedError so callers cannot tell them apart.
func (r *SessionsRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	query := `
		SELECT token_hash, user_id, email, expires_at
		FROM sessions
		WHERE token_hash = $1
	`

	var session models.Session
	err := r.db.QueryRow(ctx, query, HashToken(token)).Scan(
		&session.TokenHash, &session.UserID, &session.Email, &session.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, auraerrors.NewUnauthorizedError("session inconnue ou expirée")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}

	if session.Expired(time.Now()) {
		return nil, auraerrors.NewUnauthorizedError("session inconnue ou expirée")
	}

	return &session, nil
}

// Create stores a session for the hashed token.
func (r *SessionsRepository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (token_hash, user_id, email, expires_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.Exec(ctx, query, session.TokenHash, session.UserID, session.Email, session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// DeleteExpired removes sessions past their expiry and returns how many were deleted.
func (r *SessionsRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	return tag.RowsAffected(), nil
}
