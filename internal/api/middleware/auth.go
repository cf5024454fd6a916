package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/aura-sadaqa/aura/internal/api/response"
	"github.com/aura-sadaqa/aura/internal/auraerrors"
	"github.com/aura-sadaqa/aura/internal/models"
	"github.com/aura-sadaqa/aura/internal/repository"
	"github.com/aura-sadaqa/aura/pkg/cache"
)

type contextKey string

const sessionContextKey contextKey = "session"

// SessionValidator resolves a bearer token to a live session.
type SessionValidator interface {
	GetByToken(ctx context.Context, token string) (*models.Session, error)
}

// SessionFromContext returns the authenticated session stored by Auth, if any.
func SessionFromContext(ctx context.Context) (*models.Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(*models.Session)

	return session, ok
}

// Auth validates bearer session tokens from the Authorization header.
// Requests without a valid session are rejected before any handler work runs.
// Validated sessions are cached; a cached session past its expiry is evicted
// and rejected, so revoked tokens age out no later than their expiry.
func Auth(sessions SessionValidator, sessionCache *cache.LoaderCache[string, *models.Session]) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.RespondUnauthorized(w, "En-tête Authorization manquant")
				return
			}

			// Expected format: "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				response.RespondUnauthorized(w, "Format d'en-tête Authorization invalide. Attendu: Bearer <token>")
				return
			}

			token := parts[1]
			if token == "" {
				response.RespondUnauthorized(w, "Jeton de session vide")
				return
			}

			session, err := lookupSession(r.Context(), sessions, sessionCache, token)
			if err != nil {
				response.RespondUnauthorized(w, "Session inconnue ou expirée")
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func lookupSession(ctx context.Context, sessions SessionValidator, sessionCache *cache.LoaderCache[string, *models.Session], token string) (*models.Session, error) {
	if sessionCache == nil {
		return sessions.GetByToken(ctx, token)
	}

	session, err := sessionCache.Get(ctx, token, func(ctx context.Context, t string) (*models.Session, error) {
		return sessions.GetByToken(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	if session.Expired(time.Now()) {
		sessionCache.Invalidate(token)

		return nil, auraerrors.NewUnauthorizedError("session expirée")
	}

	return session, nil
}

// NewSessionCache creates the cache used by Auth, keyed by the token hash so
// raw tokens never appear in cache internals.
func NewSessionCache(maxEntries int) (*cache.LoaderCache[string, *models.Session], error) {
	return cache.NewLoaderCache[string, *models.Session](maxEntries, repository.HashToken)
}
