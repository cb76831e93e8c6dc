package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/AbdullaK123/notes-api/internal/session"
	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	userIDKey    = contextKey("userID")
	sessionIDKey = contextKey("sessionID")
)

// UserID returns the authenticated user's id attached by Middleware.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

// SessionID returns the resolved session id attached by Middleware,
// needed by logout to destroy the presented session.
func SessionID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok
}

// Middleware gates protected routes behind the session store. Requests
// without a valid, active session are answered 401 and never reach the
// wrapped handler. This is the single authorization checkpoint: handlers
// behind it can rely on UserID being present.
func Middleware(store *session.Store, cookieName string, secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil {
				unauthorized(w)
				return
			}

			sid, err := session.DecodeCookie(cookie.Value, secret)
			if err != nil {
				unauthorized(w)
				return
			}

			userID, ok, err := store.Resolve(r.Context(), sid)
			if err != nil {
				// A store outage must not leak past the gate; the caller
				// still gets a clean 401.
				log.Error().Err(err).Msg("Failed to resolve session")
				unauthorized(w)
				return
			}
			if !ok {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, sessionIDKey, sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": "Not Authenticated"})
}
