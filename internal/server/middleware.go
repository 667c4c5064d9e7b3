package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type ctxKey int

const ctxKeySession ctxKey = iota

func sessionMiddleware(sessions *Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ls, err := sessions.Authenticate(chi.URLParam(r, "sessionID"), sessionToken(r))
			switch {
			case errors.Is(err, errSessionNotFound):
				writeError(w, http.StatusNotFound, "session not found")
				return
			case err != nil:
				writeError(w, http.StatusUnauthorized, "invalid or missing session token")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeySession, ls)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFrom(r *http.Request) *LiveSession {
	return r.Context().Value(ctxKeySession).(*LiveSession)
}
