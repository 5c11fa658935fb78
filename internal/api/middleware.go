package api

import (
	"context"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/larsks/dronevision/internal/session"
)

type (
	contextKey string
)

const sessionKey contextKey = "session"

// validateSession resolves the {id} URL parameter to an open session and
// stores it in the request context.
func (s *Server) validateSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			s.sendError(w, ErrSessionRequired.Error(), http.StatusBadRequest)
			return
		}

		sess, err := s.sessions.Get(id)
		if err != nil {
			s.sendErrorFor(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// validateJSONRequest validates that the request has proper JSON content type
func (s *Server) validateJSONRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if contentType := r.Header.Get("Content-Type"); contentType != "" {
			mediaType, _, err := mime.ParseMediaType(contentType)
			if err != nil || mediaType != "application/json" {
				s.sendError(w, "Content-Type must be application/json", http.StatusBadRequest)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func sessionFromContext(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionKey).(*session.Session)
	return sess
}
