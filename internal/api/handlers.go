package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/larsks/dronevision/internal/dashboard"
	"github.com/larsks/dronevision/internal/session"
	"github.com/larsks/dronevision/internal/version"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type tabRequest struct {
	Tab string `json:"tab"`
}

type assetRequest struct {
	ID *int `json:"id"`
}

type actionRequest struct {
	Kind string `json:"kind"`
}

// HealthResponse is the data of GET /healthz.
type HealthResponse struct {
	Sessions int    `json:"sessions"`
	Version  string `json:"version"`
}

func (s *Server) sendResponse(w http.ResponseWriter, resp APIResponse, httpCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func (s *Server) sendSuccess(w http.ResponseWriter, data interface{}) {
	s.sendResponse(w, APIResponse{Status: "ok", Data: data}, http.StatusOK)
}

func (s *Server) sendError(w http.ResponseWriter, message string, httpCode int) {
	s.sendResponse(w, APIResponse{Status: "error", Message: message}, httpCode)
}

// sendErrorFor maps an error to its HTTP status code.
func (s *Server) sendErrorFor(w http.ResponseWriter, err error) {
	s.sendError(w, err.Error(), statusFor(err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, dashboard.ErrUnknownTab),
		errors.Is(err, dashboard.ErrUnknownAction),
		errors.Is(err, dashboard.ErrUnknownAsset),
		errors.Is(err, ErrInvalidJSON),
		errors.Is(err, ErrMissingField):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrSessionClosed):
		return http.StatusGone
	case errors.Is(err, session.ErrTooManySessions):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func decodeRequest(r *http.Request, v any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return nil
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, HealthResponse{
		Sessions: s.sessions.Len(),
		Version:  version.BuildVersion,
	})
}

func (s *Server) assetsHandler(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, s.sessions.Catalog().Assets())
}

func (s *Server) openSessionHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Open()
	if err != nil {
		s.sendErrorFor(w, err)
		return
	}

	w.Header().Set("Location", "/api/sessions/"+sess.ID())
	s.sendResponse(w, APIResponse{Status: "ok", Data: sess.View()}, http.StatusCreated)
}

func (s *Server) viewHandler(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, sessionFromContext(r.Context()).View())
}

func (s *Server) closeSessionHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	if err := s.sessions.Close(sess.ID()); err != nil {
		s.sendErrorFor(w, err)
		return
	}
	s.sendSuccess(w, nil)
}

func (s *Server) telemetryHandler(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, sessionFromContext(r.Context()).Entries())
}

func (s *Server) tickHandler(w http.ResponseWriter, r *http.Request) {
	entry, err := sessionFromContext(r.Context()).Tick()
	if err != nil {
		s.sendErrorFor(w, err)
		return
	}
	s.sendSuccess(w, entry)
}

func (s *Server) thermalHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	s.respondWithView(w, sess, sess.ToggleThermalMode())
}

func (s *Server) tabHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	var req tabRequest
	if err := decodeRequest(r, &req); err != nil {
		s.sendErrorFor(w, err)
		return
	}

	tab, err := dashboard.ParseTab(req.Tab)
	if err != nil {
		s.sendErrorFor(w, err)
		return
	}

	s.respondWithView(w, sess, sess.SelectTab(tab))
}

func (s *Server) assetHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	var req assetRequest
	if err := decodeRequest(r, &req); err != nil {
		s.sendErrorFor(w, err)
		return
	}
	if req.ID == nil {
		s.sendErrorFor(w, fmt.Errorf("%w: id", ErrMissingField))
		return
	}

	s.respondWithView(w, sess, sess.SelectAsset(*req.ID))
}

func (s *Server) actionHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	var req actionRequest
	if err := decodeRequest(r, &req); err != nil {
		s.sendErrorFor(w, err)
		return
	}

	kind, err := dashboard.ParseActionKind(req.Kind)
	if err != nil {
		s.sendErrorFor(w, err)
		return
	}

	s.respondWithView(w, sess, sess.TriggerAction(kind))
}

func (s *Server) respondWithView(w http.ResponseWriter, sess *session.Session, err error) {
	if err != nil {
		s.sendErrorFor(w, err)
		return
	}
	s.sendSuccess(w, sess.View())
}
