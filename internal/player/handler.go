package player

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler exposes the session control API using go-chi.
type Handler struct {
	svc *Service
	log *slog.Logger
}

// NewHandler returns a Handler backed by svc.
func NewHandler(svc *Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// sourceRequest is the body of POST /sessions and PUT /sessions/{id}/source.
type sourceRequest struct {
	MediaURL string `json:"mediaURL"`
}

type openResponse struct {
	ID SessionID `json:"id"`
}

// Register mounts the session routes on r. Middleware that should only
// guard session creation can be passed as create.
func (h *Handler) Register(r chi.Router, create ...func(http.Handler) http.Handler) {
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", h.ListSessions)
		r.With(create...).Post("/", h.OpenSession)
		r.With(create...).Post("/dev", h.OpenDevSession)
		r.Route("/{session_id}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.CloseSession)
			r.Put("/source", h.ReplaceSource)
		})
	})
}

// OpenSession handles POST /sessions.
// Body: { "mediaURL": "https://example.com/a.mkv" }.
func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	locator, ok := h.decodeSource(w, r)
	if !ok {
		return
	}
	h.writeOpened(w, h.svc.Open(locator))
}

// OpenDevSession handles POST /sessions/dev.
func (h *Handler) OpenDevSession(w http.ResponseWriter, r *http.Request) {
	h.writeOpened(w, h.svc.OpenDev())
}

// ListSessions handles GET /sessions.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	views := h.svc.List()
	h.writeJSON(w, http.StatusOK, views)
}

// GetSession handles GET /sessions/{session_id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := SessionID(chi.URLParam(r, "session_id"))
	v, err := h.svc.View(id)
	if err != nil {
		h.writeError(w, id, err)
		return
	}
	h.writeJSON(w, http.StatusOK, v)
}

// ReplaceSource handles PUT /sessions/{session_id}/source.
func (h *Handler) ReplaceSource(w http.ResponseWriter, r *http.Request) {
	id := SessionID(chi.URLParam(r, "session_id"))
	locator, ok := h.decodeSource(w, r)
	if !ok {
		return
	}
	if err := h.svc.Replace(id, locator); err != nil {
		h.writeError(w, id, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// CloseSession handles DELETE /sessions/{session_id}.
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	id := SessionID(chi.URLParam(r, "session_id"))
	if err := h.svc.Close(id); err != nil {
		h.writeError(w, id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decodeSource(w http.ResponseWriter, r *http.Request) (Locator, bool) {
	var body sourceRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.log.Debug("invalid source body", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
		return "", false
	}
	if body.MediaURL == "" {
		w.WriteHeader(http.StatusBadRequest)
		return "", false
	}
	return Locator(body.MediaURL), true
}

func (h *Handler) writeOpened(w http.ResponseWriter, id SessionID) {
	w.Header().Set("Location", "/sessions/"+string(id))
	h.writeJSON(w, http.StatusCreated, openResponse{ID: id})
}

func (h *Handler) writeError(w http.ResponseWriter, id SessionID, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		w.WriteHeader(http.StatusNotFound)
	default:
		h.log.Error("session request failed",
			slog.String("session_id", string(id)),
			slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Debug("write response failed", slog.String("error", err.Error()))
	}
}
