package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/manwah-pos/api/internal/auth"
	"github.com/manwah-pos/api/internal/logging"
	"github.com/manwah-pos/api/internal/metrics"
	"github.com/manwah-pos/api/internal/store"
)

// SessionHandler issues session labels. A session only tells the UI which
// view to show; no route checks it.
type SessionHandler struct {
	secret string
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(secret string) *SessionHandler {
	return &SessionHandler{secret: secret}
}

// RegisterRoutes registers session endpoints on the given Chi router.
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.Create)
}

type createSessionRequest struct {
	Role        string `json:"role"`
	TableNumber int    `json:"table_number"`
}

type sessionResponse struct {
	Token       string    `json:"token"`
	SessionID   uuid.UUID `json:"session_id"`
	Role        string    `json:"role"`
	TableNumber int       `json:"table_number,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Create handles POST /sessions.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	token, claims, err := auth.GenerateSessionToken(h.secret, req.Role, req.TableNumber)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidRole) || errors.Is(err, auth.ErrInvalidTable) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		logging.FromCtx(r.Context()).Error("sign session token", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{
		Token:       token,
		SessionID:   claims.SessionID,
		Role:        claims.Role,
		TableNumber: claims.TableNumber,
		ExpiresAt:   claims.ExpiresAt.Time,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Base().Error("failed to encode JSON response", "error", err)
	}
}

// writeStoreError maps the store's error taxonomy onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, r *http.Request, op string, err error) {
	metrics.ObserveError(err)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrIllegalTransition), errors.Is(err, store.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, store.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		logging.FromCtx(r.Context()).Error(op, "error", err)
		writeJSON(w, status, map[string]string{"error": "internal server error"})
		return
	}
	if status == http.StatusServiceUnavailable {
		logging.FromCtx(r.Context()).Warn(op, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
