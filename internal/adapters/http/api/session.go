package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/arete/internal/app"
)

// SessionDependencies defines the interface for session operations.
type SessionDependencies interface {
	Login(ctx context.Context, username string) (service.Session, error)
	Logout(ctx context.Context) error
	ActiveUser(ctx context.Context) (string, error)
}

// SessionHandler handles login, logout and session lookups.
type SessionHandler struct {
	deps SessionDependencies
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(deps SessionDependencies) *SessionHandler {
	return &SessionHandler{deps: deps}
}

type loginRequest struct {
	Username string `json:"username"`
}

type activeResponse struct {
	Username string `json:"username"`
}

// HandleLogin handles POST /session requests.
func (h *SessionHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "api.login"
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	sess, err := h.deps.Login(r.Context(), req.Username)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	status := http.StatusOK
	if sess.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, sess)
}

// HandleActive handles GET /session requests.
func (h *SessionHandler) HandleActive(w http.ResponseWriter, r *http.Request) {
	const op = "api.active_user"
	username, err := h.deps.ActiveUser(r.Context())
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, activeResponse{Username: username})
}

// HandleLogout handles DELETE /session requests.
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	const op = "api.logout"
	if err := h.deps.Logout(r.Context()); err != nil {
		writeFailure(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
