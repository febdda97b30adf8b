package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/civiceye/backend/internal/models"
	"github.com/civiceye/backend/internal/services"
)

// UserHandler handles account endpoints of the identity registry
type UserHandler struct {
	svc    *services.UserService
	logger *zap.SugaredLogger
}

// NewUserHandler creates a new user handler
func NewUserHandler(svc *services.UserService, logger *zap.SugaredLogger) *UserHandler {
	return &UserHandler{svc: svc, logger: logger}
}

// Register handles POST /api/v1/users/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.Registration
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, h.logger, "register user", err)
		return
	}

	user, err := h.svc.Register(r.Context(), &req)
	if err != nil {
		respondErr(w, h.logger, "register user", err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

// Login handles POST /api/v1/users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, h.logger, "login", err)
		return
	}

	res, err := h.svc.Login(r.Context(), &req)
	if err != nil {
		respondErr(w, h.logger, "login", err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// Get handles GET /api/v1/users/{id}. Sibling services call this route to
// validate user references.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondErr(w, h.logger, "get user", err)
		return
	}

	user, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respondErr(w, h.logger, "get user", err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// GetByEmail handles GET /api/v1/users/email/{email}
func (h *UserHandler) GetByEmail(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.GetByEmail(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		respondErr(w, h.logger, "get user", err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// GetByUsername handles GET /api/v1/users/username/{username}
func (h *UserHandler) GetByUsername(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.GetByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		respondErr(w, h.logger, "get user", err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// Exists handles GET /api/v1/users/exists?email=&username=
func (h *UserHandler) Exists(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	exists, err := h.svc.Exists(r.Context(), q.Get("email"), q.Get("username"))
	if err != nil {
		respondErr(w, h.logger, "check user", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

// List handles GET /api/v1/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		respondErr(w, h.logger, "list users", err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// Update handles PUT /api/v1/users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondErr(w, h.logger, "update user", err)
		return
	}

	var patch models.UserPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondErr(w, h.logger, "update user", err)
		return
	}

	user, err := h.svc.Update(r.Context(), id, &patch)
	if err != nil {
		respondErr(w, h.logger, "update user", err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /api/v1/users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondErr(w, h.logger, "delete user", err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		respondErr(w, h.logger, "delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
