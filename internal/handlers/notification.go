package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/civiceye/backend/internal/apperr"
	"github.com/civiceye/backend/internal/models"
	"github.com/civiceye/backend/internal/services"
)

// NotificationHandler handles notification endpoints
type NotificationHandler struct {
	svc    *services.NotificationService
	logger *zap.SugaredLogger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(svc *services.NotificationService, logger *zap.SugaredLogger) *NotificationHandler {
	return &NotificationHandler{svc: svc, logger: logger}
}

// Create handles POST /api/v1/notifications
func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.NotificationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, h.logger, "create notification", err)
		return
	}

	n, err := h.svc.Create(r.Context(), &req)
	if err != nil {
		respondErr(w, h.logger, "create notification", err)
		return
	}
	respondJSON(w, http.StatusCreated, n)
}

// Get handles GET /api/v1/notifications/{id}
func (h *NotificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondErr(w, h.logger, "get notification", err)
		return
	}

	n, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respondErr(w, h.logger, "get notification", err)
		return
	}
	respondJSON(w, http.StatusOK, n)
}

// ListByUser handles GET /api/v1/notifications/user/{userId}?unreadOnly=true
func (h *NotificationHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := idParam(r, "userId")
	if err != nil {
		respondErr(w, h.logger, "list notifications", err)
		return
	}

	unreadOnly := false
	if raw := r.URL.Query().Get("unreadOnly"); raw != "" {
		unreadOnly, err = strconv.ParseBool(raw)
		if err != nil {
			respondErr(w, h.logger, "list notifications", apperr.Invalid("invalid unreadOnly"))
			return
		}
	}

	list, err := h.svc.ListByUser(r.Context(), userID, unreadOnly)
	if err != nil {
		respondErr(w, h.logger, "list notifications", err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// MarkRead handles PUT /api/v1/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondErr(w, h.logger, "mark notification read", err)
		return
	}

	n, err := h.svc.MarkRead(r.Context(), id)
	if err != nil {
		respondErr(w, h.logger, "mark notification read", err)
		return
	}
	respondJSON(w, http.StatusOK, n)
}

// Delete handles DELETE /api/v1/notifications/{id}
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondErr(w, h.logger, "delete notification", err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		respondErr(w, h.logger, "delete notification", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
