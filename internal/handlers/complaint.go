package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/civiceye/backend/internal/apperr"
	"github.com/civiceye/backend/internal/models"
	"github.com/civiceye/backend/internal/services"
)

// ComplaintHandler handles complaint-related HTTP endpoints
type ComplaintHandler struct {
	svc    *services.ComplaintService
	logger *zap.SugaredLogger
}

// NewComplaintHandler creates a new complaint handler
func NewComplaintHandler(svc *services.ComplaintService, logger *zap.SugaredLogger) *ComplaintHandler {
	return &ComplaintHandler{svc: svc, logger: logger}
}

// Create handles POST /api/v1/complaints
func (h *ComplaintHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.ComplaintSubmission
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, h.logger, "create complaint", err)
		return
	}

	complaint, err := h.svc.Create(r.Context(), &req)
	if err != nil {
		respondErr(w, h.logger, "create complaint", err)
		return
	}
	respondJSON(w, http.StatusCreated, complaint)
}

// Get handles GET /api/v1/complaints/{id}
func (h *ComplaintHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondErr(w, h.logger, "get complaint", err)
		return
	}

	complaint, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respondErr(w, h.logger, "get complaint", err)
		return
	}
	respondJSON(w, http.StatusOK, complaint)
}

// List handles GET /api/v1/complaints?status=&category=&userId=
func (h *ComplaintHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.ComplaintFilter{
		Status:   models.ComplaintStatus(q.Get("status")),
		Category: q.Get("category"),
	}
	if raw := q.Get("userId"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			respondErr(w, h.logger, "list complaints", apperr.Invalid("invalid userId"))
			return
		}
		filter.UserID = userID
	}

	h.list(w, r, filter)
}

// ListByUser handles GET /api/v1/complaints/user/{userId}
func (h *ComplaintHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := idParam(r, "userId")
	if err != nil {
		respondErr(w, h.logger, "list complaints", err)
		return
	}
	h.list(w, r, models.ComplaintFilter{UserID: userID})
}

func (h *ComplaintHandler) list(w http.ResponseWriter, r *http.Request, filter models.ComplaintFilter) {
	complaints, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respondErr(w, h.logger, "list complaints", err)
		return
	}
	respondJSON(w, http.StatusOK, complaints)
}

// Update handles PUT /api/v1/complaints/{id}
func (h *ComplaintHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondErr(w, h.logger, "update complaint", err)
		return
	}

	var patch models.ComplaintPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondErr(w, h.logger, "update complaint", err)
		return
	}

	complaint, err := h.svc.Update(r.Context(), id, &patch)
	if err != nil {
		respondErr(w, h.logger, "update complaint", err)
		return
	}
	respondJSON(w, http.StatusOK, complaint)
}

// SetStatus handles PUT /api/v1/complaints/{id}/status
func (h *ComplaintHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondErr(w, h.logger, "update status", err)
		return
	}

	var req models.StatusUpdate
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, h.logger, "update status", err)
		return
	}

	change, err := h.svc.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		respondErr(w, h.logger, "update status", err)
		return
	}
	respondJSON(w, http.StatusOK, change.Complaint)
}

// Delete handles DELETE /api/v1/complaints/{id}
func (h *ComplaintHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondErr(w, h.logger, "delete complaint", err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		respondErr(w, h.logger, "delete complaint", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Count handles GET /api/v1/complaints/count
func (h *ComplaintHandler) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.svc.Count(r.Context())
	if err != nil {
		respondErr(w, h.logger, "count complaints", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"count": count})
}
