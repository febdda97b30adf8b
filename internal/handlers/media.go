package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/civiceye/backend/internal/apperr"
	"github.com/civiceye/backend/internal/services"
)

// MediaHandler handles media upload and download endpoints
type MediaHandler struct {
	svc      *services.MediaService
	maxBytes int64
	logger   *zap.SugaredLogger
}

// NewMediaHandler creates a media handler accepting uploads up to maxBytes
func NewMediaHandler(svc *services.MediaService, maxBytes int64, logger *zap.SugaredLogger) *MediaHandler {
	return &MediaHandler{svc: svc, maxBytes: maxBytes, logger: logger}
}

// Upload handles POST /api/v1/media/upload (multipart: file, complaintId)
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondErr(w, h.logger, "upload media", apperr.Invalid("file exceeds %d bytes", h.maxBytes))
			return
		}
		respondErr(w, h.logger, "upload media", apperr.Invalid("file is required"))
		return
	}
	defer file.Close()

	complaintID, err := strconv.ParseInt(r.FormValue("complaintId"), 10, 64)
	if err != nil || complaintID <= 0 {
		respondErr(w, h.logger, "upload media", apperr.Invalid("invalid complaintId"))
		return
	}

	media, err := h.svc.Upload(r.Context(), services.Upload{
		ComplaintID: complaintID,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     file,
	})
	if err != nil {
		respondErr(w, h.logger, "upload media", err)
		return
	}
	respondJSON(w, http.StatusCreated, media)
}

// Get handles GET /api/v1/media/{id}
func (h *MediaHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondErr(w, h.logger, "get media", err)
		return
	}

	media, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respondErr(w, h.logger, "get media", err)
		return
	}
	respondJSON(w, http.StatusOK, media)
}

// ListByComplaint handles GET /api/v1/media/complaint/{complaintId}
func (h *MediaHandler) ListByComplaint(w http.ResponseWriter, r *http.Request) {
	complaintID, err := idParam(r, "complaintId")
	if err != nil {
		respondErr(w, h.logger, "list media", err)
		return
	}

	media, err := h.svc.ListByComplaint(r.Context(), complaintID)
	if err != nil {
		respondErr(w, h.logger, "list media", err)
		return
	}
	respondJSON(w, http.StatusOK, media)
}

// Download handles GET /api/v1/media/{id}/download
func (h *MediaHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondErr(w, h.logger, "download media", err)
		return
	}

	media, content, err := h.svc.Open(r.Context(), id)
	if err != nil {
		respondErr(w, h.logger, "download media", err)
		return
	}
	defer content.Close()

	w.Header().Set("Content-Type", media.FileType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"`, strings.ReplaceAll(media.FileName, `"`, "")))
	if media.FileSize > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(media.FileSize, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, content); err != nil {
		h.logger.Warnw("Download interrupted", "media_id", id, "error", err)
	}
}

// Delete handles DELETE /api/v1/media/{id}
func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		respondErr(w, h.logger, "delete media", err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		respondErr(w, h.logger, "delete media", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
