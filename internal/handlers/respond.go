// Package handlers contains the HTTP request handlers of the four services.
// Handlers parse requests, call services, and return JSON responses.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/civiceye/backend/internal/apperr"
)

// maxJSONBody bounds request bodies decoded by decodeJSON.
const maxJSONBody = 1 << 20

// Helper: respond with JSON
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Helper: respond with error
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondErr answers with the status and public message of a classified
// error. Server-side failures are logged with their cause.
func respondErr(w http.ResponseWriter, logger *zap.SugaredLogger, op string, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Errorw(op+" failed", "kind", apperr.KindOf(err).String(), "error", err)
	}
	respondError(w, status, apperr.PublicMessage(err))
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxJSONBody)).Decode(dst); err != nil {
		return apperr.Invalid("invalid request body")
	}
	return nil
}

// idParam parses a positive int64 path parameter.
func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Invalid("invalid %s", name)
	}
	return id, nil
}
