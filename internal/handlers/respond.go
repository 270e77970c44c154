// internal/handlers/respond.go
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kennethmarkhui/inventory-api/internal/core/domain"
)

func respondJSON(w http.ResponseWriter, logger *slog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func respondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	respondJSON(w, logger, status, map[string]string{"error": message})
}

// respondDomainError maps the error taxonomy onto HTTP status codes.
// Validation failures carry the offending field list so a client can fix
// everything in one round trip.
func respondDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		respondJSON(w, logger, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  ve.Error(),
			"fields": ve.Fields,
		})
		return
	}

	var status int
	switch domain.KindOf(err) {
	case domain.KindConflict:
		status = http.StatusBadRequest
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindUnsupportedMedia:
		status = http.StatusUnsupportedMediaType
	case domain.KindPayloadTooLarge:
		status = http.StatusRequestEntityTooLarge
	default:
		respondError(w, logger, http.StatusInternalServerError, "Internal server error")
		return
	}

	var tagged *domain.Error
	message := "request failed"
	if errors.As(err, &tagged) {
		message = tagged.Message
	}
	respondError(w, logger, status, message)
}
