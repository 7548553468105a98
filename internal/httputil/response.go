// Package httputil holds the JSON envelope and error mapping shared by the HTTP handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/harborline/cargosim/internal/domain"
	"github.com/rs/zerolog"
)

// WriteJSON writes a raw JSON response
func WriteJSON(w http.ResponseWriter, log zerolog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// WriteData wraps data in the standard {"data", "metadata"} envelope.
func WriteData(w http.ResponseWriter, log zerolog.Logger, status int, data interface{}) {
	WriteJSON(w, log, status, map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// WriteMessage writes a plain error message with the given status.
func WriteMessage(w http.ResponseWriter, log zerolog.Logger, status int, message string) {
	WriteJSON(w, log, status, map[string]interface{}{
		"error": message,
	})
}

// WriteError maps an error to a response.
// Validation errors become 400 with their field details, ErrNotFound becomes 404,
// anything else is logged and returned as a generic 500.
func WriteError(w http.ResponseWriter, log zerolog.Logger, err error) {
	var rowErrs domain.RowErrors
	var fieldErrs domain.ValidationErrors
	var fieldErr *domain.ValidationError

	switch {
	case errors.As(err, &rowErrs):
		WriteJSON(w, log, http.StatusBadRequest, map[string]interface{}{
			"error":  rowErrs.Error(),
			"errors": rowErrs,
		})
	case errors.As(err, &fieldErrs):
		WriteJSON(w, log, http.StatusBadRequest, map[string]interface{}{
			"error":  fieldErrs.Error(),
			"errors": fieldErrs,
		})
	case errors.As(err, &fieldErr):
		WriteJSON(w, log, http.StatusBadRequest, map[string]interface{}{
			"error":  fieldErr.Error(),
			"errors": []*domain.ValidationError{fieldErr},
		})
	case errors.Is(err, domain.ErrNotFound):
		WriteMessage(w, log, http.StatusNotFound, err.Error())
	default:
		log.Error().Err(err).Msg("Request failed")
		WriteMessage(w, log, http.StatusInternalServerError, "internal error")
	}
}

// DecodeJSON decodes a request body, returning a validation error on malformed JSON.
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return &domain.ValidationError{Field: "body", Message: "request body is required"}
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &domain.ValidationError{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return nil
}
