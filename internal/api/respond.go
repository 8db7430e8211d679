package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dungeon/internal/game/save"
	"github.com/cory-johannsen/dungeon/internal/game/validation"
)

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Error   string                  `json:"error"`
	Message string                  `json:"message,omitempty"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
}

// writeJSON writes payload with status.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// errBadBody marks a request body that could not be decoded.
var errBadBody = errors.New("malformed request body")

// decodeJSON reads r's body into dst.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return fmt.Errorf("%w: %w", errBadBody, err)
	}
	return nil
}

// failure holds the messages a route reports. message answers unexpected
// errors, which are logged and never echoed; notFound answers ErrNotFound.
type failure struct {
	message  string
	notFound string
}

var (
	failSave          = failure{message: "Failed to save game", notFound: "Save not found"}
	failLoad          = failure{message: "Failed to load game", notFound: "Save not found"}
	failList          = failure{message: "Failed to fetch saves", notFound: "Save not found"}
	failDelete        = failure{message: "Failed to delete save", notFound: "Save not found"}
	failProfile       = failure{message: "Failed to load profile", notFound: "Profile not found"}
	failUpdateProfile = failure{message: "Failed to update profile", notFound: "Profile not found"}
	failStory         = failure{message: "Failed to generate story", notFound: "Not found"}
	failCombat        = failure{message: "Combat processing failed", notFound: "Not found"}
)

// writeError maps err to a status code.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, f failure, err error) {
	var verr *validation.Error
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorBody{Error: "validation failed", Fields: verr.Fields})
	case errors.Is(err, errBadBody):
		writeJSON(w, http.StatusBadRequest, ErrorBody{Error: "malformed JSON", Message: err.Error()})
	case errors.As(err, &tooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorBody{Error: "request body too large"})
	case errors.Is(err, save.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorBody{Error: f.notFound})
	case errors.Is(err, save.ErrDeleted):
		writeJSON(w, http.StatusConflict, ErrorBody{Error: "Save deleted", Message: "the save id belongs to a deleted save"})
	default:
		h.logger.Error(f.message,
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, ErrorBody{Error: f.message})
	}
}
