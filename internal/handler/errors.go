package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmathew/travel-diary/internal/domain"
)

// errorResponse is the uniform error body returned by every endpoint.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errBadParam builds a validation error for malformed query/path input
// rejected before reaching the service layer.
func errBadParam(message string) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, message)
}

// respondJSON writes v as the JSON response body with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// writeError maps a service error onto the HTTP status and error body.
// Unrecognized errors are logged and surfaced as a generic 500 so internal
// detail never reaches the caller.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		respondJSON(w, http.StatusBadRequest, errorBody("validation_error", err, domain.ErrValidation))
	case errors.Is(err, domain.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorBody("not_found", err, domain.ErrNotFound))
	case errors.Is(err, domain.ErrConflict):
		respondJSON(w, http.StatusConflict, errorBody("conflict", err, domain.ErrConflict))
	default:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{
			Error: errorDetail{Code: "internal_error", Message: "something went wrong, please retry"},
		})
	}
}

// errorBody builds the error payload, trimming the wrapped call-site prefix
// so the client sees "destination is required to complete a trip" rather
// than "service.TripService.Update: validation error: destination is ...".
func errorBody(code string, err, sentinel error) errorResponse {
	return errorResponse{Error: errorDetail{Code: code, Message: clientMessage(err, sentinel)}}
}

// clientMessage extracts the human-readable part after the sentinel text.
// Falls back to the full message when the sentinel text is not present.
func clientMessage(err, sentinel error) string {
	msg := err.Error()
	marker := sentinel.Error() + ": "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return msg
}
