package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"media-gallery/pkg/services"
)

// apiResponse is the envelope of every mutating API call
type apiResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	FilePath string `json:"filePath,omitempty"`
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

// writeFailure writes {success:false, message} with the given status code
func writeFailure(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, apiResponse{Success: false, Message: message}, statusCode)
}

// handleError maps err onto a status code and failure message
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode := mapErrorToStatusCode(err)
	if statusCode >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
	}
	writeFailure(w, errorMessage(err, statusCode), statusCode)
}

// mapErrorToStatusCode maps service errors to HTTP status codes
func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrUpstreamFetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorMessage(err error, statusCode int) string {
	switch statusCode {
	case http.StatusNotFound:
		return "Category not found"
	case http.StatusInternalServerError:
		return "Internal server error"
	default:
		return err.Error()
	}
}
