package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/devansh-m12/doraemon-sub001/internal/service"
)

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method || (method == http.MethodGet && r.Method == http.MethodHead) {
		return true
	}
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	return false
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]any{
		"success": false,
		"error":   message,
	})
}

// WriteSuccess wraps data in the standard success envelope.
func WriteSuccess(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    data,
	})
}

// StatusForError maps a routed call failure to an HTTP status.
func StatusForError(err error) int {
	var missing *service.MissingParamsError
	switch {
	case service.IsUnknown(err):
		return http.StatusNotFound
	case errors.As(err, &missing):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
