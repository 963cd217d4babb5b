package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sebringj/localstack/internal/models"
)

// respondJSON writes v as a JSON response body with the given status.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError writes the flat {"error": ...} body every failure uses.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// Unauthorized is the response for any request whose credential is
// missing, empty, or invalid.
func Unauthorized(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusUnauthorized, "Unauthorized")
}

// MethodNotAllowed is the response for unsupported methods on known routes.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// NotFound is the response for unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, "Not found")
}

// statusFor maps a service error to its HTTP status and client-facing
// message. Anything outside the sentinel taxonomy is a store or internal
// failure and surfaces as a 500 with the raw message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest, "Username and password required"
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, models.ErrEmptyPatch):
		return http.StatusBadRequest, "No fields to update"
	case errors.Is(err, models.ErrTodoNotFound):
		return http.StatusNotFound, "Todo not found"
	default:
		return http.StatusInternalServerError, err.Error()
	}
}
