package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/sebringj/localstack/internal/auth"
	"github.com/sebringj/localstack/internal/models"
	"github.com/sebringj/localstack/internal/services"
)

// TodoHandler handles HTTP requests for todo management. Every operation
// is scoped to the username proven by the caller's token.
type TodoHandler struct {
	service services.TodoServiceProvider
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(service services.TodoServiceProvider) *TodoHandler {
	return &TodoHandler{service: service}
}

// CreatePayload defines the structure for create requests. Completed is
// not accepted here; new todos always start incomplete.
type CreatePayload struct {
	Title string `json:"title"`
}

// List returns all of the caller's todos.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	username, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	todos, err := h.service.List(r.Context(), username)
	if err != nil {
		log.Error().Err(err).Str("username", username).Msg("Failed to list todos")
		status, message := statusFor(err)
		respondError(w, status, message)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"todos": todos})
}

// Create stores a new todo for the caller.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	username, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var payload CreatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	todo, err := h.service.Create(r.Context(), username, payload.Title)
	if err != nil {
		log.Error().Err(err).Str("username", username).Msg("Failed to create todo")
		status, message := statusFor(err)
		respondError(w, status, message)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{"todo": todo})
}

// Update applies a sparse patch to one of the caller's todos. Fields other
// than title and completed are ignored; a body with neither is a 400.
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	username, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	todoID := chi.URLParam(r, "id")

	var patch models.TodoPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	todo, err := h.service.Update(r.Context(), username, todoID, patch)
	if err != nil {
		status, message := statusFor(err)
		if status == http.StatusInternalServerError {
			log.Error().Err(err).Str("username", username).Str("todo_id", todoID).Msg("Failed to update todo")
		}
		respondError(w, status, message)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"todo": todo})
}

// Delete removes one of the caller's todos. Deleting an id that never
// existed still reports success.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	todoID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), username, todoID); err != nil {
		log.Error().Err(err).Str("username", username).Str("todo_id", todoID).Msg("Failed to delete todo")
		status, message := statusFor(err)
		respondError(w, status, message)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Todo deleted"})
}
