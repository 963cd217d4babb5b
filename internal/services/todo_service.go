package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sebringj/localstack/internal/models"
	"github.com/sebringj/localstack/internal/storage"
)

// TodoServiceProvider defines the interface for todo services.
type TodoServiceProvider interface {
	List(ctx context.Context, username string) ([]models.Todo, error)
	Create(ctx context.Context, username, title string) (models.Todo, error)
	Update(ctx context.Context, username, todoID string, patch models.TodoPatch) (models.Todo, error)
	Delete(ctx context.Context, username, todoID string) error
}

// TodoService performs owner-scoped CRUD against the "todos" partition.
// Every key is built from the authenticated username, so one owner can
// never address another owner's records.
type TodoService struct {
	store storage.Engine
}

// NewTodoService creates a new TodoService.
func NewTodoService(store storage.Engine) *TodoService {
	return &TodoService{store: store}
}

// List returns all todos for the given owner in store order. An owner with
// no todos gets an empty slice, not an error.
func (s *TodoService) List(ctx context.Context, username string) ([]models.Todo, error) {
	todos := []models.Todo{}
	var decodeErr error

	prefix := storage.Key("todos", username, "")
	err := s.store.Scan(ctx, prefix, func(key, value []byte) bool {
		var todo models.Todo
		if decodeErr = json.Unmarshal(value, &todo); decodeErr != nil {
			return false
		}
		todos = append(todos, todo)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("todos partition: %w", err)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("todos partition: decode record: %w", decodeErr)
	}
	return todos, nil
}

// Create stores a new todo for the owner. The id and creation time are
// server-assigned; completed always starts false regardless of input.
func (s *TodoService) Create(ctx context.Context, username, title string) (models.Todo, error) {
	todo := models.Todo{
		Username:  username,
		ID:        uuid.New().String(),
		Title:     title,
		Completed: false,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	data, err := json.Marshal(todo)
	if err != nil {
		return models.Todo{}, fmt.Errorf("encode todo record: %w", err)
	}
	if err := s.store.Set(ctx, storage.Key("todos", username, todo.ID), data); err != nil {
		return models.Todo{}, fmt.Errorf("todos partition: %w", err)
	}
	return todo, nil
}

// Update applies a sparse patch to an existing todo and returns the full
// post-update record. An empty patch fails before any store access; a
// missing record fails with models.ErrTodoNotFound.
func (s *TodoService) Update(ctx context.Context, username, todoID string, patch models.TodoPatch) (models.Todo, error) {
	if patch.IsEmpty() {
		return models.Todo{}, models.ErrEmptyPatch
	}

	var updated models.Todo
	err := s.store.Update(ctx, storage.Key("todos", username, todoID), func(old []byte) ([]byte, error) {
		var todo models.Todo
		if err := json.Unmarshal(old, &todo); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		patch.Apply(&todo)
		updated = todo
		return json.Marshal(todo)
	})
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return models.Todo{}, models.ErrTodoNotFound
		}
		return models.Todo{}, fmt.Errorf("todos partition: %w", err)
	}
	return updated, nil
}

// Delete removes a todo by key. Deleting an id that does not exist still
// succeeds.
func (s *TodoService) Delete(ctx context.Context, username, todoID string) error {
	if err := s.store.Delete(ctx, storage.Key("todos", username, todoID)); err != nil {
		return fmt.Errorf("todos partition: %w", err)
	}
	return nil
}
