package models

import "time"

// Todo represents a single to-do item owned by one user. The composite key
// is (Username, ID); records are only ever addressed with the owner taken
// from the authenticated caller, never from request input.
type Todo struct {
	Username  string    `json:"username"`
	ID        string    `json:"todo_id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// TodoPatch is a sparse update of a todo's mutable fields. Only Title and
// Completed can ever change; any other field a client sends is dropped
// during decoding and can never reach storage.
type TodoPatch struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

// IsEmpty reports whether the patch carries no recognized field. An empty
// patch is rejected before any store access.
func (p TodoPatch) IsEmpty() bool {
	return p.Title == nil && p.Completed == nil
}

// Apply assigns exactly the fields present in the patch, leaving absent
// fields untouched.
func (p TodoPatch) Apply(t *Todo) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}
