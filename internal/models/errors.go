package models

import "errors"

// Sentinel errors for the request path. Handlers translate these into HTTP
// statuses in one place; everything else surfaces as a 500 with the raw
// message.
var (
	// ErrValidation indicates missing required input on a request.
	ErrValidation = errors.New("username and password required")

	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password. The two causes are never distinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserExists indicates an attempt to provision a duplicate username.
	ErrUserExists = errors.New("user already exists")

	// ErrEmptyPatch indicates an update request with no recognized fields.
	ErrEmptyPatch = errors.New("no fields to update")

	// ErrTodoNotFound indicates the (owner, todo_id) pair has no record.
	ErrTodoNotFound = errors.New("todo not found")
)
