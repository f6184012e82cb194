package store

import "errors"

// Common store errors
var (
	// ErrNotFound indicates the requested record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrUsernameTaken indicates a user with this username already exists
	ErrUsernameTaken = errors.New("username already exists")
)
