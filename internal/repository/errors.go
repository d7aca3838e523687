package repository

import "errors"

var (
	// ErrDuplicate is returned when an insert hits a unique constraint
	ErrDuplicate = errors.New("duplicate record")
	// ErrVersionConflict is returned when a session was saved by someone else since it was loaded
	ErrVersionConflict = errors.New("session version conflict")
)
