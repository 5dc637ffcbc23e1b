package task

import "errors"

var (
	// ErrNotFound is returned when no task matches the id.
	ErrNotFound = errors.New("task not found")

	// ErrForbidden is returned when a non-creator attempts to mutate or
	// delete a task, or a non-member tries to read one.
	ErrForbidden = errors.New("only the task creator may do this")
)
