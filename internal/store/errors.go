package store

import "errors"

var (
	// ErrIO indicates the data file could not be opened, created, written or replaced.
	ErrIO = errors.New("store i/o error")

	// ErrDecode indicates a stored record does not parse into a Task.
	ErrDecode = errors.New("corrupt task file")

	// ErrIDOverflow indicates a reassigned id does not fit in a uint32.
	ErrIDOverflow = errors.New("task id overflow")

	// ErrInvalidTask indicates a task that could not be read back once written.
	ErrInvalidTask = errors.New("invalid task")

	// ErrNotFound indicates no task has the requested id.
	ErrNotFound = errors.New("task not found")
)
