package service

import "time"

// Task represents a single remote task item.
type Task struct {
	ID        string
	Title     string
	Due       time.Time // zero if unset
	Completed bool
}

// TaskList represents a remote task list.
type TaskList struct {
	ID        string
	Title     string
	IsDefault bool
}
