// Package service defines the backend-agnostic interface for remote task sync.
package service

import "context"

// Service defines the interface for remote task backends.
// All Google Tasks API calls go through this interface.
// Commands never import Google SDK directly.
type Service interface {
	// ListLists returns every task list, the default one included.
	ListLists(ctx context.Context) ([]TaskList, error)

	// DefaultList returns the user's default task list.
	DefaultList(ctx context.Context) (TaskList, error)

	// ResolveList finds a list by name (case-insensitive, trimmed).
	// Returns error if not found or ambiguous.
	ResolveList(ctx context.Context, name string) (TaskList, error)

	// ListTasks returns every task in a list, completed ones included,
	// in API order.
	ListTasks(ctx context.Context, listID string) ([]Task, error)

	// CreateTask creates a new task in the specified list.
	CreateTask(ctx context.Context, listID string, task Task) error
}
