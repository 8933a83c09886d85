// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, unknown task id).
	UserError = 1

	// StoreError indicates the task file could not be read or written.
	StoreError = 2

	// DataError indicates the task file is corrupt or an id overflowed.
	DataError = 3

	// AuthError indicates an auth/config error.
	AuthError = 4

	// BackendError indicates a remote API/network error.
	BackendError = 5
)
