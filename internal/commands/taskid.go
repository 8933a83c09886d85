package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"todo/internal/exitcode"
	"todo/internal/service"
	"todo/internal/store"
)

// ErrTaskIDRequired indicates no task id was provided.
var ErrTaskIDRequired = errors.New("task id required")

// ParseTaskID parses the task id from the first positional argument.
// Exactly one argument is accepted.
func ParseTaskID(args []string) (uint32, error) {
	if len(args) == 0 {
		return 0, ErrTaskIDRequired
	}
	if len(args) > 1 {
		return 0, fmt.Errorf("unexpected argument: %s", args[1])
	}

	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid task id: %s", args[0])
	}
	return uint32(id), nil
}

// reportStoreError prints a store failure and returns its exit code.
func reportStoreError(errOut io.Writer, err error) int {
	fmt.Fprintf(errOut, "error: %v\n", err)

	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrInvalidTask):
		return exitcode.UserError
	case errors.Is(err, store.ErrDecode), errors.Is(err, store.ErrIDOverflow):
		return exitcode.DataError
	default:
		return exitcode.StoreError
	}
}

// reportBackendError prints a remote failure and returns its exit code.
func reportBackendError(errOut io.Writer, err error) int {
	if errors.Is(err, service.ErrAuth) {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}
	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}
