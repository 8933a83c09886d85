package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Header is the first record of every non-empty data file.
var Header = []string{"id", "name", "due", "completed"}

// Task is a single to-do entry.
type Task struct {
	ID        uint32
	Name      string
	Due       time.Time // always UTC
	Completed bool
}

// NewTask creates an open task with the given due time normalized to UTC.
func NewTask(id uint32, name string, due time.Time) Task {
	return Task{
		ID:   id,
		Name: name,
		Due:  due.UTC(),
	}
}

// validate reports why t would not survive a write and read back unchanged.
// RFC 3339 has four-digit years, and the CSV reader folds "\r\n" into "\n".
func (t Task) validate() error {
	if y := t.Due.UTC().Year(); y < 0 || y > 9999 {
		return fmt.Errorf("%w: due year %d out of range 0-9999", ErrInvalidTask, y)
	}
	if strings.ContainsRune(t.Name, '\r') {
		return fmt.Errorf("%w: name contains a carriage return", ErrInvalidTask)
	}
	return nil
}

// record encodes the task as a CSV record in Header order.
func (t Task) record() []string {
	return []string{
		strconv.FormatUint(uint64(t.ID), 10),
		t.Name,
		t.Due.UTC().Format(time.RFC3339Nano),
		strconv.FormatBool(t.Completed),
	}
}

// parseRecord decodes a CSV record in Header order.
func parseRecord(rec []string) (Task, error) {
	if len(rec) != len(Header) {
		return Task{}, fmt.Errorf("expected %d fields, got %d", len(Header), len(rec))
	}

	id, err := strconv.ParseUint(rec[0], 10, 32)
	if err != nil {
		return Task{}, fmt.Errorf("invalid id %q", rec[0])
	}

	due, err := time.Parse(time.RFC3339, rec[2])
	if err != nil {
		return Task{}, fmt.Errorf("invalid due %q", rec[2])
	}

	completed, err := strconv.ParseBool(rec[3])
	if err != nil {
		return Task{}, fmt.Errorf("invalid completed %q", rec[3])
	}

	return Task{
		ID:        uint32(id),
		Name:      rec[1],
		Due:       due.UTC(),
		Completed: completed,
	}, nil
}

// Filter returns the open tasks, or every task when all is true.
// Order is preserved.
func Filter(tasks []Task, all bool) []Task {
	if all {
		return tasks
	}
	var open []Task
	for _, t := range tasks {
		if !t.Completed {
			open = append(open, t)
		}
	}
	return open
}
