// Package store persists tasks to a CSV file.
//
// The store keeps no state between calls: every operation reads the whole
// file, and every mutation rewrites it. Rewrites go to a temporary file in
// the same directory which is then renamed over the original, so a failed
// write never leaves a truncated file behind.
//
// There is no locking. Two processes mutating the same file concurrently
// race between the read and the rename, and the last rename wins.
package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"slices"

	"go.uber.org/zap"
)

// createTemp is swapped in tests to simulate an unwritable directory.
var createTemp = os.CreateTemp

// Store reads and writes tasks in a single CSV file.
type Store struct {
	path string
	log  *zap.Logger
}

// New returns a store bound to path. A nil logger disables logging.
func New(path string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{path: path, log: log}
}

// Path returns the data file path.
func (s *Store) Path() string {
	return s.path
}

// Ensure creates the data file, empty, if it does not exist.
// Reports whether the file was created.
func (s *Store) Ensure() (bool, error) {
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("%w: %w", ErrIO, err)
	}
	s.log.Debug("created task file", zap.String("path", s.path))
	return true, nil
}

// Read returns every task in file order.
// An empty file yields no tasks.
func (s *Store) Read() ([]Task, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, s.decodeErr(err)
	}
	if !slices.Equal(header, Header) {
		return nil, fmt.Errorf("%w: %s: unexpected header %q", ErrDecode, s.path, header)
	}

	var tasks []Task
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, s.decodeErr(err)
		}
		task, err := parseRecord(rec)
		if err != nil {
			line, _ := r.FieldPos(0)
			return nil, fmt.Errorf("%w: %s:%d: %v", ErrDecode, s.path, line, err)
		}
		tasks = append(tasks, task)
	}

	s.log.Debug("read tasks", zap.String("path", s.path), zap.Int("count", len(tasks)))
	return tasks, nil
}

// Write appends task to the file and returns it with its final id.
// Tasks that would not read back unchanged are refused with ErrInvalidTask.
// If the id is already taken, the task is reassigned the current task count,
// or max(id)+1 when the count is taken as well.
func (s *Store) Write(task Task) (Task, error) {
	if err := task.validate(); err != nil {
		return Task{}, err
	}

	tasks, err := s.Read()
	if err != nil {
		return Task{}, err
	}

	id, err := assignID(tasks, task.ID)
	if err != nil {
		return Task{}, err
	}
	if id != task.ID {
		s.log.Debug("reassigned task id", zap.Uint32("from", task.ID), zap.Uint32("to", id))
		task.ID = id
	}
	task.Due = task.Due.UTC()

	if err := s.save(append(tasks, task)); err != nil {
		return Task{}, err
	}
	return task, nil
}

// Update applies fn to the task with the given id and persists the result.
// fn must not change the id.
func (s *Store) Update(id uint32, fn func(*Task)) (Task, error) {
	tasks, err := s.Read()
	if err != nil {
		return Task{}, err
	}

	i := slices.IndexFunc(tasks, func(t Task) bool { return t.ID == id })
	if i < 0 {
		return Task{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	fn(&tasks[i])
	tasks[i].ID = id
	tasks[i].Due = tasks[i].Due.UTC()
	if err := tasks[i].validate(); err != nil {
		return Task{}, err
	}

	if err := s.save(tasks); err != nil {
		return Task{}, err
	}
	return tasks[i], nil
}

// Remove deletes the task with the given id and returns it.
func (s *Store) Remove(id uint32) (Task, error) {
	tasks, err := s.Read()
	if err != nil {
		return Task{}, err
	}

	i := slices.IndexFunc(tasks, func(t Task) bool { return t.ID == id })
	if i < 0 {
		return Task{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	removed := tasks[i]

	if err := s.save(slices.Delete(tasks, i, i+1)); err != nil {
		return Task{}, err
	}
	return removed, nil
}

// save replaces the file with the given tasks.
func (s *Store) save(tasks []Task) (err error) {
	mode := fs.FileMode(0644)
	if info, statErr := os.Stat(s.path); statErr == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := createTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	for _, t := range tasks {
		if err := w.Write(t.record()); err != nil {
			return fmt.Errorf("%w: %w", ErrIO, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	if err := tmp.Chmod(mode); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	s.log.Debug("wrote tasks", zap.String("path", s.path), zap.Int("count", len(tasks)))
	return nil
}

func (s *Store) decodeErr(err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return fmt.Errorf("%w: %s:%d: %v", ErrDecode, s.path, perr.Line, perr.Err)
	}
	return fmt.Errorf("%w: %w", ErrIO, err)
}

// assignID returns id if it is free, otherwise a replacement.
func assignID(existing []Task, id uint32) (uint32, error) {
	taken := make(map[uint32]struct{}, len(existing))
	var maxID uint32
	for _, t := range existing {
		taken[t.ID] = struct{}{}
		maxID = max(maxID, t.ID)
	}

	if _, ok := taken[id]; !ok {
		return id, nil
	}

	n := uint64(len(existing))
	if n > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d tasks", ErrIDOverflow, n)
	}
	if _, ok := taken[uint32(n)]; !ok {
		return uint32(n), nil
	}

	if maxID == math.MaxUint32 {
		return 0, fmt.Errorf("%w: no id above %d", ErrIDOverflow, maxID)
	}
	return maxID + 1, nil
}
