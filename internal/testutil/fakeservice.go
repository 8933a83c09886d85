// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"todo/internal/service"
)

// DefaultListID is the ID used for the default list.
const DefaultListID = "@default"

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu    sync.RWMutex
	lists []service.TaskList
	tasks map[string][]service.Task // listID -> tasks
	seq   int

	created int // tasks created through CreateTask

	// Error injection for testing
	ListListsErr   error
	DefaultListErr error
	ResolveListErr error
	ListTasksErr   error
	CreateTaskErr  error

	// CreateTaskFailAfter makes CreateTask fail once this many tasks have
	// been created. Zero disables it.
	CreateTaskFailAfter int
}

// NewFakeService creates a new FakeService with a default list.
func NewFakeService() *FakeService {
	f := &FakeService{
		tasks: make(map[string][]service.Task),
	}
	f.lists = []service.TaskList{
		{ID: DefaultListID, Title: "My Tasks", IsDefault: true},
	}
	f.tasks[DefaultListID] = nil
	return f
}

// AddList adds a list to the fake service.
func (f *FakeService) AddList(id, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists = append(f.lists, service.TaskList{ID: id, Title: title})
	if f.tasks[id] == nil {
		f.tasks[id] = nil
	}
}

// AddTask adds an open task to a list.
func (f *FakeService) AddTask(listID, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.tasks[listID] = append(f.tasks[listID], service.Task{
		ID:    fmt.Sprintf("task%d", f.seq),
		Title: title,
	})
}

// Tasks returns a copy of the tasks in a list.
func (f *FakeService) Tasks(listID string) []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]service.Task(nil), f.tasks[listID]...)
}

// ListLists implements service.Service.
func (f *FakeService) ListLists(ctx context.Context) ([]service.TaskList, error) {
	if f.ListListsErr != nil {
		return nil, f.ListListsErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]service.TaskList(nil), f.lists...), nil
}

// DefaultList implements service.Service.
func (f *FakeService) DefaultList(ctx context.Context) (service.TaskList, error) {
	if f.DefaultListErr != nil {
		return service.TaskList{}, f.DefaultListErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, l := range f.lists {
		if l.IsDefault {
			return l, nil
		}
	}
	return service.TaskList{}, errors.New("no default list")
}

// ResolveList implements service.Service.
func (f *FakeService) ResolveList(ctx context.Context, name string) (service.TaskList, error) {
	if f.ResolveListErr != nil {
		return service.TaskList{}, f.ResolveListErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	nameLower := strings.ToLower(strings.TrimSpace(name))

	var matches []service.TaskList
	for _, l := range f.lists {
		if strings.ToLower(strings.TrimSpace(l.Title)) == nameLower {
			matches = append(matches, l)
		}
	}

	switch len(matches) {
	case 0:
		return service.TaskList{}, fmt.Errorf("%w: list %s", service.ErrNotFound, name)
	case 1:
		return matches[0], nil
	default:
		return service.TaskList{}, fmt.Errorf("%w: %s", service.ErrAmbiguous, name)
	}
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, listID string) ([]service.Task, error) {
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	tasks, ok := f.tasks[listID]
	if !ok {
		return nil, service.ErrNotFound
	}
	return append([]service.Task(nil), tasks...), nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, listID string, task service.Task) error {
	if f.CreateTaskErr != nil {
		return f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.tasks[listID]; !ok {
		return service.ErrNotFound
	}
	if f.CreateTaskFailAfter > 0 && f.created >= f.CreateTaskFailAfter {
		return errors.New("quota exceeded")
	}

	f.created++
	f.seq++
	task.ID = fmt.Sprintf("task%d", f.seq)
	f.tasks[listID] = append(f.tasks[listID], task)
	return nil
}
