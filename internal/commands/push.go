package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
	"todo/internal/store"
)

func init() {
	Register(&PushCmd{})
}

// PushCmd exports local tasks to a Google Tasks list.
// A task whose name already exists in the remote list (case-insensitive,
// trimmed) is skipped, so pushing twice creates nothing the second time.
type PushCmd struct {
	listName string
	all      bool
}

// SetListName sets the --list flag (for testing).
func (c *PushCmd) SetListName(name string) {
	c.listName = name
}

// SetAll sets the --all flag (for testing).
func (c *PushCmd) SetAll(all bool) {
	c.all = all
}

func (c *PushCmd) Name() string      { return "push" }
func (c *PushCmd) Aliases() []string { return nil }
func (c *PushCmd) Synopsis() string  { return "Export tasks to Google Tasks" }
func (c *PushCmd) Usage() string     { return "todo push [--list <name>] [-a|--all]" }
func (c *PushCmd) NeedsStore() bool  { return true }
func (c *PushCmd) NeedsAuth() bool   { return true }

func (c *PushCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
	fs.BoolVar(&c.all, "all", false, "")
	fs.BoolVar(&c.all, "a", false, "")
}

func (c *PushCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	tasks, err := st.Read()
	if err != nil {
		return reportStoreError(errOut, err)
	}
	tasks = store.Filter(tasks, c.all)

	listName := c.listName
	if listName == "" {
		listName = cfg.RemoteList
	}

	var list service.TaskList
	if listName != "" {
		list, err = svc.ResolveList(ctx, listName)
		switch {
		case errors.Is(err, service.ErrNotFound):
			fmt.Fprintf(errOut, "error: list not found: %s\n", listName)
			return exitcode.UserError
		case errors.Is(err, service.ErrAmbiguous):
			fmt.Fprintf(errOut, "error: ambiguous list name: %s\n", listName)
			return exitcode.UserError
		case err != nil:
			return reportBackendError(errOut, err)
		}
	} else {
		list, err = svc.DefaultList(ctx)
		if err != nil {
			return reportBackendError(errOut, err)
		}
	}

	remote, err := svc.ListTasks(ctx, list.ID)
	if err != nil {
		return reportBackendError(errOut, err)
	}
	seen := make(map[string]bool, len(remote))
	for _, t := range remote {
		seen[titleKey(t.Title)] = true
	}

	log := cfg.Logger()
	var pushed, skipped int
	for _, t := range tasks {
		key := titleKey(t.Name)
		if seen[key] {
			log.Debug("skipping task already on remote", zap.Uint32("id", t.ID))
			skipped++
			continue
		}

		err := svc.CreateTask(ctx, list.ID, service.Task{
			Title:     t.Name,
			Due:       t.Due,
			Completed: t.Completed,
		})
		if err != nil {
			return reportBackendError(errOut, fmt.Errorf("pushed %d before failing on task %d: %w", pushed, t.ID, err))
		}
		seen[key] = true
		pushed++
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "pushed %d, skipped %d\n", pushed, skipped)
	}
	return exitcode.Success
}

func titleKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
