package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/service"
	"todo/internal/store"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `todo` (no args, all tasks) and `todo list [--all]`.
type ListCmd struct {
	all bool
	now func() time.Time
}

// SetAll sets the --all flag (for testing).
func (c *ListCmd) SetAll(all bool) {
	c.all = all
}

// SetClock sets the time source for relative due dates (for testing).
func (c *ListCmd) SetClock(now func() time.Time) {
	c.now = now
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string     { return "todo list [-a|--all]" }
func (c *ListCmd) NeedsStore() bool  { return true }
func (c *ListCmd) NeedsAuth() bool   { return false }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.all, "all", false, "")
	fs.BoolVar(&c.all, "a", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	tasks, err := st.Read()
	if err != nil {
		return reportStoreError(errOut, err)
	}

	shown := store.Filter(tasks, c.all)
	if len(shown) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, output.NoTasks)
		}
		return exitcode.Success
	}

	now := time.Now
	if c.now != nil {
		now = c.now
	}
	if err := output.FormatTasks(out, shown, now()); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.StoreError
	}
	return exitcode.Success
}
