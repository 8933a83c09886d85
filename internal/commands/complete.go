package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/service"
	"todo/internal/store"
)

func init() {
	Register(&CompleteCmd{})
}

// CompleteCmd implements the complete command.
type CompleteCmd struct{}

func (c *CompleteCmd) Name() string      { return "complete" }
func (c *CompleteCmd) Aliases() []string { return []string{"done"} }
func (c *CompleteCmd) Synopsis() string  { return "Mark a task completed" }
func (c *CompleteCmd) Usage() string     { return "todo complete <id>" }
func (c *CompleteCmd) NeedsStore() bool  { return true }
func (c *CompleteCmd) NeedsAuth() bool   { return false }

func (c *CompleteCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *CompleteCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, svc service.Service, args []string, out, errOut io.Writer) int {
	id, err := ParseTaskID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	task, err := st.Update(id, func(t *store.Task) {
		t.Completed = true
	})
	if err != nil {
		return reportStoreError(errOut, err)
	}

	if !cfg.Quiet {
		output.FormatTask(out, "completed", task)
	}
	return exitcode.Success
}
