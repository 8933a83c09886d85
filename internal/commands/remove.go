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
	Register(&RemoveCmd{})
}

// RemoveCmd implements the remove command.
type RemoveCmd struct{}

func (c *RemoveCmd) Name() string      { return "remove" }
func (c *RemoveCmd) Aliases() []string { return []string{"rm"} }
func (c *RemoveCmd) Synopsis() string  { return "Delete a task" }
func (c *RemoveCmd) Usage() string     { return "todo remove <id>" }
func (c *RemoveCmd) NeedsStore() bool  { return true }
func (c *RemoveCmd) NeedsAuth() bool   { return false }

func (c *RemoveCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RemoveCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, svc service.Service, args []string, out, errOut io.Writer) int {
	id, err := ParseTaskID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	task, err := st.Remove(id)
	if err != nil {
		return reportStoreError(errOut, err)
	}

	if !cfg.Quiet {
		output.FormatTask(out, "removed", task)
	}
	return exitcode.Success
}
