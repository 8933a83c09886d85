package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
	"todo/internal/store"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "todo help" }
func (c *HelpCmd) NeedsStore() bool  { return false }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  todo                                      List all tasks, completed included
  todo list [common flags] [-a|--all]       List open tasks, --all adds completed (alias: ls)
  todo add [common flags] [--due <when>] <task...>
  todo complete [common flags] <id>         Mark a task completed (alias: done)
  todo remove [common flags] <id>           Delete a task (alias: rm)
  todo push [common flags] [--list <name>] [-a|--all]
  todo remotes [common flags]               Print Google Tasks lists (alias: lists)
  todo config [common flags]                Print effective settings
  todo login [common flags]
  todo logout [common flags]
  todo help
  todo version

Flags go before positional arguments.
<when> is YYYY-MM-DD or RFC 3339 (2024-01-01T09:00:00Z).

Common flags:
  --config <dir>   Override config directory
  --file <path>    Override task file (default tasks.csv)
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr

Environment:
  TODO_FILE, TODO_DUE_OFFSET, TODO_REMOTE_LIST
`
