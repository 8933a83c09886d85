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
	Register(&RemotesCmd{})
}

// RemotesCmd prints the Google Tasks lists that push can target.
type RemotesCmd struct{}

func (c *RemotesCmd) Name() string      { return "remotes" }
func (c *RemotesCmd) Aliases() []string { return []string{"lists"} }
func (c *RemotesCmd) Synopsis() string  { return "Print Google Tasks lists" }
func (c *RemotesCmd) Usage() string     { return "todo remotes [common flags]" }
func (c *RemotesCmd) NeedsStore() bool  { return false }
func (c *RemotesCmd) NeedsAuth() bool   { return true }

func (c *RemotesCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RemotesCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	lists, err := svc.ListLists(ctx)
	if err != nil {
		return reportBackendError(errOut, err)
	}

	for _, list := range lists {
		output.FormatRemoteList(out, list)
	}
	return exitcode.Success
}
