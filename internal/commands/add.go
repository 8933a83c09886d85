package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/service"
	"todo/internal/store"
)

// DateLayout is the date-only form accepted by --due.
const DateLayout = "2006-01-02"

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	due string
	now func() time.Time
}

// SetDue sets the --due flag (for testing).
func (c *AddCmd) SetDue(due string) {
	c.due = due
}

// SetClock sets the time source for the default due date (for testing).
func (c *AddCmd) SetClock(now func() time.Time) {
	c.now = now
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return nil }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string     { return "todo add [--due <when>] <task...>" }
func (c *AddCmd) NeedsStore() bool  { return true }
func (c *AddCmd) NeedsAuth() bool   { return false }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.due, "due", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, svc service.Service, args []string, out, errOut io.Writer) int {
	name := strings.Join(args, " ")
	if strings.TrimSpace(name) == "" {
		fmt.Fprintln(errOut, "error: task name required")
		return exitcode.UserError
	}

	now := time.Now
	if c.now != nil {
		now = c.now
	}

	due := now().UTC().Add(cfg.DueOffset).Truncate(time.Second)
	if c.due != "" {
		var err error
		due, err = parseDue(c.due)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
	}

	// New tasks always start at id 0; the store reassigns on collision.
	task, err := st.Write(store.NewTask(0, name, due))
	if err != nil {
		return reportStoreError(errOut, err)
	}
	cfg.Logger().Debug("added task", zap.Uint32("id", task.ID), zap.Time("due", task.Due))

	if !cfg.Quiet {
		output.FormatTask(out, "added", task)
	}
	return exitcode.Success
}

// parseDue accepts RFC 3339 or a bare date (midnight UTC).
func parseDue(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid due date: %s (want %s or RFC 3339)", s, DateLayout)
}
