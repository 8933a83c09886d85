// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mergestat/timediff"

	"todo/internal/service"
	"todo/internal/store"
)

// NoTasks is printed when a listing is empty.
const NoTasks = "no tasks found"

// DueLayout is the absolute part of the due column.
const DueLayout = "2006-01-02 15:04"

// FormatTasks writes tasks as an aligned table:
//
//	ID  TASK      DUE                              DONE
//	0   buy milk  2024-01-01 00:00 (in 2 days)     no
//
// Relative due times are computed against now.
func FormatTasks(w io.Writer, tasks []store.Task, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTASK\tDUE\tDONE")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", t.ID, normalizeName(t.Name), formatDue(t.Due, now), formatDone(t.Completed))
	}
	return tw.Flush()
}

// FormatTask formats a single task line for confirmations.
// Format: "{verb} {ID}: {NAME}\n"
func FormatTask(w io.Writer, verb string, task store.Task) {
	fmt.Fprintf(w, "%s %d: %s\n", verb, task.ID, normalizeName(task.Name))
}

// FormatRemoteList prints a remote list title, marking the default list.
// Format: "{TITLE}\n" or "{TITLE} (default)\n"
func FormatRemoteList(w io.Writer, list service.TaskList) {
	title := normalizeName(list.Title)
	if list.IsDefault {
		fmt.Fprintf(w, "%s (default)\n", title)
		return
	}
	fmt.Fprintln(w, title)
}

func formatDue(due, now time.Time) string {
	return fmt.Sprintf("%s (%s)", due.UTC().Format(DueLayout), timediff.TimeDiff(due, timediff.WithStartTime(now)))
}

func formatDone(completed bool) string {
	if completed {
		return "yes"
	}
	return "no"
}

// normalizeName normalizes a task name for display.
// - Empty or whitespace-only names become "(untitled)"
// - Newlines and tabs are replaced with spaces
func normalizeName(name string) string {
	name = strings.NewReplacer("\r", " ", "\n", " ", "\t", " ").Replace(name)

	if strings.TrimSpace(name) == "" {
		return "(untitled)"
	}
	return name
}
