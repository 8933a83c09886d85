package commands_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo/internal/commands"
	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
	"todo/internal/store"
	"todo/internal/testutil"
)

var fixedNow = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

// fixture is a config plus an initialized, empty task file.
type fixture struct {
	cfg *config.Config
	st  *store.Store
}

func newFixture(t *testing.T, quiet bool) fixture {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.csv")

	st := store.New(path, nil)
	_, err := st.Ensure()
	require.NoError(t, err)

	cfg := &config.Config{
		Settings: config.Settings{File: path, DueOffset: config.DefaultDueOffset},
		Dir:      filepath.Join(dir, "config"),
		Quiet:    quiet,
	}
	return fixture{cfg: cfg, st: st}
}

// seed writes tasks directly through the store.
func (f fixture) seed(t *testing.T, tasks ...store.Task) {
	t.Helper()
	for _, task := range tasks {
		_, err := f.st.Write(task)
		require.NoError(t, err)
	}
}

func (f fixture) read(t *testing.T) []store.Task {
	t.Helper()
	tasks, err := f.st.Read()
	require.NoError(t, err)
	return tasks
}

// runCommand is a helper to run a command against the fixture.
func runCommand(t *testing.T, cmd commands.Command, f fixture, svc service.Service, args []string) (stdout, stderr string, code int) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer
	code = cmd.Run(context.Background(), f.cfg, f.st, svc, args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func clock() time.Time { return fixedNow }

// Tests for version command
func TestVersionCommand(t *testing.T) {
	f := newFixture(t, false)

	stdout, stderr, code := runCommand(t, &commands.VersionCmd{}, f, nil, nil)

	assert.Equal(t, exitcode.Success, code)
	assert.Empty(t, stderr)
	assert.Equal(t, "todo 0.1.0\n", stdout)
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	f := newFixture(t, false)

	stdout, stderr, code := runCommand(t, &commands.HelpCmd{}, f, nil, nil)

	assert.Equal(t, exitcode.Success, code)
	assert.Empty(t, stderr)
	assert.Contains(t, stdout, "(alias: ls)")
	testutil.GoldenString(t, "help", stdout)
}

// Tests for list command
func TestListCommand_Empty(t *testing.T) {
	f := newFixture(t, false)

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, f, nil, nil)

	assert.Equal(t, exitcode.Success, code)
	assert.Empty(t, stderr)
	assert.Equal(t, "no tasks found\n", stdout)
}

func TestListCommand_EmptyQuiet(t *testing.T) {
	f := newFixture(t, true)

	stdout, _, code := runCommand(t, &commands.ListCmd{}, f, nil, nil)

	assert.Equal(t, exitcode.Success, code)
	assert.Empty(t, stdout, "quiet mode prints nothing")
}

func TestListCommand_HidesCompleted(t *testing.T) {
	f := newFixture(t, false)
	f.seed(t,
		store.NewTask(0, "buy milk", fixedNow.Add(72*time.Hour)),
		store.Task{ID: 1, Name: "file taxes", Due: fixedNow.Add(-72 * time.Hour), Completed: true},
	)

	cmd := &commands.ListCmd{}
	cmd.SetClock(clock)
	stdout, _, code := runCommand(t, cmd, f, nil, nil)

	require.Equal(t, exitcode.Success, code)
	lines := strings.Split(strings.TrimRight(stdout, "\n"), "\n")
	require.Len(t, lines, 2, "expected header and one task, got %q", stdout)
	assert.Regexp(t, `^0\s+buy milk\s+2024-01-13 12:00 \(in .+\)\s+no$`, lines[1])
}

func TestListCommand_All(t *testing.T) {
	f := newFixture(t, false)
	f.seed(t,
		store.NewTask(0, "buy milk", fixedNow.Add(72*time.Hour)),
		store.Task{ID: 1, Name: "file taxes", Due: fixedNow.Add(-72 * time.Hour), Completed: true},
	)

	cmd := &commands.ListCmd{}
	cmd.SetAll(true)
	cmd.SetClock(clock)
	stdout, _, code := runCommand(t, cmd, f, nil, nil)

	require.Equal(t, exitcode.Success, code)
	assert.Regexp(t, `(?m)^1\s+file taxes\s+2024-01-07 12:00 \(.+ ago\)\s+yes$`, stdout)
}

func TestListCommand_UnexpectedArgument(t *testing.T) {
	f := newFixture(t, false)

	_, stderr, code := runCommand(t, &commands.ListCmd{}, f, nil, []string{"extra"})

	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: unexpected argument: extra\n", stderr)
}

func TestListCommand_CorruptFile(t *testing.T) {
	f := newFixture(t, false)
	require.NoError(t, os.WriteFile(f.cfg.File, []byte("id,title\n"), 0644))

	_, stderr, code := runCommand(t, &commands.ListCmd{}, f, nil, nil)

	assert.Equal(t, exitcode.DataError, code)
	assert.True(t, strings.HasPrefix(stderr, "error: corrupt task file"), "unexpected stderr %q", stderr)
}

// Tests for add command
func TestAddCommand(t *testing.T) {
	f := newFixture(t, false)

	cmd := &commands.AddCmd{}
	cmd.SetClock(clock)
	stdout, stderr, code := runCommand(t, cmd, f, nil, []string{"buy", "milk"})

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Equal(t, "added 0: buy milk\n", stdout)

	tasks := f.read(t)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].Due.Equal(fixedNow.Add(config.DefaultDueOffset)), "got due %v", tasks[0].Due)
	assert.False(t, tasks[0].Completed, "new task should be open")
}

func TestAddCommand_DueOffsetFromConfig(t *testing.T) {
	f := newFixture(t, true)
	f.cfg.DueOffset = 2 * time.Hour

	cmd := &commands.AddCmd{}
	cmd.SetClock(func() time.Time { return fixedNow.Add(500 * time.Millisecond) })
	_, _, code := runCommand(t, cmd, f, nil, []string{"call mom"})

	require.Equal(t, exitcode.Success, code)
	got := f.read(t)[0].Due
	assert.True(t, got.Equal(fixedNow.Add(2*time.Hour)), "due should be truncated to the second, got %v", got)
}

func TestAddCommand_ReassignsID(t *testing.T) {
	f := newFixture(t, false)
	f.seed(t,
		store.NewTask(0, "a", fixedNow),
		store.NewTask(1, "b", fixedNow),
	)

	cmd := &commands.AddCmd{}
	cmd.SetClock(clock)
	stdout, _, code := runCommand(t, cmd, f, nil, []string{"c"})

	require.Equal(t, exitcode.Success, code)
	assert.Equal(t, "added 2: c\n", stdout)
}

func TestAddCommand_Due(t *testing.T) {
	tests := []struct {
		name string
		due  string
		want time.Time
	}{
		{"date", "2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"rfc3339", "2024-03-01T09:30:00+01:00", time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)

			cmd := &commands.AddCmd{}
			cmd.SetDue(tt.due)
			_, stderr, code := runCommand(t, cmd, f, nil, []string{"task"})

			require.Equal(t, exitcode.Success, code, stderr)
			got := f.read(t)[0].Due
			assert.True(t, got.Equal(tt.want), "expected due %v, got %v", tt.want, got)
		})
	}
}

func TestAddCommand_InvalidDue(t *testing.T) {
	f := newFixture(t, false)

	cmd := &commands.AddCmd{}
	cmd.SetDue("tomorrow")
	_, stderr, code := runCommand(t, cmd, f, nil, []string{"task"})

	assert.Equal(t, exitcode.UserError, code)
	assert.Contains(t, stderr, "invalid due date: tomorrow")
	assert.Empty(t, f.read(t), "nothing should be written")
}

func TestAddCommand_UnstorableTask(t *testing.T) {
	tests := []struct {
		name    string
		due     string
		args    []string
		wantErr string
	}{
		{
			name:    "crlf in name",
			args:    []string{"a\r\nb"},
			wantErr: "error: invalid task: name contains a carriage return\n",
		},
		{
			name:    "due past year 9999 in UTC",
			due:     "9999-12-31T23:00:00-02:00",
			args:    []string{"task"},
			wantErr: "error: invalid task: due year 10000 out of range 0-9999\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, false)

			cmd := &commands.AddCmd{}
			cmd.SetClock(clock)
			cmd.SetDue(tt.due)
			stdout, stderr, code := runCommand(t, cmd, f, nil, tt.args)

			assert.Equal(t, exitcode.UserError, code)
			assert.Equal(t, tt.wantErr, stderr)
			assert.Empty(t, stdout)
			assert.Empty(t, f.read(t), "nothing should be written")
		})
	}
}

func TestAddCommand_NameRequired(t *testing.T) {
	for _, args := range [][]string{nil, {"  "}} {
		f := newFixture(t, false)

		_, stderr, code := runCommand(t, &commands.AddCmd{}, f, nil, args)

		assert.Equal(t, exitcode.UserError, code, "args %q", args)
		assert.Equal(t, "error: task name required\n", stderr, "args %q", args)
	}
}

func TestAddCommand_Quiet(t *testing.T) {
	f := newFixture(t, true)

	cmd := &commands.AddCmd{}
	cmd.SetClock(clock)
	stdout, _, code := runCommand(t, cmd, f, nil, []string{"buy milk"})

	assert.Equal(t, exitcode.Success, code)
	assert.Empty(t, stdout, "quiet mode prints nothing")
}

// Tests for complete command
func TestCompleteCommand(t *testing.T) {
	f := newFixture(t, false)
	f.seed(t, store.NewTask(0, "buy milk", fixedNow), store.NewTask(1, "walk dog", fixedNow))

	stdout, _, code := runCommand(t, &commands.CompleteCmd{}, f, nil, []string{"1"})

	require.Equal(t, exitcode.Success, code)
	assert.Equal(t, "completed 1: walk dog\n", stdout)
	tasks := f.read(t)
	assert.False(t, tasks[0].Completed)
	assert.True(t, tasks[1].Completed)
}

func TestCompleteCommand_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{"missing id", nil, exitcode.UserError, "error: task id required\n"},
		{"not a number", []string{"abc"}, exitcode.UserError, "error: invalid task id: abc\n"},
		{"extra argument", []string{"0", "1"}, exitcode.UserError, "error: unexpected argument: 1\n"},
		{"unknown id", []string{"7"}, exitcode.UserError, "error: task not found: 7\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, false)
			f.seed(t, store.NewTask(0, "buy milk", fixedNow))

			_, stderr, code := runCommand(t, &commands.CompleteCmd{}, f, nil, tt.args)

			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantErr, stderr)
		})
	}
}

// Tests for remove command
func TestRemoveCommand(t *testing.T) {
	f := newFixture(t, false)
	f.seed(t, store.NewTask(0, "buy milk", fixedNow), store.NewTask(1, "walk dog", fixedNow))

	stdout, _, code := runCommand(t, &commands.RemoveCmd{}, f, nil, []string{"0"})

	require.Equal(t, exitcode.Success, code)
	assert.Equal(t, "removed 0: buy milk\n", stdout)
	tasks := f.read(t)
	require.Len(t, tasks, 1)
	assert.Equal(t, uint32(1), tasks[0].ID)
}

func TestRemoveCommand_NotFound(t *testing.T) {
	f := newFixture(t, false)

	_, stderr, code := runCommand(t, &commands.RemoveCmd{}, f, nil, []string{"3"})

	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: task not found: 3\n", stderr)
}

// Tests for config command
func TestConfigCommand(t *testing.T) {
	f := newFixture(t, false)
	f.cfg.RemoteList = "Groceries"

	stdout, stderr, code := runCommand(t, &commands.ConfigCmd{}, f, nil, nil)

	require.Equal(t, exitcode.Success, code, stderr)
	want := "# " + f.cfg.ConfigPath() + "\n" +
		"file: " + f.cfg.File + "\n" +
		"due_offset: 24h0m0s\n" +
		"remote_list: Groceries\n"
	assert.Equal(t, want, stdout)
}

func TestConfigCommand_UnexpectedArgument(t *testing.T) {
	f := newFixture(t, false)

	stdout, stderr, code := runCommand(t, &commands.ConfigCmd{}, f, nil, []string{"extra", "more"})

	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: unexpected argument: extra\n", stderr)
	assert.Empty(t, stdout)
}

// Tests for push command
func TestPushCommand(t *testing.T) {
	f := newFixture(t, false)
	f.seed(t,
		store.NewTask(0, "buy milk", fixedNow),
		store.NewTask(1, "walk dog", fixedNow),
		store.Task{ID: 2, Name: "file taxes", Due: fixedNow, Completed: true},
	)
	svc := testutil.NewFakeService()
	svc.AddTask(testutil.DefaultListID, "  Buy Milk ")

	stdout, stderr, code := runCommand(t, &commands.PushCmd{}, f, svc, nil)

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Equal(t, "pushed 1, skipped 1\n", stdout)

	remote := svc.Tasks(testutil.DefaultListID)
	require.Len(t, remote, 2)
	assert.Equal(t, "walk dog", remote[1].Title)
	assert.True(t, remote[1].Due.Equal(fixedNow), "unexpected due %v", remote[1].Due)

	// A second push finds everything already there
	stdout, _, code = runCommand(t, &commands.PushCmd{}, f, svc, nil)
	assert.Equal(t, exitcode.Success, code)
	assert.Equal(t, "pushed 0, skipped 2\n", stdout)
}

func TestPushCommand_AllToNamedList(t *testing.T) {
	f := newFixture(t, true)
	f.seed(t,
		store.NewTask(0, "buy milk", fixedNow),
		store.Task{ID: 1, Name: "file taxes", Due: fixedNow, Completed: true},
	)
	svc := testutil.NewFakeService()
	svc.AddList("list-work", "Work")

	cmd := &commands.PushCmd{}
	cmd.SetListName("work")
	cmd.SetAll(true)
	_, stderr, code := runCommand(t, cmd, f, svc, nil)

	require.Equal(t, exitcode.Success, code, stderr)
	remote := svc.Tasks("list-work")
	require.Len(t, remote, 2)
	assert.True(t, remote[1].Completed, "completed task should be pushed as completed")
	assert.Empty(t, svc.Tasks(testutil.DefaultListID), "default list should be untouched")
}

func TestPushCommand_RemoteListFromConfig(t *testing.T) {
	f := newFixture(t, true)
	f.cfg.RemoteList = "Work"
	f.seed(t, store.NewTask(0, "buy milk", fixedNow))
	svc := testutil.NewFakeService()
	svc.AddList("list-work", "Work")

	_, _, code := runCommand(t, &commands.PushCmd{}, f, svc, nil)

	require.Equal(t, exitcode.Success, code)
	assert.Len(t, svc.Tasks("list-work"), 1, "expected task pushed to the configured list")
}

func TestPushCommand_Errors(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(svc *testutil.FakeService, cmd *commands.PushCmd)
		wantCode int
		wantErr  string
	}{
		{
			name:     "list not found",
			setup:    func(svc *testutil.FakeService, cmd *commands.PushCmd) { cmd.SetListName("Nope") },
			wantCode: exitcode.UserError,
			wantErr:  "error: list not found: Nope\n",
		},
		{
			name: "ambiguous list",
			setup: func(svc *testutil.FakeService, cmd *commands.PushCmd) {
				svc.AddList("a", "Work")
				svc.AddList("b", "work")
				cmd.SetListName("Work")
			},
			wantCode: exitcode.UserError,
			wantErr:  "error: ambiguous list name: Work\n",
		},
		{
			name:     "default list unavailable",
			setup:    func(svc *testutil.FakeService, cmd *commands.PushCmd) { svc.DefaultListErr = errors.New("boom") },
			wantCode: exitcode.BackendError,
			wantErr:  "error: backend error: boom\n",
		},
		{
			name:     "listing fails",
			setup:    func(svc *testutil.FakeService, cmd *commands.PushCmd) { svc.ListTasksErr = errors.New("boom") },
			wantCode: exitcode.BackendError,
			wantErr:  "error: backend error: boom\n",
		},
		{
			name: "credentials revoked",
			setup: func(svc *testutil.FakeService, cmd *commands.PushCmd) {
				svc.ListTasksErr = fmt.Errorf("%w: token expired", service.ErrAuth)
			},
			wantCode: exitcode.AuthError,
			wantErr:  "error: not authorized: token expired\n",
		},
		{
			name:     "create fails midway",
			setup:    func(svc *testutil.FakeService, cmd *commands.PushCmd) { svc.CreateTaskFailAfter = 1 },
			wantCode: exitcode.BackendError,
			wantErr:  "error: backend error: pushed 1 before failing on task 1: quota exceeded\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, false)
			f.seed(t, store.NewTask(0, "buy milk", fixedNow), store.NewTask(1, "walk dog", fixedNow))
			svc := testutil.NewFakeService()
			cmd := &commands.PushCmd{}
			tt.setup(svc, cmd)

			stdout, stderr, code := runCommand(t, cmd, f, svc, nil)

			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantErr, stderr)
			assert.Empty(t, stdout)
		})
	}
}

func TestPushCommand_UnexpectedArgument(t *testing.T) {
	f := newFixture(t, false)

	_, stderr, code := runCommand(t, &commands.PushCmd{}, f, testutil.NewFakeService(), []string{"now"})

	assert.Equal(t, exitcode.UserError, code)
	assert.Equal(t, "error: unexpected argument: now\n", stderr)
}

// Tests for remotes command
func TestRemotesCommand(t *testing.T) {
	f := newFixture(t, false)
	svc := testutil.NewFakeService()
	svc.AddList("list-work", "Work")

	stdout, stderr, code := runCommand(t, &commands.RemotesCmd{}, f, svc, nil)

	require.Equal(t, exitcode.Success, code, stderr)
	assert.Equal(t, "My Tasks (default)\nWork\n", stdout)
}

func TestRemotesCommand_BackendError(t *testing.T) {
	f := newFixture(t, false)
	svc := testutil.NewFakeService()
	svc.ListListsErr = errors.New("boom")

	_, stderr, code := runCommand(t, &commands.RemotesCmd{}, f, svc, nil)

	assert.Equal(t, exitcode.BackendError, code)
	assert.Equal(t, "error: backend error: boom\n", stderr)
}
