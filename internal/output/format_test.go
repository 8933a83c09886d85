package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo/internal/service"
	"todo/internal/store"
)

var now = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func TestFormatTasks(t *testing.T) {
	tasks := []store.Task{
		{ID: 0, Name: "buy milk", Due: now.Add(72 * time.Hour)},
		{ID: 12, Name: "file taxes", Due: now.Add(-72 * time.Hour), Completed: true},
	}

	var buf bytes.Buffer
	require.NoError(t, FormatTasks(&buf, tasks, now))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Regexp(t, `^ID\s+TASK\s+DUE\s+DONE$`, lines[0])
	assert.Regexp(t, `^0\s+buy milk\s+2024-01-13 12:00 \(in .+\)\s+no$`, lines[1])
	assert.Regexp(t, `^12\s+file taxes\s+2024-01-07 12:00 \(.+ ago\)\s+yes$`, lines[2])

	// Columns line up.
	assert.Equal(t, strings.Index(lines[0], "TASK"), strings.Index(lines[1], "buy milk"))
	assert.Equal(t, strings.Index(lines[0], "TASK"), strings.Index(lines[2], "file taxes"))
}

func TestFormatTasks_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatTasks(&buf, nil, now))

	assert.Regexp(t, `^ID\s+TASK\s+DUE\s+DONE\n$`, buf.String())
}

func TestFormatTask(t *testing.T) {
	var buf bytes.Buffer
	FormatTask(&buf, "added", store.Task{ID: 3, Name: "two\nlines"})

	assert.Equal(t, "added 3: two lines\n", buf.String())
}

func TestFormatRemoteList(t *testing.T) {
	var buf bytes.Buffer
	FormatRemoteList(&buf, service.TaskList{ID: "@default", Title: "My Tasks", IsDefault: true})
	FormatRemoteList(&buf, service.TaskList{ID: "w", Title: "Work"})
	FormatRemoteList(&buf, service.TaskList{ID: "x", Title: " "})

	assert.Equal(t, "My Tasks (default)\nWork\n(untitled)\n", buf.String())
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"buy milk", "buy milk"},
		{"", "(untitled)"},
		{"  \t", "(untitled)"},
		{"a\r\nb", "a  b"},
		{"a\tb", "a b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeName(tt.in), "normalizeName(%q)", tt.in)
	}
}
