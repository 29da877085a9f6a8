package cli

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tagman/internal/store"
)

// testEnv is a books database plus a config file describing it.
type testEnv struct {
	dbPath     string
	configPath string
}

func newTestEnv(t *testing.T, titles ...string) *testEnv {
	t.Helper()
	t.Setenv("TAGMAN_DB", "")
	dir := t.TempDir()
	env := &testEnv{
		dbPath:     filepath.Join(dir, "books.db"),
		configPath: filepath.Join(dir, "tagman.yaml"),
	}

	db, err := sql.Open(store.DriverMattn, env.dbPath)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(`CREATE TABLE books (title TEXT NOT NULL)`)
	require.NoError(t, err)
	for _, title := range titles {
		_, err = db.Exec(`INSERT INTO books (title) VALUES (?)`, title)
		require.NoError(t, err)
	}

	cfg := "object:\n  table: books\n  columns: [rowid, title]\n  order_by: title\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(env.configPath, []byte(cfg), 0o644))
	return env
}

// run executes tagman with the env's config and database.
func (e *testEnv) run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(append([]string{"--config", e.configPath, "--db", e.dbPath}, args...))

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	stdout, stderr, err := e.run(t, args...)
	require.NoError(t, err, "stderr: %s", stderr)
	return stdout
}

// runJSON executes a command with --format json and decodes the data payload.
func (e *testEnv) runJSON(t *testing.T, data any, args ...string) CLIResponse {
	t.Helper()
	stdout, _, _ := e.run(t, append([]string{"--format", "json"}, args...)...)

	var raw struct {
		CLIResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &raw), "stdout: %s", stdout)
	if data != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return raw.CLIResponse
}

func bookTitles(t *testing.T, list ObjectList) []string {
	t.Helper()
	titles := make([]string, len(list.Objects))
	for i, o := range list.Objects {
		titles[i], _ = o["title"].(string)
	}
	return titles
}

func TestTagCreateAndList(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "tag", "create", "rock")
	assert.Contains(t, out, "created tag rock#1")
	env.mustRun(t, "tag", "create", "jazz")

	var list TagList
	resp := env.runJSON(t, &list, "tag", "list")
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.TraceID)
	require.Len(t, list.Tags, 2)
	assert.Equal(t, "jazz", list.Tags[0].Name)
	assert.Equal(t, "rock", list.Tags[1].Name)

	out = env.mustRun(t, "tag", "list")
	assert.Contains(t, out, "ID  NAME")
	assert.Contains(t, out, "2   jazz")
}

func TestTagCreate_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "tag", "create", "rock")

	_, stderr, err := env.run(t, "tag", "create", "rock")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stderr, "Error [E007]")

	out := env.mustRun(t, "tag", "create", "rock", "--allow-duplicate")
	assert.Contains(t, out, "rock#2")
}

func TestTagRenameShowAndExists(t *testing.T) {
	env := newTestEnv(t, "alpha", "bravo")
	env.mustRun(t, "assign", "rok", "2")

	out := env.mustRun(t, "tag", "rename", "rok", "rock")
	assert.Contains(t, out, `renamed tag "rok" -> rock#1`)

	assert.Equal(t, "true\n", env.mustRun(t, "tag", "exists", "rock"))
	assert.Equal(t, "false\n", env.mustRun(t, "tag", "exists", "rok"))

	var shown ObjectList
	env.runJSON(t, &shown, "tag", "show", "#1")
	require.NotNil(t, shown.Tag)
	assert.Equal(t, "rock", shown.Tag.Name)
	assert.Equal(t, []string{"bravo"}, bookTitles(t, shown))
}

func TestTagNotFound(t *testing.T) {
	env := newTestEnv(t)

	resp := env.runJSON(t, nil, "tag", "show", "ghost")
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)

	_, _, err := env.run(t, "tag", "delete", "#x")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTagDelete(t *testing.T) {
	env := newTestEnv(t, "alpha", "bravo")
	env.mustRun(t, "assign", "rock", "1")
	env.mustRun(t, "assign", "jazz", "2")

	env.mustRun(t, "tag", "delete", "rock")
	env.mustRun(t, "tag", "delete", "jazz", "--cascade")

	// The dangling rock edge still keeps alpha out of untagged.
	var untagged ObjectList
	env.runJSON(t, &untagged, "untagged")
	assert.Equal(t, []string{"bravo"}, bookTitles(t, untagged))
}

func TestTagListCounts(t *testing.T) {
	env := newTestEnv(t, "a", "b", "c")
	env.mustRun(t, "assign", "one", "1")
	env.mustRun(t, "assign", "three", "1", "2", "3")
	env.mustRun(t, "tag", "create", "zero")

	var counts TagCountList
	env.runJSON(t, &counts, "tag", "list", "--counts")
	require.Len(t, counts.Tags, 3)
	assert.Equal(t, "three", counts.Tags[0].Tag.Name)
	assert.Equal(t, int64(3), counts.Tags[0].Uses)
	assert.Equal(t, "one", counts.Tags[1].Tag.Name)
	assert.Equal(t, int64(0), counts.Tags[2].Uses)
}

func TestAssign(t *testing.T) {
	env := newTestEnv(t, "alpha", "bravo")

	var first AssignResult
	env.runJSON(t, &first, "assign", "rock", "1", "2")
	assert.True(t, first.TagCreated)
	assert.Len(t, first.Changed, 2)

	var second AssignResult
	env.runJSON(t, &second, "assign", "rock", "2")
	assert.False(t, second.TagCreated)
	assert.Empty(t, second.Changed)
	assert.Len(t, second.Skipped, 1)

	out := env.mustRun(t, "tags-for", "2")
	assert.Equal(t, "rock\n", out)

	_, _, err := env.run(t, "assign", "rock", "two")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestUnassign(t *testing.T) {
	env := newTestEnv(t, "alpha", "bravo")
	env.mustRun(t, "assign", "rock", "1", "2")
	env.mustRun(t, "assign", "jazz", "1")

	env.mustRun(t, "unassign", "rock", "2")
	assert.Contains(t, env.mustRun(t, "tags-for", "2"), "object 2 has no tags")

	out := env.mustRun(t, "unassign", "--all-for-object", "1")
	assert.Contains(t, out, "removed 2 tag(s) from object 1")
	assert.Contains(t, env.mustRun(t, "tags-for", "1"), "object 1 has no tags")

	_, _, err := env.run(t, "unassign", "--all-for-object", "1", "extra")
	require.Error(t, err)
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t, "alpha", "bravo", "charlie", "delta")
	env.mustRun(t, "assign", "rock", "1", "2", "3")
	env.mustRun(t, "assign", "live", "1", "2")
	env.mustRun(t, "assign", "bootleg", "2")

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"all", []string{"search"}, []string{"alpha", "bravo", "charlie", "delta"}},
		{"single", []string{"search", "rock"}, []string{"alpha", "bravo", "charlie"}},
		{"intersection", []string{"search", "rock && live"}, []string{"alpha", "bravo"}},
		{"exclusion", []string{"search", "rock && live && !bootleg"}, []string{"alpha"}},
		{"flags", []string{"search", "--include", "rock", "-x", "live"}, []string{"charlie"}},
		{"exclude only", []string{"search", "!bootleg"}, []string{"alpha", "charlie"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var list ObjectList
			resp := env.runJSON(t, &list, tt.args...)
			require.Equal(t, "ok", resp.Status)
			assert.Equal(t, []string{"rowid", "title"}, list.Columns)
			assert.Equal(t, tt.want, bookTitles(t, list))
		})
	}
}

func TestSearch_TextOutput(t *testing.T) {
	env := newTestEnv(t, "alpha", "bravo")
	env.mustRun(t, "assign", "rock", "2")

	out := env.mustRun(t, "search", "rock")
	assert.Equal(t, "rowid  title\n2      bravo\n", out)

	out = env.mustRun(t, "search", "rock && !rock")
	assert.Equal(t, "No objects.\n", out)
}

func TestSearch_Explain(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "tag", "create", "rock")
	env.mustRun(t, "tag", "create", "bootleg")

	var explain ExplainResult
	env.runJSON(t, &explain, "search", "rock && !bootleg", "--explain")
	assert.Equal(t, "rock && !bootleg", explain.Expression)
	assert.Contains(t, explain.SQL, "NOT EXISTS")
	assert.Equal(t, []any{float64(1), float64(2)}, explain.Params)
}

func TestSearch_Errors(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "tag", "create", "rock")

	resp := env.runJSON(t, nil, "search", "rock || jazz")
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeSyntax, resp.Error.Code)

	resp = env.runJSON(t, nil, "search", "rock && jazz")
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeUnknownTag, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, `unknown tag "jazz"`)

	_, _, err := env.run(t, "search", "rock && jazz")
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestUntagged(t *testing.T) {
	env := newTestEnv(t, "charlie", "alpha", "bravo")
	env.mustRun(t, "assign", "rock", "3")

	out := env.mustRun(t, "untagged")
	assert.Equal(t, "rowid  title\n2      alpha\n1      charlie\n", out)
}

func TestOpenFailures(t *testing.T) {
	env := newTestEnv(t)

	t.Run("missing config", func(t *testing.T) {
		cmd := NewRootCommand()
		errOut := &bytes.Buffer{}
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(errOut)
		cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml"), "tag", "list"})

		err := cmd.Execute()
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, errOut.String(), "Error [E002]")
	})

	t.Run("missing object table", func(t *testing.T) {
		cmd := NewRootCommand()
		errOut := &bytes.Buffer{}
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(errOut)
		cmd.SetArgs([]string{"--config", env.configPath, "--db", filepath.Join(t.TempDir(), "empty.db"), "untagged"})

		err := cmd.Execute()
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, errOut.String(), "Error [E004]")
	})

	t.Run("unreachable database", func(t *testing.T) {
		_, stderr, err := env.run(t, "--db", "/nonexistent/dir/books.db", "tag", "list")
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, stderr, "Error [E003]")
	})
}
