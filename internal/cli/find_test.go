package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dupfind/internal/testutil"
)

const aliceText = `In another moment down went Alice after it, never once considering how
 in the world she was to get out again.
 The rabbit-hole went straight on like a tunnel for some way, and then
 dipped suddenly down, so suddenly that Alice had not a moment to think
 about stopping herself before she found herself falling down a very
 deep well.
`

type runResult struct {
	stdout string
	stderr string
	code   int
}

// runCLI executes the root command with a private scratch dir and returns
// its output. It fails the test if scratch files are left behind.
func runCLI(t *testing.T, stdin string, args ...string) runResult {
	t.Helper()
	dir, list := testutil.ScratchDir(t)
	t.Setenv("DUPFIND_SCRATCH_DIR", dir)

	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	code := Execute(cmd)
	assert.Empty(t, list(), "scratch files left behind")
	return runResult{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

func golden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestFind_Golden(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{"find_default", "", []string{"find", "-d"}},
		{"find_default_memory", "", []string{"find", "-d", "--algorithm", "memory"}},
		{"find_default_sqlite", "", []string{"find", "--default", "--seen-log", "sqlite"}},
		{"find_ints", "", []string{"find", "--type", "int", "1", "2", "3", "2", "4", "1", "5", "3"}},
		{"find_no_duplicates", "", []string{"find", "a", "b", "c"}},
		{"find_stdin", aliceText, []string{"find"}},
		{"find_stdin_fold", "Alice ALICE bob alice Bob", []string{"find", "--fold"}},
		{"find_json", "", []string{"find", "-d", "--format", "json"}},
		{"find_json_ints", "", []string{"find", "--format", "json", "--type", "int", "--", "7", "7", "-3", "-3", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, tt.stdin, tt.args...)
			require.Equal(t, ExitSuccess, res.code, "stderr: %s", res.stderr)
			golden(t).Assert(t, tt.name, []byte(res.stdout))
		})
	}
}

func TestFind_File(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "words.txt", aliceText)

	res := runCLI(t, "ignored stdin ignored", "find", "--file", path, "--seen-log", "sqlite")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	golden(t).Assert(t, "find_stdin", []byte(res.stdout))
}

func TestFind_DefaultIgnoresArguments(t *testing.T) {
	res := runCLI(t, "", "find", "-d", "x", "y")
	require.Equal(t, ExitSuccess, res.code)
	assert.Contains(t, res.stderr, "Ignoring additional input")
	assert.Contains(t, res.stdout, "[a, c, d]")
	assert.NotContains(t, res.stdout, "x")
}

func TestFind_ConfigFile(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "dupfind.toml", "[detector]\nseen_log = \"sqlite\"\n")

	res := runCLI(t, "", "--config", path, "--format", "json", "find", "b", "b")
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	var resp struct {
		Status string
		Data   FindResult
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "sqlite", resp.Data.SeenLog)
	assert.Equal(t, []any{"b"}, resp.Data.Duplicates)

	// Flags beat the config file.
	res = runCLI(t, "", "--config", path, "--format", "json", "find", "--seen-log", "file", "b", "b")
	require.Equal(t, ExitSuccess, res.code)
	assert.Contains(t, res.stdout, `"seen_log":"file"`)
}

func TestFind_VerboseLogsPasses(t *testing.T) {
	res := runCLI(t, "", "-v", "find", "-d")
	require.Equal(t, ExitSuccess, res.code)

	for _, msg := range []string{"input buffered", "recurrence pass complete", "reconcile pass complete", "Found 3 duplicate value(s)"} {
		assert.Contains(t, res.stderr, msg)
	}
	assert.Contains(t, res.stderr, "component=find")
	assert.NotContains(t, res.stdout, "input buffered")
}

func TestFind_Errors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.txt")

	tests := []struct {
		name    string
		args    []string
		code    int
		errCode string
		stderr  string
	}{
		{"not an integer", []string{"find", "--type", "int", "1", "two"}, ExitCommandError, ErrCodeInvalidInput, "not a list of integers"},
		{"unknown seen log", []string{"find", "--seen-log", "btree", "a"}, ExitCommandError, ErrCodeConfig, "invalid configuration"},
		{"unknown type", []string{"find", "--type", "float", "1.5"}, ExitCommandError, ErrCodeConfig, "invalid configuration"},
		{"missing file", []string{"find", "--file", missing}, ExitCommandError, ErrCodeInvalidInput, "cannot read input"},
		{"values and file", []string{"find", "--file", missing, "a"}, ExitCommandError, ErrCodeInvalidInput, "cannot read input"},
		{"scratch dir missing", []string{"find", "--scratch-dir", "/nonexistent/dupfind", "a", "a"}, ExitFailure, ErrCodeIO, "scratch file I/O failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, "", tt.args...)
			assert.Equal(t, tt.code, res.code)
			assert.Empty(t, res.stdout)
			assert.Contains(t, res.stderr, "Error ["+tt.errCode+"]")
			assert.Contains(t, res.stderr, tt.stderr)
		})
	}
}

func TestFind_ErrorJSON(t *testing.T) {
	res := runCLI(t, "", "--format", "json", "find", "--type", "int", "x")
	assert.Equal(t, ExitCommandError, res.code)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidInput, resp.Error.Code)
	assert.Contains(t, resp.Error.Details, `"x"`)
}

func TestFind_UsageErrors(t *testing.T) {
	res := runCLI(t, "", "find", "--no-such-flag")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "unknown flag")

	res = runCLI(t, "", "--format", "yaml", "find", "-d")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, `invalid format "yaml"`)
}
