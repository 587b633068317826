package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const failingScenario = `name: wrong_kinds
description: "Asserts a change that never happens"
passes:
  - programs:
      - name: "51234"
        machine: Titan
        posted_at: 2024-03-01T06:00:00Z
        sheet: { name: S12345, grade: 50/50W, material: 50/50W-0100, heat: A4A100, po: "4500252867" }
assertions:
  - type: log_kinds
    program: 51234
    kinds: [posted, deleted]
`

func newTestCmd(format string, args ...string) (*bytes.Buffer, error) {
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := newTestCmd("text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentDir(t *testing.T) {
	_, err := newTestCmd("text", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandEmptyDir(t *testing.T) {
	buf, err := newTestCmd("text", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No scenarios found")
}

func TestTestCommandPassingScenario(t *testing.T) {
	buf, err := newTestCmd("text", "testdata/scenarios", "--golden-dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "✓ first_post")
	assert.Contains(t, buf.String(), "1 passed, 0 failed, 1 total")
}

func TestTestCommandFailingScenarioJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wrong_kinds.yaml"), []byte(failingScenario), 0644))

	buf, err := newTestCmd("json", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 1, resp.Data.Failed)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.NotEmpty(t, resp.Data.Scenarios[0].Errors)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
}

func TestTestCommandUpdateThenCompare(t *testing.T) {
	goldenDir := t.TempDir()

	_, err := newTestCmd("text", "testdata/scenarios", "--golden-dir", goldenDir, "--update")
	require.NoError(t, err)
	golden := filepath.Join(goldenDir, "first_post.golden")
	require.FileExists(t, golden)

	_, err = newTestCmd("text", "testdata/scenarios", "--golden-dir", goldenDir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(golden, []byte("{}\n"), 0644))
	buf, err := newTestCmd("text", "testdata/scenarios", "--golden-dir", goldenDir)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "do not match golden file")
}

func TestTestCommandFilter(t *testing.T) {
	buf, err := newTestCmd("text", "testdata/scenarios", "--filter", "repost*")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No scenarios found")
}
