package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadAndRun(t *testing.T, name string) *Result {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata/scenarios", name+".yaml"))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	return result
}

func TestRun_Scenarios(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			s, err := LoadScenario(file)
			require.NoError(t, err)

			result, err := Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Len(t, result.Reports, len(s.Passes))
		})
	}
}

func TestRun_Golden(t *testing.T) {
	for _, name := range []string{"first_post", "part_changes", "deleted", "completed", "repost", "malformed_po"} {
		t.Run(name, func(t *testing.T) {
			s, err := LoadScenario(filepath.Join("testdata/scenarios", name+".yaml"))
			require.NoError(t, err)

			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_ReportsRunIDs(t *testing.T) {
	result := loadAndRun(t, "part_changes")

	require.Len(t, result.Reports, 3)
	assert.Equal(t, "pass-1", result.Reports[0].RunID)
	assert.Equal(t, "pass-3", result.Reports[2].RunID)
	assert.Equal(t, 1, result.Reports[0].Programs)
}

func TestRun_FailingAssertionsAreReported(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/first_post.yaml")
	require.NoError(t, err)

	two := 2
	s.Assertions = []Assertion{
		{Type: AssertNoLog, Program: 51234},
		{Type: AssertReport, Pass: 0, Touched: &two},
		{Type: AssertFinalStatus, Program: 99, Status: "posted"},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "no_log")
	assert.Contains(t, result.Errors[1], "touched=1")
	assert.Contains(t, result.Errors[2], "no change log")
}

func TestRun_UnexpectedPassErrorFails(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/unexpected_code.yaml")
	require.NoError(t, err)
	s.Passes[1].ExpectError = ""

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "unexpected error")
}

func TestRun_ExpectedErrorMissingFails(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/first_post.yaml")
	require.NoError(t, err)
	s.Passes[0].ExpectError = "MALFORMED_DATA"

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "got success")
}
