package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	harnessScenarios = "../harness/testdata/scenarios"
	harnessGolden    = "../harness/testdata/golden"
)

const passingScenario = `name: chain
description: two hops inside the window
delta: 10
graph: |
  e1,0,X,Y,
  e2,1,Y,Z,
motif:
  - {tail: A, head: B}
  - {tail: B, head: C}
expect:
  matches:
    - [e1, e2]
`

const failingScenario = `name: wrong-count
description: expects a match that the window rules out
delta: 0
graph: |
  e1,0,X,Y,
  e2,1,Y,Z,
motif:
  - {tail: A, head: B}
  - {tail: B, head: C}
expect:
  count: 1
`

func TestTest_HarnessScenariosPass(t *testing.T) {
	stdout, _, err := execute(t, NewTestCommand(&RootOptions{Format: "json"}),
		harnessScenarios, "--golden", harnessGolden)
	require.NoError(t, err)

	var result TestResult
	resp := decodeData(t, stdout, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 8, result.Total)
	assert.Equal(t, 8, result.Passed)
	assert.Zero(t, result.Failed)
}

func TestTest_Filter(t *testing.T) {
	stdout, _, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}),
		harnessScenarios, "--golden", harnessGolden, "--filter", "triangle-*")
	require.NoError(t, err)

	assert.Contains(t, stdout, "✓ triangle-two-matches (2 match(es))")
	assert.Contains(t, stdout, "1 passed, 0 failed, 1 total")
}

func TestTest_FailingScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "chain.yaml"), passingScenario)
	writeFile(t, filepath.Join(dir, "wrong-count.yaml"), failingScenario)

	stdout, _, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "1 of 2 scenario(s) failed")

	assert.Contains(t, stdout, "✓ chain (1 match(es))")
	assert.Contains(t, stdout, "✗ wrong-count")
	assert.Contains(t, stdout, "1 passed, 1 failed, 2 total")
}

func TestTest_InvalidScenarioFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "typo.yaml"), "name: typo\ndescription: x\nexpects: {}\n")

	stdout, _, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✗ typo.yaml")
	assert.Contains(t, stdout, "failed to load scenario")
}

func TestTest_UpdateThenCompare(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "chain.yaml"), passingScenario)
	goldenPath := filepath.Join(dir, "golden", "chain.golden")

	_, _, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir, "--update")
	require.NoError(t, err)

	data, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Equal(t, "scenario: chain\nmatches: 1\n\n# match 1\ne1,0,X,Y,\ne2,1,Y,Z,\nA=X B=Y C=Z\n", string(data))

	_, _, err = execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.NoError(t, err)

	// A stale snapshot fails the scenario even though its expectations hold.
	require.NoError(t, os.WriteFile(goldenPath, []byte("scenario: chain\nmatches: 0\n"), 0644))
	stdout, _, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Contains(t, stdout, "matches differ from golden file")
}

func TestTest_NoScenarios(t *testing.T) {
	stdout, _, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, stdout, "No scenarios found.")
}

func TestTest_MissingDirectory(t *testing.T) {
	_, _, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), filepath.Join(t.TempDir(), "none"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}
