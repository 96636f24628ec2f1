package harness

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios(t *testing.T) {
	files, err := FindScenarios("testdata/scenarios", "")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(strings.TrimSuffix(filepath.Base(file), ".yaml"), func(t *testing.T) {
			scenario, err := LoadScenario(file)
			require.NoError(t, err)

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Equal(t, "test-run-default", result.RunID)
		})
	}
}

func parse(t *testing.T, doc string) *Scenario {
	t.Helper()
	s, err := ParseScenario([]byte(doc))
	require.NoError(t, err)
	return s
}

const chainScenario = `
name: chain
description: two-hop chain
delta: 10
graph: |
  e1,0,X,Y,
  e2,1,Y,Z,
  e3,20,Y,Z,
motif:
  - {tail: A, head: B}
  - {tail: B, head: C}
`

func TestRun_ReportsMismatches(t *testing.T) {
	s := parse(t, chainScenario+`
expect:
  count: 2
  matches:
    - [e1, e3]
    - [e2, e3]
`)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, []string{
		"expected 2 matches, got 1",
		"match 1: expected [e1 e3], got [e1 e2]",
		"match 2: expected [e2 e3], missing",
	}, result.Errors)
}

func TestRun_UnexpectedMatches(t *testing.T) {
	s := parse(t, chainScenario+`
expect:
  matches: []
`)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, []string{"match 1: unexpected [e1 e2]"}, result.Errors)
}

func TestRun_ExpectedErrorMissing(t *testing.T) {
	s := parse(t, chainScenario+`
expect:
  error: exceeded max steps
`)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "search succeeded")
}

func TestRun_UnexpectedError(t *testing.T) {
	s := parse(t, chainScenario+`
options:
  max_steps: 1
expect:
  count: 0
`)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "unexpected search error")
}

func TestRun_ExecutionErrors(t *testing.T) {
	t.Run("bad graph", func(t *testing.T) {
		s := parse(t, `
name: bad
description: three fields
delta: 1
graph: "a,0,X\n"
motif: [{tail: A, head: B}]
expect: {count: 0}
`)
		_, err := Run(s)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scenario graph")
	})

	t.Run("bad motif", func(t *testing.T) {
		s := parse(t, `
name: bad
description: duplicate motif edge names
delta: 1
graph: "a,0,X,Y,\n"
motif: [{tail: A, head: B, name: m}, {tail: B, head: C, name: m}]
expect: {count: 0}
`)
		_, err := Run(s)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scenario motif")
	})
}

const detachedScenario = `
name: detached
description: second motif edge shares no vertex with the first
delta: 10
graph: "a,0,X,Y,\nb,4,P,Q,\n"
motif: [{tail: A, head: B}, {tail: C, head: D}]
`

func TestRun_DisconnectedMotif(t *testing.T) {
	t.Run("searched by default", func(t *testing.T) {
		result, err := Run(parse(t, detachedScenario+"expect: {matches: [[a, b]]}\n"))
		require.NoError(t, err)
		assert.True(t, result.Pass, "errors: %v", result.Errors)
		assert.Equal(t, map[string]string{"A": "X", "B": "Y", "C": "P", "D": "Q"}, result.Matches[0].Bindings)
	})

	t.Run("rejected when strict", func(t *testing.T) {
		result, err := Run(parse(t, detachedScenario+"options: {strict: true}\nexpect: {count: 0, error: shares no vertex}\n"))
		require.NoError(t, err)
		assert.True(t, result.Pass, "errors: %v", result.Errors)
		assert.Empty(t, result.Matches)
	})
}

func TestRunContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := parse(t, chainScenario+`
expect:
  error: context canceled
`)
	_, err := RunContext(ctx, s)
	// The store refuses to start a run on a cancelled context.
	assert.Error(t, err)
}

func TestSnapshot(t *testing.T) {
	r := NewResult()
	r.Matches = append(r.Matches, MatchResult{
		Ordinal:  1,
		Edges:    []string{"e1"},
		Graph:    "e1,0,X,Y,Logon\n",
		Bindings: map[string]string{"B": "Y", "A": "X"},
	})

	want := "scenario: s\nmatches: 1\n\n# match 1\ne1,0,X,Y,Logon\nA=X B=Y\n"
	assert.Equal(t, want, string(Snapshot("s", r)))
}
