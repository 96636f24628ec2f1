package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/tmotif/internal/engine"
)

// GoldenDir is where golden snapshots live, relative to the test's package.
const GoldenDir = "testdata/golden"

// Snapshot renders a result deterministically: every match as its ordinal,
// its edges in the persisted text format and its sorted bindings.
//
//	scenario: chain
//	matches: 1
//
//	# match 1
//	e1,0,X,Y,
//	e2,1,Y,Z,
//	A=X B=Y C=Z
func Snapshot(name string, r *Result) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "scenario: %s\n", name)
	fmt.Fprintf(&sb, "matches: %d\n", len(r.Matches))
	if r.SearchError != "" {
		fmt.Fprintf(&sb, "error: %s\n", r.SearchError)
	}

	for _, m := range r.Matches {
		_ = engine.WriteMatch(&sb, m.Ordinal, m.Graph, m.Bindings)
	}
	return []byte(sb.String())
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an existing result against its golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, Snapshot(name, result))
}
