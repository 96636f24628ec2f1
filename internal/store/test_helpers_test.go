package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/tmotif/internal/graph"
	"github.com/roach88/tmotif/internal/testutil"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// beginTestRun starts a run with a fixed id.
func beginTestRun(t *testing.T, s *Store, id string) Run {
	t.Helper()
	run, err := s.BeginRun(context.Background(), testutil.NewFixedRunIDGenerator(id), RunSpec{
		Motif: "chain",
		Graph: "graph.txt",
		Delta: 10,
	})
	require.NoError(t, err)
	return run
}

// chainMatch is a two-edge match X->Y->Z with its bindings.
func chainMatch(t *testing.T, first, second string) (*graph.EventGraph, map[string]string) {
	t.Helper()
	g := testutil.Graph(t,
		first+",0,X,Y,Logon",
		second+",4,Y,Z,",
	)
	return g, map[string]string{"A": "X", "B": "Y", "C": "Z"}
}
