package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tmotif/internal/testutil"
)

func TestListRuns(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)

	// Ids sort opposite to creation; seq still wins.
	beginTestRun(t, s, "zzz")
	beginTestRun(t, s, "aaa")

	runs, err = s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "zzz", runs[0].ID)
	assert.Equal(t, "aaa", runs[1].ID)
}

func TestGetRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestReadMatches_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	run := beginTestRun(t, s, "run-1")

	g1, b1 := chainMatch(t, "e1", "e2")
	g2, b2 := chainMatch(t, "e1", "e3")
	_, _, err := s.RecordMatch(ctx, run.ID, g1, b1)
	require.NoError(t, err)
	_, _, err = s.RecordMatch(ctx, run.ID, g2, b2)
	require.NoError(t, err)

	matches, err := s.ReadMatches(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, 1, matches[0].Ordinal)
	assert.Equal(t, run.ID, matches[0].RunID)
	assert.Equal(t, Fingerprint(g1), matches[0].Fingerprint)
	assert.Equal(t, int64(0), matches[0].FirstTS)
	assert.Equal(t, int64(4), matches[0].LastTS)
	assert.Equal(t, g1.Edges(), matches[0].Graph.Edges())
	assert.Equal(t, b1, matches[0].Bindings)

	assert.Equal(t, 2, matches[1].Ordinal)
	assert.Equal(t, []string{"e1", "e3"}, testutil.EdgeNames(matches[1].Graph))
}

func TestReadMatches_Empty(t *testing.T) {
	s := createTestStore(t)
	run := beginTestRun(t, s, "run-1")

	matches, err := s.ReadMatches(context.Background(), run.ID)
	require.NoError(t, err)
	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}
