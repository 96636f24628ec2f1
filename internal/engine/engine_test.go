package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tmotif/internal/graph"
	"github.com/roach88/tmotif/internal/testutil"
)

func matchNames(t *testing.T, results []*graph.EventGraph) [][]string {
	t.Helper()
	out := make([][]string, len(results))
	for i, r := range results {
		out[i] = testutil.EdgeNames(r)
	}
	return out
}

func TestMatch_WindowExcludesLateEdge(t *testing.T) {
	motif := testutil.Motif(t, "A->B", "B->C")
	g := testutil.Graph(t,
		"e1,0,X,Y,",
		"e2,1,Y,Z,",
		"e3,20,Y,Z,",
	)

	results, err := Match(context.Background(), g, motif, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, []string{"e1", "e2"}, testutil.EdgeNames(results[0]))
	assert.Equal(t, []string{"X", "Y", "Z"}, results[0].Vertices())
}

func TestMatch_SingleEdgeMotifMatchesEveryEdge(t *testing.T) {
	motif := testutil.Motif(t, "A->B")
	g := testutil.Graph(t,
		"a,0,X,Y,",
		"b,0,X,Y,",
		"c,5,Y,X,",
		"d,1000,Z,X,",
		"e,1000000,X,W,",
	)

	results, err := Match(context.Background(), g, motif, 0)
	require.NoError(t, err)
	assert.Len(t, results, g.NumEdges())
	assert.Equal(t, [][]string{{"a"}, {"b"}, {"c"}, {"d"}, {"e"}}, matchNames(t, results))
}

func TestMatch_EmptyMotifIsInvalid(t *testing.T) {
	g := testutil.Graph(t, "a,0,X,Y,")

	_, err := Match(context.Background(), g, graph.MustBuild(nil), 10)
	require.Error(t, err)
	assert.True(t, IsInvalidMotifError(err))
}

func TestMatch_Preconditions(t *testing.T) {
	g := testutil.Graph(t, "a,0,X,Y,")
	motif := testutil.Motif(t, "A->B")

	_, err := Match(context.Background(), nil, motif, 1)
	assert.ErrorIs(t, err, ErrNilGraph)

	_, err = Match(context.Background(), g, nil, 1)
	assert.ErrorIs(t, err, ErrNilGraph)

	_, err = Match(context.Background(), g, motif, -1)
	assert.ErrorIs(t, err, ErrNegativeDelta)
}

func TestMatch_NoMatchIsEmptyNotNil(t *testing.T) {
	motif := testutil.Motif(t, "A->B", "B->C")
	g := testutil.Graph(t, "a,0,X,Y,", "b,1,Z,W,")

	results, err := Match(context.Background(), g, motif, 100)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestMatch_EmptyGraph(t *testing.T) {
	results, err := Match(context.Background(), graph.MustBuild(nil), testutil.Motif(t, "A->B"), 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMatch_AlternativeCompletionsOfOnePrefix(t *testing.T) {
	motif := testutil.Motif(t, "A->B", "B->C")
	g := testutil.Graph(t,
		"e0,0,X,Y,",
		"e1,1,Y,Z,",
		"e2,2,Y,W,",
	)

	results, err := Match(context.Background(), g, motif, 10)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"e0", "e1"}, {"e0", "e2"}}, matchNames(t, results))
}

func TestMatch_ZeroDelta(t *testing.T) {
	motif := testutil.Motif(t, "A->B", "B->C")
	g := testutil.Graph(t,
		"a,5,X,Y,",
		"b,5,Y,Z,",
		"c,6,Y,Z,",
	)

	results, err := Match(context.Background(), g, motif, 0)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}}, matchNames(t, results))
}

func TestMatch_HugeDeltaDoesNotOverflow(t *testing.T) {
	motif := testutil.Motif(t, "A->B", "B->C")
	g := testutil.Graph(t,
		"a,9000000000000000000,X,Y,",
		"b,9100000000000000000,Y,Z,",
	)

	results, err := Match(context.Background(), g, motif, math.MaxInt64)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestMatch_EdgesFollowMotifOrderInTime(t *testing.T) {
	// B->C happens before A->B, so the ordered motif does not match.
	motif := testutil.Motif(t, "A->B", "B->C")
	g := testutil.Graph(t,
		"late,10,X,Y,",
		"early,1,Y,Z,",
	)

	results, err := Match(context.Background(), g, motif, 100)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMatch_DuplicateEdgesYieldIndependentMatches(t *testing.T) {
	motif := testutil.Motif(t, "A->B", "B->C")
	g := testutil.Graph(t,
		"a1,0,X,Y,Logon",
		"a2,0,X,Y,Logon",
		"b,3,Y,Z,",
	)

	results, err := Match(context.Background(), g, motif, 10)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a1", "b"}, {"a2", "b"}}, matchNames(t, results))
}

func TestMatch_TriangleSelfMatch(t *testing.T) {
	motif := testutil.Motif(t, "1->2", "2->3", "3->1")
	g := testutil.Graph(t,
		"1,1,1,2,",
		"2,2,2,3,",
		"3,3,3,1,",
	)

	results, err := Match(context.Background(), g, motif, 100)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "2", "3"}}, matchNames(t, results))
}

func TestMatch_GraphAgainstItself(t *testing.T) {
	g := testutil.Graph(t,
		"a,0,u,p,Logon",
		"b,4,p,f,File Open",
		"c,9,p,e,Send",
	)

	results, err := Match(context.Background(), g, g, 9)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, g.Edges(), results[0].Edges())
}

func TestMatch_TriangleCases(t *testing.T) {
	triangle := testutil.Motif(t, "a->b", "b->c", "c->a")

	tests := []struct {
		name  string
		graph []string
		want  [][]string
	}{
		{
			name:  "open triangle",
			graph: []string{"1,1,1,2,", "2,2,2,3,", "3,3,1,3,"},
			want:  [][]string{},
		},
		{
			name: "triangle after a dead end",
			graph: []string{
				"1,2,2,3,",
				"2,1,2,1,",
				"3,3,3,1,",
				"4,4,3,4,",
				"5,5,4,2,",
			},
			want: [][]string{{"1", "4", "5"}},
		},
		{
			name: "two triangles sharing a vertex",
			graph: []string{
				"0,0,0,1,",
				"1,1,1,2,",
				"2,2,2,0,",
				"3,3,2,3,",
				"4,4,3,1,",
			},
			want: [][]string{{"0", "1", "2"}, {"1", "3", "4"}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			results, err := Match(context.Background(), testutil.Graph(t, tc.graph...), triangle, 100)
			require.NoError(t, err)
			assert.Equal(t, tc.want, matchNames(t, results))
		})
	}
}

func TestMatch_Star(t *testing.T) {
	motif := testutil.Motif(t, "0->1", "0->2", "0->3")
	g := testutil.Graph(t,
		"0,0,0,1,",
		"1,1,0,2,",
		"2,2,1,2,",
		"3,3,0,3,",
	)

	results, err := Match(context.Background(), g, motif, 100)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"0", "1", "3"}}, matchNames(t, results))
}

// The edge C->D has no endpoint bound when it is reached. It is still
// searched after the cursor and inside the window.
func TestMatch_DisconnectedMotifKeepsCursorAndWindow(t *testing.T) {
	motif := testutil.Motif(t, "A->B", "C->D")

	t.Run("inside window", func(t *testing.T) {
		g := testutil.Graph(t,
			"e0,0,X,Y,",
			"e1,5,P,Q,",
			"e2,20,X,Y,",
		)
		results, err := Match(context.Background(), g, motif, 10)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"e0", "e1"}}, matchNames(t, results))
	})

	t.Run("outside window", func(t *testing.T) {
		g := testutil.Graph(t,
			"e0,0,X,Y,",
			"e1,50,P,Q,",
		)
		results, err := Match(context.Background(), g, motif, 10)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("never before the cursor", func(t *testing.T) {
		g := testutil.Graph(t,
			"e0,0,P,Q,",
			"e1,1,X,Y,",
		)
		results, err := Match(context.Background(), g, motif, 10)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"e0", "e1"}}, matchNames(t, results))
	})

	t.Run("rejected in strict mode", func(t *testing.T) {
		g := testutil.Graph(t, "e0,0,X,Y,", "e1,1,P,Q,")
		_, err := Match(context.Background(), g, motif, 10, WithStrictMotif())
		var me *InvalidMotifError
		require.ErrorAs(t, err, &me)
		assert.Equal(t, 1, me.Edge)
	})
}

func TestMatch_Injectivity(t *testing.T) {
	t.Run("two motif vertices never share a graph vertex", func(t *testing.T) {
		motif := testutil.Motif(t, "A->B", "C->B")
		g := testutil.Graph(t, "a,0,X,Y,", "b,1,X,Y,")

		results, err := Match(context.Background(), g, motif, 10)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("plain edge skips graph self-loop", func(t *testing.T) {
		motif := testutil.Motif(t, "A->B")
		g := testutil.Graph(t, "loop,0,X,X,", "plain,1,X,Y,")

		results, err := Match(context.Background(), g, motif, 10)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"plain"}}, matchNames(t, results))
	})

	t.Run("motif self-loop needs graph self-loop", func(t *testing.T) {
		motif := testutil.Motif(t, "A->A")
		g := testutil.Graph(t, "loop,0,X,X,", "plain,1,X,Y,")

		results, err := Match(context.Background(), g, motif, 10)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"loop"}}, matchNames(t, results))
	})

	t.Run("self-loop binding is released on backtrack", func(t *testing.T) {
		motif := testutil.Motif(t, "A->A", "A->B")
		g := testutil.Graph(t,
			"l1,0,X,X,",
			"l2,1,Y,Y,",
			"o,2,Y,Z,",
		)

		results, err := Match(context.Background(), g, motif, 10)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"l2", "o"}}, matchNames(t, results))
	})
}

func TestWalk_Bindings(t *testing.T) {
	motif := testutil.Motif(t, "user->pc", "pc->file")
	g := testutil.Graph(t,
		"1,0,alice,PC-1,Logon",
		"2,3,PC-1,secret.doc,File Open",
	)

	var got []Embedding
	_, err := Walk(context.Background(), g, motif, 10, func(e Embedding) error {
		got = append(got, e)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, []int{0, 1}, got[0].EdgeIndices)
	assert.Equal(t, map[string]string{
		"user": "alice",
		"pc":   "PC-1",
		"file": "secret.doc",
	}, got[0].Bindings)
}

func TestWalk_StopAndLimit(t *testing.T) {
	motif := testutil.Motif(t, "A->B")
	g := testutil.Graph(t, "a,0,X,Y,", "b,1,X,Y,", "c,2,X,Y,", "d,3,X,Y,")

	t.Run("ErrStop ends cleanly", func(t *testing.T) {
		calls := 0
		stats, err := Walk(context.Background(), g, motif, 0, func(Embedding) error {
			calls++
			if calls == 2 {
				return ErrStop
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.Equal(t, 1, stats.Embeddings)
	})

	t.Run("callback error is surfaced", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := Walk(context.Background(), g, motif, 0, func(Embedding) error { return boom })
		assert.ErrorIs(t, err, boom)
	})

	t.Run("limit", func(t *testing.T) {
		results, err := Match(context.Background(), g, motif, 0, WithLimit(3))
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"a"}, {"b"}, {"c"}}, matchNames(t, results))
	})
}

func TestWalk_Stats(t *testing.T) {
	motif := testutil.Motif(t, "A->B", "B->C")
	g := testutil.Graph(t,
		"e1,0,X,Y,",
		"e2,1,Y,Z,",
		"e3,20,Y,Z,",
	)

	stats, err := Walk(context.Background(), g, motif, 10, func(Embedding) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, Stats{Steps: 4, Embeddings: 1, Backtracks: 3}, stats)
}

func TestMatch_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := testutil.Graph(t, "a,0,X,Y,")
	_, err := Match(ctx, g, testutil.Motif(t, "A->B"), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMatch_CancelFromCallback(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g := testutil.Graph(t, "a,0,X,Y,", "b,1,X,Y,", "c,2,X,Y,")
	seen := 0
	_, err := Walk(ctx, g, testutil.Motif(t, "A->B"), 0, func(Embedding) error {
		seen++
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, seen)
}

func TestMatch_MaxSteps(t *testing.T) {
	motif := testutil.Motif(t, "A->B", "B->C")
	g := testutil.Graph(t,
		"e1,0,X,Y,",
		"e2,1,Y,Z,",
		"e3,20,Y,Z,",
	)

	_, err := Match(context.Background(), g, motif, 10, WithMaxSteps(2))
	require.Error(t, err)
	assert.True(t, IsStepsExceededError(err))

	var se *StepsExceededError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 3, se.Steps)
	assert.Equal(t, 2, se.Limit)

	results, err := Match(context.Background(), g, motif, 10, WithMaxSteps(5))
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

// randomGraph builds a deterministic pseudo-random graph over a small vertex
// set so that motifs match many times.
func randomGraph(t *testing.T, seed int64, vertices, edges int) *graph.EventGraph {
	t.Helper()
	r := rand.New(rand.NewSource(seed))

	out := make([]graph.Edge, edges)
	for i := range out {
		out[i] = graph.Edge{
			Name:      fmt.Sprintf("e%d", i),
			Timestamp: int64(r.Intn(200)),
			Tail:      fmt.Sprintf("v%d", r.Intn(vertices)),
			Head:      fmt.Sprintf("v%d", r.Intn(vertices)),
		}
	}
	return graph.MustBuild(out)
}

func TestWalk_Properties(t *testing.T) {
	motifs := map[string]*graph.EventGraph{
		"chain":    testutil.Motif(t, "A->B", "B->C", "C->D"),
		"fan-out":  testutil.Motif(t, "A->B", "A->C"),
		"cycle":    testutil.Motif(t, "A->B", "B->A"),
		"triangle": testutil.Motif(t, "A->B", "B->C", "C->A"),
		"repeat":   testutil.Motif(t, "A->B", "A->B"),
	}
	const delta = 40

	for seed := int64(1); seed <= 3; seed++ {
		g := randomGraph(t, seed, 6, 60)

		for name, m := range motifs {
			t.Run(fmt.Sprintf("%s/seed%d", name, seed), func(t *testing.T) {
				count := 0
				_, err := Walk(context.Background(), g, m, delta, func(e Embedding) error {
					count++
					require.Equal(t, m.NumEdges(), e.Graph.NumEdges())

					first, last := e.Graph.Span()
					assert.LessOrEqual(t, last-first, int64(delta), "window bound")

					images := map[string]string{}
					for mv, gv := range e.Bindings {
						if other, dup := images[gv]; dup {
							t.Fatalf("motif vertices %s and %s both map to %s", other, mv, gv)
						}
						images[gv] = mv
					}

					for i, gi := range e.EdgeIndices {
						if i > 0 {
							assert.Greater(t, gi, e.EdgeIndices[i-1])
						}
						me, ge := m.Edge(i), g.Edge(gi)
						assert.Equal(t, e.Bindings[me.Tail], ge.Tail)
						assert.Equal(t, e.Bindings[me.Head], ge.Head)
						assert.Equal(t, ge, e.Graph.Edge(i))
					}
					return nil
				})
				require.NoError(t, err)
				assert.Equal(t, bruteForceCount(g, m, delta), count)
			})
		}
	}
}

// bruteForceCount enumerates increasing index tuples directly and counts
// those forming an injective, structure-preserving, in-window embedding.
func bruteForceCount(g, m *graph.EventGraph, delta int64) int {
	count := 0
	picked := make([]int, 0, m.NumEdges())

	var rec func(start int)
	rec = func(start int) {
		if len(picked) == m.NumEdges() {
			if embeds(g, m, picked, delta) {
				count++
			}
			return
		}
		for e := start; e < g.NumEdges(); e++ {
			picked = append(picked, e)
			rec(e + 1)
			picked = picked[:len(picked)-1]
		}
	}
	rec(0)
	return count
}

func embeds(g, m *graph.EventGraph, picked []int, delta int64) bool {
	if g.Timestamp(picked[len(picked)-1])-g.Timestamp(picked[0]) > delta {
		return false
	}
	m2g := map[int]int{}
	g2m := map[int]int{}
	bindOne := func(mv, gv int) bool {
		if x, ok := m2g[mv]; ok && x != gv {
			return false
		}
		if x, ok := g2m[gv]; ok && x != mv {
			return false
		}
		m2g[mv], g2m[gv] = gv, mv
		return true
	}
	for i, e := range picked {
		uM, vM := m.EdgeEndpoints(i)
		uG, vG := g.EdgeEndpoints(e)
		if !bindOne(uM, uG) || !bindOne(vM, vG) {
			return false
		}
	}
	return true
}

func TestMatch_ConcurrentSearchesShareGraph(t *testing.T) {
	g := randomGraph(t, 7, 5, 40)
	motifs := []*graph.EventGraph{
		testutil.Motif(t, "A->B"),
		testutil.Motif(t, "A->B", "B->C"),
		testutil.Motif(t, "A->B", "B->A"),
	}

	want := make([]int, len(motifs))
	for i, m := range motifs {
		res, err := Match(context.Background(), g, m, 30)
		require.NoError(t, err)
		want[i] = len(res)
	}

	var wg sync.WaitGroup
	got := make([]int, len(motifs))
	for i, m := range motifs {
		wg.Add(1)
		go func(i int, m *graph.EventGraph) {
			defer wg.Done()
			res, err := Match(context.Background(), g, m, 30)
			if err == nil {
				got[i] = len(res)
			}
		}(i, m)
	}
	wg.Wait()

	assert.Equal(t, want, got)
}
