// Package testutil holds helpers shared by tests across packages.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/roach88/tmotif/internal/graph"
)

// Graph builds an event graph from lines in the persisted text format
// ("name,timestamp,tail,head,kind"), failing the test on any error.
//
//	g := testutil.Graph(t,
//	    "e1,0,X,Y,",
//	    "e2,1,Y,Z,",
//	)
func Graph(t testing.TB, lines ...string) *graph.EventGraph {
	t.Helper()

	g, err := graph.Decode(strings.NewReader(strings.Join(lines, "\n")))
	if err != nil {
		t.Fatalf("testutil.Graph: %v", err)
	}
	return g
}

// Motif builds a motif from "tail->head" pairs. Edge i is named "m<i>" and
// stamped i, so the declaration order is the search order.
//
//	m := testutil.Motif(t, "A->B", "B->C")
func Motif(t testing.TB, pairs ...string) *graph.EventGraph {
	t.Helper()

	edges := make([]graph.Edge, 0, len(pairs))
	for i, p := range pairs {
		tail, head, ok := strings.Cut(p, "->")
		if !ok {
			t.Fatalf("testutil.Motif: %q is not tail->head", p)
		}
		edges = append(edges, graph.Edge{
			Name:      fmt.Sprintf("m%d", i),
			Timestamp: int64(i),
			Tail:      strings.TrimSpace(tail),
			Head:      strings.TrimSpace(head),
		})
	}

	g, err := graph.Build(edges)
	if err != nil {
		t.Fatalf("testutil.Motif: %v", err)
	}
	return g
}

// EdgeNames returns the edge names of g in order.
func EdgeNames(g *graph.EventGraph) []string {
	names := make([]string, g.NumEdges())
	for i := range names {
		names[i] = g.Edge(i).Name
	}
	return names
}
