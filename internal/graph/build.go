package graph

import "sort"

// Build constructs an EventGraph from edges given in any order.
//
// Edges are copied, stable-sorted by timestamp and scanned once to derive the
// vertex list. Every edge needs a name, a tail and a head, and names must be
// unique. An empty input yields an empty graph; callers that need edges use
// RequireEdges.
func Build(edges []Edge) (*EventGraph, error) {
	sorted := make([]Edge, len(edges))
	copy(sorted, edges)

	seen := make(map[string]struct{}, len(sorted))
	for i, e := range sorted {
		switch {
		case e.Name == "":
			return nil, &InvalidEdgeError{Index: i, Reason: "missing name"}
		case e.Tail == "":
			return nil, &InvalidEdgeError{Index: i, Reason: "missing tail"}
		case e.Head == "":
			return nil, &InvalidEdgeError{Index: i, Reason: "missing head"}
		}
		if _, dup := seen[e.Name]; dup {
			return nil, &DuplicateEdgeError{Name: e.Name}
		}
		seen[e.Name] = struct{}{}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	return fromSorted(sorted), nil
}

// MustBuild is like Build but panics on error.
// Use only in tests or with literal edge lists.
func MustBuild(edges []Edge) *EventGraph {
	g, err := Build(edges)
	if err != nil {
		panic(err)
	}
	return g
}

// fromSorted derives vertices, the name index and incidence lists from edges
// already in timestamp order. It takes ownership of the slice.
func fromSorted(edges []Edge) *EventGraph {
	g := &EventGraph{
		edges: edges,
		index: make(map[string]int),
		ends:  make([][2]int, len(edges)),
	}

	for i, e := range edges {
		tail := g.addVertex(e.Tail)
		head := g.addVertex(e.Head)
		g.ends[i] = [2]int{tail, head}
		g.out[tail] = append(g.out[tail], i)
		g.in[head] = append(g.in[head], i)
	}

	return g
}

// addVertex returns the index of name, creating the vertex on first sight.
// Adding an existing name is a no-op.
func (g *EventGraph) addVertex(name string) int {
	if v, ok := g.index[name]; ok {
		return v
	}
	v := len(g.vertices)
	g.vertices = append(g.vertices, name)
	g.index[name] = v
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	return v
}

// Sub builds a new graph holding copies of the edges at the given indices.
//
// The vertex list is derived from the selected edges only. Indices are taken
// in ascending order, so the result keeps the parent's timestamp order. The
// result shares no state with g.
func (g *EventGraph) Sub(indices []int) *EventGraph {
	idx := make([]int, len(indices))
	copy(idx, indices)
	sort.Ints(idx)

	edges := make([]Edge, len(idx))
	for i, e := range idx {
		edges[i] = g.edges[e]
	}
	return fromSorted(edges)
}

// RequireEdges returns an *EmptyInputError naming what if g has no edges.
func RequireEdges(g *EventGraph, what string) error {
	if g == nil || len(g.edges) == 0 {
		return &EmptyInputError{What: what}
	}
	return nil
}
