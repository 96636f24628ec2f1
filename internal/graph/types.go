package graph

import "fmt"

// Edge is one timestamped, directed event between two named vertices.
type Edge struct {
	// Name identifies the edge. Unique within a graph.
	Name string

	// Timestamp is the ordering key. Any monotonic integer clock works;
	// ingested activity logs use Unix milliseconds.
	Timestamp int64

	// Tail is the source vertex name.
	Tail string

	// Head is the target vertex name.
	Head string

	// Kind labels the edge (e.g. "Logon", "Attach"). Diagnostic only:
	// matching never looks at it.
	Kind string
}

func (e Edge) String() string {
	return fmt.Sprintf("%s@%d %s->%s", e.Name, e.Timestamp, e.Tail, e.Head)
}

// EventGraph is an immutable, timestamp-sorted edge list with its derived
// vertex set.
//
// Vertices are addressed by dense indices in first-appearance order. The
// per-vertex incidence lists hold edge indices in ascending order, which is
// also ascending timestamp order.
type EventGraph struct {
	edges    []Edge
	vertices []string
	index    map[string]int

	// ends[i] holds the tail and head vertex indices of edges[i].
	ends [][2]int

	out [][]int
	in  [][]int
}

// NumEdges returns the number of edges.
func (g *EventGraph) NumEdges() int {
	return len(g.edges)
}

// NumVertices returns the number of distinct vertices.
func (g *EventGraph) NumVertices() int {
	return len(g.vertices)
}

// Edge returns the i-th edge in timestamp order.
func (g *EventGraph) Edge(i int) Edge {
	return g.edges[i]
}

// Timestamp returns the timestamp of the i-th edge.
func (g *EventGraph) Timestamp(i int) int64 {
	return g.edges[i].Timestamp
}

// Edges returns a copy of the edge list in timestamp order.
func (g *EventGraph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Vertex returns the name of vertex v.
func (g *EventGraph) Vertex(v int) string {
	return g.vertices[v]
}

// Vertices returns a copy of the vertex names in first-appearance order.
func (g *EventGraph) Vertices() []string {
	out := make([]string, len(g.vertices))
	copy(out, g.vertices)
	return out
}

// VertexIndex returns the index of the named vertex.
func (g *EventGraph) VertexIndex(name string) (int, bool) {
	v, ok := g.index[name]
	return v, ok
}

// EdgeEndpoints returns the tail and head vertex indices of edge i.
func (g *EventGraph) EdgeEndpoints(i int) (tail, head int) {
	e := g.ends[i]
	return e[0], e[1]
}

// OutEdges returns the indices of edges leaving v, ascending.
// The returned slice is shared and must not be modified.
func (g *EventGraph) OutEdges(v int) []int {
	return g.out[v]
}

// InEdges returns the indices of edges entering v, ascending.
// The returned slice is shared and must not be modified.
func (g *EventGraph) InEdges(v int) []int {
	return g.in[v]
}

// Span returns the smallest and largest timestamps in the graph.
// Both are zero for an empty graph.
func (g *EventGraph) Span() (first, last int64) {
	if len(g.edges) == 0 {
		return 0, 0
	}
	return g.edges[0].Timestamp, g.edges[len(g.edges)-1].Timestamp
}

func (g *EventGraph) String() string {
	return fmt.Sprintf("EventGraph: %d vertices, %d edges", len(g.vertices), len(g.edges))
}
