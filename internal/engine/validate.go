package engine

import "github.com/roach88/tmotif/internal/graph"

// ValidateMotif checks that m can drive a connected search: it has at least
// one edge, and every edge after the first shares a vertex with some earlier
// edge.
//
// Match only requires the first condition. A motif failing the second is
// still searchable but its detached edges are matched against any edge in
// the window; see WithStrictMotif.
func ValidateMotif(m *graph.EventGraph) error {
	if m == nil {
		return ErrNilGraph
	}
	if m.NumEdges() == 0 {
		return &InvalidMotifError{Edge: -1, Reason: "motif has no edges"}
	}

	seen := make([]bool, m.NumVertices())
	u, v := m.EdgeEndpoints(0)
	seen[u], seen[v] = true, true

	for i := 1; i < m.NumEdges(); i++ {
		u, v := m.EdgeEndpoints(i)
		if !seen[u] && !seen[v] {
			return &InvalidMotifError{
				Edge:   i,
				Reason: "edge " + m.Edge(i).Name + " shares no vertex with earlier edges",
			}
		}
		seen[u], seen[v] = true, true
	}
	return nil
}
