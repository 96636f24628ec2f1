package engine

import "github.com/roach88/tmotif/internal/graph"

// Embedding is one match of a motif inside a graph.
type Embedding struct {
	// Graph holds copies of the matched edges, in motif-edge order (which is
	// also timestamp order), and the vertices they touch.
	Graph *graph.EventGraph

	// EdgeIndices are the matched edge indices in the searched graph;
	// EdgeIndices[i] is the image of motif edge i.
	EdgeIndices []int

	// Bindings maps each motif vertex name to its graph vertex name.
	Bindings map[string]string
}

// collect materialises the embedding made of the match stack plus the final
// edge. The current bindings cover every motif vertex except possibly the
// endpoints of the last motif edge, which are taken from the final edge.
func (s *search) collect(final int) Embedding {
	indices := make([]int, 0, len(s.stack)+1)
	indices = append(indices, s.stack...)
	indices = append(indices, final)

	names := make(map[string]string, s.m.NumVertices())
	for mv, gv := range s.b.motifToGraph {
		if gv != unbound {
			names[s.m.Vertex(mv)] = s.g.Vertex(gv)
		}
	}
	uM, vM := s.m.EdgeEndpoints(s.m.NumEdges() - 1)
	u, v := s.g.EdgeEndpoints(final)
	names[s.m.Vertex(uM)] = s.g.Vertex(u)
	names[s.m.Vertex(vM)] = s.g.Vertex(v)

	return Embedding{
		Graph:       s.g.Sub(indices),
		EdgeIndices: indices,
		Bindings:    names,
	}
}
