package engine

import "sort"

// findNextCandidate returns the index of the first graph edge at or after eG
// that can stand for motif edge eM, or the graph's edge count when there is
// none.
//
// A candidate must lie inside the window (timestamp <= s.window) and agree
// with the current bindings:
//   - a bound motif endpoint pins the graph endpoint to its image;
//   - an unbound motif endpoint needs an unbound graph endpoint;
//   - a motif self-loop needs a graph self-loop and vice versa.
//
// The last rule keeps the mapping injective: without it two distinct motif
// vertices could both land on one graph vertex through a graph self-loop.
//
// When an endpoint is bound only the incidence list of its image is scanned.
// Incidence lists are ascending edge indices, so the result is the same as a
// scan over all edges. With no endpoint bound every edge after the cursor is
// eligible, under the same cursor and window filter.
func (s *search) findNextCandidate(eM, eG int) int {
	n := s.g.NumEdges()
	uM, vM := s.m.EdgeEndpoints(eM)
	uG := s.b.motifToGraph[uM]
	vG := s.b.motifToGraph[vM]

	var scan []int
	switch {
	case uG != unbound:
		scan = s.g.OutEdges(uG)
	case vG != unbound:
		scan = s.g.InEdges(vG)
	default:
		for e := eG; e < n; e++ {
			if s.g.Timestamp(e) > s.window {
				break
			}
			if s.consistent(e, uM, vM, uG, vG) {
				return e
			}
		}
		return n
	}

	for _, e := range scan[sort.SearchInts(scan, eG):] {
		if s.g.Timestamp(e) > s.window {
			break
		}
		if s.consistent(e, uM, vM, uG, vG) {
			return e
		}
	}
	return n
}

// consistent reports whether graph edge e may extend the partial match as
// the image of motif edge (uM, vM), whose endpoints are currently bound to
// (uG, vG) or unbound.
func (s *search) consistent(e, uM, vM, uG, vG int) bool {
	u, v := s.g.EdgeEndpoints(e)

	if uG != unbound {
		if u != uG {
			return false
		}
	} else if s.b.graphToMotif[u] != unbound {
		return false
	}

	if vG != unbound {
		if v != vG {
			return false
		}
	} else if s.b.graphToMotif[v] != unbound {
		return false
	}

	return (uM == vM) == (u == v)
}
