package engine

import "math"

// unbound marks a vertex without a binding.
const unbound = -1

// noWindow is the window bound while the match stack is empty.
const noWindow = math.MaxInt64

// bindings holds the mutual motif/graph vertex mapping of the current
// partial match.
//
// refs[v] counts the matched graph edges touching graph vertex v; the binding
// of v is released when the count drops to zero.
type bindings struct {
	graphToMotif []int
	motifToGraph []int
	refs         []int
}

func newBindings(graphVertices, motifVertices int) *bindings {
	b := &bindings{
		graphToMotif: make([]int, graphVertices),
		motifToGraph: make([]int, motifVertices),
		refs:         make([]int, graphVertices),
	}
	for i := range b.graphToMotif {
		b.graphToMotif[i] = unbound
	}
	for i := range b.motifToGraph {
		b.motifToGraph[i] = unbound
	}
	return b
}

// bind records the edge (uG, vG) as the image of motif edge (uM, vM).
func (b *bindings) bind(uM, vM, uG, vG int) {
	b.graphToMotif[uG] = uM
	b.graphToMotif[vG] = vM
	b.motifToGraph[uM] = uG
	b.motifToGraph[vM] = vG
	b.refs[uG]++
	b.refs[vG]++
}

// release drops one reference to graph vertex v and unbinds it in both
// directions once nothing references it.
func (b *bindings) release(v int) {
	b.refs[v]--
	if b.refs[v] > 0 {
		return
	}
	// A self-loop releases the same vertex twice.
	if m := b.graphToMotif[v]; m != unbound {
		b.motifToGraph[m] = unbound
		b.graphToMotif[v] = unbound
	}
}

// saturatingAdd returns a+b, clamped to noWindow on overflow. b is never
// negative.
func saturatingAdd(a, b int64) int64 {
	if a > 0 && b > noWindow-a {
		return noWindow
	}
	return a + b
}
