package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/tmotif/internal/graph"
)

// Stats summarises one search.
type Stats struct {
	Steps      int // main-loop iterations
	Embeddings int // embeddings delivered
	Backtracks int // stack pops
}

// search is the per-call state of one Walk. It is never shared.
type search struct {
	ctx   context.Context
	g, m  *graph.EventGraph
	delta int64

	b      *bindings
	stack  []int // matched graph edges, one per confirmed motif edge
	window int64 // timestamp ceiling for candidates
	budget *stepBudget
	stats  Stats
}

// Match returns every embedding of motif in g whose edges span at most
// delta, as freshly built graphs in discovery order.
//
// An empty result is a normal outcome, not an error. See Walk for the
// failure modes.
func Match(ctx context.Context, g, motif *graph.EventGraph, delta int64, opts ...Option) ([]*graph.EventGraph, error) {
	results := []*graph.EventGraph{}
	_, err := Walk(ctx, g, motif, delta, func(emb Embedding) error {
		results = append(results, emb.Graph)
		return nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Walk runs the search and hands each embedding to fn as soon as it is
// found.
//
// Walk fails before searching when g or motif is nil (ErrNilGraph), delta is
// negative (ErrNegativeDelta) or the motif has no edges (*InvalidMotifError).
// During the search it stops with the context's error on cancellation, with a
// *StepsExceededError when the step budget runs out, or with the first error
// returned by fn. Returning ErrStop from fn ends the search with a nil error.
func Walk(ctx context.Context, g, motif *graph.EventGraph, delta int64, fn func(Embedding) error, opts ...Option) (Stats, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if g == nil || motif == nil {
		return Stats{}, ErrNilGraph
	}
	if delta < 0 {
		return Stats{}, ErrNegativeDelta
	}
	if motif.NumEdges() == 0 {
		return Stats{}, &InvalidMotifError{Edge: -1, Reason: "motif has no edges"}
	}
	if o.strict {
		if err := ValidateMotif(motif); err != nil {
			return Stats{}, err
		}
	}

	s := &search{
		ctx:    ctx,
		g:      g,
		m:      motif,
		delta:  delta,
		b:      newBindings(g.NumVertices(), motif.NumVertices()),
		stack:  make([]int, 0, motif.NumEdges()),
		window: noWindow,
		budget: newStepBudget(o.maxSteps),
	}

	o.logger.Debug("search started",
		"graph_edges", g.NumEdges(),
		"graph_vertices", g.NumVertices(),
		"motif_edges", motif.NumEdges(),
		"delta", delta,
	)

	emit := func(final int) error {
		if err := fn(s.collect(final)); err != nil {
			return err
		}
		s.stats.Embeddings++
		if o.limit > 0 && s.stats.Embeddings >= o.limit {
			return ErrStop
		}
		return nil
	}

	err := s.run(emit)
	if errors.Is(err, ErrStop) {
		err = nil
	}

	o.logger.Debug("search finished",
		"embeddings", s.stats.Embeddings,
		"steps", s.stats.Steps,
		"backtracks", s.stats.Backtracks,
		"error", err,
	)

	return s.stats, err
}

// run is the backtracking main loop.
func (s *search) run(emit func(final int) error) error {
	n := s.g.NumEdges()
	last := s.m.NumEdges() - 1
	eG, eM := 0, 0

	for {
		if err := s.ctx.Err(); err != nil {
			return fmt.Errorf("search cancelled after %d steps: %w", s.stats.Steps, err)
		}
		if err := s.budget.Check(); err != nil {
			return err
		}
		s.stats.Steps++

		eG = s.findNextCandidate(eM, eG)
		if eG < n {
			if eM == last {
				if err := emit(eG); err != nil {
					return err
				}
			} else {
				s.push(eM, eG)
				eM++
			}
		}
		eG++

		for eG >= n || s.g.Timestamp(eG) > s.window {
			if len(s.stack) == 0 {
				return nil
			}
			eG = s.pop() + 1
			eM--
		}
	}
}

// push binds the endpoints of graph edge eG to those of motif edge eM and
// records eG on the match stack. The first push opens the time window.
func (s *search) push(eM, eG int) {
	uM, vM := s.m.EdgeEndpoints(eM)
	uG, vG := s.g.EdgeEndpoints(eG)
	s.b.bind(uM, vM, uG, vG)

	if len(s.stack) == 0 {
		s.window = saturatingAdd(s.g.Timestamp(eG), s.delta)
	}
	s.stack = append(s.stack, eG)
}

// pop removes the most recent match, releases bindings nothing else
// references and returns the popped graph edge.
func (s *search) pop() int {
	top := len(s.stack) - 1
	e := s.stack[top]
	s.stack = s.stack[:top]
	if len(s.stack) == 0 {
		s.window = noWindow
	}

	u, v := s.g.EdgeEndpoints(e)
	s.b.release(u)
	s.b.release(v)
	s.stats.Backtracks++
	return e
}
