package harness

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/tmotif/internal/compiler"
	"github.com/roach88/tmotif/internal/engine"
	"github.com/roach88/tmotif/internal/graph"
	"github.com/roach88/tmotif/internal/store"
	"github.com/roach88/tmotif/internal/testutil"
)

// Harness is the scenario execution engine.
// Each scenario gets its own in-memory store and a fixed run id.
type Harness struct {
	store  *store.Store
	runIDs store.RunIDGenerator
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Create fresh in-memory database
//  2. Decode the graph and compile the motif
//  3. Search, recording every embedding as it is found
//  4. Read the matches back from the store
//  5. Evaluate expectations
//
// A search failure is part of the result, checked against expect.error.
// Run returns an error only when the scenario cannot be executed at all.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		runIDs: testutil.NewFixedRunIDGenerator(scenario.RunID),
		logger: slog.New(slog.DiscardHandler),
	}

	result, err := h.execute(ctx, scenario)
	if err != nil {
		return nil, err
	}

	for _, msg := range EvaluateExpectations(result, scenario.Expect) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) execute(ctx context.Context, s *Scenario) (*Result, error) {
	g, err := graph.Decode(strings.NewReader(s.Graph))
	if err != nil {
		return nil, fmt.Errorf("scenario graph: %w", err)
	}

	motif, err := compiler.Definition{Name: s.Name, Edges: s.Motif}.Compile()
	if err != nil {
		return nil, fmt.Errorf("scenario motif: %w", err)
	}

	run, err := h.store.BeginRun(ctx, h.runIDs, store.RunSpec{
		Motif: s.Name,
		Graph: "scenario:" + s.Name,
		Delta: *s.Delta,
	})
	if err != nil {
		return nil, err
	}

	opts := []engine.Option{
		engine.WithLogger(h.logger),
		engine.WithLimit(s.Options.Limit),
		engine.WithMaxSteps(s.Options.MaxSteps),
	}
	if s.Options.Strict {
		opts = append(opts, engine.WithStrictMotif())
	}

	var recordErr error
	stats, searchErr := engine.Walk(ctx, g, motif.Graph, *s.Delta, func(emb engine.Embedding) error {
		if _, _, err := h.store.RecordMatch(ctx, run.ID, emb.Graph, emb.Bindings); err != nil {
			recordErr = err
			return err
		}
		return nil
	}, opts...)
	if recordErr != nil {
		return nil, fmt.Errorf("recording match: %w", recordErr)
	}

	status, msg := store.RunCompleted, ""
	if searchErr != nil {
		status, msg = store.RunFailed, searchErr.Error()
	}
	if err := h.store.FinishRun(ctx, run.ID, status, msg); err != nil {
		return nil, err
	}

	matches, err := h.store.ReadMatches(ctx, run.ID)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	result.RunID = run.ID
	result.Stats = stats
	result.SearchError = msg
	for _, m := range matches {
		mr, err := toMatchResult(m)
		if err != nil {
			return nil, err
		}
		result.Matches = append(result.Matches, mr)
	}

	h.logger.Debug("scenario executed",
		"scenario", s.Name,
		"matches", len(result.Matches),
		"steps", stats.Steps,
		"error", searchErr,
	)
	return result, nil
}

func toMatchResult(m store.Match) (MatchResult, error) {
	var sb strings.Builder
	if err := graph.Encode(&sb, m.Graph); err != nil {
		return MatchResult{}, fmt.Errorf("encoding match %d: %w", m.Ordinal, err)
	}

	edges := make([]string, m.Graph.NumEdges())
	for i := range edges {
		edges[i] = m.Graph.Edge(i).Name
	}

	return MatchResult{
		Ordinal:  m.Ordinal,
		Edges:    edges,
		Graph:    sb.String(),
		Bindings: m.Bindings,
	}, nil
}
