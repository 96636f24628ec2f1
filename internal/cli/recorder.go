package cli

import (
	"context"
	"log/slog"

	"github.com/roach88/tmotif/internal/engine"
	"github.com/roach88/tmotif/internal/store"
)

// recorder persists the runs of one match invocation, one run per searched
// graph. Without --db it only numbers matches.
type recorder struct {
	st  *store.Store
	ids store.RunIDGenerator
}

func openRecorder(opts *MatchOptions) (*recorder, error) {
	if opts.Database == "" {
		return &recorder{}, nil
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, err
	}

	ids := opts.RunIDs
	if ids == nil {
		ids = store.UUIDv7Generator{}
	}
	return &recorder{st: st, ids: ids}, nil
}

// begin starts a run for one graph.
func (r *recorder) begin(ctx context.Context, spec store.RunSpec) (*runRecord, error) {
	if r.st == nil {
		return &runRecord{}, nil
	}
	run, err := r.st.BeginRun(ctx, r.ids, spec)
	if err != nil {
		return nil, err
	}
	return &runRecord{st: r.st, run: run}, nil
}

func (r *recorder) close(logger *slog.Logger) {
	if r.st == nil {
		return
	}
	if err := r.st.Close(); err != nil {
		logger.Error("error closing database", "error", err)
	}
}

// runRecord is one recorded run, or a no-op without a store.
type runRecord struct {
	st  *store.Store
	run store.Run
}

func (r *runRecord) id() string {
	return r.run.ID
}

// record stores emb and returns its ordinal. next is the ordinal used when
// nothing is stored.
func (r *runRecord) record(ctx context.Context, emb engine.Embedding, next int) (int, error) {
	if r.st == nil {
		return next, nil
	}
	ordinal, _, err := r.st.RecordMatch(ctx, r.run.ID, emb.Graph, emb.Bindings)
	return ordinal, err
}

// finish marks the run completed, or failed with searchErr.
func (r *runRecord) finish(ctx context.Context, searchErr error) error {
	if r.st == nil {
		return nil
	}
	if searchErr != nil {
		return r.st.FinishRun(ctx, r.run.ID, store.RunFailed, searchErr.Error())
	}
	return r.st.FinishRun(ctx, r.run.ID, store.RunCompleted, "")
}
