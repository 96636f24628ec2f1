package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/roach88/tmotif/internal/graph"
)

// BeginRun records a new run in the running state and returns it.
// The run gets the next logical seq; ids come from ids.
func (s *Store) BeginRun(ctx context.Context, ids RunIDGenerator, spec RunSpec) (Run, error) {
	if spec.Delta < 0 {
		return Run{}, fmt.Errorf("begin run: delta must be non-negative, got %d", spec.Delta)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("begin run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&seq); err != nil {
		return Run{}, fmt.Errorf("begin run: next seq: %w", err)
	}

	run := Run{
		ID:     ids.Generate(),
		Seq:    seq,
		Motif:  spec.Motif,
		Graph:  spec.Graph,
		Delta:  spec.Delta,
		Status: RunRunning,
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, seq, motif, graph, delta, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.Seq, run.Motif, run.Graph, run.Delta, string(run.Status))
	if err != nil {
		return Run{}, fmt.Errorf("begin run: insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("begin run: commit: %w", err)
	}
	return run, nil
}

// RecordMatch stores one embedding of a run: the matched edges (in motif-edge
// order) and the vertex bindings. It returns the match's ordinal and whether a
// new row was inserted.
//
// Uses ON CONFLICT DO NOTHING on (run_id, fingerprint) for idempotency: recording
// the same embedding again returns the existing ordinal and inserted=false.
//
// Note: The run must exist (foreign key constraint).
func (s *Store) RecordMatch(ctx context.Context, runID string, m *graph.EventGraph, bindings map[string]string) (ordinal int, inserted bool, err error) {
	if m == nil || m.NumEdges() == 0 {
		return 0, false, fmt.Errorf("record match: %w", &graph.EmptyInputError{What: "match"})
	}

	fp := Fingerprint(m)
	id := matchID(runID, fp)
	first, last := m.Span()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("record match: begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO matches (id, run_id, ordinal, fingerprint, first_ts, last_ts)
		SELECT ?, ?, COALESCE(MAX(ordinal), 0) + 1, ?, ?, ?
		FROM matches WHERE run_id = ?
		ON CONFLICT DO NOTHING
	`, id, runID, fp, first, last, runID)
	if err != nil {
		return 0, false, fmt.Errorf("record match: insert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("record match: rows affected: %w", err)
	}
	inserted = rowsAffected > 0

	if inserted {
		for i, e := range m.Edges() {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO match_edges (match_id, position, name, timestamp, tail, head, kind)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, id, i, e.Name, e.Timestamp, e.Tail, e.Head, e.Kind)
			if err != nil {
				return 0, false, fmt.Errorf("record match: insert edge %d: %w", i, err)
			}
		}

		// Sorted for a deterministic insert order.
		vertices := make([]string, 0, len(bindings))
		for mv := range bindings {
			vertices = append(vertices, mv)
		}
		sort.Strings(vertices)
		for _, mv := range vertices {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO match_bindings (match_id, motif_vertex, graph_vertex)
				VALUES (?, ?, ?)
			`, id, mv, bindings[mv])
			if err != nil {
				return 0, false, fmt.Errorf("record match: insert binding %s: %w", mv, err)
			}
		}
	}

	if err := tx.QueryRowContext(ctx, `SELECT ordinal FROM matches WHERE id = ?`, id).Scan(&ordinal); err != nil {
		return 0, false, fmt.Errorf("record match: select ordinal: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("record match: commit: %w", err)
	}
	return ordinal, inserted, nil
}

// FinishRun sets the final status of a run and refreshes its match count.
// errMsg is stored for failed runs and may be empty.
func (s *Store) FinishRun(ctx context.Context, runID string, status RunStatus, errMsg string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET status = ?,
		    error = ?,
		    match_count = (SELECT COUNT(*) FROM matches WHERE run_id = runs.id)
		WHERE id = ?
	`, string(status), errMsg, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}
