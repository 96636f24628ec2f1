package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/tmotif/internal/graph"
)

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// ListRuns returns all runs ordered by seq.
//
// Returns an empty slice (not nil) if there are no runs.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, motif, graph, delta, status, match_count, error
		FROM runs
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun retrieves a single run by id.
// Returns an error wrapping ErrRunNotFound if there is none.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, motif, graph, delta, status, match_count, error
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("get run %s: %w", id, ErrRunNotFound)
	}
	return run, err
}

// ReadMatches returns the matches of a run ordered by ordinal, with their
// graphs rebuilt from the stored edges.
//
// Returns an empty slice (not nil) if the run has no matches.
func (s *Store) ReadMatches(ctx context.Context, runID string) ([]Match, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, ordinal, fingerprint, first_ts, last_ts
		FROM matches
		WHERE run_id = ?
		ORDER BY ordinal ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}

	matches := []Match{}
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.ID, &m.RunID, &m.Ordinal, &m.Fingerprint, &m.FirstTS, &m.LastTS); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	rows.Close()

	// Single connection: the match cursor is closed before the detail
	// queries run.
	for i := range matches {
		if matches[i].Graph, err = s.readMatchGraph(ctx, matches[i].ID); err != nil {
			return nil, err
		}
		if matches[i].Bindings, err = s.readBindings(ctx, matches[i].ID); err != nil {
			return nil, err
		}
	}
	return matches, nil
}

func (s *Store) readMatchGraph(ctx context.Context, matchID string) (*graph.EventGraph, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, timestamp, tail, head, kind
		FROM match_edges
		WHERE match_id = ?
		ORDER BY position ASC
	`, matchID)
	if err != nil {
		return nil, fmt.Errorf("query match edges: %w", err)
	}
	defer rows.Close()

	var edges []graph.Edge
	for rows.Next() {
		var e graph.Edge
		if err := rows.Scan(&e.Name, &e.Timestamp, &e.Tail, &e.Head, &e.Kind); err != nil {
			return nil, fmt.Errorf("scan match edge: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate match edges: %w", err)
	}

	g, err := graph.Build(edges)
	if err != nil {
		return nil, fmt.Errorf("rebuild match %s: %w", matchID, err)
	}
	return g, nil
}

func (s *Store) readBindings(ctx context.Context, matchID string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT motif_vertex, graph_vertex
		FROM match_bindings
		WHERE match_id = ?
	`, matchID)
	if err != nil {
		return nil, fmt.Errorf("query match bindings: %w", err)
	}
	defer rows.Close()

	bindings := map[string]string{}
	for rows.Next() {
		var mv, gv string
		if err := rows.Scan(&mv, &gv); err != nil {
			return nil, fmt.Errorf("scan match binding: %w", err)
		}
		bindings[mv] = gv
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate match bindings: %w", err)
	}
	return bindings, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run    Run
		status string
	)
	err := row.Scan(&run.ID, &run.Seq, &run.Motif, &run.Graph, &run.Delta, &status, &run.MatchCount, &run.Error)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Status = RunStatus(status)
	return run, nil
}
