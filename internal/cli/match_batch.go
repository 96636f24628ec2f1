package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/roach88/tmotif/internal/engine"
	"github.com/roach88/tmotif/internal/graph"
)

// GraphSummary is one row of a batch search.
type GraphSummary struct {
	Graph     string       `json:"graph"`
	RunID     string       `json:"run_id,omitempty"`
	Count     int          `json:"count"`
	Stats     engine.Stats `json:"stats"`
	ElapsedMS float64      `json:"elapsed_ms"`
	Error     string       `json:"error,omitempty"`
}

// BatchMatchResult is the JSON payload of match over several graphs.
type BatchMatchResult struct {
	Motif   string         `json:"motif"`
	Delta   int64          `json:"delta"`
	Total   int            `json:"total"` // matches over all graphs
	Aborted int            `json:"aborted"`
	Graphs  []GraphSummary `json:"graphs"`
}

// graphPaths expands match arguments into graph files. A directory stands
// for its *.txt files and an argument with glob metacharacters for its
// matches; both select batch mode, as does more than one file.
func graphPaths(args []string) (paths []string, batch bool, err error) {
	for _, arg := range args {
		if strings.ContainsAny(arg, "*?[") {
			matches, err := filepath.Glob(arg)
			if err != nil {
				return nil, false, fmt.Errorf("bad pattern %q: %w", arg, err)
			}
			if len(matches) == 0 {
				return nil, false, fmt.Errorf("no graph files match %s", arg)
			}
			paths = append(paths, matches...)
			batch = true
			continue
		}

		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			// Missing files are reported when the graph is loaded.
			paths = append(paths, arg)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(arg, "*.txt"))
		if err != nil {
			return nil, false, err
		}
		if len(matches) == 0 {
			return nil, false, fmt.Errorf("no graph files (*.txt) in %s", arg)
		}
		paths = append(paths, matches...)
		batch = true
	}
	return paths, batch || len(paths) > 1, nil
}

// graphStem names the per-graph output directory: the file name without
// its extension.
func graphStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// runMatchBatch searches every graph with the same motif and window. A
// search stopped by its step budget is reported in its row and the batch
// goes on; cancellation or a timeout stops the whole batch.
func runMatchBatch(ctx context.Context, f *OutputFormatter, s *matchSearch, paths []string, outDir string) error {
	result := BatchMatchResult{
		Motif:  s.motif.Name,
		Delta:  s.delta,
		Graphs: make([]GraphSummary, 0, len(paths)),
	}

	var stopErr error
	for _, path := range paths {
		g, err := graph.Load(path)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeGraph, "failed to load graph", err)
		}

		dir := ""
		if outDir != "" {
			dir = filepath.Join(outDir, graphStem(path))
		}

		start := time.Now()
		mr, searchErr, err := s.run(ctx, path, g, dir)
		elapsed := time.Since(start)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, "failed to write match", err)
		}
		if searchErr != nil && isMotifError(searchErr) {
			return f.Fail(ExitCommandError, ErrCodeMotif, "cannot search for motif", searchErr)
		}

		row := GraphSummary{
			Graph:     path,
			RunID:     mr.RunID,
			Count:     mr.Count,
			Stats:     mr.Stats,
			ElapsedMS: float64(elapsed.Microseconds()) / 1000,
		}
		if searchErr != nil {
			row.Error = searchErr.Error()
			result.Aborted++
		}
		result.Total += mr.Count
		result.Graphs = append(result.Graphs, row)

		if errors.Is(searchErr, context.Canceled) || errors.Is(searchErr, context.DeadlineExceeded) {
			stopErr = searchErr
			break
		}
	}

	var exitErr error
	switch {
	case stopErr != nil:
		exitErr = WrapExitError(ExitFailure,
			fmt.Sprintf("batch stopped after %d of %d graph(s)", len(result.Graphs), len(paths)), stopErr)
	case result.Aborted > 0:
		exitErr = NewExitError(ExitFailure,
			fmt.Sprintf("%d of %d search(es) aborted", result.Aborted, len(paths)))
	}

	if f.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: result}
		if exitErr != nil {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodeSearch, Message: exitErr.Error()}
		}
		if err := json.NewEncoder(f.Writer).Encode(resp); err != nil {
			return err
		}
		return exitErr
	}

	writeBatch(f, result, len(paths))
	if exitErr != nil {
		_ = f.Error(ErrCodeSearch, exitErr.Error(), nil)
	}
	return exitErr
}

func writeBatch(f *OutputFormatter, result BatchMatchResult, searched int) {
	w := f.Writer
	fmt.Fprintf(w, "%s in %d graph(s) (delta %d)\n\n", result.Motif, searched, result.Delta)

	width := 0
	for _, row := range result.Graphs {
		width = max(width, len(row.Graph))
	}
	for _, row := range result.Graphs {
		elapsed := time.Duration(row.ElapsedMS * float64(time.Millisecond)).Round(time.Microsecond)
		fmt.Fprintf(w, "%-*s  %6d match(es)  %8d step(s)  %s\n",
			width, row.Graph, row.Count, row.Stats.Steps, elapsed)
		if row.Error != "" {
			fmt.Fprintf(w, "  %s %s\n", failMark(), row.Error)
		}
	}

	fmt.Fprintf(w, "\ntotal: %d match(es) in %d graph(s)\n", result.Total, len(result.Graphs))
}
