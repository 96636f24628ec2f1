package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/tmotif/internal/compiler"
	"github.com/roach88/tmotif/internal/engine"
	"github.com/roach88/tmotif/internal/graph"
	"github.com/roach88/tmotif/internal/store"
)

// MatchOptions holds flags for the match command.
type MatchOptions struct {
	*RootOptions
	MotifsDir string
	Motif     string
	Delta     int64
	Limit     int
	MaxSteps  int
	Timeout   time.Duration
	Database  string
	OutDir    string
	Strict    bool

	// RunIDs allows overriding the run id generator (for testing).
	// If nil, defaults to store.UUIDv7Generator.
	RunIDs store.RunIDGenerator
}

// MatchOutput is one match in command output.
type MatchOutput struct {
	Ordinal  int               `json:"ordinal"`
	Edges    []string          `json:"edges"`
	Graph    string            `json:"graph"` // persisted text format
	Bindings map[string]string `json:"bindings"`
}

// MatchResult is the JSON payload of the match command.
type MatchResult struct {
	Motif   string        `json:"motif"`
	Graph   string        `json:"graph"`
	Delta   int64         `json:"delta"`
	RunID   string        `json:"run_id,omitempty"`
	Count   int           `json:"count"`
	Stats   engine.Stats  `json:"stats"`
	Matches []MatchOutput `json:"matches"`
}

// NewMatchCommand creates the match command.
func NewMatchCommand(rootOpts *RootOptions) *cobra.Command {
	return newMatchCommand(&MatchOptions{RootOptions: rootOpts})
}

func newMatchCommand(opts *MatchOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match <graph-file|dir|glob>...",
		Short: "Search graphs for a motif",
		Long: `Search event graphs for every occurrence of a motif within a time window.

The motif is looked up by name among the CUE definitions in the motifs
directory. The window comes from --delta, else from the motif's own delta,
else from the configuration.

With a single graph file every match is printed. With several graphs, a
directory (its *.txt files) or a quoted glob, each graph is searched in
turn and one summary row is printed per graph: match count, search steps
and elapsed time.

With --db each searched graph is recorded as a run for later inspection
with "tmotif runs". With --out every match is also written as a graph file
named match-<n>.txt, in a sub-directory per graph when searching several.

Exit codes:
  0 - Search completed (zero matches included)
  1 - Search aborted (step budget, timeout, interrupt)
  2 - Command error (unreadable graph, unknown motif, etc.)

Examples:
  tmotif match graph.txt --motif exfil
  tmotif match graph.txt --motifs ./motifs --motif exfil --delta 600000
  tmotif match graph.txt --motif exfil --db runs.db --out ./matches
  tmotif match ./graphs/insiders --motif exfil
  tmotif match 'graphs/*/*.txt' --motif exfil --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.MotifsDir, "motifs", "", "motifs directory (default from config)")
	cmd.Flags().StringVar(&opts.Motif, "motif", "", "motif name (required)")
	cmd.Flags().Int64Var(&opts.Delta, "delta", 0, "time window, same unit as the timestamps")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "stop after this many matches per graph (0 = all)")
	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", 0, "abort a search after this many steps (0 = unbounded)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "abort after this duration")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record each run in this SQLite database")
	cmd.Flags().StringVar(&opts.OutDir, "out", "", "write each match as a graph file in this directory")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "reject motifs whose edges do not grow a connected pattern")
	_ = cmd.MarkFlagRequired("motif")

	return cmd
}

// matchSearch holds what every graph of one invocation is searched with.
type matchSearch struct {
	motif  *compiler.Motif
	delta  int64
	opts   []engine.Option
	rec    *recorder
	logger *slog.Logger
}

// run searches g and writes matches to outDir when set. A failed search is
// returned as searchErr together with the matches found before it; err
// reports a failure to record or write a match.
func (s *matchSearch) run(ctx context.Context, graphPath string, g *graph.EventGraph, outDir string) (result MatchResult, searchErr, err error) {
	result = MatchResult{
		Motif:   s.motif.Name,
		Graph:   graphPath,
		Delta:   s.delta,
		Matches: []MatchOutput{},
	}

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return result, nil, err
		}
	}

	rr, err := s.rec.begin(ctx, store.RunSpec{Motif: s.motif.Name, Graph: graphPath, Delta: s.delta})
	if err != nil {
		return result, nil, err
	}
	result.RunID = rr.id()

	s.logger.Debug("matching", "graph", graphPath, "motif", s.motif.Name, "delta", s.delta)

	var sinkErr error
	stats, searchErr := engine.Walk(ctx, g, s.motif.Graph, s.delta, func(emb engine.Embedding) error {
		ordinal, err := rr.record(context.WithoutCancel(ctx), emb, len(result.Matches)+1)
		if err == nil && outDir != "" {
			err = graph.Save(filepath.Join(outDir, fmt.Sprintf("match-%d.txt", ordinal)), emb.Graph)
		}
		if err != nil {
			sinkErr = err
			return err
		}
		result.Matches = append(result.Matches, newMatchOutput(ordinal, emb.Graph, emb.Bindings))
		return nil
	}, s.opts...)
	result.Count = len(result.Matches)
	result.Stats = stats

	if sinkErr != nil {
		_ = rr.finish(context.WithoutCancel(ctx), sinkErr)
		return result, nil, sinkErr
	}
	if err := rr.finish(context.WithoutCancel(ctx), searchErr); err != nil {
		return result, searchErr, err
	}
	return result, searchErr, nil
}

func runMatch(opts *MatchOptions, args []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())
	cfg := opts.settings()

	motifsDir := opts.MotifsDir
	if motifsDir == "" {
		motifsDir = cfg.MotifsDir
	}
	maxSteps := opts.MaxSteps
	if !cmd.Flags().Changed("max-steps") {
		maxSteps = cfg.MaxSteps
	}
	if opts.Limit < 0 || maxSteps < 0 {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "--limit and --max-steps must be non-negative", nil)
	}

	paths, batch, err := graphPaths(args)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGraph, "failed to resolve graph files", err)
	}

	// A single graph is loaded before the motifs so a bad path is reported
	// first; a batch loads each graph in turn.
	var single *graph.EventGraph
	if !batch {
		single, err = graph.Load(paths[0])
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeGraph, "failed to load graph", err)
		}
	}

	loaded, loadErrs := compiler.LoadDir(motifsDir, compiler.LoadModeFailFast)
	if len(loadErrs) > 0 {
		return f.Fail(ExitCommandError, ErrCodeMotif, "failed to load motifs", loadErrs[0])
	}
	motif, ok := loaded.Lookup(opts.Motif)
	if !ok {
		return f.Fail(ExitCommandError, ErrCodeMotif,
			fmt.Sprintf("unknown motif %q (available: %s)", opts.Motif, strings.Join(loaded.Names(), ", ")), nil)
	}

	delta := cfg.Delta
	switch {
	case cmd.Flags().Changed("delta"):
		delta = opts.Delta
	case motif.Delta != nil:
		delta = *motif.Delta
	}
	if delta < 0 {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "--delta must be non-negative", nil)
	}

	if opts.OutDir != "" {
		if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
			return f.Fail(ExitCommandError, ErrCodeGeneric, "failed to create output directory", err)
		}
	}

	ctx, cancel := commandContext(cmd, opts.Timeout, logger)
	defer cancel()

	rec, err := openRecorder(opts)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer rec.close(logger)

	s := &matchSearch{
		motif:  motif,
		delta:  delta,
		rec:    rec,
		logger: logger,
		opts: []engine.Option{
			engine.WithLogger(logger),
			engine.WithLimit(opts.Limit),
			engine.WithMaxSteps(maxSteps),
		},
	}
	if opts.Strict {
		s.opts = append(s.opts, engine.WithStrictMotif())
	}

	if batch {
		return runMatchBatch(ctx, f, s, paths, opts.OutDir)
	}

	result, searchErr, err := s.run(ctx, paths[0], single, opts.OutDir)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to write match", err)
	}

	f.VerboseLog("Search took %d step(s), %d backtrack(s)", result.Stats.Steps, result.Stats.Backtracks)

	if searchErr != nil {
		if isMotifError(searchErr) {
			return f.Fail(ExitCommandError, ErrCodeMotif, "cannot search for motif", searchErr)
		}
		if f.Format != "json" {
			writeMatches(f.Writer, result.Matches)
		}
		return f.Fail(ExitFailure, ErrCodeSearch,
			fmt.Sprintf("search aborted after %d match(es)", result.Count), searchErr)
	}

	if f.Format == "json" {
		return f.Success(result)
	}

	fmt.Fprintf(f.Writer, "%s in %s (delta %d): %d match(es)\n", result.Motif, result.Graph, result.Delta, result.Count)
	if result.RunID != "" {
		fmt.Fprintf(f.Writer, "run %s\n", result.RunID)
	}
	writeMatches(f.Writer, result.Matches)
	return nil
}

// isMotifError reports search failures caused by the motif or window rather
// than by the graph being searched.
func isMotifError(err error) bool {
	return engine.IsInvalidMotifError(err) || errors.Is(err, engine.ErrNegativeDelta)
}

func newMatchOutput(ordinal int, g *graph.EventGraph, bindings map[string]string) MatchOutput {
	var sb strings.Builder
	_ = graph.Encode(&sb, g)

	edges := make([]string, g.NumEdges())
	for i := range edges {
		edges[i] = g.Edge(i).Name
	}
	return MatchOutput{
		Ordinal:  ordinal,
		Edges:    edges,
		Graph:    sb.String(),
		Bindings: bindings,
	}
}

func writeMatches(w io.Writer, matches []MatchOutput) {
	for _, m := range matches {
		_ = engine.WriteMatch(w, m.Ordinal, m.Graph, m.Bindings)
	}
}
