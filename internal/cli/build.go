package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tmotif/internal/graph"
	"github.com/roach88/tmotif/internal/ingest"
)

// BuildOptions holds flags for the build command.
type BuildOptions struct {
	*RootOptions
	Output string
}

// BuildResult is the JSON payload of the build command for one log.
type BuildResult struct {
	Input    string `json:"input"`
	Output   string `json:"output,omitempty"` // empty when no edges were produced
	Rows     int    `json:"rows"`
	Edges    int    `json:"edges"`
	Vertices int    `json:"vertices"`
	Skipped  int    `json:"skipped"`
	Emails   int    `json:"emails"`
}

// BuildBatchResult is the JSON payload of build over a directory.
type BuildBatchResult struct {
	Output  string        `json:"output"`
	Written int           `json:"written"`
	Empty   int           `json:"empty"`
	Graphs  []BuildResult `json:"graphs"`
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "build <activity-csv|dir>",
		Short: "Build event graphs from activity logs",
		Long: `Convert an activity-log CSV into an event graph file.

Each row becomes one edge (two or more for emails with attachments). Rows
without a usable timestamp or activity are skipped and counted.

Given a directory, every *.csv file in it is converted into its own graph
under the --output directory, named after the file without its extension
and a trailing "-logs" (ACM2278-logs.csv becomes ACM2278.txt). Logs that
produce no edges are reported and not written.

Examples:
  tmotif build logs/activity.csv -o graph.txt
  tmotif build logs/users -o graphs/`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "graph file, or directory for a directory of logs (required)")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runBuild(opts *BuildOptions, input string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	ctx, cancel := commandContext(cmd, 0, logger)
	defer cancel()

	if info, err := os.Stat(input); err == nil && info.IsDir() {
		return runBuildDir(ctx, f, logger, input, opts.Output)
	}

	result, g, err := buildOne(ctx, logger, input)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeIngest, "failed to read activity log", err)
	}
	if err := graph.RequireEdges(g, "activity log"); err != nil {
		return f.Fail(ExitFailure, ErrCodeIngest, "no edges produced", err)
	}

	if err := graph.Save(opts.Output, g); err != nil {
		return f.Fail(ExitCommandError, ErrCodeGraph, "failed to save graph", err)
	}
	result.Output = opts.Output
	f.VerboseLog("Read %d row(s) from %s", result.Rows, input)

	if f.Format == "json" {
		return f.Success(result)
	}

	w := f.Writer
	fmt.Fprintf(w, "%s Wrote %d edge(s), %d vertex(es) to %s\n", passMark(), result.Edges, result.Vertices, result.Output)
	fmt.Fprintf(w, "  rows: %d, skipped: %d, emails: %d\n", result.Rows, result.Skipped, result.Emails)
	return nil
}

// buildOne reads one activity log. The graph may have no edges.
func buildOne(ctx context.Context, logger *slog.Logger, input string) (BuildResult, *graph.EventGraph, error) {
	g, stats, err := ingest.NewReader(logger).ReadFile(ctx, input)
	if err != nil {
		return BuildResult{}, nil, err
	}
	return BuildResult{
		Input:    input,
		Rows:     stats.Rows,
		Edges:    g.NumEdges(),
		Vertices: g.NumVertices(),
		Skipped:  stats.Skipped,
		Emails:   stats.Emails,
	}, g, nil
}

// graphFileName maps an activity log to its graph file name.
func graphFileName(csvPath string) string {
	stem := strings.TrimSuffix(filepath.Base(csvPath), filepath.Ext(csvPath))
	if trimmed := strings.TrimSuffix(stem, "-logs"); trimmed != "" {
		stem = trimmed
	}
	return stem + ".txt"
}

func runBuildDir(ctx context.Context, f *OutputFormatter, logger *slog.Logger, dir, outDir string) error {
	inputs, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeIngest, "failed to list activity logs", err)
	}
	if len(inputs) == 0 {
		return f.Fail(ExitCommandError, ErrCodeIngest, fmt.Sprintf("no activity logs (*.csv) in %s", dir), nil)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return f.Fail(ExitCommandError, ErrCodeGraph, "failed to create output directory", err)
	}

	batch := BuildBatchResult{Output: outDir, Graphs: make([]BuildResult, 0, len(inputs))}
	for _, input := range inputs {
		result, g, err := buildOne(ctx, logger, input)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeIngest, "failed to read activity log "+input, err)
		}
		if g.NumEdges() == 0 {
			batch.Empty++
			batch.Graphs = append(batch.Graphs, result)
			continue
		}

		out := filepath.Join(outDir, graphFileName(input))
		if err := graph.Save(out, g); err != nil {
			return f.Fail(ExitCommandError, ErrCodeGraph, "failed to save graph", err)
		}
		result.Output = out
		batch.Written++
		batch.Graphs = append(batch.Graphs, result)
	}

	if batch.Written == 0 {
		return f.Fail(ExitFailure, ErrCodeIngest, "no edges produced", nil)
	}

	if f.Format == "json" {
		return f.Success(batch)
	}

	w := f.Writer
	for _, r := range batch.Graphs {
		if r.Output == "" {
			fmt.Fprintf(w, "%s %s: no edges (%d row(s), %d skipped)\n", failMark(), r.Input, r.Rows, r.Skipped)
			continue
		}
		fmt.Fprintf(w, "%s %s -> %s: %d edge(s), %d vertex(es)\n", passMark(), r.Input, r.Output, r.Edges, r.Vertices)
	}
	fmt.Fprintf(w, "\nWrote %d of %d graph(s) to %s\n", batch.Written, len(batch.Graphs), outDir)
	return nil
}
