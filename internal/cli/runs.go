package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tmotif/internal/store"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	Database string
}

// RunOutput is one recorded run in command output.
type RunOutput struct {
	ID         string `json:"id"`
	Seq        int64  `json:"seq"`
	Motif      string `json:"motif"`
	Graph      string `json:"graph"`
	Delta      int64  `json:"delta"`
	Status     string `json:"status"`
	MatchCount int    `json:"match_count"`
	Error      string `json:"error,omitempty"`
}

// RunDetail is the JSON payload of "runs <run-id>".
type RunDetail struct {
	Run     RunOutput     `json:"run"`
	Matches []MatchOutput `json:"matches"`
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List recorded runs or show one run's matches",
		Long: `Inspect the runs recorded by "tmotif match --db".

Without arguments every run is listed in the order it was started. With a
run id the run's matches are printed in discovery order.

Examples:
  tmotif runs --db runs.db
  tmotif runs --db runs.db 0192a3b4-...`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite database (default from config)")

	return cmd
}

func runRuns(opts *RunsOptions, args []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = opts.settings().Database
	}
	// Opening would create an empty database; a typo should fail instead.
	if _, err := os.Stat(dbPath); err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, fmt.Sprintf("database not found: %s", dbPath), nil)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if len(args) == 0 {
		runs, err := st.ListRuns(ctx)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, "failed to list runs", err)
		}
		out := make([]RunOutput, len(runs))
		for i, r := range runs {
			out[i] = newRunOutput(r)
		}
		if f.Format == "json" {
			return f.Success(out)
		}
		writeRuns(f, out)
		return nil
	}

	run, err := st.GetRun(ctx, args[0])
	if errors.Is(err, store.ErrRunNotFound) {
		return f.Fail(ExitCommandError, ErrCodeStore, fmt.Sprintf("run not found: %s", args[0]), nil)
	}
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to read run", err)
	}
	matches, err := st.ReadMatches(ctx, run.ID)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to read matches", err)
	}

	detail := RunDetail{Run: newRunOutput(run), Matches: make([]MatchOutput, len(matches))}
	for i, m := range matches {
		detail.Matches[i] = newMatchOutput(m.Ordinal, m.Graph, m.Bindings)
	}
	if f.Format == "json" {
		return f.Success(detail)
	}

	r := detail.Run
	fmt.Fprintf(f.Writer, "run %s (#%d)\n", r.ID, r.Seq)
	fmt.Fprintf(f.Writer, "  motif:   %s\n", r.Motif)
	fmt.Fprintf(f.Writer, "  graph:   %s\n", r.Graph)
	fmt.Fprintf(f.Writer, "  delta:   %d\n", r.Delta)
	fmt.Fprintf(f.Writer, "  status:  %s\n", colorStatus(r.Status, statusLabel(r)))
	fmt.Fprintf(f.Writer, "  matches: %d\n", r.MatchCount)
	writeMatches(f.Writer, detail.Matches)
	return nil
}

func newRunOutput(r store.Run) RunOutput {
	return RunOutput{
		ID:         r.ID,
		Seq:        r.Seq,
		Motif:      r.Motif,
		Graph:      r.Graph,
		Delta:      r.Delta,
		Status:     string(r.Status),
		MatchCount: r.MatchCount,
		Error:      r.Error,
	}
}

func writeRuns(f *OutputFormatter, runs []RunOutput) {
	if len(runs) == 0 {
		fmt.Fprintln(f.Writer, "No runs recorded.")
		return
	}
	for _, r := range runs {
		label := colorStatus(r.Status, fmt.Sprintf("%-10s", statusLabel(r)))
		fmt.Fprintf(f.Writer, "%4d  %s  %s %5d match(es)  %s  %s (delta %d)\n",
			r.Seq, r.ID, label, r.MatchCount, r.Motif, r.Graph, r.Delta)
	}
}

func statusLabel(r RunOutput) string {
	if r.Error == "" {
		return r.Status
	}
	return r.Status + ": " + strings.TrimSpace(r.Error)
}
