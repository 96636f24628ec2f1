package cli

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/tmotif/internal/graph"
)

// KindCount is the number of edges of one kind.
type KindCount struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}

// InspectResult summarises a graph file.
type InspectResult struct {
	Path     string      `json:"path"`
	Edges    int         `json:"edges"`
	Vertices int         `json:"vertices"`
	FirstTS  int64       `json:"first_ts"`
	LastTS   int64       `json:"last_ts"`
	Kinds    []KindCount `json:"kinds"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <graph-file>",
		Short: "Summarise an event graph file",
		Long: `Print the size, time span and edge kinds of an event graph file.

Example:
  tmotif inspect graph.txt
  tmotif inspect graph.txt --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runInspect(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	g, err := graph.Load(path)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGraph, "failed to load graph", err)
	}

	result := summarise(path, g)
	if f.Format == "json" {
		return f.Success(result)
	}

	w := f.Writer
	fmt.Fprintln(w, result.Path)
	fmt.Fprintf(w, "  edges:    %d\n", result.Edges)
	fmt.Fprintf(w, "  vertices: %d\n", result.Vertices)
	fmt.Fprintf(w, "  span:     %d .. %d (%d)\n", result.FirstTS, result.LastTS, result.LastTS-result.FirstTS)
	fmt.Fprintln(w, "  kinds:")
	width := 0
	for _, k := range result.Kinds {
		width = max(width, len(kindLabel(k.Kind)))
	}
	for _, k := range result.Kinds {
		fmt.Fprintf(w, "    %-*s  %d\n", width, kindLabel(k.Kind), k.Count)
	}
	return nil
}

// summarise counts kinds by frequency, most frequent first, ties by name.
func summarise(path string, g *graph.EventGraph) InspectResult {
	counts := make(map[string]int)
	for _, e := range g.Edges() {
		counts[e.Kind]++
	}
	kinds := make([]KindCount, 0, len(counts))
	for k, n := range counts {
		kinds = append(kinds, KindCount{Kind: k, Count: n})
	}
	slices.SortFunc(kinds, func(a, b KindCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Kind, b.Kind)
	})

	first, last := g.Span()
	return InspectResult{
		Path:     path,
		Edges:    g.NumEdges(),
		Vertices: g.NumVertices(),
		FirstTS:  first,
		LastTS:   last,
		Kinds:    kinds,
	}
}

func kindLabel(kind string) string {
	if kind == "" {
		return "(none)"
	}
	return kind
}
