package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tmotif/internal/compiler"
	"github.com/roach88/tmotif/internal/engine"
)

// ValidationIssue is one problem found in a motifs directory.
type ValidationIssue struct {
	Motif   string `json:"motif,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Motifs   []string          `json:"motifs,omitempty"`
	Errors   []ValidationIssue `json:"errors,omitempty"`
	Warnings []ValidationIssue `json:"warnings,omitempty"`
}

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Strict bool
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate [motifs-dir]",
		Short: "Compile motif definitions and report errors",
		Long: `Compile every motif in a directory of CUE files and report all problems.

Unlike match, validate does not stop at the first invalid motif. The
directory defaults to the configured motifs directory.

A motif edge that shares no vertex with the edges before it is searched
against any edge in the window. That is reported as a warning, or as an
error with --strict (the same rule as match --strict).`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := rootOpts.settings().MotifsDir
			if len(args) == 1 {
				dir = args[0]
			}
			return runValidate(opts, dir, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "treat disconnected motifs as errors")

	return cmd
}

func runValidate(opts *ValidateOptions, motifsDir string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	result, loadErrs := compiler.LoadDir(motifsDir, compiler.LoadModeCollectAll)

	// Directory not found, no files, CUE syntax errors.
	if result == nil {
		return f.Fail(ExitCommandError, ErrCodeMotif, "failed to load motifs", loadErrs[0])
	}

	f.VerboseLog("Found %d CUE file(s) in %s", result.FileCount, motifsDir)

	if len(loadErrs) > 0 {
		issues := make([]ValidationIssue, len(loadErrs))
		for i, err := range loadErrs {
			issues[i] = toIssue(err)
		}
		return outputValidationErrors(f, issues)
	}

	names := result.Names()
	growth := growthIssues(result, names)
	if opts.Strict && len(growth) > 0 {
		return outputValidationErrors(f, growth)
	}

	if f.Format == "json" {
		return f.Success(ValidationResult{Valid: true, Motifs: names, Warnings: growth})
	}

	fmt.Fprintf(f.Writer, "%s %d motif(s) valid\n", passMark(), len(names))
	for _, name := range names {
		fmt.Fprintf(f.Writer, "  %s\n", name)
	}
	for _, issue := range growth {
		fmt.Fprintf(f.Writer, "%s %s.%s: %s (rejected by --strict)\n", warnMark(), issue.Motif, issue.Field, issue.Message)
	}
	return nil
}

// growthIssues lists motifs whose edge order is not a connected growth.
func growthIssues(result *compiler.LoadResult, names []string) []ValidationIssue {
	var issues []ValidationIssue
	for _, name := range names {
		m, _ := result.Lookup(name)
		var me *engine.InvalidMotifError
		if errors.As(engine.ValidateMotif(m.Graph), &me) {
			issues = append(issues, ValidationIssue{Motif: name, Field: "edges", Message: me.Reason})
		}
	}
	return issues
}

func toIssue(err error) ValidationIssue {
	var ce *compiler.CompileError
	if !errors.As(err, &ce) {
		return ValidationIssue{Message: err.Error()}
	}
	issue := ValidationIssue{Motif: ce.Motif, Field: ce.Field, Message: ce.Message}
	if ce.Pos.IsValid() {
		issue.File = ce.Pos.Filename()
		issue.Line = ce.Pos.Line()
	}
	return issue
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(f *OutputFormatter, issues []ValidationIssue) error {
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(issues)))

	if f.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: issues},
			Error: &CLIError{
				Code:    ErrCodeMotif,
				Message: issues[0].Message,
			},
		}
		encoder := json.NewEncoder(f.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprintln(f.Writer, failMark(), "Validation failed")
	fmt.Fprintln(f.Writer)
	for _, issue := range issues {
		if issue.Line > 0 {
			fmt.Fprintf(f.Writer, "%s:%d\n", issue.File, issue.Line)
		}
		where := issue.Field
		if issue.Motif != "" {
			where = issue.Motif + "." + issue.Field
		}
		if where != "" {
			fmt.Fprintf(f.Writer, "  %s: %s\n\n", where, issue.Message)
		} else {
			fmt.Fprintf(f.Writer, "  %s\n\n", issue.Message)
		}
	}
	return exitErr
}
