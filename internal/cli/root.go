package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/tmotif/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	Format     string // "json" | "text"

	// Config is loaded before any subcommand runs. Commands built without
	// the root command (tests) fall back to config.Default.
	Config *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the tmotif CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "tmotif",
		Short: "tmotif - temporal motif search",
		Long: `Find temporal motifs in event graphs.

An event graph is a list of timestamped, directed edges. A motif is a small
pattern of edges in time order; tmotif reports every subgraph that has the
shape of the motif, respects its edge order and fits in a time window.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ./tmotif.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewBuildCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewMatchCommand(opts))
	cmd.AddCommand(NewRunsCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// load reads the configuration and applies it under the flags the user
// did not set.
func (o *RootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error: failed to load config:", err)
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	o.Config = cfg

	flags := cmd.Flags()
	if !flags.Changed("format") {
		o.Format = cfg.Format
	}
	if !flags.Changed("verbose") {
		o.Verbose = cfg.Verbose
	}

	if !isValidFormat(o.Format) {
		msg := fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats)
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", msg)
		return NewExitError(ExitCommandError, msg)
	}
	return nil
}

// settings returns the loaded configuration, or the defaults.
func (o *RootOptions) settings() *config.Config {
	if o.Config != nil {
		return o.Config
	}
	return config.Default()
}

// formatter builds the OutputFormatter for a command.
// Verbose logs go to stderr to avoid corrupting JSON.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// logger returns a text logger on w, at debug level when verbose.
func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
