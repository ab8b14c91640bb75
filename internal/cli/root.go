package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Henka-Programmer/Marin/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // config file path; empty looks for marin.toml

	// Set by the root command before any subcommand runs.
	Settings *config.Config
	Logger   *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the marin CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "marin",
		Short: "marin - search domains to SQL",
		Long: `Compile search domains (prefix-notation boolean filters) into
parameterized SQL WHERE clauses against a catalog of models.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "config file (default ./"+config.DefaultFile+")")

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewNormalizeCommand(opts))
	cmd.AddCommand(NewIntrospectCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute(args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		// Commands report their own ExitErrors; anything else comes from
		// cobra (unknown flags, wrong argument counts).
		var exitErr *ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return GetExitCode(err)
	}
	return ExitSuccess
}

// setup validates global flags, loads the configuration and installs the
// logger.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	if !isValidFormat(o.Format) {
		msg := fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats)
		fmt.Fprintf(cmd.ErrOrStderr(), "Error [%s]: %s\n", ErrCodeUsage, msg)
		return NewExitError(ExitCommandError, msg)
	}

	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}
	o.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(o.Config)
	if err != nil {
		return reportError(o.formatter(cmd), ErrCodeConfig, "loading config", err)
	}
	o.Settings = cfg
	o.Logger.Debug("config loaded", "dialect", cfg.Dialect, "catalog", cfg.Catalog)
	return nil
}

// settings returns the loaded configuration, or defaults when a
// subcommand runs without the root command (as in tests).
func (o *RootOptions) settings() *config.Config {
	if o.Settings == nil {
		o.Settings = config.Default()
	}
	return o.Settings
}

func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
