package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Henka-Programmer/Marin/internal/catalog"
)

// IntrospectOptions holds flags for the introspect command.
type IntrospectOptions struct {
	*RootOptions
	Database string
	Tables   []string
	Output   string
}

// NewIntrospectCommand creates the introspect command.
func NewIntrospectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IntrospectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "introspect",
		Short: "Build a catalog from a SQLite or libsql database",
		Long: `Read table and view definitions from a SQLite file or a libsql URL and
write them as a YAML catalog.

The database is opened read-only.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntrospect(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite path or libsql:// URL")
	cmd.Flags().StringArrayVar(&opts.Tables, "table", nil, "table to include (repeatable, default all)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the catalog to this file")

	return cmd
}

func runIntrospect(opts *IntrospectOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	dsn := firstNonEmpty(opts.Database, opts.settings().Database)
	if dsn == "" {
		return reportError(formatter, ErrCodeUsage, "no database: pass --db or set database in config", nil)
	}

	db, err := catalog.OpenDatabase(dsn)
	if err != nil {
		return reportError(formatter, ErrCodeDatabase, "opening database", err)
	}
	defer db.Close()

	cat, err := catalog.Introspect(cmd.Context(), db, opts.Tables...)
	if err != nil {
		return reportError(formatter, ErrCodeDatabase, "introspecting database", err)
	}
	opts.logger().Debug("introspected database", "models", len(cat.Models()))

	var buf bytes.Buffer
	if err := catalog.SaveYAML(&buf, cat); err != nil {
		return reportError(formatter, ErrCodeGeneric, "encoding catalog", err)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, buf.Bytes(), 0644); err != nil {
			return reportError(formatter, ErrCodeWriteFailed, "writing catalog", err)
		}
		formatter.VerboseLog("Wrote %d model(s) to %s", len(cat.Models()), opts.Output)
	}

	if formatter.Format == "json" {
		return formatter.Success(summarize(cat))
	}
	if opts.Output != "" {
		fmt.Fprintf(formatter.Writer, "✓ Wrote %d model(s) to %s\n", len(cat.Models()), opts.Output)
		return nil
	}
	_, err = formatter.Writer.Write(buf.Bytes())
	return err
}
