package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Henka-Programmer/Marin/internal/catalog"
)

// ModelSummary describes one model of a catalog.
type ModelSummary struct {
	Name    string           `json:"name"`
	Table   string           `json:"table"`
	Source  string           `json:"source,omitempty"`
	Columns []catalog.Column `json:"columns"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool           `json:"valid"`
	Models []ModelSummary `json:"models"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [catalog-file]",
		Short: "Validate a catalog file",
		Long: `Load a YAML or CUE catalog, check it against the catalog schema and
list its models and columns.

Without an argument the catalog from the config is used.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			path := rootOpts.settings().Catalog
			if len(args) == 1 {
				path = args[0]
			}
			return runValidate(rootOpts, path, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	if path == "" {
		return reportError(formatter, ErrCodeUsage, "no catalog: pass a file or set catalog in config", nil)
	}

	cat, err := catalog.LoadFile(path)
	if err != nil {
		return reportError(formatter, ErrCodeCatalog, "invalid catalog", err)
	}
	formatter.VerboseLog("Loaded %s", path)

	result := ValidationResult{Valid: true, Models: summarize(cat)}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ %s: %d model(s)\n", path, len(result.Models))
	for _, m := range result.Models {
		fmt.Fprintf(formatter.Writer, "\n  %s (%s)\n", m.Name, m.Table)
		for _, c := range m.Columns {
			flags := ""
			if c.PrimaryKey {
				flags += " pk"
			}
			if c.Nullable {
				flags += " null"
			}
			fmt.Fprintf(formatter.Writer, "    %-16s %s%s\n", c.Name, c.Type, flags)
		}
	}
	return nil
}

func summarize(c *catalog.Catalog) []ModelSummary {
	models := c.Models()
	out := make([]ModelSummary, len(models))
	for i, m := range models {
		out[i] = ModelSummary{
			Name:    m.Name,
			Table:   m.Table,
			Source:  m.TableSource,
			Columns: m.Columns(),
		}
	}
	return out
}
