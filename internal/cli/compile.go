package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Henka-Programmer/Marin/internal/catalog"
	"github.com/Henka-Programmer/Marin/internal/compiler"
	"github.com/Henka-Programmer/Marin/internal/dialect"
	"github.com/Henka-Programmer/Marin/internal/domain"
	"github.com/Henka-Programmer/Marin/internal/sqlquery"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Catalog      string
	Model        string
	Dialect      string
	ParamFormat  string
	Alias        string
	Columns      []string
	Order        string
	Limit        int
	Offset       int
	ShortCircuit bool
}

// CompilationResult is the output of the compile command.
type CompilationResult struct {
	SQL    string           `json:"sql"`
	Params []sqlquery.Param `json:"params"`
	Hint   string           `json:"hint"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <domain.json|->",
		Short: "Compile a domain to a SELECT statement",
		Long: `Compile a JSON-encoded domain against a model of the catalog and
print the resulting SELECT statement with its parameters.

Use "-" to read the domain from stdin.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "catalog file (.yaml, .yml or .cue)")
	cmd.Flags().StringVarP(&opts.Model, "model", "m", "", "model the domain filters")
	cmd.Flags().StringVar(&opts.Dialect, "dialect", "", "SQL dialect (sqlserver|sqlite)")
	cmd.Flags().StringVar(&opts.ParamFormat, "param-format", "", "parameter name format, e.g. p{column}{counter}")
	cmd.Flags().StringVar(&opts.Alias, "alias", "", "alias of the model's table")
	cmd.Flags().StringSliceVar(&opts.Columns, "columns", nil, "selected columns (default *)")
	cmd.Flags().StringVar(&opts.Order, "order", "", "ORDER BY expression")
	cmd.Flags().IntVar(&opts.Limit, "limit", -1, "maximum number of rows")
	cmd.Flags().IntVar(&opts.Offset, "offset", -1, "number of rows to skip")
	cmd.Flags().BoolVar(&opts.ShortCircuit, "short-circuit", false, "emit FALSE for statically false domains")
	_ = cmd.MarkFlagRequired("model")

	return cmd
}

func runCompile(opts *CompileOptions, input string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	cfg := opts.settings()

	catalogPath := firstNonEmpty(opts.Catalog, cfg.Catalog)
	if catalogPath == "" {
		return reportError(formatter, ErrCodeUsage, "no catalog: pass --catalog or set catalog in config", nil)
	}
	cat, err := catalog.LoadFile(catalogPath)
	if err != nil {
		return reportError(formatter, ErrCodeCatalog, "loading catalog", err)
	}
	model, err := cat.Model(opts.Model)
	if err != nil {
		return reportError(formatter, ErrCodeNotFound, "resolving model", err)
	}

	d, err := readDomain(input, cmd.InOrStdin())
	if err != nil {
		return reportError(formatter, ErrCodeReadFailed, "reading domain", err)
	}
	formatter.VerboseLog("Compiling %d token(s) against %s", len(d), model.Name)

	dia, err := dialect.Lookup(firstNonEmpty(opts.Dialect, cfg.Dialect))
	if err != nil {
		return reportError(formatter, ErrCodeUsage, "resolving dialect", err)
	}

	expr, err := compiler.Compile(d, model,
		compiler.WithDialect(dia),
		compiler.WithParamFormat(firstNonEmpty(opts.ParamFormat, cfg.ParamFormat)),
		compiler.WithMaxAliasLength(cfg.MaxAliasLength),
		compiler.WithAlias(opts.Alias),
		compiler.WithShortCircuit(opts.ShortCircuit),
		compiler.WithLogger(opts.logger()),
	)
	if err != nil {
		return reportError(formatter, ErrCodeGeneric, "compiling domain", err)
	}

	if opts.Order != "" {
		expr.Query.SetOrder(opts.Order)
	}
	if opts.Limit >= 0 {
		expr.Query.SetLimit(opts.Limit)
	}
	if opts.Offset >= 0 {
		expr.Query.SetOffset(opts.Offset)
	}

	stmt, params := expr.Select(opts.Columns...)
	if params == nil {
		params = []sqlquery.Param{}
	}
	result := CompilationResult{SQL: stmt, Params: params, Hint: expr.Hint.String()}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer, result.SQL)
	if len(result.Params) > 0 {
		fmt.Fprintln(formatter.Writer)
		fmt.Fprintln(formatter.Writer, "Params:")
		for _, p := range result.Params {
			fmt.Fprintf(formatter.Writer, "  @%s = %v (%s)\n", p.Name, p.Value, p.Type)
		}
	}
	return nil
}

// readDomain decodes a JSON domain from path, or from stdin when path is
// "-".
func readDomain(path string, stdin io.Reader) (domain.Domain, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	return domain.ParseJSON(data)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
