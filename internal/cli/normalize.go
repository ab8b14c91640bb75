package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Henka-Programmer/Marin/internal/domain"
)

// NormalizationResult is the output of the normalize command.
type NormalizationResult struct {
	Domain domain.Domain `json:"domain"`
	Text   string        `json:"text"`
	Hint   string        `json:"hint"`
}

// NewNormalizeCommand creates the normalize command.
func NewNormalizeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize <domain.json|->",
		Short: "Normalize a domain and push negations to its terms",
		Long: `Make every implicit AND of a JSON-encoded domain explicit, distribute
NOT down to the terms and report whether the domain is statically false.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalize(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runNormalize(opts *RootOptions, input string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	d, err := readDomain(input, cmd.InOrStdin())
	if err != nil {
		return reportError(formatter, ErrCodeReadFailed, "reading domain", err)
	}

	normalized, err := domain.Normalize(d)
	if err != nil {
		return reportError(formatter, ErrCodeGeneric, "normalizing domain", err)
	}
	hint, err := domain.IsFalse(normalized)
	if err != nil {
		return reportError(formatter, ErrCodeGeneric, "evaluating domain", err)
	}
	distributed := domain.DistributeNot(normalized)
	opts.logger().Debug("normalized domain", "in", len(d), "out", len(distributed), "hint", hint.String())

	result := NormalizationResult{Domain: distributed, Text: distributed.String(), Hint: hint.String()}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer, result.Text)
	fmt.Fprintf(formatter.Writer, "hint: %s\n", result.Hint)
	return nil
}
