package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandrolain/gorule/pkg/parser"
)

// ValidationResult is the outcome of validating one rule.
type ValidationResult struct {
	Rule  string    `json:"rule"`
	Valid bool      `json:"valid"`
	Error *CLIError `json:"error,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <rule>...",
		Short: "Check that rules parse",
		Long: `Check that each rule parses, without evaluating anything.

Exits with status 1 when any rule is invalid.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, rules []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	logger := newLogger(opts, cmd.ErrOrStderr())

	results := make([]ValidationResult, 0, len(rules))
	invalid := 0
	for _, rule := range rules {
		res := ValidationResult{Rule: rule, Valid: true}
		if _, err := parser.Parse(rule); err != nil {
			res.Valid = false
			res.Error = NewCLIError(err)
			invalid++
			logger.Debug("rule rejected", "rule", rule, "error", err)
		}
		results = append(results, res)
	}

	if opts.Format == "json" {
		if err := formatter.Success(results); err != nil {
			return err
		}
	} else {
		for _, res := range results {
			if res.Valid {
				fmt.Fprintf(formatter.Writer, "✓ %s\n", res.Rule)
				continue
			}
			fmt.Fprintf(formatter.Writer, "✗ %s\n  %s: %s", res.Rule, res.Error.Kind, res.Error.Message)
			if res.Error.Line > 0 {
				fmt.Fprintf(formatter.Writer, " (line %d, column %d)", res.Error.Line, res.Error.Column)
			}
			fmt.Fprintln(formatter.Writer)
		}
	}

	if invalid > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d rule(s) invalid", invalid, len(rules)))
	}
	return nil
}
