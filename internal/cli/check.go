package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandrolain/gorule"
)

// CheckResult is the outcome of type checking one rule.
type CheckResult struct {
	Rule       string   `json:"rule"`
	Type       string   `json:"type"`
	References []string `json:"references"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		contextFile string
		sets        []string
	)
	cmd := &cobra.Command{
		Use:   "check <rule>",
		Short: "Type check a rule against declared types",
		Long: `Infer the result type of a rule without evaluating it.

Symbol and attribute types come from the "types" section of the context
file and from the values it binds. Undeclared names are not checked.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}

			c, err := BuildContext(contextFile, sets)
			if err != nil {
				return WrapExitError(ExitCommandError, "load context", err)
			}
			rule, err := gorule.Compile(args[0], gorule.WithContext(c))
			if err != nil {
				_ = formatter.Error(err)
				return WrapExitError(ExitFailure, "compile", err)
			}
			t, err := rule.Check()
			if err != nil {
				_ = formatter.Error(err)
				return WrapExitError(ExitFailure, "check", err)
			}

			res := CheckResult{Rule: rule.Source(), Type: t.String(), References: rule.References()}
			if rootOpts.Format == "json" {
				return formatter.Success(res)
			}
			_, err = fmt.Fprintf(formatter.Writer, "✓ %s : %s\n", res.Rule, res.Type)
			return err
		},
	}
	cmd.Flags().StringVarP(&contextFile, "context", "c", "", "YAML or JSON context file with values and types")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "bind a context value (name=value), repeatable")
	return cmd
}
