package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sandrolain/gorule/pkg/functions"
)

// BuiltinInfo describes one builtin for listing.
type BuiltinInfo struct {
	Name      string `json:"name"`
	Signature string `json:"signature"`
}

// NewBuiltinsCommand creates the builtins command.
func NewBuiltinsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "builtins",
		Short: "List the builtins usable at the end of an attribute path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}

			var infos []BuiltinInfo
			for _, name := range functions.Names() {
				b, _ := functions.Lookup(name)
				infos = append(infos, BuiltinInfo{Name: name, Signature: b.Signature.String()})
			}
			if rootOpts.Format == "json" {
				return formatter.Success(infos)
			}

			tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
			for _, info := range infos {
				fmt.Fprintf(tw, "%s\t%s\n", info.Name, info.Signature)
			}
			return tw.Flush()
		},
	}
}
