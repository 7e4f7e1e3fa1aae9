package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/josephlewis42/shellington/core"
	"github.com/spf13/cobra"
)

var builtinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "Show the builtin commands of the shell.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
		for _, builtin := range core.ListBuiltins() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", builtin.Name, builtin.Kind, builtin.Short)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(builtinsCmd)
}
