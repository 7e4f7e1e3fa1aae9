package cmd

import (
	"fmt"
	"strings"

	"github.com/josephlewis42/shellington/core/shell"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse LINE...",
	Short: "Print the parsed form of a command line.",
	Long: `Joins the arguments with spaces, parses them the way the shell would
and prints every stage of the resulting pipeline.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), shell.Parse(strings.Join(args, " ")).String())
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}
