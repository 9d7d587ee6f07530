package cmd

import (
	"fmt"

	"github.com/0glabs/vcfparallel/rowmap"
	"github.com/spf13/cobra"
)

var transformsCmd = &cobra.Command{
	Use:   "transforms",
	Short: "List registered transforms",
	Run: func(cmd *cobra.Command, _ []string) {
		for _, name := range rowmap.Registered() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

func init() {
	rootCmd.AddCommand(transformsCmd)
}
