package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "shoptrack",
	Short: "Shop job tracking and payroll",
	Long: "-------------------------------------------------------------------\n" +
		"                           ShopTrack\n" +
		"         wrap/PPF job pipeline, commissions, and payroll\n" +
		"-------------------------------------------------------------------",
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	cobra.EnableCommandSorting = false

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(payrollCmd)
	rootCmd.AddCommand(triageCmd)
}
