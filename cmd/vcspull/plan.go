package main

import "github.com/spf13/cobra"

var planCmd = &cobra.Command{
	Use:   "plan [repo-terms...]",
	Short: "Print what sync would do, without touching the filesystem",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSyncOrPlan(cmd, args, true)
	},
}

func init() {
	registerSyncFlags(planCmd)
	rootCmd.AddCommand(planCmd)
}
