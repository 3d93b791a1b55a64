package cmd

import (
	"github.com/spf13/cobra"
)

// RunRoot is the bare `scribe` invocation: --setup writes a default config,
// anything else starts the watch loop.
func RunRoot(cmd *cobra.Command, args []string) error {
	if setup, _ := cmd.Flags().GetBool("setup"); setup {
		return RunSetup(cmd)
	}
	return RunWatch(cmd)
}
