package main

import (
	"os"

	"github.com/grovetools/scribe/cli"
	"github.com/grovetools/scribe/cmd"
)

func main() {
	rootCmd := cli.NewStandardCommand(
		"scribe",
		"Automatic conventional commits for a watched git repository",
	)

	// Bare invocation runs the watch loop; --setup short-circuits into setup
	// for compatibility with the original flag-driven interface.
	rootCmd.Flags().Bool("setup", false, "Write a default configuration file and exit")
	rootCmd.RunE = cmd.RunRoot

	rootCmd.AddCommand(cmd.NewWatchCmd())
	rootCmd.AddCommand(cmd.NewSetupCmd())
	rootCmd.AddCommand(cmd.NewDetectCmd())
	rootCmd.AddCommand(cmd.NewCommitCmd())
	rootCmd.AddCommand(cmd.NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
