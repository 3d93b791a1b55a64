package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grovetools/scribe/cli"
	"github.com/grovetools/scribe/config"
)

// NewSetupCmd creates the setup command, which writes a default config file.
func NewSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Write a default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunSetup(cmd)
		},
	}
}

// RunSetup writes the default configuration. Shared with the --setup flag on
// the root command.
func RunSetup(cmd *cobra.Command) error {
	opts := cli.GetOptions(cmd)
	handler := cli.NewErrorHandler(opts.Verbose)

	path := cli.ConfigPath(opts)
	if err := config.WriteDefault(path); err != nil {
		return handler.Handle(err)
	}

	fmt.Printf("✅ Wrote default configuration to %s\n", path)
	fmt.Println("Edit it to set your OpenRouter API key, then run 'scribe' to start watching.")
	return nil
}
