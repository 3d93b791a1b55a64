package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grovetools/scribe/agent"
	"github.com/grovetools/scribe/cli"
)

// NewCommitCmd creates the commit command: a one-shot synthesize-and-commit
// of whatever is currently changed, without watching.
func NewCommitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commit",
		Short: "Commit the current working-tree changes once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)
			handler := cli.NewErrorHandler(opts.Verbose)

			cfg, err := cli.LoadConfig(opts)
			if err != nil {
				return handler.Handle(err)
			}

			a, err := agent.New(cfg, opts.RepoPath)
			if err != nil {
				return handler.Handle(err)
			}

			result, err := a.CommitOnce(context.Background())
			if err != nil {
				return handler.Handle(err)
			}

			switch {
			case result.DryRun && len(result.Files) > 0:
				fmt.Printf("[dry-run] Would commit %d file(s): %s\n", len(result.Files), result.Message)
			case result.Committed:
				fmt.Printf("Committed: %s\n", result.Message)
				if result.Pushed {
					fmt.Println("Pushed to origin.")
				}
			default:
				fmt.Println("Nothing to commit.")
			}
			for _, f := range result.Excluded {
				fmt.Printf("⚠️  Excluded %s (sensitive content at line %d)\n", f.Path, f.Line)
			}
			return nil
		},
	}
}
