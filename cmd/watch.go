package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/grovetools/scribe/agent"
	"github.com/grovetools/scribe/cli"
)

// NewWatchCmd creates the watch command: the agent's main loop.
func NewWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the repository and commit changes automatically",
		Long: `Watch the repository for file changes, group them into changesets after a
quiet period, and create conventional commits with emojis, optionally
described by an AI model and pushed to the configured branch.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunWatch(cmd)
		},
	}
}

// RunWatch runs the watch loop until interrupted. Shared between the watch
// subcommand and the bare root invocation.
func RunWatch(cmd *cobra.Command) error {
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

	// SIGINT/SIGTERM cancel the context; the agent drains and stops cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil {
		return handler.Handle(err)
	}
	return nil
}
