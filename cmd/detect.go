package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grovetools/scribe/cli"
	"github.com/grovetools/scribe/detect"
	"github.com/grovetools/scribe/git"
	"github.com/grovetools/scribe/logging"
)

// NewDetectCmd creates the detect command: print project tags and regenerate
// the ignore file.
func NewDetectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "Detect project languages/frameworks and regenerate the ignore file",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)
			handler := cli.NewErrorHandler(opts.Verbose)

			repo, err := git.Open(opts.RepoPath, logging.NewLogger("git"))
			if err != nil {
				return handler.Handle(err)
			}

			detector := detect.NewDetector(repo.Root(), logging.NewLogger("detect"))
			tags := detector.Detect()
			if len(tags) == 0 {
				fmt.Println("No languages or frameworks detected.")
			} else {
				fmt.Printf("Detected: %s\n", strings.Join(tags, ", "))
			}

			if opts.DryRun {
				fmt.Println("[dry-run] Ignore file left untouched.")
				return nil
			}
			if err := detector.WriteIgnoreFile(tags); err != nil {
				return handler.Handle(err)
			}
			fmt.Printf("Updated %s\n", detect.IgnoreFileName)
			return nil
		},
	}
}
