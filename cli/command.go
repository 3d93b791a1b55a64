package cli

import (
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/grovetools/scribe/config"
	"github.com/grovetools/scribe/logging"
)

// CommandOptions holds the flags shared by every scribe command.
type CommandOptions struct {
	RepoPath   string
	ConfigFile string
	DryRun     bool
	Verbose    bool
}

// NewStandardCommand creates a command with the standard scribe flags.
func NewStandardCommand(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP("repo", "r", ".", "Path to the git repository to watch")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to the configuration file")
	cmd.PersistentFlags().Bool("dry-run", false, "Simulate commits without touching the repository")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	return cmd
}

// GetOptions extracts the shared flags from a command.
func GetOptions(cmd *cobra.Command) CommandOptions {
	repo, _ := cmd.Flags().GetString("repo")
	configFile, _ := cmd.Flags().GetString("config")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	verbose, _ := cmd.Flags().GetBool("verbose")

	return CommandOptions{
		RepoPath:   repo,
		ConfigFile: configFile,
		DryRun:     dryRun,
		Verbose:    verbose,
	}
}

// GetLogger creates a logger honoring the verbose flag.
func GetLogger(cmd *cobra.Command) *logrus.Entry {
	entry := logging.NewLogger("scribe")
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		entry.Logger.SetLevel(logrus.DebugLevel)
	}
	return entry
}

// ConfigPath resolves the configuration file location: the --config flag when
// given, otherwise the default file name inside the repository.
func ConfigPath(opts CommandOptions) string {
	if opts.ConfigFile != "" {
		return opts.ConfigFile
	}
	return filepath.Join(opts.RepoPath, config.DefaultFileName)
}

// LoadConfig loads the configuration for a command and applies flag
// overrides on top.
func LoadConfig(opts CommandOptions) (*config.Config, error) {
	cfg, err := config.Load(ConfigPath(opts))
	if err != nil {
		return nil, err
	}
	if opts.DryRun {
		cfg.DryRun = true
	}
	return cfg, nil
}
