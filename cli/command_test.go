package cli

import (
	"path/filepath"
	"testing"

	"github.com/grovetools/scribe/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/repo", config.DefaultFileName),
		ConfigPath(CommandOptions{RepoPath: "/repo"}))
	assert.Equal(t, "/etc/scribe.ini",
		ConfigPath(CommandOptions{RepoPath: "/repo", ConfigFile: "/etc/scribe.ini"}))
}

func TestLoadConfigAppliesDryRunOverride(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(CommandOptions{RepoPath: dir, DryRun: true})
	require.NoError(t, err)
	assert.True(t, cfg.DryRun, "flag forces dry-run even without a config file")

	cfg, err = LoadConfig(CommandOptions{RepoPath: dir})
	require.NoError(t, err)
	assert.False(t, cfg.DryRun)
}

func TestNewStandardCommandFlags(t *testing.T) {
	cmd := NewStandardCommand("scribe", "test")

	for _, name := range []string{"repo", "config", "dry-run", "verbose"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "missing flag %s", name)
	}

	require.NoError(t, cmd.ParseFlags(nil))
	opts := GetOptions(cmd)
	assert.Equal(t, ".", opts.RepoPath)
	assert.False(t, opts.DryRun)
}
