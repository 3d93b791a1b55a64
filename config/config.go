package config

import (
	"os"
	"strings"
	"time"

	"github.com/grovetools/scribe/errors"
	"gopkg.in/ini.v1"
)

// DefaultFileName is the config file looked up next to the watched repository
// when --config is not given.
const DefaultFileName = "git-agent-config.ini"

// Config holds the agent configuration. It is loaded once at startup and
// passed explicitly to every component constructor; nothing mutates it after
// Load returns.
type Config struct {
	OpenRouterAPIKey string `ini:"openrouter_api_key"`
	Model            string `ini:"model"`
	Language         string `ini:"language"`
	Branch           string `ini:"branch"`
	DebounceTime     int    `ini:"debounce_time"`
	AutoPush         bool   `ini:"auto_push"`
	DryRun           bool   `ini:"dry_run"`
	CommitTemplate   string `ini:"commit_template"`
	IgnoredPatterns  string `ini:"ignored_patterns"`
	SiteURL          string `ini:"site_url"`
	SiteName         string `ini:"site_name"`
}

// Default returns the built-in configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Model:           "openai/gpt-4o",
		Language:        "english",
		Branch:          "main",
		DebounceTime:    10,
		AutoPush:        true,
		DryRun:          false,
		CommitTemplate:  "{emoji} {commit_type}{scope}: {description}",
		IgnoredPatterns: "*.log,*.tmp,*.swp,*.swo,*.bak,.DS_Store,*.pyc,*.cache,dist,build,coverage,node_modules,__pycache__,*.egg-info,.vscode,.idea,venv,.venv",
	}
}

// Load reads the configuration file at path. A missing file is not an error:
// the defaults are returned so the agent can run unconfigured in dry-run mode.
// An unreadable or unparseable file is a fatal ConfigInvalid error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	file, err := ini.Load(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse config file").
			WithDetail("path", path)
	}

	if err := file.Section(ini.DefaultSection).MapTo(cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to decode config file").
			WithDetail("path", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks invariants the rest of the pipeline relies on.
func (c *Config) Validate() error {
	if c.DebounceTime < 1 {
		return errors.ConfigInvalid("debounce_time must be at least 1 second")
	}
	if !strings.Contains(c.CommitTemplate, "{description}") {
		return errors.ConfigInvalid("commit_template must contain the {description} placeholder")
	}
	return nil
}

// Debounce returns the debounce window as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceTime) * time.Second
}

// UserPatterns returns the user-supplied ignore patterns, split and trimmed.
func (c *Config) UserPatterns() []string {
	if c.IgnoredPatterns == "" {
		return nil
	}
	var patterns []string
	for _, p := range strings.Split(c.IgnoredPatterns, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}

// HasAPIKey reports whether a usable OpenRouter key is configured.
func (c *Config) HasAPIKey() bool {
	return c.OpenRouterAPIKey != "" && c.OpenRouterAPIKey != "YOUR_API_KEY_HERE"
}
