package config

import (
	"os"

	"github.com/grovetools/scribe/errors"
)

const defaultConfigContent = `[DEFAULT]
# OpenRouter API key (required for AI-generated descriptions)
openrouter_api_key = YOUR_API_KEY_HERE

# AI model to use
model = openai/gpt-4o

# Language for commit messages (english, français, español, etc.)
language = english

# Branch to commit and push to
branch = main

# Quiet period after the last file change before a commit (seconds)
debounce_time = 10

# Push automatically after each commit
auto_push = true

# Simulate commits without touching the repository
dry_run = false

# Commit message template
# Placeholders: {emoji}, {commit_type}, {scope}, {description}
# Example: ✨ feat(auth): add JWT authentication
commit_template = {emoji} {commit_type}{scope}: {description}

# Extra file patterns to ignore (comma-separated globs)
ignored_patterns = *.log,*.tmp,*.swp,*.swo,*.bak,.DS_Store,*.pyc,*.cache,dist,build,coverage,node_modules,__pycache__,*.egg-info,.vscode,.idea,venv,.venv

# Optional: attribution headers sent to OpenRouter
site_url =
site_name =
`

// WriteDefault writes a commented default configuration file for --setup.
// It refuses to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return errors.ConfigInvalid("config file already exists: " + path)
	}

	if err := os.WriteFile(path, []byte(defaultConfigContent), 0o600); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to write default config").
			WithDetail("path", path)
	}
	return nil
}
