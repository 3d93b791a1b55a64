package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// RequireGit skips the test if the git binary is not available.
func RequireGit(t *testing.T) {
	t.Helper()

	if err := exec.Command("git", "version").Run(); err != nil {
		t.Skip("git not available")
	}
}

// RunGit runs a git command in dir, failing the test on error, and returns
// trimmed stdout.
func RunGit(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v failed: %v\n%s", args, err, output)
	}
	return strings.TrimSpace(string(output))
}

// InitGitRepo initializes a git repository with a test identity and one
// initial commit on a branch named main.
func InitGitRepo(t *testing.T, dir string) {
	t.Helper()

	RunGit(t, dir, "init")
	RunGit(t, dir, "config", "user.name", "Test User")
	RunGit(t, dir, "config", "user.email", "test@example.com")
	RunGit(t, dir, "config", "commit.gpgsign", "false")

	WriteFile(t, dir, "README.md", "# Test Project\n")
	RunGit(t, dir, "add", ".")
	RunGit(t, dir, "commit", "-m", "Initial commit")

	// Normalize the default branch name across git versions.
	cmd := exec.Command("git", "branch", "-m", "main")
	cmd.Dir = dir
	_ = cmd.Run()
}

// InitBareRemote creates a bare repository and wires it up as origin of dir.
func InitBareRemote(t *testing.T, dir string) string {
	t.Helper()

	remote := t.TempDir()
	RunGit(t, remote, "init", "--bare")
	// Normalize the default branch name across git versions.
	RunGit(t, remote, "symbolic-ref", "HEAD", "refs/heads/main")
	RunGit(t, dir, "remote", "add", "origin", remote)
	return remote
}

// WriteFile writes content to a path under dir, creating parent directories.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// CreateCommit writes a file and commits it.
func CreateCommit(t *testing.T, dir, name, content, message string) {
	t.Helper()

	WriteFile(t, dir, name, content)
	RunGit(t, dir, "add", "--", name)
	RunGit(t, dir, "commit", "-m", message)
}
