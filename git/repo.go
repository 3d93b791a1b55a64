package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/scribe/command"
	"github.com/grovetools/scribe/errors"
)

// Repo is a handle to one git working tree. All operations run git as a
// subprocess through the validated command builder, with the repository root
// as working directory.
type Repo struct {
	root    string
	builder *command.SafeBuilder
	logger  *logrus.Entry
}

// Open resolves dir to its repository root and returns a handle. Returns a
// REPO_INVALID error when dir is not inside a git repository.
func Open(dir string, logger *logrus.Entry) (*Repo, error) {
	builder := command.NewSafeBuilder()

	cmd, err := builder.Build(context.Background(), "git", "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, err
	}
	execCmd := cmd.Exec()
	execCmd.Dir = dir
	output, err := execCmd.Output()
	if err != nil {
		return nil, errors.RepoInvalid(dir)
	}

	root := strings.TrimSpace(string(output))
	return &Repo{root: root, builder: builder, logger: logger}, nil
}

// IsRepo reports whether dir is inside a git repository.
func IsRepo(dir string) bool {
	cmd, err := command.NewSafeBuilder().Build(context.Background(), "git", "rev-parse", "--git-dir")
	if err != nil {
		return false
	}
	execCmd := cmd.Exec()
	execCmd.Dir = dir
	return execCmd.Run() == nil
}

// Root returns the repository's top-level directory.
func (r *Repo) Root() string {
	return r.root
}

// IndexLockPath returns the path of the index lock file git creates while
// mutating the index.
func (r *Repo) IndexLockPath() string {
	return filepath.Join(r.root, ".git", "index.lock")
}

// IndexLocked reports whether another git process currently holds the index.
func (r *Repo) IndexLocked() bool {
	_, err := os.Stat(r.IndexLockPath())
	return err == nil
}

// run executes a git subcommand in the repository root and returns stdout.
// Failures carry the subcommand's stderr text.
func (r *Repo) run(ctx context.Context, code errors.ErrorCode, args ...string) (string, error) {
	cmd, err := r.builder.Build(ctx, "git", args...)
	if err != nil {
		return "", errors.Wrap(err, code, "failed to build git command")
	}

	execCmd := cmd.Exec()
	execCmd.Dir = r.root
	output, err := execCmd.Output()
	if err != nil {
		stderr := ""
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr = strings.TrimSpace(string(exitErr.Stderr))
		}
		return "", errors.GitFailed(code, args[0], err, stderr)
	}
	return string(output), nil
}

// CurrentBranch returns the checked-out branch name.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	out, err := r.run(ctx, errors.ErrCodeInternal, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// HasCommits reports whether the repository has at least one commit.
func (r *Repo) HasCommits(ctx context.Context) bool {
	_, err := r.run(ctx, errors.ErrCodeInternal, "rev-parse", "--verify", "HEAD")
	return err == nil
}

// EnsureBranch makes sure the named branch is checked out, creating it when
// it does not exist yet. A repository without commits is left alone: the
// first commit will create the branch.
func (r *Repo) EnsureBranch(ctx context.Context, branch string) error {
	if err := r.builder.Validate("gitRef", branch); err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid branch name")
	}
	if !r.HasCommits(ctx) {
		return nil
	}

	current, err := r.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	if current == branch {
		return nil
	}

	if _, err := r.run(ctx, errors.ErrCodeInternal, "rev-parse", "--verify", "refs/heads/"+branch); err != nil {
		r.logger.WithField("branch", branch).Info("Creating branch")
		_, err = r.run(ctx, errors.ErrCodeGitCommitFailed, "checkout", "-b", branch)
		return err
	}

	r.logger.WithField("branch", branch).Info("Switching branch")
	_, err = r.run(ctx, errors.ErrCodeGitCommitFailed, "checkout", branch)
	return err
}

// ChangedFiles returns the working-tree paths that differ from HEAD,
// untracked files included, as repository-relative slash paths.
func (r *Repo) ChangedFiles(ctx context.Context) ([]string, error) {
	out, err := r.run(ctx, errors.ErrCodeInternal, "status", "--porcelain")
	if err != nil {
		return nil, err
	}

	var files []string
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}
		// Porcelain v1: two status columns, a space, then the path.
		path := strings.TrimSpace(line[3:])
		// Renames render as "old -> new"; the new path is what changed.
		if idx := strings.Index(path, " -> "); idx >= 0 {
			path = path[idx+4:]
		}
		path = strings.Trim(path, `"`)
		if path != "" {
			files = append(files, path)
		}
	}
	return files, nil
}

// Diff returns the unified diff of unstaged and untracked-intent changes
// against HEAD, truncated to maxBytes. In a repository without commits it
// returns an empty diff.
func (r *Repo) Diff(ctx context.Context, maxBytes int) (string, error) {
	if !r.HasCommits(ctx) {
		return "", nil
	}
	out, err := r.run(ctx, errors.ErrCodeInternal, "diff", "HEAD")
	if err != nil {
		return "", err
	}
	if maxBytes > 0 && len(out) > maxBytes {
		out = out[:maxBytes]
	}
	return out, nil
}

// Stage adds exactly the given paths to the index. Paths are validated to
// keep shell metacharacters and traversal out of the argument list; the "--"
// separator keeps git from reading any path as an option.
func (r *Repo) Stage(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	for _, p := range paths {
		if err := r.builder.Validate("fileName", p); err != nil {
			return errors.Wrap(err, errors.ErrCodeGitStageFailed, "refusing to stage path").
				WithDetail("path", p)
		}
	}

	args := append([]string{"add", "-A", "--"}, paths...)
	_, err := r.run(ctx, errors.ErrCodeGitStageFailed, args...)
	return err
}

// HasStagedChanges reports whether the index differs from HEAD.
func (r *Repo) HasStagedChanges(ctx context.Context) bool {
	cmd, err := r.builder.Build(ctx, "git", "diff", "--cached", "--quiet")
	if err != nil {
		return false
	}
	execCmd := cmd.Exec()
	execCmd.Dir = r.root
	// Exit status 1 means differences exist.
	return execCmd.Run() != nil
}

// Commit records the staged changes with the given message.
func (r *Repo) Commit(ctx context.Context, message string) error {
	if strings.TrimSpace(message) == "" {
		return errors.New(errors.ErrCodeGitCommitFailed, "commit message cannot be empty")
	}
	_, err := r.run(ctx, errors.ErrCodeGitCommitFailed, "commit", "-m", message)
	return err
}

// Push publishes the branch to origin, setting upstream on first push.
func (r *Repo) Push(ctx context.Context, branch string) error {
	if err := r.builder.Validate("gitRef", branch); err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid branch name")
	}
	_, err := r.run(ctx, errors.ErrCodeGitPushFailed, "push", "-u", "origin", branch)
	return err
}

// HeadSubject returns the subject line of the latest commit.
func (r *Repo) HeadSubject(ctx context.Context) (string, error) {
	out, err := r.run(ctx, errors.ErrCodeInternal, "log", "-1", "--pretty=%s")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
