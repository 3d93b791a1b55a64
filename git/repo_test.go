package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/grovetools/scribe/errors"
	"github.com/grovetools/scribe/logging"
	"github.com/grovetools/scribe/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestRepo(t *testing.T) (*Repo, string) {
	t.Helper()
	testutil.RequireGit(t)

	dir := t.TempDir()
	testutil.InitGitRepo(t, dir)

	repo, err := Open(dir, logging.NewLogger("git-test"))
	require.NoError(t, err)
	return repo, dir
}

func TestOpenRejectsNonRepo(t *testing.T) {
	testutil.RequireGit(t)

	_, err := Open(t.TempDir(), logging.NewLogger("git-test"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeRepoInvalid, errors.GetCode(err))
}

func TestOpenResolvesRootFromSubdirectory(t *testing.T) {
	repo, dir := openTestRepo(t)

	sub := filepath.Join(dir, "pkg", "deep")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	fromSub, err := Open(sub, logging.NewLogger("git-test"))
	require.NoError(t, err)
	assert.Equal(t, repo.Root(), fromSub.Root())
}

func TestIsRepo(t *testing.T) {
	_, dir := openTestRepo(t)

	assert.True(t, IsRepo(dir))
	assert.False(t, IsRepo(t.TempDir()))
}

func TestChangedFiles(t *testing.T) {
	repo, dir := openTestRepo(t)
	ctx := context.Background()

	files, err := repo.ChangedFiles(ctx)
	require.NoError(t, err)
	assert.Empty(t, files)

	testutil.WriteFile(t, dir, "new.txt", "hello")
	testutil.WriteFile(t, dir, "README.md", "# changed\n")

	files, err = repo.ChangedFiles(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"new.txt", "README.md"}, files)
}

func TestStageCommitAndSubject(t *testing.T) {
	repo, dir := openTestRepo(t)
	ctx := context.Background()

	testutil.WriteFile(t, dir, "src/feature.go", "package src\n")
	require.NoError(t, repo.Stage(ctx, []string{"src/feature.go"}))
	assert.True(t, repo.HasStagedChanges(ctx))

	require.NoError(t, repo.Commit(ctx, "✨ feat(src): add feature"))
	assert.False(t, repo.HasStagedChanges(ctx))

	subject, err := repo.HeadSubject(ctx)
	require.NoError(t, err)
	assert.Equal(t, "✨ feat(src): add feature", subject)
}

func TestStageOnlyRequestedPaths(t *testing.T) {
	repo, dir := openTestRepo(t)
	ctx := context.Background()

	testutil.WriteFile(t, dir, "wanted.txt", "yes")
	testutil.WriteFile(t, dir, "unwanted.txt", "no")

	require.NoError(t, repo.Stage(ctx, []string{"wanted.txt"}))
	require.NoError(t, repo.Commit(ctx, "chore: add wanted"))

	files, err := repo.ChangedFiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"unwanted.txt"}, files, "unrequested file stays uncommitted")
}

func TestStageRemovedFile(t *testing.T) {
	repo, dir := openTestRepo(t)
	ctx := context.Background()

	require.NoError(t, os.Remove(filepath.Join(dir, "README.md")))
	require.NoError(t, repo.Stage(ctx, []string{"README.md"}))
	require.NoError(t, repo.Commit(ctx, "🗑️ remove: drop readme"))

	files, err := repo.ChangedFiles(ctx)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestStageRejectsUnsafePaths(t *testing.T) {
	repo, _ := openTestRepo(t)
	ctx := context.Background()

	err := repo.Stage(ctx, []string{"../outside.txt"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeGitStageFailed, errors.GetCode(err))

	err = repo.Stage(ctx, []string{"a;rm -rf /"})
	require.Error(t, err)
}

func TestCommitEmptyMessageRejected(t *testing.T) {
	repo, _ := openTestRepo(t)

	err := repo.Commit(context.Background(), "   ")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeGitCommitFailed, errors.GetCode(err))
}

func TestEnsureBranch(t *testing.T) {
	repo, dir := openTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.EnsureBranch(ctx, "develop"))
	branch, err := repo.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "develop", branch)

	// Existing branch: switch, not create.
	require.NoError(t, repo.EnsureBranch(ctx, "main"))
	require.NoError(t, repo.EnsureBranch(ctx, "develop"))
	branch, err = repo.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "develop", branch)

	assert.Error(t, repo.EnsureBranch(ctx, "bad branch name"))
	_ = dir
}

func TestPushToBareRemote(t *testing.T) {
	repo, dir := openTestRepo(t)
	ctx := context.Background()
	remote := testutil.InitBareRemote(t, dir)

	require.NoError(t, repo.Push(ctx, "main"))

	// The remote now has the commit.
	subject := testutil.RunGit(t, remote, "log", "-1", "--pretty=%s")
	assert.Equal(t, "Initial commit", subject)
}

func TestPushWithoutRemoteFails(t *testing.T) {
	repo, _ := openTestRepo(t)

	err := repo.Push(context.Background(), "main")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeGitPushFailed, errors.GetCode(err))
}

func TestDiffTruncation(t *testing.T) {
	repo, dir := openTestRepo(t)
	ctx := context.Background()

	testutil.WriteFile(t, dir, "README.md", "# Test Project\nplus a lot of new content here\n")

	full, err := repo.Diff(ctx, 0)
	require.NoError(t, err)
	assert.Contains(t, full, "new content")

	short, err := repo.Diff(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, short, 10)
}

func TestIndexLocked(t *testing.T) {
	repo, _ := openTestRepo(t)

	assert.False(t, repo.IndexLocked())
	require.NoError(t, os.WriteFile(repo.IndexLockPath(), nil, 0o600))
	assert.True(t, repo.IndexLocked())
}
