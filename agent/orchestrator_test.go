package agent

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/grovetools/scribe/config"
	"github.com/grovetools/scribe/conventional"
	"github.com/grovetools/scribe/errors"
	"github.com/grovetools/scribe/git"
	"github.com/grovetools/scribe/logging"
	"github.com/grovetools/scribe/metrics"
	"github.com/grovetools/scribe/secrets"
	"github.com/grovetools/scribe/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrchestrator(t *testing.T, cfg *config.Config) (*Orchestrator, *git.Repo, string) {
	t.Helper()
	testutil.RequireGit(t)

	dir := t.TempDir()
	testutil.InitGitRepo(t, dir)

	repo, err := git.Open(dir, logging.NewLogger("git-test"))
	require.NoError(t, err)

	o := NewOrchestrator(cfg, repo,
		secrets.NewScanner(repo.Root(), logging.NewLogger("secrets-test")),
		metrics.NewJournal(filepath.Join(repo.Root(), metrics.FileName), logging.NewLogger("metrics-test")),
		logging.NewLogger("orchestrate-test"))
	o.sleep = func(time.Duration) {}
	return o, repo, dir
}

func testSynthesis(msg string) Synthesis {
	t, _ := conventional.TypeByName("feat")
	return Synthesis{Message: msg, Type: t}
}

func TestCommitCycle(t *testing.T) {
	cfg := config.Default()
	cfg.AutoPush = false
	o, repo, dir := newTestOrchestrator(t, cfg)
	ctx := context.Background()

	testutil.WriteFile(t, dir, "feature.go", "package main\n")

	result, err := o.Commit(ctx, []string{"feature.go"}, testSynthesis("✨ feat: add feature"))
	require.NoError(t, err)
	assert.True(t, result.Committed)
	assert.False(t, result.Pushed)

	subject, err := repo.HeadSubject(ctx)
	require.NoError(t, err)
	assert.Equal(t, "✨ feat: add feature", subject)

	// Metrics journal got a record.
	j := metrics.NewJournal(filepath.Join(repo.Root(), metrics.FileName), logging.NewLogger("metrics-test"))
	records, err := j.Read()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "feat", records[0].CommitType)
}

func TestCommitPushesWhenConfigured(t *testing.T) {
	cfg := config.Default()
	o, _, dir := newTestOrchestrator(t, cfg)
	ctx := context.Background()
	remote := testutil.InitBareRemote(t, dir)

	testutil.WriteFile(t, dir, "pushed.txt", "x")
	result, err := o.Commit(ctx, []string{"pushed.txt"}, testSynthesis("✨ feat: add pushed"))
	require.NoError(t, err)
	assert.True(t, result.Pushed)

	subject := testutil.RunGit(t, remote, "log", "-1", "--pretty=%s")
	assert.Equal(t, "✨ feat: add pushed", subject)
}

func TestDryRunPerformsNoMutations(t *testing.T) {
	cfg := config.Default()
	cfg.DryRun = true
	o, repo, dir := newTestOrchestrator(t, cfg)
	ctx := context.Background()

	testutil.WriteFile(t, dir, "pending.txt", "x")

	result, err := o.Commit(ctx, []string{"pending.txt"}, testSynthesis("✨ feat: would commit"))
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.False(t, result.Committed)
	assert.False(t, result.Pushed)

	// The working tree still has the uncommitted file and HEAD is untouched.
	files, err := repo.ChangedFiles(ctx)
	require.NoError(t, err)
	assert.Contains(t, files, "pending.txt")

	subject, err := repo.HeadSubject(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Initial commit", subject)
}

func TestSecretsExcludedFromCommit(t *testing.T) {
	cfg := config.Default()
	o, repo, dir := newTestOrchestrator(t, cfg)
	ctx := context.Background()
	testutil.InitBareRemote(t, dir)

	testutil.WriteFile(t, dir, "safe.go", "package main\n")
	testutil.WriteFile(t, dir, "creds.env", `api_key = "sk-live-12345"`)

	result, err := o.Commit(ctx, []string{"safe.go", "creds.env"}, testSynthesis("✨ feat: add safe"))
	require.NoError(t, err)
	assert.True(t, result.Committed)
	assert.Equal(t, []string{"safe.go"}, result.Files)
	require.Len(t, result.Excluded, 1)
	assert.Equal(t, "creds.env", result.Excluded[0].Path)

	// Push is withheld when secrets were seen, even with auto_push on.
	assert.False(t, result.Pushed)

	// The offending file stays out of history.
	files, err := repo.ChangedFiles(ctx)
	require.NoError(t, err)
	assert.Contains(t, files, "creds.env")
	assert.NotContains(t, files, "safe.go")
}

func TestAllFilesSecretProducesNoCommit(t *testing.T) {
	cfg := config.Default()
	o, repo, dir := newTestOrchestrator(t, cfg)
	ctx := context.Background()

	testutil.WriteFile(t, dir, "creds.env", `password = "hunter2"`)

	result, err := o.Commit(ctx, []string{"creds.env"}, testSynthesis("chore: update"))
	require.NoError(t, err)
	assert.False(t, result.Committed)
	assert.Empty(t, result.Files)

	subject, err := repo.HeadSubject(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Initial commit", subject)
}

func TestIndexLockRetriesThenFails(t *testing.T) {
	cfg := config.Default()
	o, repo, dir := newTestOrchestrator(t, cfg)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(repo.IndexLockPath(), nil, 0o600))
	testutil.WriteFile(t, dir, "x.txt", "x")

	var slept int
	o.sleep = func(time.Duration) { slept++ }

	_, err := o.Commit(ctx, []string{"x.txt"}, testSynthesis("chore: update"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeGitLocked, errors.GetCode(err))
	assert.Equal(t, lockRetries, slept)
}

func TestIndexLockReleasedMidRetry(t *testing.T) {
	cfg := config.Default()
	cfg.AutoPush = false
	o, repo, dir := newTestOrchestrator(t, cfg)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(repo.IndexLockPath(), nil, 0o600))
	testutil.WriteFile(t, dir, "x.txt", "x")

	o.sleep = func(time.Duration) {
		_ = os.Remove(repo.IndexLockPath())
	}

	result, err := o.Commit(ctx, []string{"x.txt"}, testSynthesis("chore: update"))
	require.NoError(t, err)
	assert.True(t, result.Committed)
}

func TestEnsureInitialCommit(t *testing.T) {
	testutil.RequireGit(t)
	dir := t.TempDir()
	testutil.RunGit(t, dir, "init")
	testutil.RunGit(t, dir, "config", "user.name", "Test User")
	testutil.RunGit(t, dir, "config", "user.email", "test@example.com")
	testutil.WriteFile(t, dir, "seed.txt", "hello")

	repo, err := git.Open(dir, logging.NewLogger("git-test"))
	require.NoError(t, err)

	cfg := config.Default()
	o := NewOrchestrator(cfg, repo,
		secrets.NewScanner(repo.Root(), logging.NewLogger("secrets-test")),
		metrics.NewJournal(filepath.Join(repo.Root(), metrics.FileName), logging.NewLogger("metrics-test")),
		logging.NewLogger("orchestrate-test"))

	ctx := context.Background()
	require.NoError(t, o.EnsureInitialCommit(ctx))
	assert.True(t, repo.HasCommits(ctx))

	subject, err := repo.HeadSubject(ctx)
	require.NoError(t, err)
	assert.Equal(t, "🎉 Initial commit", subject)

	// Idempotent once commits exist.
	require.NoError(t, o.EnsureInitialCommit(ctx))
}
