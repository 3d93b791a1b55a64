package agent

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/scribe/config"
	"github.com/grovetools/scribe/errors"
	"github.com/grovetools/scribe/git"
	"github.com/grovetools/scribe/metrics"
	"github.com/grovetools/scribe/secrets"
)

const (
	lockRetries    = 3
	lockRetryDelay = 2 * time.Second
)

// Result reports what one commit cycle did.
type Result struct {
	Message    string
	CommitType string
	Files      []string
	Excluded   []secrets.Finding // paths held back by the secrets scan
	Committed  bool
	Pushed     bool
	DryRun     bool
}

// Orchestrator executes the commit side of the pipeline: lock check, branch,
// secrets gate, stage, commit, metrics, push.
type Orchestrator struct {
	cfg     *config.Config
	repo    *git.Repo
	scanner *secrets.Scanner
	journal *metrics.Journal
	logger  *logrus.Entry

	// sleep is swapped in tests to skip real lock-retry delays.
	sleep func(time.Duration)
}

func NewOrchestrator(cfg *config.Config, repo *git.Repo, scanner *secrets.Scanner, journal *metrics.Journal, logger *logrus.Entry) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg,
		repo:    repo,
		scanner: scanner,
		journal: journal,
		logger:  logger,
		sleep:   time.Sleep,
	}
}

// Commit applies one synthesized changeset to the repository. Errors carry
// GIT_* codes and leave the repository consistent; the caller decides whether
// to keep watching.
func (o *Orchestrator) Commit(ctx context.Context, paths []string, syn Synthesis) (*Result, error) {
	result := &Result{
		Message:    syn.Message,
		CommitType: syn.Type.Name,
		DryRun:     o.cfg.DryRun,
	}

	if err := o.waitForIndexLock(ctx); err != nil {
		return nil, err
	}

	// Secrets gate: offending files are excluded, the rest still commits.
	findings := o.scanner.Scan(paths)
	excluded := make(map[string]bool, len(findings))
	for _, f := range findings {
		excluded[f.Path] = true
	}
	result.Excluded = findings

	for _, p := range paths {
		if !excluded[p] {
			result.Files = append(result.Files, p)
		}
	}
	if len(result.Files) == 0 {
		o.logger.Warn("All changed files held back by secrets scan, nothing to commit")
		return result, nil
	}

	if o.cfg.DryRun {
		o.logger.WithFields(logrus.Fields{
			"message": syn.Message,
			"files":   len(result.Files),
			"branch":  o.cfg.Branch,
		}).Info("[dry-run] Would stage, commit and push")
		o.appendMetrics(result, syn)
		return result, nil
	}

	if err := o.repo.EnsureBranch(ctx, o.cfg.Branch); err != nil {
		return nil, err
	}
	if err := o.repo.Stage(ctx, result.Files); err != nil {
		return nil, err
	}
	if !o.repo.HasStagedChanges(ctx) {
		o.logger.Debug("Nothing staged after merge, skipping commit")
		return result, nil
	}
	if err := o.repo.Commit(ctx, syn.Message); err != nil {
		return nil, err
	}
	result.Committed = true
	o.logger.WithField("message", syn.Message).Info("Committed")

	o.appendMetrics(result, syn)

	if o.cfg.AutoPush {
		if len(findings) > 0 {
			o.logger.Warn("Skipping push: sensitive data was detected in this changeset")
			return result, nil
		}
		if err := o.repo.Push(ctx, o.cfg.Branch); err != nil {
			return result, err
		}
		result.Pushed = true
		o.logger.WithField("branch", o.cfg.Branch).Info("Pushed")
	}

	return result, nil
}

// EnsureInitialCommit gives an unborn repository its first commit so the
// pipeline always has a HEAD to diff against. No-op in dry-run.
func (o *Orchestrator) EnsureInitialCommit(ctx context.Context) error {
	if o.repo.HasCommits(ctx) || o.cfg.DryRun {
		return nil
	}

	files, err := o.repo.ChangedFiles(ctx)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return nil
	}

	o.logger.Info("Repository has no commits, creating initial commit")
	if err := o.repo.Stage(ctx, files); err != nil {
		return err
	}
	return o.repo.Commit(ctx, "🎉 Initial commit")
}

func (o *Orchestrator) waitForIndexLock(ctx context.Context) error {
	for attempt := 1; attempt <= lockRetries; attempt++ {
		if !o.repo.IndexLocked() {
			return nil
		}
		o.logger.WithField("attempt", attempt).Warn("Git index is locked, waiting")
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		o.sleep(lockRetryDelay)
	}
	return errors.IndexLocked(o.repo.IndexLockPath(), lockRetries)
}

func (o *Orchestrator) appendMetrics(result *Result, syn Synthesis) {
	o.journal.Append(metrics.Record{
		CommitType:     syn.Type.Name,
		Message:        syn.Message,
		MessageLength:  len(syn.Message),
		FilesCount:     len(result.Files),
		ModelUsed:      syn.ModelUsed,
		GenerationTime: syn.GenerationTime.Seconds(),
		Delegated:      syn.Delegated,
		DryRun:         result.DryRun,
	})
}
