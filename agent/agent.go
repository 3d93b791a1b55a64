package agent

import (
	"context"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/scribe/config"
	"github.com/grovetools/scribe/detect"
	"github.com/grovetools/scribe/errors"
	"github.com/grovetools/scribe/git"
	"github.com/grovetools/scribe/ignore"
	"github.com/grovetools/scribe/logging"
	"github.com/grovetools/scribe/metrics"
	"github.com/grovetools/scribe/openrouter"
	"github.com/grovetools/scribe/secrets"
	"github.com/grovetools/scribe/watch"
)

// maxDiffBytes bounds how much diff text is pulled out of git per changeset.
const maxDiffBytes = 256 * 1024

// Agent wires the whole pipeline: detector, ignore matcher, aggregator,
// synthesizer and orchestrator around one repository.
type Agent struct {
	cfg    *config.Config
	repo   *git.Repo
	logger *logrus.Entry

	matcher      *ignore.Matcher
	synthesizer  *Synthesizer
	orchestrator *Orchestrator
}

// New builds an agent for the repository at repoPath. Fails with REPO_INVALID
// when the path is not a git working tree.
func New(cfg *config.Config, repoPath string) (*Agent, error) {
	logger := logging.NewLogger("agent")

	repo, err := git.Open(repoPath, logging.NewLogger("git"))
	if err != nil {
		return nil, err
	}

	// Detect project tags once at startup; the ignore file and the matcher
	// both derive from the result.
	detector := detect.NewDetector(repo.Root(), logging.NewLogger("detect"))
	tags := detector.Detect()
	if !cfg.DryRun {
		if err := detector.WriteIgnoreFile(tags); err != nil {
			logger.WithError(err).Warn("Could not regenerate ignore file")
		}
	}

	patterns := append([]ignore.Pattern(nil), ignore.DefaultPatterns...)
	for _, glob := range cfg.UserPatterns() {
		patterns = append(patterns, ignore.Pattern{Glob: glob, Source: ignore.SourceUser})
	}
	for _, tag := range tags {
		for _, glob := range detect.TagPatterns(tag) {
			patterns = append(patterns, ignore.Pattern{Glob: glob, Source: ignore.Detected(tag)})
		}
	}
	matcher := ignore.NewMatcher(patterns, logging.NewLogger("ignore"))

	var delegate Describer
	if cfg.HasAPIKey() {
		delegate = openrouter.NewClient(cfg.OpenRouterAPIKey, logging.NewLogger("openrouter"),
			openrouter.WithAttribution(cfg.SiteURL, cfg.SiteName))
	} else {
		logger.Info("No API key configured, commit descriptions use the template fallback")
	}

	scanner := secrets.NewScanner(repo.Root(), logging.NewLogger("secrets"))
	journal := metrics.NewJournal(filepath.Join(repo.Root(), metrics.FileName), logging.NewLogger("metrics"))

	return &Agent{
		cfg:          cfg,
		repo:         repo,
		logger:       logger,
		matcher:      matcher,
		synthesizer:  NewSynthesizer(cfg, delegate, logging.NewLogger("synthesize")),
		orchestrator: NewOrchestrator(cfg, repo, scanner, journal, logging.NewLogger("orchestrate")),
	}, nil
}

// Repo exposes the underlying repository handle.
func (a *Agent) Repo() *git.Repo {
	return a.repo
}

// Run watches the tree and commits debounced changesets until ctx is
// cancelled. Cancellation is a clean stop; only unrecoverable watch or
// startup errors are returned.
func (a *Agent) Run(ctx context.Context) error {
	if err := a.orchestrator.EnsureInitialCommit(ctx); err != nil {
		return err
	}

	aggregator := watch.NewAggregator(a.repo.Root(), a.matcher, a.cfg.Debounce(), logging.NewLogger("watch"))
	changesets := aggregator.Run(ctx)

	a.logger.WithFields(logrus.Fields{
		"repo":     a.repo.Root(),
		"branch":   a.cfg.Branch,
		"debounce": a.cfg.Debounce(),
		"dry_run":  a.cfg.DryRun,
	}).Info("Watching for changes")

	for cs := range changesets {
		if err := a.process(ctx, cs); err != nil {
			if errors.IsFatal(err) {
				return err
			}
			a.logger.WithError(err).Error("Commit cycle failed, continuing to watch")
		}
	}

	if err := aggregator.Err(); err != nil {
		return err
	}
	a.logger.Info("Shutting down")
	return nil
}

// CommitOnce synthesizes and commits the current working-tree changes without
// watching. Used by the one-shot commit command.
func (a *Agent) CommitOnce(ctx context.Context) (*Result, error) {
	files, err := a.repo.ChangedFiles(ctx)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, f := range files {
		if !a.matcher.Matches(f) {
			paths = append(paths, f)
		}
	}
	if len(paths) == 0 {
		a.logger.Info("Working tree clean, nothing to commit")
		return &Result{DryRun: a.cfg.DryRun}, nil
	}

	return a.commit(ctx, paths)
}

func (a *Agent) process(ctx context.Context, cs *watch.Changeset) error {
	a.logger.WithField("files", cs.Len()).Info("Changeset ready")
	_, err := a.commit(ctx, cs.Paths())
	return err
}

func (a *Agent) commit(ctx context.Context, paths []string) (*Result, error) {
	diff, err := a.repo.Diff(ctx, maxDiffBytes)
	if err != nil {
		a.logger.WithError(err).Debug("Could not read diff, classifying from paths only")
		diff = ""
	}

	syn := a.synthesizer.Synthesize(ctx, paths, diff)
	return a.orchestrator.Commit(ctx, paths, syn)
}
