package agent

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/scribe/config"
	"github.com/grovetools/scribe/conventional"
	"github.com/grovetools/scribe/openrouter"
)

// maxDiffSample bounds how much diff text is sent to the delegate.
const maxDiffSample = 4000

// Describer generates a one-line commit description. *openrouter.Client
// implements it; tests inject fakes.
type Describer interface {
	Describe(ctx context.Context, req openrouter.Request) (string, error)
}

// Synthesis is a fully-rendered commit message plus how it was produced.
type Synthesis struct {
	Message        string
	Type           conventional.Type
	Scope          string
	Delegated      bool
	ModelUsed      string
	GenerationTime time.Duration
}

// Synthesizer turns a changeset into a commit message. Synthesis is total:
// when the delegate is absent or fails in any way, the template fallback
// produces a message instead.
type Synthesizer struct {
	cfg      *config.Config
	delegate Describer // nil when no API key is configured
	logger   *logrus.Entry
}

func NewSynthesizer(cfg *config.Config, delegate Describer, logger *logrus.Entry) *Synthesizer {
	return &Synthesizer{cfg: cfg, delegate: delegate, logger: logger}
}

// Synthesize classifies the changeset and renders its commit message.
func (s *Synthesizer) Synthesize(ctx context.Context, paths []string, diff string) Synthesis {
	commitType := conventional.Classify(paths, diff)
	scope := conventional.Scope(paths)

	result := Synthesis{Type: commitType, Scope: scope}
	description := ""

	if s.delegate != nil {
		start := time.Now()
		raw, err := s.delegate.Describe(ctx, openrouter.Request{
			Model:      s.cfg.Model,
			Language:   s.cfg.Language,
			CommitType: commitType.Name,
			Emoji:      commitType.Emoji,
			Files:      paths,
			DiffSample: truncateDiff(diff),
		})
		result.GenerationTime = time.Since(start)

		if err != nil {
			s.logger.WithError(err).Warn("Delegate failed, falling back to template description")
		} else if cleaned := conventional.Clean(raw, commitType); cleaned != "" {
			description = cleaned
			result.Delegated = true
			result.ModelUsed = s.cfg.Model
		}
	}

	if description == "" {
		description = conventional.FallbackDescription(paths)
	}

	result.Message = conventional.Render(s.cfg.CommitTemplate, conventional.Message{
		Type:        commitType,
		Scope:       scope,
		Description: description,
	})
	return result
}

func truncateDiff(diff string) string {
	if len(diff) > maxDiffSample {
		return diff[:maxDiffSample]
	}
	return diff
}
