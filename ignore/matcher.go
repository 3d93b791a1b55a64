package ignore

import (
	"path/filepath"
	"strings"

	"github.com/moby/patternmatcher"
	"github.com/sirupsen/logrus"
)

// Source identifies where an ignore pattern came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceUser    Source = "user"
)

// Detected returns the source tag for a pattern contributed by a detected
// language/framework tag.
func Detected(tag string) Source {
	return Source("detected:" + tag)
}

// Pattern is a glob plus its provenance. Patterns are immutable once loaded.
type Pattern struct {
	Glob   string
	Source Source
}

// DefaultPatterns is the fixed set every matcher starts with, independent of
// configuration and detection.
var DefaultPatterns = []Pattern{
	{Glob: ".git", Source: SourceDefault},
	{Glob: ".commit_metrics.jsonl", Source: SourceDefault},
	{Glob: "git-agent-config.ini", Source: SourceDefault},
	{Glob: "*.swp", Source: SourceDefault},
	{Glob: "*.swo", Source: SourceDefault},
	{Glob: "*~", Source: SourceDefault},
	{Glob: ".DS_Store", Source: SourceDefault},
}

// Matcher tests repository-relative paths against a compiled pattern set.
// A path is ignored if any pattern matches it or one of its parent
// directories; there are no negation semantics, so evaluation order cannot
// affect the result.
type Matcher struct {
	patterns []Pattern
	pm       *patternmatcher.PatternMatcher
}

// NewMatcher compiles the given patterns. Unparseable patterns (and negation
// patterns, which the matcher does not support) are reported once via the
// logger and skipped; compilation itself never fails.
func NewMatcher(patterns []Pattern, logger *logrus.Entry) *Matcher {
	var kept []Pattern
	var globs []string
	seen := make(map[string]bool)

	for _, p := range patterns {
		glob := normalize(p.Glob)
		if glob == "" || seen[glob] {
			continue
		}
		if strings.HasPrefix(glob, "!") {
			logger.Warnf("Skipping negation pattern %q (source %s): negation is not supported", p.Glob, p.Source)
			continue
		}
		if _, err := patternmatcher.New([]string{glob}); err != nil {
			logger.Warnf("Skipping unparseable pattern %q (source %s): %v", p.Glob, p.Source, err)
			continue
		}
		seen[glob] = true
		kept = append(kept, Pattern{Glob: glob, Source: p.Source})
		globs = append(globs, glob)
	}

	pm, err := patternmatcher.New(globs)
	if err != nil {
		// Each glob compiled individually above; a combined failure would be
		// a patternmatcher bug. Fall back to matching nothing.
		logger.WithError(err).Error("Failed to compile pattern set")
		pm, _ = patternmatcher.New(nil)
	}

	return &Matcher{patterns: kept, pm: pm}
}

// normalize converts a gitignore-style pattern into the matcher's form:
// slash-separated, no leading "./" or "/", no trailing "/" (a directory
// pattern covers everything beneath it via parent matching).
func normalize(glob string) string {
	glob = strings.TrimSpace(glob)
	glob = filepath.ToSlash(glob)
	glob = strings.TrimPrefix(glob, "./")
	glob = strings.TrimPrefix(glob, "/")
	glob = strings.TrimSuffix(glob, "/")
	return glob
}

// Patterns returns the compiled working set, deduplicated in load order.
func (m *Matcher) Patterns() []Pattern {
	return m.patterns
}

// Matches reports whether the repository-relative path should be ignored.
// Paths inside the version-control metadata directory always match.
func (m *Matcher) Matches(relPath string) bool {
	relPath = strings.TrimPrefix(filepath.ToSlash(relPath), "./")
	if relPath == "" || relPath == "." {
		return false
	}
	if relPath == ".git" || strings.HasPrefix(relPath, ".git/") {
		return true
	}

	matched, err := m.pm.MatchesOrParentMatches(relPath)
	if err != nil {
		return false
	}
	return matched
}
