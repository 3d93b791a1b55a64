package conventional

import (
	"path"
	"strings"
)

// Path-derived hints outweigh single keyword hits but not a strong keyword
// consensus.
const (
	keywordScore = 1.0
	hintScore    = 2.5
)

// Classify picks the commit type for a changeset from its file paths and
// combined diff text. Scoring is case-insensitive substring keyword counting;
// the highest score wins and ties resolve in the fixed priority order of
// Types. A changeset with no signal at all is a chore.
func Classify(paths []string, diff string) Type {
	haystack := strings.ToLower(diff + "\n" + strings.Join(paths, "\n"))

	scores := make(map[string]float64, len(Types))
	for _, t := range Types {
		for _, kw := range t.Keywords {
			scores[t.Name] += keywordScore * float64(strings.Count(haystack, kw))
		}
	}

	if allDocs(paths) {
		scores["docs"] += hintScore
	}
	if anyTestFile(paths) {
		scores["test"] += hintScore
	}
	if anyManifest(paths) {
		scores["chore"] += hintScore
	}

	best := Chore()
	bestScore := 0.0
	for _, t := range Types {
		if scores[t.Name] > bestScore {
			best = t
			bestScore = scores[t.Name]
		}
	}
	return best
}

func allDocs(paths []string) bool {
	if len(paths) == 0 {
		return false
	}
	for _, p := range paths {
		switch strings.ToLower(path.Ext(p)) {
		case ".md", ".rst", ".txt", ".adoc":
		default:
			return false
		}
	}
	return true
}

func anyTestFile(paths []string) bool {
	for _, p := range paths {
		base := strings.ToLower(path.Base(p))
		if strings.HasSuffix(base, "_test.go") ||
			strings.HasPrefix(base, "test_") ||
			strings.Contains(base, ".spec.") ||
			strings.Contains(base, ".test.") {
			return true
		}
	}
	return false
}

func anyManifest(paths []string) bool {
	for _, p := range paths {
		base := strings.ToLower(path.Base(p))
		switch base {
		case "go.mod", "go.sum", "package.json", "package-lock.json", "yarn.lock",
			"cargo.toml", "cargo.lock", "requirements.txt", "pyproject.toml",
			"gemfile", "composer.json", "makefile", "dockerfile":
			return true
		}
		switch strings.ToLower(path.Ext(p)) {
		case ".yml", ".yaml", ".toml", ".ini":
			return true
		}
	}
	return false
}

// Scope derives a conventional-commit scope from the changed paths: the name
// of the deepest directory common to all of them, empty when they share none.
func Scope(paths []string) string {
	if len(paths) == 0 {
		return ""
	}

	common := path.Dir(paths[0])
	for _, p := range paths[1:] {
		dir := path.Dir(p)
		for common != "." && common != dir && !strings.HasPrefix(dir+"/", common+"/") {
			common = path.Dir(common)
		}
		if common == "." {
			return ""
		}
	}
	if common == "." || common == "/" {
		return ""
	}
	return path.Base(common)
}
