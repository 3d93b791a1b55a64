package conventional

// Type is a conventional-commit type with its emoji and the keywords that
// vote for it during classification.
type Type struct {
	Name     string
	Emoji    string
	Keywords []string
}

// Types lists every known commit type in priority order: when two types score
// equally, the earlier one wins. Chore is the fallback for changesets nothing
// else claims.
var Types = []Type{
	{Name: "feat", Emoji: "✨", Keywords: []string{"add", "create", "implement", "introduce", "new", "feature", "endpoint", "component"}},
	{Name: "fix", Emoji: "🐛", Keywords: []string{"fix", "resolve", "correct", "repair", "bug", "error", "issue", "crash", "exception"}},
	{Name: "docs", Emoji: "📚", Keywords: []string{"readme", "documentation", "comment", "doc", "guide", "tutorial", "example"}},
	{Name: "style", Emoji: "💅", Keywords: []string{"format", "style", "lint", "prettier", "whitespace", "semicolon", "indent"}},
	{Name: "refactor", Emoji: "♻️", Keywords: []string{"refactor", "restructure", "reorganize", "rename", "move", "extract", "split"}},
	{Name: "perf", Emoji: "⚡", Keywords: []string{"performance", "optimize", "speed", "faster", "cache", "memory", "efficient"}},
	{Name: "test", Emoji: "🧪", Keywords: []string{"test", "spec", "unittest", "testing", "mock", "fixture", "assert"}},
	{Name: "chore", Emoji: "🔧", Keywords: []string{"config", "build", "deps", "dependency", "package", "setup", "tool"}},
	{Name: "security", Emoji: "🔒", Keywords: []string{"security", "auth", "permission", "vulnerability", "sanitize", "encrypt"}},
	{Name: "update", Emoji: "🔄", Keywords: []string{"update", "upgrade", "bump", "change", "modify", "version", "migrate"}},
	{Name: "remove", Emoji: "🗑️", Keywords: []string{"remove", "delete", "clean", "unused", "deprecated", "obsolete"}},
	{Name: "init", Emoji: "🎉", Keywords: []string{"initial", "first", "scaffold", "bootstrap", "initialize"}},
}

// TypeByName looks up a type by its conventional name. The second return is
// false for unknown names.
func TypeByName(name string) (Type, bool) {
	for _, t := range Types {
		if t.Name == name {
			return t, true
		}
	}
	return Type{}, false
}

// Chore is the default type when classification finds no signal.
func Chore() Type {
	t, _ := TypeByName("chore")
	return t
}
