package conventional

import (
	"fmt"
	"path"
	"strings"
)

// MaxSubjectLength caps the rendered commit subject line.
const MaxSubjectLength = 72

// Message is a fully-determined commit message before rendering.
type Message struct {
	Type        Type
	Scope       string
	Description string
}

// Render substitutes the message into a template using the placeholders
// {emoji}, {commit_type}, {scope} and {description}. The scope placeholder
// renders as "(name)" or disappears entirely when no scope was derived.
func Render(template string, m Message) string {
	scope := ""
	if m.Scope != "" {
		scope = "(" + m.Scope + ")"
	}

	r := strings.NewReplacer(
		"{emoji}", m.Type.Emoji,
		"{commit_type}", m.Type.Name,
		"{scope}", scope,
		"{description}", m.Description,
	)
	return truncate(strings.TrimSpace(r.Replace(template)), MaxSubjectLength)
}

// Clean normalizes raw delegate output into a usable description: strips
// wrapping quotes, markdown litter and any prefix the model added on its own
// (emoji, "type:", "type(scope):"), leaving just the description text.
func Clean(raw string, t Type) string {
	s := strings.TrimSpace(raw)
	// Keep only the first line of a multi-line reply.
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = strings.TrimSpace(s[:idx])
	}
	s = strings.Trim(s, "\"'`")
	s = strings.TrimSpace(s)

	s = strings.TrimPrefix(s, t.Emoji)
	s = strings.TrimSpace(s)

	// Drop a "type:" or "type(scope):" prefix regardless of which type the
	// model chose for itself.
	if colon := strings.Index(s, ":"); colon > 0 {
		head := s[:colon]
		name := head
		if paren := strings.Index(head, "("); paren > 0 && strings.HasSuffix(head, ")") {
			name = head[:paren]
		}
		if _, known := TypeByName(strings.ToLower(strings.TrimSpace(name))); known {
			s = strings.TrimSpace(s[colon+1:])
		}
	}

	s = strings.TrimSuffix(s, ".")
	return strings.TrimSpace(s)
}

// FallbackDescription builds a deterministic description from the changed
// paths when no delegate output is available. Always non-empty for a
// non-empty path list.
func FallbackDescription(paths []string) string {
	switch len(paths) {
	case 0:
		return "update project files"
	case 1:
		return "update " + path.Base(paths[0])
	}

	if scope := Scope(paths); scope != "" {
		return fmt.Sprintf("update %d files in %s", len(paths), scope)
	}
	return fmt.Sprintf("update %d files", len(paths))
}

// truncate shortens s to max runes, reserving room for an ellipsis.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
