package detect

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/grovetools/scribe/errors"
)

const (
	IgnoreFileName = ".gitignore"
	commonHeader   = "# === Common files ==="
)

// ownEntries are scribe's working files, always excluded from version control.
var ownEntries = []string{".commit_metrics.jsonl", "git-agent-config.ini"}

// RenderIgnoreFile builds the full ignore-file content for the given tags:
// the common block first, then one block per tag in alphabetical order with
// its patterns sorted. Tags without a canned block are skipped. Output is
// byte-deterministic for a given tag set.
func RenderIgnoreFile(tags []string) string {
	var b strings.Builder
	b.WriteString("# Generated by scribe\n\n")

	writeBlock := func(header string, patterns []string) {
		b.WriteString(header)
		b.WriteByte('\n')
		sorted := append([]string(nil), patterns...)
		sort.Strings(sorted)
		for _, p := range sorted {
			b.WriteString(p)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}

	writeBlock(commonHeader, commonPatterns)

	sortedTags := append([]string(nil), tags...)
	sort.Strings(sortedTags)
	for _, tag := range sortedTags {
		patterns, ok := blockPatterns[tag]
		if !ok {
			continue
		}
		writeBlock("# === "+tag+" ===", patterns)
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// WriteIgnoreFile regenerates the ignore file at root from the detected tags.
// Regeneration overwrites the whole file, so repeated runs converge on the
// same bytes.
//
// A pre-existing ignore file not generated by scribe is left intact; only
// scribe's own working-file entries are appended when missing.
func (d *Detector) WriteIgnoreFile(tags []string) error {
	path := filepath.Join(d.root, IgnoreFileName)

	existing, err := os.ReadFile(path)
	switch {
	case err == nil && !strings.HasPrefix(string(existing), "# Generated by scribe"):
		return d.appendOwnEntries(path, string(existing))
	case err != nil && !os.IsNotExist(err):
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to read ignore file").
			WithDetail("path", path)
	}

	content := RenderIgnoreFile(tags)
	if string(existing) == content {
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to write ignore file").
			WithDetail("path", path)
	}

	d.logger.WithField("tags", tags).Info("Regenerated ignore file")
	return nil
}

func (d *Detector) appendOwnEntries(path, existing string) error {
	lines := make(map[string]bool)
	for _, line := range strings.Split(existing, "\n") {
		lines[strings.TrimSpace(line)] = true
	}

	var missing []string
	for _, entry := range ownEntries {
		if !lines[entry] {
			missing = append(missing, entry)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString(existing)
	if !strings.HasSuffix(existing, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString("\n# scribe working files\n")
	for _, entry := range missing {
		b.WriteString(entry)
		b.WriteByte('\n')
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to update ignore file").
			WithDetail("path", path)
	}
	d.logger.WithField("entries", missing).Info("Appended working-file entries to existing ignore file")
	return nil
}
