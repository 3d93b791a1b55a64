package secrets

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// maxScanBytes caps how much of a file the scanner reads. Generated or
// binary blobs larger than this are skipped rather than scanned partially.
const maxScanBytes = 1 << 20

// patterns matches credential assignments and key material. All matching is
// case-insensitive.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)api[_-]?key\s*=\s*['"].+['"]`),
	regexp.MustCompile(`(?i)api[_-]?token\s*=\s*['"].+['"]`),
	regexp.MustCompile(`(?i)token\s*=\s*['"].+['"]`),
	regexp.MustCompile(`(?i)secret\s*=\s*['"].+['"]`),
	regexp.MustCompile(`(?i)secret[_-]?key\s*=\s*['"].+['"]`),
	regexp.MustCompile(`(?i)client[_-]?secret\s*=\s*['"].+['"]`),
	regexp.MustCompile(`(?i)password\s*=\s*['"].+['"]`),
	regexp.MustCompile(`(?i)passwd\s*=\s*['"].+['"]`),
	regexp.MustCompile(`(?i)pwd\s*=\s*['"].+['"]`),
	regexp.MustCompile(`(?i)auth[_-]?token\s*=\s*['"].+['"]`),
	regexp.MustCompile(`(?i)access[_-]?token\s*=\s*['"].+['"]`),
	regexp.MustCompile(`(?i)refresh[_-]?token\s*=\s*['"].+['"]`),
	regexp.MustCompile(`(?i)db[_-]?password\s*=\s*['"].+['"]`),
	regexp.MustCompile(`(?i)database[_-]?url\s*=\s*['"].+['"]`),
	regexp.MustCompile(`(?i)email[_-]?password\s*=\s*['"].+['"]`),
	regexp.MustCompile(`AWS_ACCESS_KEY_ID\s*=\s*['"][A-Z0-9]{20}['"]`),
	regexp.MustCompile(`AWS_SECRET_ACCESS_KEY\s*=\s*['"][A-Za-z0-9/+=]{40}['"]`),
	regexp.MustCompile(`(?i)google_api_key\s*=\s*['"].+['"]`),
	regexp.MustCompile(`(?i)azure_client_secret\s*=\s*['"].+['"]`),
	regexp.MustCompile(`(?i)openai_api_key\s*=\s*['"].+['"]`),
	regexp.MustCompile(`(?i)openrouter_api_key\s*=\s*['"].+['"]`),
	regexp.MustCompile(`-----BEGIN (?:PRIVATE|RSA PRIVATE|DSA PRIVATE|EC PRIVATE|OPENSSH PRIVATE) KEY-----`),
}

// Finding is one sensitive match inside a file.
type Finding struct {
	Path string
	Line int
	Text string
}

// Scanner checks files for credential-looking content before they are staged.
type Scanner struct {
	root   string
	logger *logrus.Entry
}

func NewScanner(root string, logger *logrus.Entry) *Scanner {
	return &Scanner{root: root, logger: logger}
}

// ScanFile returns the findings in one repository-relative file. Unreadable
// or oversized files produce no findings.
func (s *Scanner) ScanFile(relPath string) []Finding {
	path := filepath.Join(s.root, relPath)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Size() > maxScanBytes {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.WithError(err).Debugf("Could not read %s for secret scan", relPath)
		return nil
	}

	var findings []Finding
	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		for _, re := range patterns {
			if re.MatchString(line) {
				findings = append(findings, Finding{
					Path: relPath,
					Line: i + 1,
					Text: strings.TrimSpace(line),
				})
				break
			}
		}
	}
	return findings
}

// Scan checks every path and returns all findings. Each finding is logged as
// a warning so the operator can see what blocked the commit.
func (s *Scanner) Scan(relPaths []string) []Finding {
	var all []Finding
	for _, p := range relPaths {
		for _, f := range s.ScanFile(p) {
			s.logger.Warnf("Sensitive data in %s line %d: %s", f.Path, f.Line, f.Text)
			all = append(all, f)
		}
	}
	return all
}
