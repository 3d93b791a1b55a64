package detect

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grovetools/scribe/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDetector(t *testing.T) (*Detector, string) {
	t.Helper()
	root := t.TempDir()
	return NewDetector(root, logging.NewLogger("detect-test")), root
}

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDetectMarkers(t *testing.T) {
	d, root := newTestDetector(t)
	writeFile(t, root, "go.mod", "module example.com/x\n")
	writeFile(t, root, "Dockerfile", "FROM scratch\n")

	assert.Equal(t, []string{"docker", "go"}, d.Detect())
}

func TestDetectNextjsWithPython(t *testing.T) {
	d, root := newTestDetector(t)
	writeFile(t, root, "package.json", `{"dependencies": {"next": "^14.0.0"}}`)
	writeFile(t, root, "requirements.txt", "flask==3.0\n")

	assert.Equal(t, []string{"nextjs", "nodejs", "python"}, d.Detect())
}

func TestDetectFrameworksFromDependencies(t *testing.T) {
	d, root := newTestDetector(t)
	writeFile(t, root, "package.json",
		`{"dependencies": {"react": "^18"}, "devDependencies": {"vite": "^5"}}`)

	assert.Equal(t, []string{"nodejs", "react", "vite"}, d.Detect())
}

func TestDetectFlutterRequiresDependency(t *testing.T) {
	d, root := newTestDetector(t)
	writeFile(t, root, "pubspec.yaml", "name: app\ndependencies:\n  flutter:\n    sdk: flutter\n")
	assert.Equal(t, []string{"flutter"}, d.Detect())

	d2, root2 := newTestDetector(t)
	writeFile(t, root2, "pubspec.yaml", "name: app\ndependencies:\n  http: ^1.0.0\n")
	assert.Empty(t, d2.Detect(), "pure dart pubspec must not register as flutter")
}

func TestDetectByExtension(t *testing.T) {
	d, root := newTestDetector(t)
	writeFile(t, root, "scripts/tools/run.py", "print('hi')\n")

	assert.Equal(t, []string{"python"}, d.Detect())
}

func TestDetectExtensionWalkBounds(t *testing.T) {
	d, root := newTestDetector(t)
	// Depth 5 is past the bound; pruned dirs are never entered.
	writeFile(t, root, "a/b/c/d/deep.py", "")
	writeFile(t, root, "node_modules/pkg/index.py", "")

	assert.Empty(t, d.Detect())
}

func TestDetectMalformedManifestNotFatal(t *testing.T) {
	d, root := newTestDetector(t)
	writeFile(t, root, "package.json", "{not json")
	writeFile(t, root, "go.mod", "module example.com/x\n")

	// package.json still counts as a nodejs marker even when unparseable.
	assert.Equal(t, []string{"go", "nodejs"}, d.Detect())
}

func TestRenderIgnoreFile(t *testing.T) {
	content := RenderIgnoreFile([]string{"python", "nodejs", "nextjs"})

	commonIdx := strings.Index(content, commonHeader)
	nextjsIdx := strings.Index(content, "# === nextjs ===")
	nodejsIdx := strings.Index(content, "# === nodejs ===")
	pythonIdx := strings.Index(content, "# === python ===")

	require.GreaterOrEqual(t, commonIdx, 0)
	assert.Less(t, commonIdx, nextjsIdx, "common block comes first")
	assert.Less(t, nextjsIdx, nodejsIdx)
	assert.Less(t, nodejsIdx, pythonIdx, "tag blocks in alphabetical order")
	assert.Contains(t, content, "__pycache__")
	assert.Contains(t, content, "node_modules")
	assert.Contains(t, content, ".next")

	// Determinism: tag order in the input must not change the output.
	assert.Equal(t, content, RenderIgnoreFile([]string{"nextjs", "python", "nodejs"}))
}

func TestWriteIgnoreFileIdempotent(t *testing.T) {
	d, root := newTestDetector(t)
	path := filepath.Join(root, IgnoreFileName)

	require.NoError(t, d.WriteIgnoreFile([]string{"go"}))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, d.WriteIgnoreFile([]string{"go"}))
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestWriteIgnoreFilePreservesForeignFile(t *testing.T) {
	d, root := newTestDetector(t)
	path := filepath.Join(root, IgnoreFileName)
	writeFile(t, root, IgnoreFileName, "# my own rules\n*.secret\n")

	require.NoError(t, d.WriteIgnoreFile([]string{"go"}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "*.secret", "user content kept")
	assert.NotContains(t, string(content), "# === go ===", "no generated blocks in a foreign file")
	assert.Contains(t, string(content), ".commit_metrics.jsonl", "own entries appended")
	assert.Contains(t, string(content), "git-agent-config.ini")

	// Second run finds nothing missing and leaves the file alone.
	before, _ := os.ReadFile(path)
	require.NoError(t, d.WriteIgnoreFile([]string{"go"}))
	after, _ := os.ReadFile(path)
	assert.Equal(t, before, after)
}
