package detect

// manifestFormat selects the parser used for a dependency-list lookup.
type manifestFormat int

const (
	manifestJSON manifestFormat = iota
	manifestTOML
	manifestYAML
)

// depRule matches when a manifest file lists one of the named dependencies.
type depRule struct {
	File   string
	Format manifestFormat
	Deps   []string
}

// rule describes how a single language/framework tag is detected. A tag
// matches when any marker file is present at the repository root, any
// dependency rule matches, or any file with one of the extensions exists
// within the bounded walk.
type rule struct {
	Markers    []string // root-level file/dir names, glob syntax allowed
	DepRules   []depRule
	Extensions []string
}

// rules maps tag name to its detection rule. Marker sets follow the original
// per-ecosystem conventions; framework tags are keyed off their config files
// or their package.json dependency entries.
var rules = map[string]rule{
	"python": {
		Markers:    []string{"requirements.txt", "setup.py", "pyproject.toml", "Pipfile", "poetry.lock"},
		Extensions: []string{".py"},
	},
	"nodejs": {
		Markers: []string{"package.json"},
	},
	"rust": {
		Markers: []string{"Cargo.toml"},
	},
	"go": {
		Markers:    []string{"go.mod"},
		Extensions: []string{".go"},
	},
	"java": {
		Markers: []string{"pom.xml", "build.gradle", "build.gradle.kts"},
	},
	"csharp": {
		Markers: []string{"*.csproj", "*.sln", "Program.cs"},
	},
	"php": {
		Markers:    []string{"composer.json"},
		Extensions: []string{".php"},
	},
	"ruby": {
		Markers:    []string{"Gemfile"},
		Extensions: []string{".rb"},
	},
	"docker": {
		Markers: []string{"Dockerfile", "docker-compose.yml", "docker-compose.yaml"},
	},
	"flutter": {
		DepRules: []depRule{{File: "pubspec.yaml", Format: manifestYAML, Deps: []string{"flutter"}}},
	},
	"swift": {
		Markers: []string{"*.xcodeproj", "*.xcworkspace", "Package.swift"},
	},
	"web": {
		Extensions: []string{".html", ".css"},
	},
	"nextjs": {
		Markers:  []string{"next.config.js", "next.config.mjs"},
		DepRules: []depRule{{File: "package.json", Format: manifestJSON, Deps: []string{"next"}}},
	},
	"react": {
		DepRules: []depRule{{File: "package.json", Format: manifestJSON, Deps: []string{"react"}}},
	},
	"vue": {
		Markers:  []string{"vue.config.js"},
		DepRules: []depRule{{File: "package.json", Format: manifestJSON, Deps: []string{"vue"}}},
	},
	"nuxt": {
		Markers:  []string{"nuxt.config.js", "nuxt.config.ts"},
		DepRules: []depRule{{File: "package.json", Format: manifestJSON, Deps: []string{"nuxt"}}},
	},
	"vite": {
		Markers:  []string{"vite.config.js", "vite.config.ts"},
		DepRules: []depRule{{File: "package.json", Format: manifestJSON, Deps: []string{"vite"}}},
	},
	"angular": {
		Markers:  []string{"angular.json"},
		DepRules: []depRule{{File: "package.json", Format: manifestJSON, Deps: []string{"@angular/core"}}},
	},
	"svelte": {
		Markers:  []string{"svelte.config.js"},
		DepRules: []depRule{{File: "package.json", Format: manifestJSON, Deps: []string{"svelte"}}},
	},
}

// commonPatterns is the block written first into every generated ignore file,
// regardless of which tags were detected.
var commonPatterns = []string{
	"*.7z", "*.backup", "*.bak", "*.dmg", "*.gz", "*.iso", "*.log", "*.old",
	"*.orig", "*.rar", "*.swo", "*.swp", "*.tar", "*.tmp", "*.zip", "*~",
	".DS_Store", ".commit_metrics.jsonl", ".env", ".env.local", ".idea",
	".vscode", "Thumbs.db", "git-agent-config.ini", "log", "logs",
}

// blockPatterns maps tag name to its canned ignore-pattern block. Tags with
// no entry here (e.g. electron) contribute detection output but no block.
var blockPatterns = map[string][]string{
	"python": {
		"*.egg", "*.egg-info", "*.py[cod]", "*.so", ".Python", ".cache", "__pycache__",
		".coverage", ".coverage.*", ".env", ".hypothesis", ".mypy_cache",
		".pytest_cache", ".tox", ".venv", "MANIFEST", "build", "develop-eggs",
		"dist", "eggs", "env", "pip-log.txt", "sdist", "venv", "wheels",
	},
	"nodejs": {
		"*.pid", "*.tgz", ".cache", ".eslintcache", ".npm", ".nyc_output",
		".parcel-cache", ".pnp.*", ".yarn-integrity", "bower_components",
		"coverage", "jspm_packages", "lerna-debug.log*", "node_modules",
		"npm-debug.log*", "pids", "yarn-debug.log*", "yarn-error.log*",
	},
	"nextjs":  {".next", ".vercel", "next-env.d.ts", "out"},
	"react":   {".expo", ".expo-shared", "build"},
	"vue":     {".nuxt", "dist"},
	"nuxt":    {".env", ".nuxt", ".output", "dist"},
	"vite":    {"*.local", "dist", "dist-ssr"},
	"angular": {".angular", "bazel-out", "dist", "out-tsc", "tmp"},
	"svelte":  {".env.*", ".svelte-kit", "package"},
	"rust":    {"*.pdb", "*.rs.bk", "Cargo.lock", "target"},
	"go":      {"*.dll", "*.dylib", "*.exe", "*.out", "*.so", "*.test", "go.work", "vendor"},
	"java": {
		"*.class", "*.ctxt", "*.ear", "*.jar", "*.log", "*.nar", "*.war",
		".gradle", "build", "hs_err_pid*", "replay_pid*", "target",
	},
	"csharp": {
		"*.dll", "*.exe", "*.pdb", "*.user", ".vs", "[Bb]in", "[Dd]ebug",
		"[Oo]bj", "[Rr]elease", "bld", "x64", "x86",
	},
	"php":  {"*.log", ".env", ".env.local", "composer.lock", "vendor"},
	"ruby": {
		"*.gem", "*.rbc", ".bundle", ".yardoc", "InstalledFiles", "coverage",
		"doc", "pkg", "rdoc", "tmp",
	},
	"flutter": {
		".dart_tool", ".flutter-plugins", ".flutter-plugins-dependencies",
		".packages", ".pub", ".pub-cache", "build",
	},
	"swift": {
		"*.dSYM", "*.dSYM.zip", "*.hmap", "*.ipa", ".build", "DerivedData",
		"Packages", "build", "timeline.xctimeline",
	},
	"docker": {".dockerignore"},
	"web":    {"*.map", "build", "dist"},
}

// TagPatterns returns the canned ignore patterns contributed by a detected
// tag, nil for tags without a block.
func TagPatterns(tag string) []string {
	return blockPatterns[tag]
}

// walkPrune lists directory names never descended into during the bounded
// extension walk. Matches the heaviest entries of the default/common blocks.
var walkPrune = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"venv":         true,
	".venv":        true,
	"__pycache__":  true,
	"dist":         true,
	"build":        true,
	"target":       true,
	".idea":        true,
	".vscode":      true,
}
