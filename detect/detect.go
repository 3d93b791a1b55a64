package detect

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// maxWalkDepth bounds the extension scan; marker and manifest checks only
// ever look at the repository root.
const maxWalkDepth = 4

// Detector identifies the languages and frameworks present in a working tree.
type Detector struct {
	root   string
	logger *logrus.Entry
}

func NewDetector(root string, logger *logrus.Entry) *Detector {
	return &Detector{root: root, logger: logger}
}

// Detect returns the matched tag names sorted alphabetically. Unreadable or
// malformed manifest files disable their dependency rules but never fail the
// scan.
func (d *Detector) Detect() []string {
	rootNames := d.rootEntries()
	manifests := d.loadManifests(rootNames)
	extensions := d.scanExtensions()

	var tags []string
	for tag, r := range rules {
		if d.matches(r, rootNames, manifests, extensions) {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)

	d.logger.WithField("tags", tags).Debug("Project detection complete")
	return tags
}

func (d *Detector) matches(r rule, rootNames []string, manifests map[string]map[string]bool, extensions map[string]bool) bool {
	for _, marker := range r.Markers {
		for _, name := range rootNames {
			if ok, _ := filepath.Match(marker, name); ok {
				return true
			}
		}
	}
	for _, dr := range r.DepRules {
		deps, ok := manifests[dr.File]
		if !ok {
			continue
		}
		for _, dep := range dr.Deps {
			if deps[dep] {
				return true
			}
		}
	}
	for _, ext := range r.Extensions {
		if extensions[ext] {
			return true
		}
	}
	return false
}

func (d *Detector) rootEntries() []string {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		d.logger.WithError(err).Warn("Cannot read project root")
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// loadManifests parses every root manifest some dependency rule refers to and
// returns, per file, the set of declared dependency names.
func (d *Detector) loadManifests(rootNames []string) map[string]map[string]bool {
	present := make(map[string]bool, len(rootNames))
	for _, n := range rootNames {
		present[n] = true
	}

	out := make(map[string]map[string]bool)
	for _, r := range rules {
		for _, dr := range r.DepRules {
			if _, done := out[dr.File]; done || !present[dr.File] {
				continue
			}
			deps, err := d.parseManifest(dr.File, dr.Format)
			if err != nil {
				d.logger.WithError(err).WithField("file", dr.File).Warn("Skipping malformed manifest")
				continue
			}
			out[dr.File] = deps
		}
	}
	return out
}

func (d *Detector) parseManifest(name string, format manifestFormat) (map[string]bool, error) {
	data, err := os.ReadFile(filepath.Join(d.root, name))
	if err != nil {
		return nil, err
	}

	deps := make(map[string]bool)
	collect := func(m map[string]any) {
		for k := range m {
			deps[k] = true
		}
	}

	switch format {
	case manifestJSON:
		var doc struct {
			Dependencies    map[string]any `json:"dependencies"`
			DevDependencies map[string]any `json:"devDependencies"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		collect(doc.Dependencies)
		collect(doc.DevDependencies)
	case manifestTOML:
		var doc struct {
			Dependencies map[string]any `toml:"dependencies"`
			Project      struct {
				Dependencies []string `toml:"dependencies"`
			} `toml:"project"`
		}
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		collect(doc.Dependencies)
		for _, dep := range doc.Project.Dependencies {
			// PEP 508 strings: the name ends at the first version or extras marker.
			name := strings.FieldsFunc(dep, func(r rune) bool {
				return r == ' ' || r == '=' || r == '<' || r == '>' || r == '!' || r == '[' || r == ';' || r == '~'
			})
			if len(name) > 0 {
				deps[name[0]] = true
			}
		}
	case manifestYAML:
		var doc struct {
			Dependencies    map[string]any `yaml:"dependencies"`
			DevDependencies map[string]any `yaml:"dev_dependencies"`
		}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		collect(doc.Dependencies)
		collect(doc.DevDependencies)
	}
	return deps, nil
}

// scanExtensions walks the tree to maxWalkDepth and records which file
// extensions of interest were seen, pruning dependency and build directories.
func (d *Detector) scanExtensions() map[string]bool {
	wanted := make(map[string]bool)
	for _, r := range rules {
		for _, ext := range r.Extensions {
			wanted[ext] = true
		}
	}

	seen := make(map[string]bool)
	_ = filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(d.root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		depth := strings.Count(filepath.ToSlash(rel), "/") + 1

		if entry.IsDir() {
			if walkPrune[entry.Name()] || depth >= maxWalkDepth {
				return fs.SkipDir
			}
			return nil
		}
		if ext := filepath.Ext(entry.Name()); wanted[ext] {
			seen[ext] = true
		}
		return nil
	})
	return seen
}
