package watch

import (
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Kind classifies what happened to a path.
type Kind string

const (
	KindCreate Kind = "create"
	KindWrite  Kind = "write"
	KindRemove Kind = "remove"
)

// kindOf maps an fsnotify op to a Kind. Renames surface as a remove of the
// old name; the new name arrives as its own create event. Chmod-only events
// carry no content change and map to nothing.
func kindOf(op fsnotify.Op) (Kind, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return KindCreate, true
	case op.Has(fsnotify.Write):
		return KindWrite, true
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return KindRemove, true
	default:
		return "", false
	}
}

// Event is a single filesystem notification, path relative to the watch root.
type Event struct {
	Path string
	Kind Kind
	Time time.Time
}

// Changeset accumulates events over one debounce window. Per path only the
// net effect survives: later kinds overwrite earlier ones, and a path that
// was created and then removed inside the same window disappears entirely.
type Changeset struct {
	paths   map[string]Kind
	created map[string]bool
	Start   time.Time
	End     time.Time
}

func NewChangeset(now time.Time) *Changeset {
	return &Changeset{
		paths:   make(map[string]Kind),
		created: make(map[string]bool),
		Start:   now,
		End:     now,
	}
}

// Add merges one event into the set.
func (c *Changeset) Add(ev Event) {
	c.End = ev.Time

	switch ev.Kind {
	case KindCreate:
		// A create following a remove is a file replacement, not a birth:
		// the path existed before the window and stays eligible for removal.
		if prev, ok := c.paths[ev.Path]; !ok || prev != KindRemove {
			c.created[ev.Path] = true
		}
		c.paths[ev.Path] = KindCreate
	case KindRemove:
		if c.created[ev.Path] {
			// Appeared and vanished within the window: net no-op.
			delete(c.paths, ev.Path)
			delete(c.created, ev.Path)
			return
		}
		c.paths[ev.Path] = KindRemove
	default:
		if prev, ok := c.paths[ev.Path]; ok && prev == KindCreate {
			// A write to a file created in this window is still a create.
			return
		}
		c.paths[ev.Path] = ev.Kind
	}
}

// Empty reports whether anything survived merging.
func (c *Changeset) Empty() bool {
	return len(c.paths) == 0
}

// Len returns the number of distinct paths in the set.
func (c *Changeset) Len() int {
	return len(c.paths)
}

// Kind returns the net kind recorded for a path.
func (c *Changeset) Kind(path string) (Kind, bool) {
	k, ok := c.paths[path]
	return k, ok
}

// Paths returns the surviving paths sorted for deterministic processing.
func (c *Changeset) Paths() []string {
	paths := make([]string, 0, len(c.paths))
	for p := range c.paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
