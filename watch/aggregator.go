package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/grovetools/scribe/errors"
	"github.com/grovetools/scribe/ignore"
)

// maxResubscribes bounds recovery attempts after watcher errors before the
// aggregator gives up.
const maxResubscribes = 3

// Aggregator turns a stream of filesystem notifications into debounced
// changesets. It runs a two-state machine: idle until a qualifying event
// arrives, then accumulating until the tree stays quiet for a full debounce
// window, at which point the frozen changeset is emitted and the machine
// returns to idle.
type Aggregator struct {
	root     string
	matcher  *ignore.Matcher
	debounce time.Duration
	logger   *logrus.Entry

	watcher *fsnotify.Watcher
	out     chan *Changeset
	err     error
}

func NewAggregator(root string, matcher *ignore.Matcher, debounce time.Duration, logger *logrus.Entry) *Aggregator {
	return &Aggregator{
		root:     root,
		matcher:  matcher,
		debounce: debounce,
		logger:   logger,
		out:      make(chan *Changeset),
	}
}

// Run starts watching and returns the changeset channel. The channel closes
// when ctx is cancelled or the watcher fails permanently; call Err afterwards
// to distinguish the two. A changeset still accumulating at cancellation is
// discarded.
func (a *Aggregator) Run(ctx context.Context) <-chan *Changeset {
	go a.loop(ctx)
	return a.out
}

// Err reports the fatal error that closed the channel, if any.
func (a *Aggregator) Err() error {
	return a.err
}

func (a *Aggregator) loop(ctx context.Context) {
	defer close(a.out)

	if err := a.subscribe(); err != nil {
		a.err = err
		return
	}
	defer a.watcher.Close()

	var (
		current *Changeset
		timer   *time.Timer
		expiry  <-chan time.Time
	)
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
			expiry = nil
		}
	}

	for {
		select {
		case event, ok := <-a.watcher.Events:
			if !ok {
				a.err = errors.WatchFailed(a.root, nil)
				return
			}
			ev, keep := a.filter(event)
			if !keep {
				continue
			}

			if current == nil {
				current = NewChangeset(ev.Time)
				a.logger.Debug("Opened changeset")
			}
			current.Add(ev)

			stopTimer()
			timer = time.NewTimer(a.debounce)
			expiry = timer.C

		case <-expiry:
			timer = nil
			expiry = nil
			if current == nil || current.Empty() {
				current = nil
				continue
			}
			a.logger.WithField("files", current.Len()).Debug("Debounce window closed")
			select {
			case a.out <- current:
			case <-ctx.Done():
				stopTimer()
				return
			}
			current = nil

		case werr, ok := <-a.watcher.Errors:
			if !ok {
				a.err = errors.WatchFailed(a.root, nil)
				return
			}
			a.logger.WithError(werr).Warn("Watcher error, resubscribing")
			if err := a.resubscribe(); err != nil {
				// Never drop an open changeset on the floor.
				if current != nil && !current.Empty() {
					select {
					case a.out <- current:
					case <-ctx.Done():
					}
				}
				stopTimer()
				a.err = err
				return
			}

		case <-ctx.Done():
			stopTimer()
			return
		}
	}
}

// filter drops events for ignored paths and converts the rest into Events
// with root-relative paths. Newly created directories are added to the watch
// as a side effect.
func (a *Aggregator) filter(event fsnotify.Event) (Event, bool) {
	kind, ok := kindOf(event.Op)
	if !ok {
		return Event{}, false
	}

	rel, err := filepath.Rel(a.root, event.Name)
	if err != nil || rel == "." {
		return Event{}, false
	}
	rel = filepath.ToSlash(rel)

	if a.matcher.Matches(rel) {
		return Event{}, false
	}

	if kind == KindCreate {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := a.watcher.Add(event.Name); err != nil {
				a.logger.WithError(err).Warnf("Failed to watch new directory %s", rel)
			}
			// Directory creation itself is not a content change.
			return Event{}, false
		}
	}

	return Event{Path: rel, Kind: kind, Time: time.Now()}, true
}

// subscribe creates the fsnotify watcher and adds every non-ignored directory
// under the root.
func (a *Aggregator) subscribe() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WatchFailed(a.root, err)
	}

	count := 0
	walkErr := filepath.WalkDir(a.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil || !entry.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(a.root, path)
		if relErr != nil {
			return nil
		}
		if rel != "." && a.matcher.Matches(filepath.ToSlash(rel)) {
			return fs.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			a.logger.WithError(err).Warnf("Failed to watch %s", rel)
			return nil
		}
		count++
		return nil
	})
	if walkErr != nil || count == 0 {
		watcher.Close()
		return errors.WatchFailed(a.root, walkErr)
	}

	a.watcher = watcher
	a.logger.WithField("directories", count).Debug("Watching tree")
	return nil
}

// resubscribe rebuilds the directory watch after an error, retrying a few
// times before reporting a permanent failure.
func (a *Aggregator) resubscribe() error {
	a.watcher.Close()

	var lastErr error
	for attempt := 1; attempt <= maxResubscribes; attempt++ {
		if err := a.subscribe(); err != nil {
			lastErr = err
			time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
			continue
		}
		a.logger.WithField("attempt", attempt).Info("Resubscribed to tree")
		return nil
	}
	return errors.WatchResubscribe(a.root, lastErr)
}
