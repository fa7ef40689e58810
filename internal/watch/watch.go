// Package watch re-runs a function when any of a set of files changes.
//
// Parent directories are watched rather than the files themselves, so editors
// that replace a file by renaming a temporary one are still noticed. Bursts
// of events are debounced, and runs never overlap.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/agentstation/routeconf/pkg/constants"
	"github.com/agentstation/routeconf/pkg/errors"
	"github.com/agentstation/routeconf/pkg/logging"
)

// RunFunc is called once at start and again after each debounced change.
// An error is logged and watching continues.
type RunFunc func(ctx context.Context) error

// Watcher watches files and triggers runs.
type Watcher struct {
	files    map[string]bool
	dirs     map[string]bool
	debounce time.Duration
	run      RunFunc
}

// New creates a Watcher for files. A debounce of zero uses the default.
func New(files []string, debounce time.Duration, run RunFunc) (*Watcher, error) {
	if len(files) == 0 {
		return nil, errors.NewValidationError("files", nil, "at least one file to watch is required")
	}
	if run == nil {
		return nil, errors.NewValidationError("run", nil, "cannot be nil")
	}
	if debounce <= 0 {
		debounce = constants.WatchDebounce
	}

	w := &Watcher{
		files:    make(map[string]bool, len(files)),
		dirs:     make(map[string]bool, len(files)),
		debounce: debounce,
		run:      run,
	}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, errors.WrapIO("resolve", f, err)
		}
		w.files[abs] = true
		w.dirs[filepath.Dir(abs)] = true
	}
	return w, nil
}

// Run performs an initial run and then watches until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	logger := logging.FromContext(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapIO("watch", "", err)
	}
	defer watcher.Close()

	for dir := range w.dirs {
		if err := watcher.Add(dir); err != nil {
			return errors.WrapIO("watch", dir, err)
		}
		logger.Debug().Str("dir", dir).Msg("Watching directory")
	}

	w.trigger(ctx)

	// Timers do not deliver stale values after Stop or Reset, so no draining.
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			logger.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("Change detected")
			timer.Reset(w.debounce)

		case <-timer.C:
			w.trigger(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("Filesystem watcher error")
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}

func (w *Watcher) trigger(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := w.run(ctx); err != nil {
		logging.FromContext(ctx).Error().Err(err).Msg("Run failed, waiting for the next change")
	}
}
