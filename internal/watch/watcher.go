// Package watch reports writes to the mood store made by any process.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events a single save produces.
const DefaultDebounce = 200 * time.Millisecond

// ChangeCallback is called once per debounced burst with the last changed
// file name (relative to the watched directory).
type ChangeCallback func(name string)

// Target names the files to watch: entries of Dir whose base name starts
// with Prefix. A prefix match also covers SQLite's -wal and -shm files.
type Target struct {
	Dir    string
	Prefix string
}

func (t Target) matches(path string) bool {
	if filepath.Dir(path) != filepath.Clean(t.Dir) {
		return false
	}
	return strings.HasPrefix(filepath.Base(path), t.Prefix)
}

// Watch starts an fsnotify watcher on target.Dir and calls cb after writes
// to matching files settle, until ctx is cancelled.
func Watch(ctx context.Context, target Target, debounce time.Duration, logger *slog.Logger, cb ChangeCallback) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(target.Dir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("dir", target.Dir), slog.String("prefix", target.Prefix))

	var timer *time.Timer
	var timerCh <-chan time.Time
	var last string

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			timer = nil
			timerCh = nil
			logger.Debug("watcher: store changed", slog.String("file", last))
			if cb != nil {
				cb(last)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if !target.matches(ev.Name) {
				continue
			}
			last = filepath.Base(ev.Name)
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
