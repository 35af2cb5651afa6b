package store

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch starts an fsnotify watcher on the directory containing the SQLite
// database and invokes cb (debounced) whenever the database file or its
// WAL is written. API mutations write through the same file, so connected
// calendars get a refresh signal for out-of-band writes too (a second
// instance sharing the database, admin edits with the sqlite3 shell).
// Runs until ctx is cancelled.
func Watch(ctx context.Context, dbPath string, logger *slog.Logger, cb func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(dbPath)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	base := filepath.Base(abs)

	logger.Info("watcher: started", slog.String("db", abs))

	// Debounce bursts of writes (a single transaction touches the db, the
	// WAL, and the shm file in quick succession).
	var debounce *time.Timer
	var fire <-chan time.Time

	schedule := func() {
		if debounce == nil {
			debounce = time.NewTimer(200 * time.Millisecond)
			fire = debounce.C
		} else {
			debounce.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			if cb != nil {
				cb()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)
			if name != base && !strings.HasPrefix(name, base+"-") {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			logger.Debug("watcher: db changed", slog.String("file", name))
			schedule()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: error", slog.String("error", err.Error()))
		}
	}
}
