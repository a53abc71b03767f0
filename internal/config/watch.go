package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce absorbs editor write bursts (truncate + write + chmod) into one reload.
const watchDebounce = 250 * time.Millisecond

// Watch reloads the config file on change and installs fresh snapshots into
// store until ctx is cancelled. Parse or vocabulary errors keep the previous
// snapshot installed and are logged, never fatal.
func Watch(ctx context.Context, path string, store *Store, logger *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors often replace the file, which would
	// silently detach a file-level watch.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch config dir: %w", err)
	}

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if logger != nil {
				logger.Warn("config watcher error", "error", err.Error())
			}
		case <-fire:
			reload(path, store, logger)
		}
	}
}

// reload parses the file and atomically replaces the store snapshot.
func reload(path string, store *Store, logger *slog.Logger) {
	loaded, err := Load(path)
	if err != nil {
		if logger != nil {
			logger.Warn("config reload failed; keeping previous snapshot", "error", err.Error())
		}
		return
	}

	snap, err := NewSnapshot(loaded.Config)
	if err != nil {
		if logger != nil {
			logger.Warn("config reload rejected; keeping previous snapshot", "error", err.Error())
		}
		return
	}

	store.Replace(snap)
	if logger != nil {
		logger.Info("config reloaded",
			"path", path,
			"playlists", len(loaded.Config.Playlists),
			"warnings", len(loaded.Warnings),
		)
	}
}
