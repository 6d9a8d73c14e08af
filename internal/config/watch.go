package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDuration coalesces the burst of writes most editors emit on a
// single save into one reload.
const debounceDuration = 500 * time.Millisecond

// Watch watches the config file at path (DefaultPath when empty) and calls
// onChange with the freshly loaded config after each change. It returns a
// stop function.
func Watch(path string, log *slog.Logger, onChange func(*Config)) (func(), error) {
	if path == "" {
		path = DefaultPath()
	}
	if log == nil {
		log = slog.Default()
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating config watcher: %w", err)
	}

	// Watch the directory rather than the file: editors that rename a
	// temp file over the config would otherwise drop the watch.
	if err := w.Add(filepath.Dir(absPath)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching config dir: %w", err)
	}

	var mu sync.Mutex
	var timer *time.Timer

	reload := func() {
		cfg, err := Load(absPath)
		if err != nil {
			log.Warn("config reload failed", "path", absPath, "err", err)
			return
		}
		onChange(cfg)
	}

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != absPath {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				mu.Lock()
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounceDuration, reload)
				mu.Unlock()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("config watcher error", "err", err)
			}
		}
	}()

	return func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		w.Close()
	}, nil
}
