package main

import (
	"context"
	"net"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/FocuswithJustin/StudyPress/internal/logging"
)

// fileChangeDebounceDelay coalesces editor write bursts into one rebuild.
const fileChangeDebounceDelay = 200 * time.Millisecond

// watchMarkup watches one markup file and invokes onChange after each
// write settles. Watching the parent directory survives editors that
// replace the file by rename.
func watchMarkup(ctx context.Context, path string, onChange func()) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Error("file watcher unavailable", "error", err)
		return
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		logging.Error("cannot watch directory", "dir", dir, "error", err)
		return
	}

	target := filepath.Clean(path)
	var debounce *time.Timer
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(fileChangeDebounceDelay, onChange)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.Warn("file watcher error", "error", err)
		}
	}
}

// addrPort extracts the numeric port from a listen address for logging.
func addrPort(addr string) int {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0
	}
	return port
}
