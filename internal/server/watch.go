package server

import (
	"context"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow batches bursts of manifest edits into a single reload.
const debounceWindow = 300 * time.Millisecond

// watchManifests reloads the registry when manifest files change.
func (s *Server) watchManifests(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDirRecursive(watcher, s.toolsDir); err != nil {
		s.logger.Error("failed to watch tools directory", "dir", s.toolsDir, "error", err)
		// Don't fail - continue without watching
	}

	// Debounce timer
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Ext(event.Name) != ".cue" {
				continue
			}

			// Debounce
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceWindow, func() {
				s.reloadTools(event.Name)
			})

		case err := <-watcher.Errors:
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// reloadTools reloads every manifest. A failed reload keeps the previous
// tool set, so a half-saved manifest never leaves the service toolless.
func (s *Server) reloadTools(trigger string) {
	s.logger.Debug("manifest changed, reloading", "file", trigger)

	if err := s.registry.LoadDir(s.toolsDir); err != nil {
		s.logger.Error("manifest reload failed, keeping previous tools", "error", err)
		return
	}
	s.logger.Info("tools reloaded", "tools", s.registry.Count())
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
