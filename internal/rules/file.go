// Package rules provides the file-backed ruleset store. The YAML file
// maps user ids to a folder name and keyword list; an fsnotify watcher
// reloads it on change, so rule edits apply to the very next message
// without a restart.
package rules

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/keywatchhq/keywatch/pkg/chat"
)

// FileStore serves rulesets from one YAML file.
type FileStore struct {
	path string
	log  *slog.Logger

	mu    sync.RWMutex
	users map[int64]chat.Ruleset

	watcher *fsnotify.Watcher
	done    chan struct{}
}

type fileFormat struct {
	Users map[int64]userRules `yaml:"users"`
}

type userRules struct {
	Folder   string   `yaml:"folder"`
	Keywords []string `yaml:"keywords"`
}

// Open loads the file and starts watching its directory. Editors tend
// to replace files on save, so the watch is on the directory and events
// are filtered by name.
func Open(path string, log *slog.Logger) (*FileStore, error) {
	if log == nil {
		log = slog.Default()
	}

	s := &FileStore{
		path:  path,
		log:   log,
		users: make(map[int64]chat.Ruleset),
		done:  make(chan struct{}),
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	s.watcher = watcher

	go s.watch()
	return s, nil
}

// Rules returns the user's current ruleset. Unknown users get an empty
// ruleset: no rules configured means nothing matches.
func (s *FileStore) Rules(_ context.Context, userID int64) (chat.Ruleset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users[userID], nil
}

// Reload re-reads the file and swaps the in-memory table.
func (s *FileStore) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read rules: %w", err)
	}

	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse rules: %w", err)
	}

	users := make(map[int64]chat.Ruleset, len(f.Users))
	for id, u := range f.Users {
		users[id] = chat.Ruleset{Folder: u.Folder, Keywords: u.Keywords}
	}

	s.mu.Lock()
	s.users = users
	s.mu.Unlock()
	return nil
}

// Close stops the watcher.
func (s *FileStore) Close() error {
	close(s.done)
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

func (s *FileStore) watch() {
	for {
		select {
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(s.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if err := s.Reload(); err != nil {
				// Keep serving the previous table on a bad edit.
				s.log.Warn("rules reload failed", "path", s.path, "err", err)
				continue
			}
			s.log.Info("rules reloaded", "path", s.path)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn("rules watcher error", "err", err)
		case <-s.done:
			return
		}
	}
}
