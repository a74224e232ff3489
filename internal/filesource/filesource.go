// Package filesource watches a JSON configuration file on disk and
// publishes each decoded revision into a registry.Registry, for
// deployments that manage their configuration as a file instead of a
// remote control plane.
package filesource

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/amichne/konditional/internal/observability"
	"github.com/amichne/konditional/internal/parse"
	"github.com/amichne/konditional/internal/registry"
)

const debounceDuration = 200 * time.Millisecond

// Source loads a JSON configuration file, publishes it into reg, and (when
// Watch is called) republishes on every subsequent write to the file.
// Editors performing atomic saves (write-temp, rename-over-target) are
// handled by watching the containing directory rather than the file itself.
type Source struct {
	path   string
	decls  parse.Declarations
	opts   parse.Options
	reg    *registry.Registry
	logger observability.Logger

	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
}

// New returns a Source for the file at path. decls is the declaration set
// decode reconciles every revision against.
func New(path string, decls parse.Declarations, opts parse.Options, reg *registry.Registry, logger observability.Logger) *Source {
	if logger == nil {
		logger = observability.NopLogger{}
	}
	return &Source{path: path, decls: decls, opts: opts, reg: reg, logger: logger}
}

// LoadOnce reads and decodes the file once, publishing the result into the
// registry. Warnings are logged; a decode failure is returned to the caller
// without touching the registry.
func (s *Source) LoadOnce() error {
	config, warnings, err := s.readAndDecode()
	if err != nil {
		return err
	}
	for _, w := range warnings {
		s.logger.Log(observability.LevelWarn, "filesource: decode warning", observability.F("message", w.Message), observability.F("feature", w.Feature))
	}
	s.reg.Load(config)
	return nil
}

// Watch starts watching the file's containing directory for changes,
// reloading and republishing on every relevant event, debounced to
// coalesce rapid successive writes from editors and atomic renames. It
// returns immediately; call Stop to end the watch.
func (s *Source) Watch() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watcher != nil {
		return fmt.Errorf("filesource: already watching %s", s.path)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	s.watcher = watcher
	s.stopChan = make(chan struct{})
	go s.watchLoop(watcher, s.stopChan)

	s.logger.Log(observability.LevelInfo, "filesource: watching", observability.F("path", s.path))
	return nil
}

// Stop ends an active Watch. It is a no-op if Watch was never called.
func (s *Source) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopChan != nil {
		close(s.stopChan)
		s.stopChan = nil
	}
	if s.watcher != nil {
		s.watcher.Close()
		s.watcher = nil
	}
}

func (s *Source) watchLoop(watcher *fsnotify.Watcher, stopChan chan struct{}) {
	var debounceTimer *time.Timer
	targetPath := filepath.Clean(s.path)

	for {
		select {
		case <-stopChan:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			eventPath := filepath.Clean(event.Name)
			isExactMatch := eventPath == targetPath
			isBasenameMatch := filepath.Base(eventPath) == filepath.Base(targetPath)
			relevantOp := event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0

			if !relevantOp {
				continue
			}
			if !isExactMatch && !isBasenameMatch {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDuration, func() {
				if err := s.LoadOnce(); err != nil {
					s.logger.Log(observability.LevelError, "filesource: reload failed", observability.F("path", s.path), observability.F("error", err.Error()))
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Log(observability.LevelError, "filesource: watch error", observability.F("error", err.Error()))
		}
	}
}

func (s *Source) readAndDecode() (*registry.Configuration, []parse.Warning, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, nil, fmt.Errorf("filesource: read %s: %w", s.path, err)
	}
	result := parse.Decode(data, s.decls, s.opts)
	if !result.Ok() {
		return nil, nil, result.Err
	}
	return result.Configuration, result.Warnings, nil
}
