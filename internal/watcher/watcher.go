package watcher

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/DSI-Solutions/pick-formatter/internal/catalog"
)

// ChangeHandler is called when BASIC source files change
type ChangeHandler func(changed, removed []string)

// Watcher monitors BASIC source files for changes using fsnotify
type Watcher struct {
	watcher   *fsnotify.Watcher
	rootPath  string
	debouncer *Debouncer
	done      chan struct{}
}

// New creates a new file watcher for the root path
func New(rootPath string, handler ChangeHandler) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fsw,
		rootPath: rootPath,
		debouncer: NewDebouncer(100*time.Millisecond, func(changed, removed []string) {
			log.Printf("file changes: %d changed, %d removed", len(changed), len(removed))
			handler(changed, removed)
		}),
		done: make(chan struct{}),
	}

	return w, nil
}

// Start begins watching for file changes
func (w *Watcher) Start() error {
	// Add all directories recursively
	err := filepath.WalkDir(w.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip errors
		}

		if d.IsDir() {
			name := d.Name()
			// Skip hidden and vendor directories
			if strings.HasPrefix(name, ".") || name == "vendor" || name == "node_modules" {
				return filepath.SkipDir
			}

			if err := w.watcher.Add(path); err != nil {
				log.Printf("failed to watch %s: %v", path, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Start the event loop
	go w.eventLoop()

	log.Printf("file watcher started for %s", w.rootPath)
	return nil
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	// Check if it's a directory event
	if event.Has(fsnotify.Create) {
		// If a new directory was created, watch it
		if info, err := os.Lstat(path); err == nil && info.IsDir() {
			name := filepath.Base(path)
			if !strings.HasPrefix(name, ".") && name != "vendor" && name != "node_modules" {
				if err := w.watcher.Add(path); err != nil {
					log.Printf("failed to watch new directory %s: %v", path, err)
				}
			}
			return
		}
	}

	// Only process BASIC source files
	if !catalog.IsBasicFile(path) {
		return
	}

	w.debouncer.Add(path, event.Op)
}

// Close stops the watcher
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
