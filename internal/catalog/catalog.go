// Package catalog tracks the formatting state of every BASIC source file
// under a workspace root. It backs the CLI batch and watch modes.
package catalog

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/DSI-Solutions/pick-formatter/internal/format"
)

// Status of one file after a format or check pass.
type Status int

const (
	// StatusClean means the file is already formatted.
	StatusClean Status = iota
	// StatusDirty means the file needs formatting (check mode).
	StatusDirty
	// StatusRewritten means the file was reformatted in place.
	StatusRewritten
	// StatusFailed means the engine rejected the file.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusClean:
		return "clean"
	case StatusDirty:
		return "needs formatting"
	case StatusRewritten:
		return "rewritten"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Entry is the recorded state of one file.
type Entry struct {
	Path   string
	Status Status
	Err    error
}

// Catalog walks a root for BASIC sources and formats or checks each one,
// keeping a per-file status map that the watcher updates incrementally.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]*Entry

	rootPath string
	opts     format.Options
	write    bool
}

// New creates a catalog for the given root path. When write is true files
// are rewritten in place; otherwise they are only checked.
func New(rootPath string, opts format.Options, write bool) *Catalog {
	return &Catalog{
		entries:  make(map[string]*Entry),
		rootPath: rootPath,
		opts:     opts,
		write:    write,
	}
}

// Build performs the initial pass over all BASIC files under the root
func (c *Catalog) Build(ctx context.Context) error {
	log.Printf("scanning %s", c.rootPath)

	var files []string
	err := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip errors
		}

		// Check for cancellation
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Skip hidden directories and vendor
		if d.IsDir() {
			name := d.Name()
			if strings.HasPrefix(name, ".") || name == "vendor" || name == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}

		if IsBasicFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("found %d BASIC files", len(files))

	// Process files concurrently
	var wg sync.WaitGroup
	sem := make(chan struct{}, 8) // Limit concurrency

	for _, file := range files {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := c.ProcessFile(path); err != nil {
				log.Printf("failed to process %s: %v", path, err)
			}
		}(file)
	}

	wg.Wait()

	clean, dirty, rewritten, failed := c.Counts()
	log.Printf("catalog built: %d clean, %d dirty, %d rewritten, %d failed",
		clean, dirty, rewritten, failed)
	return nil
}

// ProcessFile formats or checks a single file and records the outcome.
// Engine faults are recorded on the entry, not returned: only I/O problems
// surface as errors.
func (c *Catalog) ProcessFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	entry := &Entry{Path: path}

	res, ferr := format.Format(string(content), c.opts)
	switch {
	case ferr != nil:
		entry.Status = StatusFailed
		entry.Err = ferr
	case !res.Changed():
		entry.Status = StatusClean
	case c.write:
		if err := c.rewrite(path, res.Text()); err != nil {
			return err
		}
		entry.Status = StatusRewritten
	default:
		entry.Status = StatusDirty
	}

	c.mu.Lock()
	c.entries[path] = entry
	c.mu.Unlock()
	return nil
}

// rewrite replaces path with text via a temp file in the same directory,
// so a crash mid-write never truncates the original.
func (c *Catalog) rewrite(path, text string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".fmt-*")
	if err != nil {
		return err
	}
	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// RemoveFile drops a file from the catalog
func (c *Catalog) RemoveFile(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

// UpdateFile re-processes a file after a change
func (c *Catalog) UpdateFile(path string) error {
	return c.ProcessFile(path)
}

// Entry returns the recorded state of one file
func (c *Catalog) Entry(path string) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[path]
	return e, ok
}

// Entries returns all recorded entries sorted by path
func (c *Catalog) Entries() []*Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*Entry, 0, len(c.entries))
	for _, e := range c.entries {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Path < result[j].Path
	})
	return result
}

// Counts summarizes entry states
func (c *Catalog) Counts() (clean, dirty, rewritten, failed int) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, e := range c.entries {
		switch e.Status {
		case StatusClean:
			clean++
		case StatusDirty:
			dirty++
		case StatusRewritten:
			rewritten++
		case StatusFailed:
			failed++
		}
	}
	return
}

// RootPath returns the root path of the catalog
func (c *Catalog) RootPath() string {
	return c.rootPath
}

// IsBasicFile checks if a file is a Pick BASIC source file
func IsBasicFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".b", ".bas", ".bp", ".basic":
		return true
	}
	return false
}
