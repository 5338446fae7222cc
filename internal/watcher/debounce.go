package watcher

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Debouncer coalesces bursts of file change events (editors often write,
// truncate and chmod in quick succession) into a single callback.
type Debouncer struct {
	mu       sync.Mutex
	pending  map[string]fsnotify.Op
	interval time.Duration
	timer    *time.Timer
	fire     func(changed, removed []string)
}

// NewDebouncer creates a debouncer that calls fire once no new event has
// arrived for the given interval.
func NewDebouncer(interval time.Duration, fire func(changed, removed []string)) *Debouncer {
	return &Debouncer{
		pending:  make(map[string]fsnotify.Op),
		interval: interval,
		fire:     fire,
	}
}

// Add records a file change event and (re)arms the flush timer.
func (d *Debouncer) Add(path string, op fsnotify.Op) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[path] |= op

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.flush)
}

func (d *Debouncer) flush() {
	d.mu.Lock()

	var changed, removed []string
	for path, op := range d.pending {
		switch {
		case op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename):
			removed = append(removed, path)
		case op.Has(fsnotify.Write) || op.Has(fsnotify.Create):
			changed = append(changed, path)
		}
	}
	d.pending = make(map[string]fsnotify.Op)

	d.mu.Unlock()

	// Call the callback outside the lock
	if len(changed) > 0 || len(removed) > 0 {
		d.fire(changed, removed)
	}
}
