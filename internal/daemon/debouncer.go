package daemon

import (
	"sync"
	"time"
)

// Debouncer delays a callback per key until no new touch arrived for the
// quiet window.
type Debouncer struct {
	quiet time.Duration
	fire  func(key string)

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewDebouncer calls fire(key) once key has been quiet for the window.
func NewDebouncer(quiet time.Duration, fire func(key string)) *Debouncer {
	return &Debouncer{quiet: quiet, fire: fire, timers: make(map[string]*time.Timer)}
}

// Touch restarts the quiet window of key.
func (d *Debouncer) Touch(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[key]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(d.quiet, func() {
		d.mu.Lock()
		if d.timers[key] != t {
			d.mu.Unlock()
			return
		}
		delete(d.timers, key)
		d.mu.Unlock()
		d.fire(key)
	})
	d.timers[key] = t
}

// Stop cancels every pending callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
}
