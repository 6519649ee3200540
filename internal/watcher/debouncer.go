package watcher

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid file events so a burst of writes to the
// same document triggers one rebuild, not many. Paths seen within the
// window are merged and emitted as one batch when the window closes.
type Debouncer struct {
	window time.Duration

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	output  chan []string
	stopped bool
}

// NewDebouncer creates a debouncer with the given window duration.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{
		window:  window,
		pending: make(map[string]struct{}),
		output:  make(chan []string, 4),
	}
}

// Add records a changed path. The batch timer starts on the first path
// and resets on each subsequent one within the window.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pending[path] = struct{}{}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.flush)
}

// Output returns the channel of coalesced path batches.
func (d *Debouncer) Output() <-chan []string {
	return d.output
}

// Stop flushes nothing further and closes the output channel.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	close(d.output)
}

// flush emits the pending batch.
func (d *Debouncer) flush() {
	d.mu.Lock()
	if d.stopped || len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	batch := make([]string, 0, len(d.pending))
	for p := range d.pending {
		batch = append(batch, p)
	}
	d.pending = make(map[string]struct{})
	d.mu.Unlock()

	select {
	case d.output <- batch:
	default:
		// Receiver is behind; merge back rather than block the timer.
		d.mu.Lock()
		for _, p := range batch {
			d.pending[p] = struct{}{}
		}
		if !d.stopped {
			d.timer = time.AfterFunc(d.window, d.flush)
		}
		d.mu.Unlock()
	}
}
