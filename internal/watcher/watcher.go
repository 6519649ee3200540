// Package watcher observes the processed-documents directory and emits
// debounced batches of changed text files, driving incremental index
// updates in watch mode.
package watcher

import (
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceWindow is how long a burst of events is coalesced
// before one update batch is emitted.
const DefaultDebounceWindow = 2 * time.Second

// Watcher watches one directory for document text changes.
type Watcher struct {
	dir       string
	debouncer *Debouncer
	fs        *fsnotify.Watcher
	logger    *slog.Logger
	done      chan struct{}
}

// New creates a watcher over dir. window <= 0 uses the default.
func New(dir string, window time.Duration, logger *slog.Logger) (*Watcher, error) {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	if logger == nil {
		logger = slog.Default()
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fs.Add(dir); err != nil {
		_ = fs.Close()
		return nil, err
	}

	w := &Watcher{
		dir:       dir,
		debouncer: NewDebouncer(window),
		fs:        fs,
		logger:    logger,
		done:      make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Events returns batches of changed document paths.
func (w *Watcher) Events() <-chan []string {
	return w.debouncer.Output()
}

// Close stops watching and closes the event channel.
func (w *Watcher) Close() error {
	err := w.fs.Close()
	<-w.done
	w.debouncer.Stop()
	return err
}

// loop forwards relevant fsnotify events into the debouncer.
func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			w.logger.Debug("document changed", "path", event.Name, "op", event.Op.String())
			w.debouncer.Add(event.Name)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// relevant filters for writes and creates of text documents.
func relevant(event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(event.Name))
	return ext == ".txt" || ext == ".md"
}
