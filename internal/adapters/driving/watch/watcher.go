// Package watch ingests documents dropped into a directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// DefaultSettle is how long a file must stay quiet before it is ingested.
const DefaultSettle = 500 * time.Millisecond

// ErrWatcherFailed indicates the filesystem watcher could not be created.
var ErrWatcherFailed = errors.New("failed to create filesystem watcher")

// Result reports the outcome of ingesting one file.
type Result struct {
	Path   string
	Result *domain.IngestResult
	Err    error
}

// Watcher feeds files from a directory into an ingest service.
// Files present when Run starts are ingested first, in name order.
type Watcher struct {
	dir     string
	ingest  driving.IngestService
	watcher *fsnotify.Watcher
	logger  *zap.Logger

	// Settle debounces bursts of create and write events for one path.
	Settle time.Duration

	mu        sync.Mutex
	pending   map[string]*time.Timer
	ready     chan string
	done      chan struct{}
	stopOnce  sync.Once
	callbacks sync.WaitGroup
}

// New creates a watcher for dir.
func New(dir string, ingest driving.IngestService, logger *zap.Logger) (*Watcher, error) {
	if ingest == nil {
		return nil, errors.New("ingest service is required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, dir)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}
	return &Watcher{
		dir:     dir,
		ingest:  ingest,
		watcher: fw,
		logger:  logger.Named("watch"),
		Settle:  DefaultSettle,
		pending: make(map[string]*time.Timer),
		ready:   make(chan string),
		done:    make(chan struct{}),
	}, nil
}

// Run ingests existing files, then every new file until ctx is done.
// report is called once per file from the Run goroutine.
func (w *Watcher) Run(ctx context.Context, report func(Result)) error {
	defer w.stop()

	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", w.dir, err)
	}
	for _, e := range entries {
		if ctx.Err() != nil {
			return nil
		}
		path := filepath.Join(w.dir, e.Name())
		if e.IsDir() || !accepts(path) {
			continue
		}
		report(w.ingestFile(ctx, path))
	}

	w.logger.Info("watching directory", zap.String("dir", w.dir))
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if path, ok := candidate(event); ok {
				w.schedule(ctx, path)
			}
		case path := <-w.ready:
			report(w.ingestFile(ctx, path))
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// schedule (re)starts the settle timer for path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok && t.Stop() {
		w.callbacks.Done()
	}
	w.callbacks.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(w.Settle, func() {
		defer w.callbacks.Done()
		w.mu.Lock()
		if w.pending[path] == timer {
			delete(w.pending, path)
		}
		w.mu.Unlock()

		select {
		case w.ready <- path:
		case <-w.done:
		case <-ctx.Done():
		}
	})
	w.pending[path] = timer
}

// stop releases the watcher and waits for settle callbacks that already
// fired. Those observe done and return instead of waiting on Run.
func (w *Watcher) stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		for path, t := range w.pending {
			if t.Stop() {
				w.callbacks.Done()
			}
			delete(w.pending, path)
		}
		w.mu.Unlock()
		_ = w.watcher.Close()
		w.callbacks.Wait()
	})
}

func (w *Watcher) ingestFile(ctx context.Context, path string) Result {
	res := Result{Path: path}

	f, err := os.Open(path)
	if err != nil {
		res.Err = err
		return res
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, domain.MaxPayloadBytes+1))
	if err != nil {
		res.Err = err
		return res
	}

	res.Result, res.Err = w.ingest.Ingest(ctx, domain.IngestRequest{
		Filename: filepath.Base(path),
		Content:  content,
	})
	return res
}

// candidate returns the path of a create or write event worth ingesting.
func candidate(event fsnotify.Event) (string, bool) {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
		return "", false
	}
	if !accepts(event.Name) {
		return "", false
	}
	if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
		return "", false
	}
	return event.Name, true
}

// accepts reports whether path names a visible file of a supported format.
func accepts(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	_, err := domain.FormatFromFilename(base)
	return err == nil
}
