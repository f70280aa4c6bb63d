package flat

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Verify interface compliance.
var _ driven.VectorIndex = (*Durable)(nil)

// ErrClosed is returned by operations on a closed index.
var ErrClosed = errors.New("flat: index closed")

// fileStamp identifies a version of the index file.
// Saves only ever grow the file, so size alone distinguishes versions
// written by this package; the modification time catches foreign rewrites.
type fileStamp struct {
	exists  bool
	size    int64
	modTime time.Time
}

func statFile(path string) (fileStamp, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fileStamp{}, nil
	}
	if err != nil {
		return fileStamp{}, fmt.Errorf("flat: stat index: %w", err)
	}
	return fileStamp{exists: true, size: info.Size(), modTime: info.ModTime()}, nil
}

// Durable is a file-backed VectorIndex shared by every pipeline in a process.
// The file on disk is authoritative: each operation reloads it when it has
// changed since the last load. Append reloads, appends and saves under one
// mutex, so positions handed out by a process are unique and durable.
// Deployments must have a single writing process per file.
type Durable struct {
	path string
	dim  int

	mu      sync.Mutex
	current *Index
	stamp   fileStamp
	closed  bool
}

// Open loads the index at path, creating an empty one when the file does not exist.
// A corrupt file is an error; the index is never partially loaded.
func Open(path string, dim int) (*Durable, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("flat: invalid dimension %d", dim)
	}
	d := &Durable{path: path, dim: dim}
	if _, err := d.reloadLocked(); err != nil {
		return nil, err
	}
	if d.stamp.exists {
		logger.Info("vector index loaded from %s with %d entries", path, d.current.Size())
	} else {
		logger.Info("no vector index at %s, starting empty", path)
	}
	return d, nil
}

// Path returns the index file path.
func (d *Durable) Path() string {
	return d.path
}

// Dimensions returns the vector length.
func (d *Durable) Dimensions() int {
	return d.dim
}

// reloadLocked refreshes current from disk if the file changed. Callers hold mu.
func (d *Durable) reloadLocked() (*Index, error) {
	stamp, err := statFile(d.path)
	if err != nil {
		return nil, err
	}
	if d.current != nil && stamp == d.stamp {
		return d.current, nil
	}

	if !stamp.exists && d.current != nil && d.current.Size() > 0 {
		logger.Warn("vector index file %s disappeared; continuing with an empty index", d.path)
	}

	x, err := Load(d.path, d.dim)
	if err != nil {
		return nil, err
	}
	logger.Debug("vector index reloaded: %d entries", x.Size())
	d.current = x
	d.stamp = stamp
	return x, nil
}

// snapshot reloads and returns an immutable view of the index.
func (d *Durable) snapshot(ctx context.Context) (*Index, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}
	x, err := d.reloadLocked()
	if err != nil {
		return nil, err
	}
	return x.snapshot(), nil
}

// Append reloads the index, appends vec, and saves before returning its position.
// If the save fails the in-memory index is left unchanged.
func (d *Durable) Append(ctx context.Context, vec []float32) (int, error) {
	if err := ctx.Err(); err != nil {
		return -1, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return -1, ErrClosed
	}

	base, err := d.reloadLocked()
	if err != nil {
		return -1, err
	}

	next := base.snapshot()
	pos, err := next.Append(vec)
	if err != nil {
		return -1, err
	}

	if err := Save(d.path, next); err != nil {
		return -1, err
	}
	stamp, err := statFile(d.path)
	if err != nil {
		return -1, err
	}

	d.current = next
	d.stamp = stamp
	logger.Debug("vector index: appended position %d, saved %d entries", pos, next.Size())
	return pos, nil
}

// Search reloads the index and returns the k nearest positions to query.
func (d *Durable) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	x, err := d.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return x.Search(query, k)
}

// Size reloads the index and returns its entry count.
func (d *Durable) Size(ctx context.Context) (int, error) {
	x, err := d.snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return x.Size(), nil
}

// Close marks the index closed. All state is already persisted.
func (d *Durable) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}
