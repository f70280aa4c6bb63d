package flat

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Save atomically writes the index to path.
// The index is written to a temporary file in the same directory, synced and
// renamed over path, so a failed save leaves the previous file intact.
func Save(path string, x *Index) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("flat: create directory: %w", err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("flat: create temp file: %w", err)
	}
	tmpPath := f.Name()

	if err := Encode(f, x); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("flat: sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("flat: close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("flat: finalize index file: %w", err)
	}

	// Persist the rename itself. Not every platform supports syncing a directory.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		d.Close()
	}
	return nil
}

// Load reads the index at path.
// A missing file yields a fresh empty index of dimension dim. A file with a
// different dimension fails with domain.ErrDimensionMismatch.
func Load(path string, dim int) (*Index, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(dim), nil
	}
	if err != nil {
		return nil, fmt.Errorf("flat: open index: %w", err)
	}
	defer f.Close()

	x, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if x.dim != dim {
		return nil, fmt.Errorf("load %s: %w: file has %d, configured %d",
			path, domain.ErrDimensionMismatch, x.dim, dim)
	}
	return x, nil
}
