package flat

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.idx")
	x := sampleIndex(t)

	require.NoError(t, Save(path, x))

	got, err := Load(path, 3)
	require.NoError(t, err)
	assert.Equal(t, x.Size(), got.Size())

	q := unit(0.2, 1, 0.1)
	want, _ := x.Search(q, 3)
	have, _ := got.Search(q, 3)
	assert.Equal(t, want, have)
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "missing.idx"), 4)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Size())
	assert.Equal(t, 4, got.Dimensions())
}

func TestLoad_DimensionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.idx")
	require.NoError(t, Save(path, sampleIndex(t)))

	_, err := Load(path, 384)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vectors.idx")
	require.NoError(t, Save(path, sampleIndex(t)))
	require.NoError(t, Save(path, sampleIndex(t)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "vectors.idx", entries[0].Name())
}

func TestSave_FailureKeepsPreviousFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vectors.idx")
	require.NoError(t, Save(path, sampleIndex(t)))

	// A directory at the rename target makes the final step fail.
	bad := filepath.Join(dir, "blocked")
	require.NoError(t, os.MkdirAll(filepath.Join(bad, "child"), 0700))
	assert.Error(t, Save(bad, sampleIndex(t)))

	got, err := Load(path, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Size())
}

func TestOpen_CorruptFileIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.idx")
	require.NoError(t, os.WriteFile(path, []byte("not an index at all"), 0600))

	_, err := Open(path, 3)
	assert.ErrorIs(t, err, domain.ErrIndexCorrupt)
}

func TestOpen_InvalidDimension(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "v.idx"), 0)
	assert.Error(t, err)
}

func TestDurable_AppendPersistsImmediately(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vectors.idx")
	d, err := Open(path, 3)
	require.NoError(t, err)

	pos, err := d.Append(ctx, unit(1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, 0, pos)

	onDisk, err := Load(path, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, onDisk.Size())
}

func TestDurable_ObservesOtherWriters(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vectors.idx")

	reader, err := Open(path, 3)
	require.NoError(t, err)
	writer, err := Open(path, 3)
	require.NoError(t, err)

	size, err := reader.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, size)

	_, err = writer.Append(ctx, unit(1, 0, 0))
	require.NoError(t, err)
	_, err = writer.Append(ctx, unit(0, 1, 0))
	require.NoError(t, err)

	size, err = reader.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, size)

	hits, err := reader.Search(ctx, unit(0, 1, 0), 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 1, hits[0].Position)

	// The reader appends after reloading, so it never reuses a position.
	pos, err := reader.Append(ctx, unit(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, pos)
}

func TestDurable_ConcurrentAppendsGetUniquePositions(t *testing.T) {
	ctx := context.Background()
	d, err := Open(filepath.Join(t.TempDir(), "vectors.idx"), 3)
	require.NoError(t, err)

	const n = 20
	var wg sync.WaitGroup
	got := make([]int, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], errs[i] = d.Append(ctx, unit(float32(i+1), 1, 0))
		}(i)
	}
	wg.Wait()

	seen := make(map[int]bool)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.False(t, seen[got[i]], "position %d assigned twice", got[i])
		seen[got[i]] = true
	}
	size, err := d.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, n, size)
	for pos := 0; pos < n; pos++ {
		assert.True(t, seen[pos])
	}
}

func TestDurable_ConcurrentSearchDuringAppend(t *testing.T) {
	ctx := context.Background()
	d, err := Open(filepath.Join(t.TempDir(), "vectors.idx"), 2)
	require.NoError(t, err)
	_, err = d.Append(ctx, unit(1, 0))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := d.Append(ctx, unit(0, 1))
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			hits, err := d.Search(ctx, unit(1, 0), 3)
			assert.NoError(t, err)
			assert.NotEmpty(t, hits)
			assert.Equal(t, 0, hits[0].Position)
		}()
	}
	wg.Wait()
}

func TestDurable_CorruptionAfterOpenIsReported(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vectors.idx")
	d, err := Open(path, 2)
	require.NoError(t, err)
	_, err = d.Append(ctx, unit(1, 0))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("garbage bytes that change the size"), 0600))

	_, err = d.Search(ctx, unit(1, 0), 1)
	assert.ErrorIs(t, err, domain.ErrIndexCorrupt)
	_, err = d.Append(ctx, unit(1, 0))
	assert.ErrorIs(t, err, domain.ErrIndexCorrupt)
}

func TestDurable_DimensionMismatch(t *testing.T) {
	d, err := Open(filepath.Join(t.TempDir(), "vectors.idx"), 3)
	require.NoError(t, err)

	_, err = d.Append(context.Background(), []float32{1, 0})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	size, _ := d.Size(context.Background())
	assert.Equal(t, 0, size)
}

func TestDurable_Closed(t *testing.T) {
	d, err := Open(filepath.Join(t.TempDir(), "vectors.idx"), 2)
	require.NoError(t, err)
	require.NoError(t, d.Close())

	_, err = d.Append(context.Background(), unit(1, 0))
	assert.ErrorIs(t, err, ErrClosed)
	_, err = d.Search(context.Background(), unit(1, 0), 1)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestDurable_CancelledContext(t *testing.T) {
	d, err := Open(filepath.Join(t.TempDir(), "vectors.idx"), 2)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = d.Append(ctx, unit(1, 0))
	assert.ErrorIs(t, err, context.Canceled)
}
