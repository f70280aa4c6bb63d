package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestIngestCmd_HasFlags(t *testing.T) {
	flag := ingestCmd.Flags().Lookup("format")
	require.NotNil(t, flag)
	assert.Equal(t, "f", flag.Shorthand)
	require.NotNil(t, ingestCmd.Flags().Lookup("watch"))
}

func TestIngestCmd_RequiresFilesOrWatch(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "ingest")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no files given")
}

func TestIngestCmd_IngestsFiles(t *testing.T) {
	ts := setupTestServices(t)
	dir := t.TempDir()
	a := writeFile(t, dir, "refunds.pdf", "Refunds are processed within 30 days.")
	b := writeFile(t, dir, "shipping.docx", "Shipping takes five business days.")

	out, err := execute(t, "ingest", a, b)

	require.NoError(t, err)
	assert.Contains(t, out, "Ingested refunds.pdf")
	assert.Contains(t, out, "position 0")
	assert.Contains(t, out, "Ingested shipping.docx")
	assert.Contains(t, out, "position 1")
	assert.Equal(t, 2, ts.store.Len())
}

func TestIngestCmd_ReportsFailures(t *testing.T) {
	ts := setupTestServices(t)
	dir := t.TempDir()
	good := writeFile(t, dir, "refunds.pdf", "Refunds are processed within 30 days.")
	empty := writeFile(t, dir, "scan.pdf", "   ")
	unsupported := writeFile(t, dir, "notes.txt", "plain text")

	_, err := execute(t, "ingest", good)
	require.NoError(t, err)

	out, err := execute(t, "ingest", good, empty, unsupported, filepath.Join(dir, "missing.pdf"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "4 of 4 files failed")
	assert.Contains(t, out, "Skipped "+good)
	assert.Contains(t, out, "already exists")
	assert.Contains(t, out, "Skipped "+empty)
	assert.Contains(t, out, "Skipped "+unsupported)
	assert.Contains(t, out, "Failed "+filepath.Join(dir, "missing.pdf"))
	assert.Equal(t, 1, ts.store.Len())
}

func TestIngestCmd_DeclaredFormat(t *testing.T) {
	ts := setupTestServices(t)
	path := writeFile(t, t.TempDir(), "export.bin", "Warranty lasts two years.")

	_, err := execute(t, "ingest", "--format", "pdf", path)

	require.NoError(t, err)
	assert.Equal(t, 1, ts.store.Len())
}

func TestIngestCmd_WatchRejectsMissingDir(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "ingest", "--watch", filepath.Join(t.TempDir(), "missing"))

	assert.Error(t, err)
}
