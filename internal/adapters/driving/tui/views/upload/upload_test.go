package upload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

// mockIngest implements driving.IngestService for testing.
type mockIngest struct {
	err      error
	requests []domain.IngestRequest
}

func (m *mockIngest) Ingest(_ context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.IngestResult{DocumentID: "id", Filename: req.Filename, Position: len(m.requests) - 1}, nil
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newReadyView(svc *mockIngest) *View {
	v := NewView(nil, nil, svc)
	v.SetDimensions(120, 30)
	return v
}

// uploadPath submits path and feeds the command result back.
func uploadPath(t *testing.T, v *View, path string) *View {
	t.Helper()
	v.SetPath(path)
	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, v.Uploading())
	v, _ = v.Update(cmd())
	return v
}

func TestView_UploadSuccess(t *testing.T) {
	svc := &mockIngest{}
	path := writeFile(t, "report.pdf", "%PDF-1.4 body")
	v := newReadyView(svc)

	v = uploadPath(t, v, path)

	require.Len(t, svc.requests, 1)
	assert.Equal(t, "report.pdf", svc.requests[0].Filename)
	assert.Equal(t, []byte("%PDF-1.4 body"), svc.requests[0].Content)
	assert.Empty(t, svc.requests[0].Format)

	assert.False(t, v.Uploading())
	assert.Equal(t, 1, v.Recent())
	view := v.View()
	assert.Contains(t, view, "✓ report.pdf")
	assert.Contains(t, view, SuccessMessage)
	assert.Contains(t, view, "(position 0)")
}

func TestView_UploadErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"too large", domain.ErrPayloadTooLarge, "File too large! Max 5MB."},
		{"duplicate", fmt.Errorf("insert: %w", domain.ErrDuplicateFilename), "filename already exists"},
		{"unsupported", domain.ErrUnsupportedFormat, "unsupported format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newReadyView(&mockIngest{err: tt.err})

			v = uploadPath(t, v, writeFile(t, "a.pdf", "x"))

			view := v.View()
			assert.Contains(t, view, "✗ a.pdf")
			assert.Contains(t, view, tt.want)
		})
	}
}

func TestView_OversizedFileIsTruncatedBeforeIngest(t *testing.T) {
	svc := &mockIngest{}
	big := make([]byte, domain.MaxPayloadBytes+100)
	path := filepath.Join(t.TempDir(), "big.pdf")
	require.NoError(t, os.WriteFile(path, big, 0o600))

	uploadPath(t, newReadyView(svc), path)

	require.Len(t, svc.requests, 1)
	assert.Len(t, svc.requests[0].Content, domain.MaxPayloadBytes+1)
}

func TestView_MissingFile(t *testing.T) {
	svc := &mockIngest{}
	v := newReadyView(svc)

	v = uploadPath(t, v, filepath.Join(t.TempDir(), "missing.pdf"))

	assert.Empty(t, svc.requests)
	assert.Contains(t, v.View(), "✗ missing.pdf")
}

func TestView_Directory(t *testing.T) {
	svc := &mockIngest{}
	v := newReadyView(svc)

	v = uploadPath(t, v, t.TempDir())

	assert.Empty(t, svc.requests)
	assert.Contains(t, v.View(), "is a directory")
}

func TestView_EmptyPath(t *testing.T) {
	v := newReadyView(&mockIngest{})

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.False(t, v.Uploading())
	assert.Contains(t, v.View(), "enter the path of a PDF or DOCX file")
}

func TestView_NoIngestService(t *testing.T) {
	v := NewView(nil, nil, nil)
	v.SetPath("/tmp/a.pdf")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	assert.Equal(t, messages.ErrorOccurred{Err: ErrNoIngestService}, cmd())
}

func TestView_RecentIsBounded(t *testing.T) {
	v := newReadyView(&mockIngest{})
	for i := 0; i < maxHistory+3; i++ {
		v = uploadPath(t, v, writeFile(t, fmt.Sprintf("doc-%02d.pdf", i), "x"))
	}

	assert.Equal(t, maxHistory, v.Recent())
	assert.Contains(t, v.View(), fmt.Sprintf("doc-%02d.pdf", maxHistory+2))
	assert.NotContains(t, v.View(), "doc-00.pdf")
}

func TestView_EscReturnsToMenu(t *testing.T) {
	v := newReadyView(&mockIngest{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, "/abs/a.pdf", expandHome("/abs/a.pdf"))
	assert.Equal(t, filepath.Join(home, "docs/a.pdf"), expandHome("~/docs/a.pdf"))
	assert.Equal(t, "~other/a.pdf", expandHome("~other/a.pdf"))
}
