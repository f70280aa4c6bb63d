package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

func testDocuments() []domain.Document {
	pos0, pos1 := 0, 1
	return []domain.Document{
		{ID: "2", Filename: "notes.docx", Content: "Budget is 40k.", VectorPosition: &pos1, CreatedAt: time.Now()},
		{ID: "1", Filename: "plan.pdf", Content: "The launch is in May.", VectorPosition: &pos0, CreatedAt: time.Now()},
	}
}

func newTestApp(t *testing.T, ingest *MockIngestService) *App {
	t.Helper()
	ports := &Ports{
		Retrieval: &MockRetrievalService{
			AskFunc: func(_ context.Context, q domain.Query) (*domain.QueryResult, error) {
				return &domain.QueryResult{
					Answer:        "The launch is in May.",
					Sources:       []string{"plan.pdf", "notes.docx"},
					PrimarySource: "plan.pdf",
				}, nil
			},
		},
		Document: &MockDocumentService{Docs: testDocuments()},
	}
	if ingest != nil {
		ports.Ingest = ingest
	}
	app, err := NewApp(ports)
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	return app
}

// send delivers msg to the app and returns the resulting command.
func send(app *App, msg tea.Msg) tea.Cmd {
	_, cmd := app.Update(msg)
	return cmd
}

// resolve runs cmd and delivers the message it produces.
func resolve(t *testing.T, app *App, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	require.NotNil(t, cmd)
	return send(app, cmd())
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewApp_Success(t *testing.T) {
	app := newTestApp(t, nil)

	assert.Equal(t, messages.ViewMenu, app.CurrentView())
	assert.Nil(t, app.uploadView)
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{Retrieval: &MockRetrievalService{}})

	assert.ErrorIs(t, err, ErrMissingDocumentService)
	assert.Nil(t, app)
}

func TestApp_WithContext(t *testing.T) {
	app := newTestApp(t, &MockIngestService{})
	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("k"), "v")

	result := app.WithContext(ctx)

	assert.Same(t, app, result)
	assert.Equal(t, ctx, app.ctx)
}

func TestApp_ViewBeforeReady(t *testing.T) {
	app, err := NewApp(&Ports{Retrieval: &MockRetrievalService{}, Document: &MockDocumentService{}})
	require.NoError(t, err)

	assert.False(t, app.Ready())
	assert.Equal(t, "Initialising...", app.View())

	send(app, tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.True(t, app.Ready())
	assert.Contains(t, app.View(), "docqa")
}

func TestApp_Init(t *testing.T) {
	app := newTestApp(t, nil)

	assert.NotNil(t, app.Init())
}

func TestApp_CtrlCQuits(t *testing.T) {
	app := newTestApp(t, nil)

	cmd := send(app, tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_QuitMessage(t *testing.T) {
	app := newTestApp(t, nil)

	cmd := send(app, messages.Quit{})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_AskFlow(t *testing.T) {
	app := newTestApp(t, nil)

	send(app, messages.ViewChanged{View: messages.ViewAsk})
	require.Equal(t, messages.ViewAsk, app.CurrentView())

	app.askView.SetQuestion("When is the launch?")
	resolve(t, app, send(app, tea.KeyMsg{Type: tea.KeyEnter}))
	assert.Contains(t, app.View(), "The launch is in May.")
	assert.NoError(t, app.Err())

	// Open the second source, then come back to the answer.
	send(app, key("j"))
	openCmd := send(app, tea.KeyMsg{Type: tea.KeyEnter})
	loadCmd := resolve(t, app, openCmd)
	assert.Equal(t, messages.ViewDocContent, app.CurrentView())
	resolve(t, app, loadCmd)
	assert.Contains(t, app.View(), "Budget is 40k.")

	resolve(t, app, send(app, tea.KeyMsg{Type: tea.KeyEsc}))
	assert.Equal(t, messages.ViewAsk, app.CurrentView())
	assert.Contains(t, app.View(), "The launch is in May.")

	// Leaving to the menu and coming back starts over.
	resolve(t, app, send(app, tea.KeyMsg{Type: tea.KeyEsc}))
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
	send(app, messages.ViewChanged{View: messages.ViewAsk})
	assert.NotContains(t, app.View(), "The launch is in May.")
}

func TestApp_DocumentsFlow(t *testing.T) {
	app := newTestApp(t, nil)

	resolve(t, app, send(app, messages.ViewChanged{View: messages.ViewDocuments}))
	view := app.View()
	assert.Contains(t, view, "Documents (2)")
	assert.Contains(t, view, "notes.docx")
	assert.Contains(t, view, "plan.pdf")

	send(app, tea.KeyMsg{Type: tea.KeyDown})
	loadCmd := resolve(t, app, send(app, tea.KeyMsg{Type: tea.KeyEnter}))
	resolve(t, app, loadCmd)
	assert.Equal(t, messages.ViewDocContent, app.CurrentView())
	assert.Contains(t, app.View(), "The launch is in May.")

	cmd := resolve(t, app, send(app, tea.KeyMsg{Type: tea.KeyEsc}))
	assert.Nil(t, cmd)
	assert.Equal(t, messages.ViewDocuments, app.CurrentView())
}

func TestApp_UploadFlow(t *testing.T) {
	ingest := &MockIngestService{}
	app := newTestApp(t, ingest)
	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o600))

	send(app, messages.ViewChanged{View: messages.ViewUpload})
	require.Equal(t, messages.ViewUpload, app.CurrentView())

	app.uploadView.SetPath(path)
	resolve(t, app, send(app, tea.KeyMsg{Type: tea.KeyEnter}))

	require.Len(t, ingest.Requests, 1)
	assert.Equal(t, "report.pdf", ingest.Requests[0].Filename)
	assert.Contains(t, app.View(), "Document uploaded and embedded successfully")
}

func TestApp_UploadUnavailableWithoutIngest(t *testing.T) {
	app := newTestApp(t, nil)

	cmd := send(app, messages.ViewChanged{View: messages.ViewUpload})

	assert.Nil(t, cmd)
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_HelpView(t *testing.T) {
	app := newTestApp(t, nil)

	send(app, messages.ViewChanged{View: messages.ViewHelp})
	assert.Contains(t, app.View(), "Open a source document")

	send(app, key("x"))
	assert.Equal(t, messages.ViewHelp, app.CurrentView())

	send(app, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_ErrorOccurred(t *testing.T) {
	app := newTestApp(t, nil)
	send(app, messages.ViewChanged{View: messages.ViewAsk})

	send(app, messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, app.Err(), "boom")
	assert.Contains(t, app.View(), "boom")
}

func TestApp_MenuNavigation(t *testing.T) {
	app := newTestApp(t, nil)

	send(app, tea.KeyMsg{Type: tea.KeyDown})
	loadCmd := resolve(t, app, send(app, tea.KeyMsg{Type: tea.KeyEnter}))

	assert.Equal(t, messages.ViewDocuments, app.CurrentView())
	resolve(t, app, loadCmd)
	assert.Len(t, app.documentsView.Documents(), 2)
}
