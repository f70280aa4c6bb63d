// Package doccontent provides the document content view component for the TUI.
package doccontent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// ErrNoDocumentService indicates that no document service was provided.
var ErrNoDocumentService = errors.New("document service not available")

// chromeLines is the height taken by the title, separator, position and help.
const chromeLines = 6

// View shows the extracted text of one document in a scrollable viewport.
type View struct {
	styles          *styles.Styles
	documentService driving.DocumentService
	ctx             context.Context
	viewport        viewport.Model

	filename string
	document *domain.Document
	back     messages.ViewType
	width    int
	height   int
	loading  bool
	err      error
}

// NewView creates a new document content view.
func NewView(s *styles.Styles, documentService driving.DocumentService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:          s,
		documentService: documentService,
		ctx:             context.Background(),
		viewport:        viewport.New(80, 24-chromeLines),
		back:            messages.ViewDocuments,
		width:           80,
		height:          24,
	}
}

// WithContext sets the context used for loading.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetDocument loads a document by filename. Esc returns to back.
func (v *View) SetDocument(filename string, back messages.ViewType) tea.Cmd {
	v.filename = filename
	v.back = back
	v.document = nil
	v.err = nil
	v.loading = true
	v.viewport.SetContent("")
	v.viewport.GotoTop()

	svc := v.documentService
	ctx := v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.DocumentLoaded{Err: ErrNoDocumentService}
		}
		doc, err := svc.Get(ctx, filename)
		return messages.DocumentLoaded{Document: doc, Err: err}
	}
}

// Update handles messages for the document content view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			back := v.back
			return v, func() tea.Msg {
				return messages.ViewChanged{View: back}
			}
		case "home", "g":
			v.viewport.GotoTop()
			return v, nil
		case "end", "G":
			v.viewport.GotoBottom()
			return v, nil
		}

	case messages.DocumentLoaded:
		v.loading = false
		if msg.Err == nil && msg.Document == nil {
			msg.Err = domain.ErrNotFound
		}
		v.err = msg.Err
		if msg.Err == nil {
			v.document = msg.Document
			v.refreshContent()
		}
		return v, nil

	case messages.ErrorOccurred:
		v.loading = false
		v.err = msg.Err
		return v, nil
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// refreshContent wraps the document text to the viewport width.
func (v *View) refreshContent() {
	if v.document == nil {
		return
	}
	wrapped := lipgloss.NewStyle().Width(v.viewport.Width).Render(v.document.Content)
	v.viewport.SetContent(wrapped)
}

// View renders the document content view.
func (v *View) View() string {
	var b strings.Builder

	title := v.filename
	if title == "" {
		title = "Document"
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(strings.Repeat("─", min(max(v.width-4, 1), 60))))
	b.WriteString("\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading content..."))
	case errors.Is(v.err, domain.ErrNotFound):
		b.WriteString(v.styles.Warning.Render(fmt.Sprintf("Document %q not found.", v.filename)))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case v.document == nil || v.document.Content == "":
		b.WriteString(v.styles.Muted.Render("(No content)"))
	default:
		b.WriteString(v.viewport.View())
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%3.0f%%] %d lines",
			v.viewport.ScrollPercent()*100, v.viewport.TotalLineCount())))
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [esc] back"))
	return b.String()
}

// SetDimensions resizes the viewport and rewraps the content.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.viewport.Width = max(width-2, 20)
	v.viewport.Height = max(height-chromeLines, 1)
	v.refreshContent()
}

func (v *View) Document() *domain.Document { return v.document }
func (v *View) Back() messages.ViewType    { return v.back }
func (v *View) Loading() bool              { return v.loading }
func (v *View) Err() error                 { return v.err }
func (v *View) AtTop() bool                { return v.viewport.AtTop() }
