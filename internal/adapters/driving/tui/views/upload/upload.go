// Package upload provides the file ingestion view for the TUI.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// ErrNoIngestService indicates that no ingest service was provided.
var ErrNoIngestService = errors.New("ingest service is required")

var errNoResult = errors.New("no result returned")

// SuccessMessage is shown after a document has been ingested.
const SuccessMessage = "Document uploaded and embedded successfully"

// maxHistory bounds the list of recent uploads.
const maxHistory = 10

// entry is one finished upload attempt.
type entry struct {
	path string
	text string
	ok   bool
}

// View reads a local PDF or DOCX file and ingests it.
type View struct {
	styles    *styles.Styles
	input     *input.Field
	statusbar *status.Bar
	ingest    driving.IngestService
	ctx       context.Context

	recent    []entry
	uploading bool
	width     int
	height    int
	ready     bool
}

// NewView creates a new upload view.
func NewView(s *styles.Styles, km *keymap.KeyMap, ingest driving.IngestService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:    s,
		input:     input.NewField(s, "File:", "/path/to/document.pdf"),
		statusbar: status.NewBar(s, km.UploadHelp()),
		ingest:    ingest,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
}

// WithContext sets the context used for ingestion.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the upload view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		//nolint:exhaustive // handling only relevant key types
		switch msg.Type {
		case tea.KeyEsc:
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		case tea.KeyEnter:
			if v.uploading {
				return v, nil
			}
			return v.submit()
		}

	case messages.UploadCompleted:
		v.handleCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.uploading = false
		v.statusbar.Set(status.StateError, msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) submit() (*View, tea.Cmd) {
	path := expandHome(strings.TrimSpace(v.input.Value()))
	if path == "" {
		v.statusbar.Set(status.StateError, "enter the path of a PDF or DOCX file")
		return v, nil
	}
	v.uploading = true
	v.statusbar.Set(status.StateBusy, "Uploading "+filepath.Base(path)+"...")
	return v, v.upload(path)
}

// upload returns a command that reads the file and ingests it. Reads stop one
// byte past the payload limit so oversized files fail without loading fully.
func (v *View) upload(path string) tea.Cmd {
	svc := v.ingest
	ctx := v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoIngestService}
		}
		content, err := readLimited(path)
		if err != nil {
			return messages.UploadCompleted{Path: path, Err: err}
		}
		result, err := svc.Ingest(ctx, domain.IngestRequest{
			Filename: filepath.Base(path),
			Content:  content,
		})
		return messages.UploadCompleted{Path: path, Result: result, Err: err}
	}
}

func readLimited(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory: %w", path, domain.ErrInvalidInput)
	}
	return io.ReadAll(io.LimitReader(f, domain.MaxPayloadBytes+1))
}

func (v *View) handleCompleted(msg messages.UploadCompleted) {
	v.uploading = false
	if msg.Err == nil && msg.Result == nil {
		msg.Err = errNoResult
	}

	e := entry{path: msg.Path, ok: msg.Err == nil}
	switch {
	case msg.Err == nil:
		e.text = fmt.Sprintf("%s (position %d)", SuccessMessage, msg.Result.Position)
		v.input.SetValue("")
		v.statusbar.Set(status.StateDone, SuccessMessage)
	case errors.Is(msg.Err, domain.ErrPayloadTooLarge):
		e.text = "File too large! Max 5MB."
		v.statusbar.Set(status.StateError, e.text)
	default:
		e.text = msg.Err.Error()
		v.statusbar.Set(status.StateError, e.text)
	}

	v.recent = append([]entry{e}, v.recent...)
	if len(v.recent) > maxHistory {
		v.recent = v.recent[:maxHistory]
	}
}

// View renders the upload view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{
		v.styles.Title.Render("Upload a document"),
		v.styles.Muted.Render("PDF or DOCX, up to 5 MB. Filenames must be unique."),
		"",
		v.input.View(),
		"",
	}

	if len(v.recent) > 0 {
		sections = append(sections, v.styles.Subtitle.Render("Recent uploads"))
		for _, e := range v.recent {
			name := filepath.Base(e.path)
			if e.ok {
				sections = append(sections, v.styles.Success.Render("  ✓ "+name)+"  "+v.styles.Muted.Render(e.text))
			} else {
				sections = append(sections, v.styles.Error.Render("  ✗ "+name)+"  "+v.styles.Muted.Render(e.text))
			}
		}
		sections = append(sections, "")
	}

	sections = append(sections, v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
}

// Reset clears the path input. Recent uploads are kept.
func (v *View) Reset() {
	v.uploading = false
	v.input.SetValue("")
	v.input.Focus()
	v.statusbar.Clear()
}

// SetPath sets the path input.
func (v *View) SetPath(path string) { v.input.SetValue(path) }

func (v *View) Uploading() bool { return v.uploading }
func (v *View) Recent() int     { return len(v.recent) }

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
