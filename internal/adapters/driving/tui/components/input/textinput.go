// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
)

// DefaultCharLimit bounds a single line of input.
const DefaultCharLimit = 1024

// Field wraps a bubbles textinput with a label and docqa styling.
type Field struct {
	textinput textinput.Model
	styles    *styles.Styles
	label     string
	width     int
}

// NewField creates a focused input with the given label and placeholder.
func NewField(s *styles.Styles, label, placeholder string) *Field {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	ti.CharLimit = DefaultCharLimit
	ti.Width = 50

	return &Field{
		textinput: ti,
		styles:    s,
		label:     label,
		width:     50,
	}
}

// Init initialises the input.
func (f *Field) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (f *Field) Update(msg tea.Msg) (*Field, tea.Cmd) {
	var cmd tea.Cmd
	f.textinput, cmd = f.textinput.Update(msg)
	return f, cmd
}

// View renders the label and the input box.
func (f *Field) View() string {
	label := f.styles.Title.Render(f.label + " ")
	box := f.styles.InputField.Render(f.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, box)
}

func (f *Field) Value() string         { return f.textinput.Value() }
func (f *Field) SetValue(value string) { f.textinput.SetValue(value) }
func (f *Field) Focus() tea.Cmd        { return f.textinput.Focus() }
func (f *Field) Blur()                 { f.textinput.Blur() }
func (f *Field) Focused() bool         { return f.textinput.Focused() }
func (f *Field) Reset()                { f.textinput.Reset() }
func (f *Field) Width() int            { return f.width }

// SetWidth sets the total width, leaving room for the label and border.
func (f *Field) SetWidth(width int) {
	f.width = width
	inputWidth := width - len(f.label) - 6
	if inputWidth < 20 {
		inputWidth = 20
	}
	f.textinput.Width = inputWidth
}
