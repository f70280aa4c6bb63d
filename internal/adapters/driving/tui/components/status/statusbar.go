// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
)

// State represents what the owning view is doing.
type State string

const (
	StateReady    State = "ready"
	StateBusy     State = "busy"
	StateError    State = "error"
	StateNotFound State = "not_found"
	StateDone     State = "done"
)

// Bar displays a state message on the left and keybinding hints on the right.
type Bar struct {
	styles   *styles.Styles
	bindings []key.Binding
	state    State
	message  string
	width    int
}

// NewBar creates a status bar showing the given bindings.
func NewBar(s *styles.Styles, bindings []key.Binding) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &Bar{
		styles:   s,
		bindings: bindings,
		state:    StateReady,
		width:    80,
	}
}

// View renders the status bar.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.renderRight()

	inner := b.width - b.styles.StatusBar.GetHorizontalFrameSize()
	padding := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}
	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (b *Bar) renderLeft() string {
	switch b.state {
	case StateBusy:
		msg := b.message
		if msg == "" {
			msg = "Working..."
		}
		return b.styles.Muted.Render(msg)
	case StateError:
		if b.message != "" {
			return b.styles.Error.Render(fmt.Sprintf("Error: %s", b.message))
		}
		return b.styles.Error.Render("Error")
	case StateNotFound:
		return b.styles.Warning.Render(b.message)
	case StateDone:
		return b.styles.Success.Render(b.message)
	case StateReady:
	}
	if b.message != "" {
		return b.styles.Normal.Render(b.message)
	}
	return b.styles.Muted.Render("Ready")
}

func (b *Bar) renderRight() string {
	hints := make([]string, 0, len(b.bindings))
	for _, binding := range b.bindings {
		h := binding.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return b.styles.Muted.Render(strings.Join(hints, " | "))
}

// Set updates the state and message together.
func (b *Bar) Set(state State, message string) {
	b.state = state
	b.message = message
}

func (b *Bar) State() State                       { return b.state }
func (b *Bar) Message() string                    { return b.message }
func (b *Bar) SetBindings(bindings []key.Binding) { b.bindings = bindings }
func (b *Bar) SetWidth(width int)                 { b.width = width }
func (b *Bar) Width() int                         { return b.width }

// Clear resets the bar to the ready state.
func (b *Bar) Clear() {
	b.state = StateReady
	b.message = ""
}
