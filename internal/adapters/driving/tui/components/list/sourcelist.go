// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
)

// SourceList displays the filenames an answer was grounded on.
// The first entry is the primary source.
type SourceList struct {
	sources  []string
	selected int
	styles   *styles.Styles
	width    int
}

// NewSourceList creates an empty source list.
func NewSourceList(s *styles.Styles) *SourceList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &SourceList{styles: s, width: 80}
}

// View renders the list. It renders nothing when empty.
func (l *SourceList) View() string {
	if len(l.sources) == 0 {
		return ""
	}

	lines := make([]string, 0, len(l.sources)+1)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Sources (%d)", len(l.sources))))
	for i, name := range l.sources {
		lines = append(lines, l.renderSource(i, name))
	}
	return strings.Join(lines, "\n")
}

func (l *SourceList) renderSource(index int, name string) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}
	marker := " "
	if index == 0 {
		marker = "*"
	}

	maxLen := l.width - 8
	if maxLen < 10 {
		maxLen = 10
	}
	if len(name) > maxLen {
		name = name[:maxLen-3] + "..."
	}

	line := fmt.Sprintf("%s%s %s", indicator, marker, name)
	if index == l.selected {
		return l.styles.Selected.Render(line)
	}
	return l.styles.Normal.Render(line)
}

// SetSources replaces the list and resets the selection.
func (l *SourceList) SetSources(sources []string) {
	l.sources = sources
	l.selected = 0
}

// Selected returns the selected filename, or "" when empty.
func (l *SourceList) Selected() string {
	if len(l.sources) == 0 {
		return ""
	}
	return l.sources[l.selected]
}

// MoveUp moves selection up.
func (l *SourceList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *SourceList) MoveDown() {
	if l.selected < len(l.sources)-1 {
		l.selected++
	}
}

func (l *SourceList) Sources() []string  { return l.sources }
func (l *SourceList) Index() int         { return l.selected }
func (l *SourceList) Len() int           { return len(l.sources) }
func (l *SourceList) SetWidth(width int) { l.width = width }
