// Package ask provides the question and answer view for the TUI.
package ask

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// ErrNoRetrievalService indicates that no retrieval service was provided.
var ErrNoRetrievalService = errors.New("retrieval service is required")

// errEmptyQuestion is shown when enter is pressed on a blank question.
var errEmptyQuestion = errors.New("please enter a valid question")

var errNoResult = errors.New("no result returned")

// View asks questions and shows the answer with its sources. Answered turns
// accumulate into a history passed along with follow-up questions.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.Field
	sources   *list.SourceList
	statusbar *status.Bar

	retrieval driving.RetrievalService
	ctx       context.Context

	question string
	result   *domain.QueryResult
	history  []string
	err      error
	asking   bool
	typing   bool
	width    int
	height   int
	ready    bool
}

// NewView creates a new ask view.
func NewView(s *styles.Styles, km *keymap.KeyMap, retrieval driving.RetrievalService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:    s,
		keymap:    km,
		input:     input.NewField(s, "Question:", "Ask about your documents..."),
		sources:   list.NewSourceList(s),
		statusbar: status.NewBar(s, km.AskHelp()),
		retrieval: retrieval,
		ctx:       context.Background(),
		typing:    true,
		width:     80,
		height:    24,
	}
}

// WithContext sets the context used for questions.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.asking = false
		v.err = msg.Err
		v.statusbar.Set(status.StateError, msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	if v.typing {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}
	if v.asking {
		return v, nil
	}

	if v.typing {
		if msg.Type == tea.KeyEnter {
			return v.submit()
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch msg.String() {
	case "up", "k":
		v.sources.MoveUp()
	case "down", "j":
		v.sources.MoveDown()
	case "enter":
		if name := v.sources.Selected(); name != "" {
			return v, func() tea.Msg {
				return messages.DocumentSelected{Filename: name, Back: messages.ViewAsk}
			}
		}
	case "n":
		v.typing = true
		v.input.SetValue("")
		v.statusbar.SetBindings(v.keymap.AskHelp())
		return v, v.input.Focus()
	}
	return v, nil
}

func (v *View) submit() (*View, tea.Cmd) {
	question := strings.TrimSpace(v.input.Value())
	if question == "" {
		v.err = errEmptyQuestion
		v.statusbar.Set(status.StateError, errEmptyQuestion.Error())
		return v, nil
	}

	v.err = nil
	v.asking = true
	v.question = question
	v.statusbar.Set(status.StateBusy, "Searching documents...")
	return v, v.ask(question, strings.Join(v.history, "\n"))
}

// ask returns a command that asks the retrieval service.
func (v *View) ask(question, history string) tea.Cmd {
	retrieval := v.retrieval
	ctx := v.ctx
	return func() tea.Msg {
		if retrieval == nil {
			return messages.ErrorOccurred{Err: ErrNoRetrievalService}
		}
		result, err := retrieval.Ask(ctx, domain.Query{Question: question, History: history})
		return messages.AnswerReceived{Question: question, Result: result, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.asking = false
	if msg.Err == nil && msg.Result == nil {
		msg.Err = errNoResult
	}
	if msg.Err != nil {
		v.err = msg.Err
		v.statusbar.Set(status.StateError, msg.Err.Error())
		return
	}

	v.err = nil
	v.result = msg.Result
	v.typing = false
	v.input.Blur()
	v.statusbar.SetBindings(v.keymap.AnswerHelp())

	if !msg.Result.Found() {
		v.sources.SetSources(nil)
		v.statusbar.Set(status.StateNotFound, string(msg.Result.NotFound.Reason))
		return
	}

	v.sources.SetSources(msg.Result.Sources)
	v.history = append(v.history, fmt.Sprintf("User: %s\nAssistant: %s", msg.Question, msg.Result.Answer))
	v.statusbar.Set(status.StateDone, fmt.Sprintf("Answered from %d documents", len(msg.Result.Sources)))
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.styles.Title.Render("Ask a question"), "", v.input.View(), "")

	switch {
	case v.err != nil:
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	case v.asking:
		sections = append(sections, v.styles.Muted.Render("Thinking..."), "")
	case v.result != nil && !v.result.Found():
		msg := v.result.NotFound.Message()
		if v.result.NotFound.Recoverable() {
			msg += " (retry later)"
		}
		sections = append(sections, v.styles.Warning.Render(msg), "")
	case v.result != nil:
		answer := v.styles.Answer.Width(v.answerWidth()).Render(v.result.Answer)
		sections = append(sections, v.styles.Muted.Render(v.question), answer, "", v.sources.View(), "")
	}

	sections = append(sections, v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) answerWidth() int {
	if v.width < 24 {
		return 20
	}
	return v.width - 4
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.input.SetWidth(width)
	v.sources.SetWidth(width)
	v.statusbar.SetWidth(width)
}

// Reset clears the question, the answer and the conversation history.
func (v *View) Reset() {
	v.typing = true
	v.asking = false
	v.question = ""
	v.result = nil
	v.history = nil
	v.err = nil
	v.input.SetValue("")
	v.input.Focus()
	v.sources.SetSources(nil)
	v.statusbar.Clear()
	v.statusbar.SetBindings(v.keymap.AskHelp())
}

func (v *View) Result() *domain.QueryResult { return v.result }
func (v *View) History() []string           { return v.history }
func (v *View) Err() error                  { return v.err }
func (v *View) Typing() bool                { return v.typing }
func (v *View) Asking() bool                { return v.asking }
func (v *View) Ready() bool                 { return v.ready }

// SetQuestion sets the question input.
func (v *View) SetQuestion(question string) {
	v.input.SetValue(question)
}
