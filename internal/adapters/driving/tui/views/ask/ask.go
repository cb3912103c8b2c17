// Package ask provides the question and answer view for the TUI.
package ask

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/insectopedia/insectopedia/internal/adapters/driving/tui/components/input"
	"github.com/insectopedia/insectopedia/internal/adapters/driving/tui/components/list"
	"github.com/insectopedia/insectopedia/internal/adapters/driving/tui/components/status"
	"github.com/insectopedia/insectopedia/internal/adapters/driving/tui/keymap"
	"github.com/insectopedia/insectopedia/internal/adapters/driving/tui/messages"
	"github.com/insectopedia/insectopedia/internal/adapters/driving/tui/styles"
	"github.com/insectopedia/insectopedia/internal/core/domain"
	"github.com/insectopedia/insectopedia/internal/core/ports/driving"
)

// ErrNoAnswerService is reported when the view has nothing to ask.
var ErrNoAnswerService = errors.New("answer service is required")

const (
	// chrome is the rows taken by the title, question box and status bar.
	chrome = 8

	maxSourceRows = 8
	minAnswerRows = 3
)

// View asks a question, shows the answer in a scrollable pane and lists
// the sources below it.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	answer    viewport.Model
	sources   *list.SourceList
	statusbar *status.Bar

	service driving.AnswerService
	ctx     context.Context

	current     *domain.Answer
	err         error
	thinking    bool
	showContext bool

	width  int
	height int
	ready  bool
}

// NewView creates the ask view. A nil keymap selects the default.
func NewView(s *styles.Styles, km *keymap.KeyMap, service driving.AnswerService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:    s,
		keymap:    km,
		input:     input.NewQuestionInput(s),
		answer:    viewport.New(80, minAnswerRows),
		sources:   list.NewSourceList(s),
		statusbar: status.NewBar(s, km),
		service:   service,
		ctx:       context.Background(),
	}
	v.SetDimensions(80, 24)
	v.ready = false
	return v
}

// WithContext sets the context passed to the answer service.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts the cursor blinking.
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
		return v.handleKey(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.thinking = false
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	if key.Matches(msg, v.keymap.Back) {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}
	if v.thinking {
		return v, nil
	}

	if v.input.Focused() {
		if key.Matches(msg, v.keymap.Ask) {
			return v.submit()
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case key.Matches(msg, v.keymap.NewQuestion):
		return v, v.newQuestion()
	case key.Matches(msg, v.keymap.Context):
		v.showContext = !v.showContext
		v.refreshAnswer()
	case key.Matches(msg, v.keymap.PageUp), key.Matches(msg, v.keymap.PageDown):
		var cmd tea.Cmd
		v.answer, cmd = v.answer.Update(msg)
		return v, cmd
	case key.Matches(msg, v.keymap.Up):
		v.sources.MoveUp()
	case key.Matches(msg, v.keymap.Down):
		v.sources.MoveDown()
	}
	return v, nil
}

func (v *View) submit() (*View, tea.Cmd) {
	question := v.input.Question()
	if question == "" {
		v.statusbar.SetState(status.StateReady)
		v.statusbar.SetMessage("Type a question first")
		return v, nil
	}

	v.thinking = true
	v.err = nil
	v.input.Blur()
	v.statusbar.SetState(status.StateThinking)
	return v, v.ask(question)
}

func (v *View) ask(question string) tea.Cmd {
	service, ctx := v.service, v.ctx
	return func() tea.Msg {
		if service == nil {
			return messages.ErrorOccurred{Err: ErrNoAnswerService}
		}
		answer, err := service.Ask(ctx, question)
		return messages.AnswerReceived{Answer: answer, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.thinking = false
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	if msg.Answer == nil {
		return
	}

	v.err = nil
	v.current = msg.Answer
	v.showContext = false
	v.sources.SetResults(msg.Answer.Sources)
	v.refreshAnswer()
	v.layout()

	if msg.Answer.Failed {
		v.statusbar.SetState(status.StateFailed)
	} else {
		v.statusbar.SetState(status.StateAnswered)
	}
	v.statusbar.SetAnswer(len(msg.Answer.Sources), msg.Answer.Latency)
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	if err != nil {
		v.statusbar.SetMessage(err.Error())
	}
	v.input.Focus()
}

func (v *View) newQuestion() tea.Cmd {
	v.current = nil
	v.err = nil
	v.showContext = false
	v.sources.SetResults(nil)
	v.answer.SetContent("")
	v.statusbar.Clear()
	v.input.Reset()
	v.layout()
	return v.input.Focus()
}

// refreshAnswer re-renders the answer pane content at the current width.
func (v *View) refreshAnswer() {
	if v.current == nil {
		v.answer.SetContent("")
		return
	}

	wrap := lipgloss.NewStyle().Width(max(v.answer.Width, 20))
	content := wrap.Render(v.current.Text)
	if v.showContext {
		block := v.current.Context
		if block == "" {
			block = "(no context retrieved)"
		}
		content += "\n\n" + v.styles.Subtitle.Render("Context") + "\n" +
			v.styles.Muted.Render(wrap.Render(block))
	}
	v.answer.SetContent(content)
	v.answer.GotoTop()
}

// Reset clears the view for a fresh question.
func (v *View) Reset() {
	v.newQuestion()
	v.thinking = false
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)
	sections = append(sections, v.styles.Title.Render("InsectoPedia"), v.input.View(), "")

	switch {
	case v.err != nil:
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	case v.thinking:
		sections = append(sections, v.styles.Muted.Render("Retrieving passages and asking the model..."), "")
	case v.current != nil:
		frame := v.styles.Answer
		if v.current.Failed {
			frame = v.styles.Failure
		}
		sections = append(sections, frame.Render(v.answer.View()), "", v.sources.View())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sizes every component to width x height.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.answer.Width = max(width-4, 20)
	v.layout()
	v.refreshAnswer()
}

// layout splits the rows left after chrome between the answer and sources.
func (v *View) layout() {
	sourceRows := 0
	if n := v.sources.Count(); n > 0 {
		sourceRows = min(n*2+2, maxSourceRows)
	}
	v.sources.SetDimensions(v.width, sourceRows)
	v.answer.Height = max(v.height-chrome-sourceRows, minAnswerRows)
}

// Answer returns the answer on screen, or nil.
func (v *View) Answer() *domain.Answer { return v.current }

// Err returns the last retrieval error.
func (v *View) Err() error { return v.err }

// Thinking reports whether a question is in flight.
func (v *View) Thinking() bool { return v.thinking }

// ShowContext reports whether the context block is expanded.
func (v *View) ShowContext() bool { return v.showContext }

// Question returns the text in the question box.
func (v *View) Question() string { return v.input.Value() }

// InputFocused reports whether keys go to the question box.
func (v *View) InputFocused() bool { return v.input.Focused() }

// Sources exposes the source list.
func (v *View) Sources() *list.SourceList { return v.sources }

// Status exposes the status bar.
func (v *View) Status() *status.Bar { return v.statusbar }
