// Package input provides the question box for the TUI.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/insectopedia/insectopedia/internal/adapters/driving/tui/styles"
)

// CharLimit caps the length of a question.
const CharLimit = 512

const minInputWidth = 20

// QuestionInput wraps a bubbles textinput with a "Question:" label.
type QuestionInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int
}

// NewQuestionInput returns a focused, empty question box.
func NewQuestionInput(s *styles.Styles) *QuestionInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Ask about an insect, e.g. where do ants live?"
	ti.CharLimit = CharLimit
	ti.Width = 60
	ti.Focus()

	return &QuestionInput{
		textinput: ti,
		styles:    s,
		width:     60,
	}
}

// Init starts the cursor blinking.
func (q *QuestionInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update forwards msg to the underlying textinput.
func (q *QuestionInput) Update(msg tea.Msg) (*QuestionInput, tea.Cmd) {
	var cmd tea.Cmd
	q.textinput, cmd = q.textinput.Update(msg)
	return q, cmd
}

// View renders the label and the framed input.
func (q *QuestionInput) View() string {
	label := q.styles.Title.Render("Question: ")
	field := q.styles.InputField.Render(q.textinput.View())
	//nolint:misspell // lipgloss.Center is the library constant
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

// Value returns the raw input.
func (q *QuestionInput) Value() string {
	return q.textinput.Value()
}

// Question returns the input with surrounding whitespace removed.
func (q *QuestionInput) Question() string {
	return strings.TrimSpace(q.textinput.Value())
}

// SetValue replaces the input.
func (q *QuestionInput) SetValue(value string) {
	q.textinput.SetValue(value)
}

// Focus gives the input keyboard focus.
func (q *QuestionInput) Focus() tea.Cmd {
	return q.textinput.Focus()
}

// Blur removes keyboard focus.
func (q *QuestionInput) Blur() {
	q.textinput.Blur()
}

// Focused reports whether the input has focus.
func (q *QuestionInput) Focused() bool {
	return q.textinput.Focused()
}

// SetWidth fits the input to width, leaving room for the label and frame.
func (q *QuestionInput) SetWidth(width int) {
	q.width = width
	q.textinput.Width = max(width-16, minInputWidth)
}

// Width returns the width last set.
func (q *QuestionInput) Width() int {
	return q.width
}

// Reset clears the input.
func (q *QuestionInput) Reset() {
	q.textinput.Reset()
}
