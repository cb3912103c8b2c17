// Package status provides the status bar for the TUI.
package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/insectopedia/insectopedia/internal/adapters/driving/tui/keymap"
	"github.com/insectopedia/insectopedia/internal/adapters/driving/tui/styles"
)

// State is what the bar reports on its left side.
type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateAnswered State = "answered"
	StateFailed   State = "failed"
	StateError    State = "error"
	StateHistory  State = "history"
)

// Bar shows the current state on the left and key hints on the right.
type Bar struct {
	styles      *styles.Styles
	keymap      *keymap.KeyMap
	state       State
	message     string
	sourceCount int
	latency     time.Duration
	width       int
}

// NewBar returns a bar in StateReady. Nil arguments select the defaults.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// Init implements the component contract.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update is a no-op; the bar is driven through its setters.
func (s *Bar) Update(tea.Msg) (*Bar, tea.Cmd) {
	return s, nil
}

// View renders the bar at its full width.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := max(s.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return s.styles.StatusBar.Width(s.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (s *Bar) renderLeft() string {
	switch s.state {
	case StateThinking:
		return s.styles.Muted.Render("Thinking...")
	case StateAnswered:
		return s.styles.Success.Render(fmt.Sprintf("Answered from %d sources in %s",
			s.sourceCount, s.latency.Round(time.Millisecond)))
	case StateFailed:
		return s.styles.Warning.Render("Generation failed")
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render("Error: " + s.message)
		}
		return s.styles.Error.Render("Error")
	case StateHistory:
		if s.message != "" {
			return s.styles.Normal.Render(s.message)
		}
		return s.styles.Normal.Render("History")
	case StateReady:
	}
	if s.message != "" {
		return s.styles.Muted.Render(s.message)
	}
	return s.styles.Muted.Render("Ready")
}

func (s *Bar) renderRight() string {
	var bindings []key.Binding
	switch s.state {
	case StateAnswered, StateFailed:
		bindings = s.keymap.AnswerHelp()
	case StateHistory:
		bindings = s.keymap.HistoryHelp()
	case StateReady, StateThinking, StateError:
		bindings = s.keymap.ShortHelp()
	default:
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, h.Key+": "+h.Desc)
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

func (s *Bar) SetState(state State) { s.state = state }
func (s *Bar) State() State         { return s.state }

// SetMessage sets the text shown in StateReady, StateError and StateHistory.
func (s *Bar) SetMessage(message string) { s.message = message }
func (s *Bar) Message() string           { return s.message }

// SetAnswer records the figures shown in StateAnswered.
func (s *Bar) SetAnswer(sources int, latency time.Duration) {
	s.sourceCount = sources
	s.latency = latency
}

func (s *Bar) SourceCount() int { return s.sourceCount }

func (s *Bar) SetWidth(width int) { s.width = width }
func (s *Bar) Width() int         { return s.width }

// Clear returns the bar to StateReady with no message.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.sourceCount = 0
	s.latency = 0
}
