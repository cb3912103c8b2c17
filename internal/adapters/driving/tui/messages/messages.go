// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/insectopedia/insectopedia/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewAsk is the question, answer and sources view.
	ViewAsk
	// ViewHistory lists previously asked questions.
	ViewHistory
	// ViewHelp shows the keybindings.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewAsk:
		return "ask"
	case ViewHistory:
		return "history"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// AnswerReceived carries the outcome of an Ask call.
// Err is set only when retrieval failed; generation failures arrive
// as an Answer with Failed set.
type AnswerReceived struct {
	Answer *domain.Answer
	Err    error
}

// HistoryLoaded carries the most recent history records.
type HistoryLoaded struct {
	Records []domain.QueryRecord
	Err     error
}

// HistoryCleared reports how many records a clear removed.
type HistoryCleared struct {
	Deleted int
	Err     error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
