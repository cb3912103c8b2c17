// Package tui provides the interactive terminal interface for InsectoPedia.
// It is a driving adapter: every action goes through the driving ports.
package tui

import (
	"github.com/insectopedia/insectopedia/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI uses.
type Ports struct {
	// Answer answers questions. Required.
	Answer driving.AnswerService

	// Retrieval describes the loaded index in the menu. Optional.
	Retrieval driving.RetrievalService

	// History backs the history view. Optional; without it the view is hidden.
	History driving.HistoryService
}

// Validate reports whether the required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	return nil
}
