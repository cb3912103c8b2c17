package mcp

import (
	"github.com/insectopedia/insectopedia/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieval searches the loaded index.
	Retrieval driving.RetrievalService

	// Answer answers questions. Optional; without it the ask tool fails.
	Answer driving.AnswerService

	// History exposes past questions. Optional.
	History driving.HistoryService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
