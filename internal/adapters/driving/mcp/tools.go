package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/insectopedia/insectopedia/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the question or keywords to look up"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"number of passages to return (default 3)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []PassageOutput `json:"results"`
	Count   int             `json:"count"`
}

// PassageOutput is one retrieved passage.
type PassageOutput struct {
	ChunkID   string  `json:"chunk_id"`
	SpeciesID string  `json:"species_id"`
	Name      string  `json:"name"`
	Taxonomy  string  `json:"taxonomy,omitempty"`
	Text      string  `json:"text"`
	Score     float64 `json:"score"`
	Rank      int     `json:"rank"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"an insect-related question"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string   `json:"answer"`
	Failed  bool     `json:"failed,omitempty"`
	Sources []string `json:"sources"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find the insect encyclopedia passages most similar to a query",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer an insect-related question from the encyclopedia",
	}, s.handleAsk)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, SearchOutput{}, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}

	results, err := s.ports.Retrieval.Search(ctx, query, input.TopK)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]PassageOutput, len(results)),
		Count:   len(results),
	}
	for i, r := range results {
		output.Results[i] = PassageOutput{
			ChunkID:   r.Chunk.ID,
			SpeciesID: r.Chunk.SpeciesID,
			Name:      r.Chunk.Name,
			Taxonomy:  r.Chunk.Taxonomy,
			Text:      r.Chunk.Text,
			Score:     r.Score,
			Rank:      r.Rank,
		}
	}

	return nil, output, nil
}

// handleAsk handles the ask tool invocation. A generation failure is
// reported in the output, not as a tool error.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if s.ports.Answer == nil {
		return nil, AskOutput{}, ErrAnswerUnavailable
	}

	answer, err := s.ports.Answer.Ask(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	sources := make([]string, len(answer.Sources))
	for i, r := range answer.Sources {
		sources[i] = r.Chunk.ID
	}
	return nil, AskOutput{Answer: answer.Text, Failed: answer.Failed, Sources: sources}, nil
}
