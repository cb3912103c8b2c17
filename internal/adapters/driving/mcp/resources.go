package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	uriScheme = "insectopedia://"

	// historyLimit caps the records served by the history resource.
	historyLimit = 50
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "index",
		Name:        "index",
		Description: "Manifest of the loaded index: embedding model, dimensions and chunk count",
		MIMEType:    "application/json",
	}, s.handleIndexResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "history",
		Name:        "history",
		Description: "Recently asked questions, newest first",
		MIMEType:    "application/json",
	}, s.handleHistoryResource)
}

// handleIndexResource returns the manifest of the loaded index.
func (s *Server) handleIndexResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(s.ports.Retrieval.Manifest(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling manifest: %w", err)
	}
	return jsonResult(req.Params.URI, data), nil
}

// handleHistoryResource returns recent questions.
func (s *Server) handleHistoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.History == nil {
		return jsonResult(req.Params.URI, []byte("[]")), nil
	}

	records, err := s.ports.History.List(ctx, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}

	type entry struct {
		Question string   `json:"question"`
		Answer   string   `json:"answer"`
		Failed   bool     `json:"failed,omitempty"`
		Sources  []string `json:"sources"`
		AskedAt  string   `json:"asked_at"`
	}

	entries := make([]entry, len(records))
	for i, r := range records {
		entries[i] = entry{
			Question: r.Question,
			Answer:   r.Answer,
			Failed:   r.Failed,
			Sources:  r.SourceIDs,
			AskedAt:  r.CreatedAt.Format(time.RFC3339),
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling history: %w", err)
	}
	return jsonResult(req.Params.URI, data), nil
}

func jsonResult(uri string, data []byte) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}
}
