// Package gemini holds the pieces shared by the Gemini embedding and LLM
// adapters: client construction, model naming and error mapping for the
// Generative Language API.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"
)

// NewService creates a Generative Language API client authenticated by API key.
// A non-empty endpoint replaces the public API base URL, e.g. for a proxy.
func NewService(ctx context.Context, apiKey, endpoint string) (*generativelanguage.Service, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}

	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}

	svc, err := generativelanguage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return svc, nil
}

// ModelResource returns the API resource name for a model, adding the
// "models/" prefix when it is missing.
func ModelResource(model string) string {
	if strings.HasPrefix(model, "models/") || strings.HasPrefix(model, "tunedModels/") {
		return model
	}
	return "models/" + model
}

// TextContent wraps text as a single-part user content.
func TextContent(text string) *generativelanguage.Content {
	return &generativelanguage.Content{
		Role:  "user",
		Parts: []*generativelanguage.Part{{Text: text}},
	}
}

// ResponseText concatenates the text parts of the first candidate.
// It returns "" when the response has no usable candidate.
func ResponseText(resp *generativelanguage.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
