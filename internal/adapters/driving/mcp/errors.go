// Package mcp provides an MCP (Model Context Protocol) server adapter for InsectoPedia.
// It lets AI assistants search the insect corpus and ask grounded questions.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")

// ErrAnswerUnavailable is returned by the ask tool when no answer service is wired.
var ErrAnswerUnavailable = errors.New("mcp: answering is not configured")
