// Package mcp provides an MCP (Model Context Protocol) server adapter for faqrag.
// It lets AI assistants ask grounded questions and fetch FAQ passages.
package mcp

import "errors"

var (
	// ErrMissingAssistant is returned when the assistant is not provided.
	ErrMissingAssistant = errors.New("mcp: assistant is required")

	// ErrMissingRetriever is returned when the retriever is not provided.
	ErrMissingRetriever = errors.New("mcp: retriever is required")
)
