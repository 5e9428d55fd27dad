// Package mcp provides an MCP (Model Context Protocol) server adapter for the
// journal assistant. It lets conversational AI assistants search the journal
// and trigger media processing.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
