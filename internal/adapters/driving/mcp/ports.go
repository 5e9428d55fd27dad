package mcp

import (
	"github.com/custodia-labs/journal-assistant/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search answers journal queries.
	Search driving.JournalSearch

	// Processor runs media scans and single-item processing.
	Processor driving.MediaProcessor
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	// Processor is optional: a search-only server still works.
	return nil
}
