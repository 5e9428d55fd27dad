package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/journal-assistant/internal/core/domain"
	"github.com/custodia-labs/journal-assistant/internal/core/services"
)

// SearchJournalInput is the input schema for the search_journal tool.
type SearchJournalInput struct {
	Query     string `json:"query" jsonschema:"free text to search journal entries for"`
	Notebook  string `json:"notebook,omitempty" jsonschema:"restrict results to one notebook (e.g. Daily, Weekly, Journal)"`
	StartDate string `json:"start_date,omitempty" jsonschema:"only entries on or after this date (YYYY-MM-DD)"`
	EndDate   string `json:"end_date,omitempty" jsonschema:"only entries on or before this date (YYYY-MM-DD)"`
	Limit     int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
}

// SearchJournalOutput is the output schema for the search_journal tool.
// Query echoes the caller's free text so results stay attributable in
// multi-tool transcripts.
type SearchJournalOutput struct {
	Query   string        `json:"query"`
	Results []EntryOutput `json:"results"`
	Count   int           `json:"count"`
}

// EntryOutput represents a single journal entry result.
type EntryOutput struct {
	UID      string  `json:"uid"`
	Content  string  `json:"content"`
	Category string  `json:"category,omitempty"`
	Date     string  `json:"date,omitempty"`
	Score    float64 `json:"score"`
}

// ProcessMediaInput is the input schema for the process_media tool.
type ProcessMediaInput struct {
	Identifier string `json:"identifier" jsonschema:"media source URI of the page to process"`
}

// ProcessMediaOutput is the output schema for the process_media tool.
type ProcessMediaOutput struct {
	Identifier string `json:"identifier"`
	Status     string `json:"status"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_journal",
		Description: "Search handwritten journal entries by text, notebook and date range",
	}, s.handleSearchJournal)

	if s.ports.Processor != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "process_media",
			Description: "Process a single media item (journal page image) immediately",
		}, s.handleProcessMedia)
	}
}

// handleSearchJournal handles the search_journal tool invocation.
func (s *Server) handleSearchJournal(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchJournalInput,
) (*mcp.CallToolResult, SearchJournalOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = domain.DefaultMaxResults
	}

	params, err := services.NotebookQuery(input.Query, input.Notebook, input.StartDate, input.EndDate, limit)
	if err != nil {
		return nil, SearchJournalOutput{}, err
	}

	results, err := s.ports.Search.Search(ctx, params)
	if err != nil {
		return nil, SearchJournalOutput{}, err
	}

	output := SearchJournalOutput{
		Query:   input.Query,
		Results: make([]EntryOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		doc := results[i].Document
		entry := EntryOutput{
			UID:     doc.UID,
			Content: doc.Document,
			Score:   results[i].Score,
		}
		if doc.Metadata != nil {
			entry.Category = doc.Metadata["category"]
		}
		if doc.Timestamp != nil {
			entry.Date = doc.Timestamp.Format(time.DateOnly)
		}
		output.Results[i] = entry
	}

	return nil, output, nil
}

// handleProcessMedia handles the process_media tool invocation.
func (s *Server) handleProcessMedia(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ProcessMediaInput,
) (*mcp.CallToolResult, ProcessMediaOutput, error) {
	if err := s.ports.Processor.ProcessItem(ctx, input.Identifier); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return nil, ProcessMediaOutput{}, fmt.Errorf("invalid media identifier %q: %w", input.Identifier, err)
		}
		return nil, ProcessMediaOutput{}, err
	}

	return nil, ProcessMediaOutput{
		Identifier: input.Identifier,
		Status:     "processed",
	}, nil
}
