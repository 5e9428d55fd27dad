package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for journal resources.
	uriScheme = "journal://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for scan statistics.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "scan-stats",
		Name:        "scan-stats",
		Description: "Statistics from the most recent media scan",
		MIMEType:    "application/json",
	}, s.handleScanStatsResource)

	// Static resource for index status.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "index-status",
		Name:        "index-status",
		Description: "Size of the journal search index",
		MIMEType:    "application/json",
	}, s.handleIndexStatusResource)
}

// handleScanStatsResource returns the persisted statistics of the last scan.
func (s *Server) handleScanStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Processor == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	stats, err := s.ports.Processor.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading scan stats: %w", err)
	}

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling scan stats: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleIndexStatusResource returns the number of indexed documents.
func (s *Server) handleIndexStatusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	count, err := s.ports.Search.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}

	data, err := json.Marshal(map[string]int{"documents": count})
	if err != nil {
		return nil, fmt.Errorf("marshalling index status: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
