package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// updateIndexTool returns the tool definition for update_index
func updateIndexTool() mcp.Tool {
	return mcp.Tool{
		Name:        "update_index",
		Description: "Extract code fragments from an aggregated source dump and fold them into the semantic index",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"dump_path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to an aggregated dump file (## File: markers with fenced code sections)",
				},
			},
			Required: []string{"dump_path"},
		},
	}
}

// semanticSearchTool returns the tool definition for semantic_search
func semanticSearchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "semantic_search",
		Description: "Find indexed code fragments similar to a query snippet",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Code snippet or natural-language description to search for",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100; 0 or omitted uses the configured default)",
					"default":     0,
					"minimum":     0,
					"maximum":     100,
				},
				"threshold": map[string]interface{}{
					"type":        "number",
					"description": "Minimum cosine similarity (0.0-1.0); results below it are dropped",
					"minimum":     0.0,
					"maximum":     1.0,
				},
			},
			Required: []string{"query"},
		},
	}
}

// indexStatusTool returns the tool definition for index_status
func indexStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_status",
		Description: "Report index size, backend fingerprint and per-language fragment counts",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
