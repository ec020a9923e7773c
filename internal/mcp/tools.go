package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeDumpNotFound  = -32001 // Dump file missing or unreadable
	ErrorCodeEmptyQuery    = -32004 // Query parameter is empty
)

// handleUpdateIndex handles the update_index tool invocation
func (s *Server) handleUpdateIndex(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	dumpPath, ok := args["dump_path"].(string)
	if !ok || dumpPath == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "dump_path parameter is required", map[string]interface{}{
			"param":  "dump_path",
			"reason": "missing or empty",
		})
	}
	if !filepath.IsAbs(dumpPath) {
		return nil, newMCPError(ErrorCodeInvalidParams, "dump_path must be absolute", map[string]interface{}{
			"param": "dump_path",
			"value": dumpPath,
		})
	}

	data, err := os.ReadFile(dumpPath)
	if err != nil {
		return nil, newMCPError(ErrorCodeDumpNotFound, "cannot read dump file", map[string]interface{}{
			"path":  dumpPath,
			"error": err.Error(),
		})
	}

	files, fragments, err := s.svc.IndexDump(ctx, string(data))
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "index update failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"indexed":     true,
		"files":       files,
		"fragments":   fragments,
		"corpus_size": s.svc.Stats().CorpusSize,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSemanticSearch handles the semantic_search tool invocation
func (s *Server) handleSemanticSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	// limit 0 (or omitted) falls back to the configured max_results.
	limit := getIntDefault(args, "limit", 0)
	if limit < 0 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 0 and 100 (0 uses the configured default)", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	threshold := getFloatDefault(args, "threshold", 0)
	if threshold < 0 || threshold > 1 {
		return nil, newMCPError(ErrorCodeInvalidParams, "threshold must be between 0.0 and 1.0", map[string]interface{}{
			"param": "threshold",
			"value": threshold,
		})
	}

	matches, err := s.svc.QueryText(ctx, query, limit, threshold)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	results := make([]map[string]interface{}, 0, len(matches))
	for _, m := range matches {
		results = append(results, map[string]interface{}{
			"file_path":     m.FilePath,
			"start_line":    m.StartLine,
			"end_line":      m.EndLine,
			"fragment_type": string(m.FragmentType),
			"language":      m.Language,
			"similarity":    m.Similarity,
			"excerpt":       m.Excerpt,
		})
	}

	response := map[string]interface{}{
		"query":   query,
		"count":   len(results),
		"results": results,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleIndexStatus handles the index_status tool invocation
func (s *Server) handleIndexStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats := s.svc.Stats()

	response := map[string]interface{}{
		"corpus_size":           stats.CorpusSize,
		"backend":               string(s.svc.BackendKind()),
		"backend_fingerprint":   stats.BackendFingerprint,
		"fragments_by_language": stats.FragmentsByLanguage,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getFloatDefault extracts a number parameter with a default value
func getFloatDefault(args map[string]interface{}, key string, defaultValue float64) float64 {
	if val, ok := args[key].(float64); ok {
		return val
	}
	return defaultValue
}
