package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/greenantix/llmdiver/internal/service"
)

const (
	// ServerName is the MCP server name
	ServerName = "llmdiver"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp *server.MCPServer
	svc *service.IndexService
}

// NewServer creates a new MCP server over an already-constructed index
// service. The caller owns the service lifecycle (Start/Stop).
func NewServer(svc *service.IndexService) *Server {
	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp: mcpServer,
		svc: svc,
	}
	s.registerTools()
	return s
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(updateIndexTool(), s.handleUpdateIndex)
	s.mcp.AddTool(semanticSearchTool(), s.handleSemanticSearch)
	s.mcp.AddTool(indexStatusTool(), s.handleIndexStatus)
}
