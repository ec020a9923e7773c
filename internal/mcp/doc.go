// Package mcp exposes the semantic index over the Model Context Protocol
// so AI coding assistants can drive it directly.
//
// Three tools are registered:
//   - update_index: fold an aggregated source dump into the index
//   - semantic_search: find fragments similar to a query snippet
//   - index_status: report corpus size and backend details
//
// The server speaks MCP over stdio; all tool results are JSON text
// payloads and failures surface as typed JSON-RPC errors.
package mcp
