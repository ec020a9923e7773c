// Package service wires the watcher, scheduler, extractor, embedding
// backend and semantic index into one running pipeline. IndexService is
// the composition root used by both the CLI and the MCP server.
package service
