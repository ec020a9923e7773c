// Package cli defines the llmdiver command tree: serve (MCP on stdio),
// watch (pipeline only), index (one-shot dump), search and version.
package cli
