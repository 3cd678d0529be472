// Package mcp provides an MCP (Model Context Protocol) server adapter for docctx.
// It lets AI assistants pull keyword-ranked context from the local document store.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")
