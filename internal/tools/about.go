package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// About describes the running server.
type About struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Description  string   `json:"description"`
	Capabilities []string `json:"capabilities"`
	GraphURI     string   `json:"graphUri"`
}

// AboutTools serves the about tool.
type AboutTools struct {
	Info About
}

func (t *AboutTools) About(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	return toolJSON(t.Info)
}
