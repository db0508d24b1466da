package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/journal"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/knowledge"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/models"
)

// BatchLog lists recorded extraction batches. *journal.Journal implements it.
type BatchLog interface {
	List(limit int) ([]journal.Batch, error)
	Get(batchID string) (*journal.Batch, error)
}

// ExtractionTools holds references needed by the extraction tool handlers.
type ExtractionTools struct {
	Engine  Engine
	Journal BatchLog
}

// --- Input types ---

type ProcessOutputInput struct {
	SourceName   string `json:"sourceName" jsonschema:"Name of the MCP server or tool that produced the text"`
	Content      string `json:"content" jsonschema:"Unstructured text to extract concepts and facts from"`
	Instructions string `json:"instructions,omitempty" jsonschema:"Extraction instructions recorded with every concept"`
	Domain       string `json:"domain,omitempty" jsonschema:"Domain to attach every extracted entity to"`
}

type ExtractionHistoryInput struct {
	Limit   int    `json:"limit,omitempty" jsonschema:"Maximum batches to list (default 20)"`
	BatchID string `json:"batchId,omitempty" jsonschema:"Show one batch with the entities it wrote"`
}

// --- Handlers ---

func (t *ExtractionTools) ProcessOutput(ctx context.Context, _ *mcp.CallToolRequest, input ProcessOutputInput) (*mcp.CallToolResult, any, error) {
	res, err := t.Engine.Extract(ctx, models.ExtractionRequest{
		SourceName:   input.SourceName,
		Content:      input.Content,
		Instructions: input.Instructions,
		Domain:       input.Domain,
	})
	if err != nil {
		return toolFailure(err)
	}
	return toolJSON(res)
}

func (t *ExtractionTools) ExtractionHistory(_ context.Context, _ *mcp.CallToolRequest, input ExtractionHistoryInput) (*mcp.CallToolResult, any, error) {
	if t.Journal == nil {
		return toolText("Extraction history is not recorded on this server."), nil, nil
	}

	if input.BatchID != "" {
		batch, err := t.Journal.Get(input.BatchID)
		if err != nil {
			return toolError("Failed to load batch %q: %v", input.BatchID, err), nil, nil
		}
		return toolJSON(batch)
	}

	batches, err := t.Journal.List(input.Limit)
	if err != nil {
		return toolError("Failed to list extraction batches: %v", err), nil, nil
	}
	if batches == nil {
		batches = []journal.Batch{}
	}
	return toolJSON(batches)
}

// --- Helpers ---

func toolText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func toolError(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

func toolJSON(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError("Failed to marshal result: %v", err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}

// toolFailure renders err as {"success": false, "error": ...}.
func toolFailure(err error) (*mcp.CallToolResult, any, error) {
	res, _, _ := toolJSON(knowledge.Failure(err))
	res.IsError = true
	return res, nil, nil
}
