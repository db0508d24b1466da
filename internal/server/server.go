package server

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/tools"
)

// Name is the implementation name reported to MCP clients.
const Name = "knowledge-mcp"

// New creates a fully configured MCP server with all tools registered.
// batches may be nil, in which case extraction history is not served.
func New(engine tools.Engine, batches tools.BatchLog, info tools.About) *mcp.Server {
	kt := &tools.KnowledgeTools{Engine: engine}
	et := &tools.ExtractionTools{Engine: engine, Journal: batches}
	at := &tools.AboutTools{Info: info}

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    Name,
		Version: info.Version,
	}, nil)

	// Write tools
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "store-knowledge",
		Description: "Store a concept, fact or generic knowledge node, optionally linking it to existing entities and a domain",
	}, kt.StoreKnowledge)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "create-relationship",
		Description: "Merge a typed relationship between two existing entities, addressed by id or name",
	}, kt.CreateRelationship)

	// Retrieval tools
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "search-knowledge",
		Description: "Search the knowledge graph with exact, semantic, graph or hybrid matching and ranked results",
	}, kt.SearchKnowledge)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "explore-knowledge-graph",
		Description: "Traverse the neighbourhood of an entity up to a depth, with an optional DOT rendering",
	}, kt.ExploreKnowledgeGraph)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "find-knowledge-paths",
		Description: "Find the shortest paths between two entities",
	}, kt.FindKnowledgePaths)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "analyze-knowledge-gaps",
		Description: "Report missing connections, weakly connected areas or outdated content within a domain",
	}, kt.AnalyzeKnowledgeGaps)

	// Extraction tools
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "process-mcp-output",
		Description: "Extract concepts and facts from unstructured tool output and store them with provenance",
	}, et.ProcessOutput)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "extraction-history",
		Description: "List recent extraction batches, or show one batch with the entities it wrote",
	}, et.ExtractionHistory)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "about",
		Description: "Describe this server and its capabilities",
	}, at.About)

	return srv
}
