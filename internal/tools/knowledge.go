package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/models"
)

// Engine is the knowledge engine surface the tools call.
// *knowledge.Service implements it.
type Engine interface {
	StoreKnowledge(ctx context.Context, req models.StoreRequest) (*models.StoreResult, error)
	Link(ctx context.Context, req models.LinkRequest) (*models.LinkResult, error)
	Search(ctx context.Context, req models.SearchRequest) (*models.SearchResult, error)
	Explore(ctx context.Context, req models.ExplorationRequest) (*models.ExplorationResult, error)
	FindPaths(ctx context.Context, req models.PathRequest) (*models.PathResult, error)
	AnalyzeGaps(ctx context.Context, req models.GapAnalysisRequest) (*models.GapAnalysisResult, error)
	Extract(ctx context.Context, req models.ExtractionRequest) (*models.ExtractionResult, error)
}

// KnowledgeTools holds references needed by knowledge graph tool handlers.
type KnowledgeTools struct {
	Engine Engine
}

// --- Input types ---

type StoreKnowledgeInput struct {
	Source        string              `json:"source,omitempty" jsonschema:"Who or what produced this knowledge"`
	Content       string              `json:"content" jsonschema:"The knowledge text; the concept name for contentType concept"`
	ContentType   string              `json:"contentType,omitempty" jsonschema:"concept, fact, or any other type stored as generic knowledge"`
	Description   string              `json:"description,omitempty" jsonschema:"Concept description"`
	FactType      string              `json:"factType,omitempty" jsonschema:"Fact type (default statement)"`
	Confidence    *float64            `json:"confidence,omitempty" jsonschema:"Confidence between 0 and 1 (default 0.8)"`
	Metadata      map[string]any      `json:"metadata,omitempty" jsonschema:"Arbitrary metadata"`
	Domain        string              `json:"domain,omitempty" jsonschema:"Domain the entity belongs to"`
	Relationships []RelationshipInput `json:"relationships,omitempty" jsonschema:"Relationships from the new entity to existing ones"`
}

type RelationshipInput struct {
	TargetNode       string         `json:"targetNode" jsonschema:"Target entity id or name"`
	RelationshipType string         `json:"relationshipType" jsonschema:"Relationship type, e.g. RELATED_TO"`
	Properties       map[string]any `json:"properties,omitempty" jsonschema:"Relationship properties"`
}

type CreateRelationshipInput struct {
	Source     string         `json:"source" jsonschema:"Source entity id or name"`
	Target     string         `json:"target" jsonschema:"Target entity id or name"`
	Type       string         `json:"type" jsonschema:"Relationship type, e.g. RELATED_TO"`
	Properties map[string]any `json:"properties,omitempty" jsonschema:"Relationship properties"`
}

type SearchInput struct {
	Query          string               `json:"query" jsonschema:"Free-text query"`
	SearchType     string               `json:"searchType,omitempty" jsonschema:"exact, semantic, graph or hybrid (default hybrid)"`
	ContextFilters *ContextFiltersInput `json:"contextFilters,omitempty" jsonschema:"Filters applied to every match"`
	MaxResults     int                  `json:"maxResults,omitempty" jsonschema:"Maximum results, 1 to 100 (default 10)"`
	IncludeContext *bool                `json:"includeContext,omitempty" jsonschema:"Attach related entities (default true)"`
}

type ContextFiltersInput struct {
	Domain        string   `json:"domain,omitempty" jsonschema:"Only entities in this domain"`
	MinConfidence *float64 `json:"minConfidence,omitempty" jsonschema:"Lower bound on confidence"`
	ContentType   any      `json:"contentType,omitempty" jsonschema:"Entity type or list of types, e.g. concept"`
	Source        string   `json:"source,omitempty" jsonschema:"Exact source"`
}

type ExploreInput struct {
	StartEntity       string   `json:"startEntity" jsonschema:"Start entity id or name"`
	RelationshipTypes []string `json:"relationshipTypes,omitempty" jsonschema:"Only follow these relationship types"`
	MaxDepth          int      `json:"maxDepth,omitempty" jsonschema:"Maximum hops, 1 to 10 (default 3)"`
	Visualize         bool     `json:"visualize,omitempty" jsonschema:"Include a Graphviz DOT rendering"`
}

type FindPathsInput struct {
	EntityA                 string   `json:"entityA" jsonschema:"First entity id or name"`
	EntityB                 string   `json:"entityB" jsonschema:"Second entity id or name"`
	MaxPathLength           int      `json:"maxPathLength,omitempty" jsonschema:"Maximum hops, 1 to 10 (default 5)"`
	RelationshipConstraints []string `json:"relationshipConstraints,omitempty" jsonschema:"Only follow these relationship types"`
	IncludeNodes            bool     `json:"includeNodes,omitempty" jsonschema:"Include the node list of every path"`
}

type AnalyzeGapsInput struct {
	Domain       string   `json:"domain" jsonschema:"Domain to analyze"`
	AnalysisType string   `json:"analysisType" jsonschema:"missing-connections, weak-areas or outdated-content"`
	Threshold    *float64 `json:"threshold,omitempty" jsonschema:"Similarity or confidence threshold between 0 and 1 (default 0.7)"`
}

// --- Handlers ---

func (t *KnowledgeTools) StoreKnowledge(ctx context.Context, _ *mcp.CallToolRequest, input StoreKnowledgeInput) (*mcp.CallToolResult, any, error) {
	req := models.StoreRequest{
		Source:      input.Source,
		Content:     input.Content,
		ContentType: input.ContentType,
		Description: input.Description,
		FactType:    input.FactType,
		Confidence:  input.Confidence,
		Metadata:    input.Metadata,
		Domain:      input.Domain,
	}
	for _, r := range input.Relationships {
		req.Relationships = append(req.Relationships, models.RelationshipSpec{
			TargetNode:       r.TargetNode,
			RelationshipType: r.RelationshipType,
			Properties:       r.Properties,
		})
	}

	res, err := t.Engine.StoreKnowledge(ctx, req)
	if err != nil {
		return toolFailure(err)
	}
	return toolJSON(res)
}

func (t *KnowledgeTools) CreateRelationship(ctx context.Context, _ *mcp.CallToolRequest, input CreateRelationshipInput) (*mcp.CallToolResult, any, error) {
	res, err := t.Engine.Link(ctx, models.LinkRequest{
		Source:     input.Source,
		Target:     input.Target,
		Type:       input.Type,
		Properties: input.Properties,
	})
	if err != nil {
		return toolFailure(err)
	}
	return toolJSON(res)
}

func (t *KnowledgeTools) SearchKnowledge(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, any, error) {
	req := models.SearchRequest{
		Query:          input.Query,
		SearchType:     input.SearchType,
		MaxResults:     input.MaxResults,
		IncludeContext: input.IncludeContext == nil || *input.IncludeContext,
	}
	if f := input.ContextFilters; f != nil {
		req.ContextFilters = models.ContextFilters{
			Domain:        f.Domain,
			MinConfidence: f.MinConfidence,
			ContentTypes:  stringOrList(f.ContentType),
			Source:        f.Source,
		}
	}

	res, err := t.Engine.Search(ctx, req)
	if err != nil {
		return toolFailure(err)
	}
	return toolJSON(res)
}

func (t *KnowledgeTools) ExploreKnowledgeGraph(ctx context.Context, _ *mcp.CallToolRequest, input ExploreInput) (*mcp.CallToolResult, any, error) {
	res, err := t.Engine.Explore(ctx, models.ExplorationRequest{
		StartEntity:       input.StartEntity,
		RelationshipTypes: input.RelationshipTypes,
		MaxDepth:          input.MaxDepth,
		Visualize:         input.Visualize,
	})
	if err != nil {
		return toolFailure(err)
	}
	return toolJSON(res)
}

func (t *KnowledgeTools) FindKnowledgePaths(ctx context.Context, _ *mcp.CallToolRequest, input FindPathsInput) (*mcp.CallToolResult, any, error) {
	res, err := t.Engine.FindPaths(ctx, models.PathRequest{
		EntityA:                 input.EntityA,
		EntityB:                 input.EntityB,
		MaxPathLength:           input.MaxPathLength,
		RelationshipConstraints: input.RelationshipConstraints,
		IncludeNodes:            input.IncludeNodes,
	})
	if err != nil {
		return toolFailure(err)
	}
	return toolJSON(res)
}

func (t *KnowledgeTools) AnalyzeKnowledgeGaps(ctx context.Context, _ *mcp.CallToolRequest, input AnalyzeGapsInput) (*mcp.CallToolResult, any, error) {
	res, err := t.Engine.AnalyzeGaps(ctx, models.GapAnalysisRequest{
		Domain:       input.Domain,
		AnalysisType: input.AnalysisType,
		Threshold:    input.Threshold,
	})
	if err != nil {
		return toolFailure(err)
	}
	return toolJSON(res)
}

// stringOrList accepts a single string or a list of strings.
func stringOrList(v any) []string {
	switch val := v.(type) {
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, e := range val {
			if s, ok := e.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
