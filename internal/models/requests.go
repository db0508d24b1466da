package models

// Search types.
const (
	SearchExact    = "exact"
	SearchSemantic = "semantic"
	SearchGraph    = "graph"
	SearchHybrid   = "hybrid"
)

// Gap analysis types.
const (
	GapMissingConnections = "missing-connections"
	GapWeakAreas          = "weak-areas"
	GapOutdatedContent    = "outdated-content"
)

// Request defaults.
const (
	DefaultMaxResults    = 10
	DefaultMaxDepth      = 3
	DefaultMaxPathLength = 5
	DefaultGapThreshold  = 0.7
)

// ContextFilters narrow a search. All set filters apply conjunctively.
type ContextFilters struct {
	Domain        string   `json:"domain,omitempty"`
	MinConfidence *float64 `json:"minConfidence,omitempty" validate:"omitempty,min=0,max=1"`
	ContentTypes  []string `json:"contentType,omitempty"`
	Source        string   `json:"source,omitempty"`
}

// SearchRequest asks the retrieval engine for ranked entities.
type SearchRequest struct {
	Query          string         `json:"query" validate:"required"`
	SearchType     string         `json:"searchType" validate:"oneof=exact semantic graph hybrid"`
	ContextFilters ContextFilters `json:"contextFilters"`
	MaxResults     int            `json:"maxResults" validate:"min=1,max=100"`
	IncludeContext bool           `json:"includeContext"`
}

// ExplorationRequest asks the traversal engine to expand around one entity.
type ExplorationRequest struct {
	StartEntity       string   `json:"startEntity" validate:"required"`
	RelationshipTypes []string `json:"relationshipTypes,omitempty"`
	MaxDepth          int      `json:"maxDepth" validate:"min=1,max=10"`
	Visualize         bool     `json:"visualize"`
}

// PathRequest asks for bounded paths between two entities.
type PathRequest struct {
	EntityA                 string   `json:"entityA" validate:"required"`
	EntityB                 string   `json:"entityB" validate:"required"`
	MaxPathLength           int      `json:"maxPathLength" validate:"min=1,max=10"`
	RelationshipConstraints []string `json:"relationshipConstraints,omitempty"`
	IncludeNodes            bool     `json:"includeNodes"`
}

// GapAnalysisRequest selects one structural heuristic over a domain.
type GapAnalysisRequest struct {
	Domain       string   `json:"domain" validate:"required"`
	AnalysisType string   `json:"analysisType" validate:"required"`
	Threshold    *float64 `json:"threshold,omitempty" validate:"omitempty,min=0,max=1"`
}

// RelationshipSpec is an edge requested alongside a store call.
type RelationshipSpec struct {
	TargetNode       string         `json:"targetNode" validate:"required"`
	RelationshipType string         `json:"relationshipType" validate:"required"`
	Properties       map[string]any `json:"properties,omitempty"`
}

// StoreRequest stores one knowledge unit, optionally linking it.
type StoreRequest struct {
	Source        string             `json:"source"`
	Content       string             `json:"content" validate:"required"`
	ContentType   string             `json:"contentType"`
	Description   string             `json:"description,omitempty"`
	FactType      string             `json:"factType,omitempty"`
	Confidence    *float64           `json:"confidence,omitempty" validate:"omitempty,min=0,max=1"`
	Metadata      map[string]any     `json:"metadata,omitempty"`
	Domain        string             `json:"domain,omitempty"`
	Relationships []RelationshipSpec `json:"relationships,omitempty" validate:"dive"`
}

// LinkRequest merges a relationship between two existing entities.
type LinkRequest struct {
	Source     string         `json:"source" validate:"required"`
	Target     string         `json:"target" validate:"required"`
	Type       string         `json:"type" validate:"required"`
	Properties map[string]any `json:"properties,omitempty"`
}

// ExtractionRequest feeds unstructured text into the extraction pipeline.
type ExtractionRequest struct {
	SourceName   string `json:"sourceName" validate:"required"`
	Content      string `json:"content" validate:"required"`
	Instructions string `json:"instructions,omitempty"`
	Domain       string `json:"domain,omitempty"`
}
