package models

// Failure is the shape every operation returns when it cannot complete.
type Failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// StoreResult reports a single stored entity.
type StoreResult struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// LinkResult reports a merged relationship.
type LinkResult struct {
	Success bool   `json:"success"`
	Source  string `json:"source"`
	Type    string `json:"type"`
	Target  string `json:"target"`
	Created bool   `json:"created"`
}

// SearchHit is one ranked retrieval result.
type SearchHit struct {
	ID              string  `json:"id"`
	Content         string  `json:"content"`
	ContentType     string  `json:"contentType"`
	Source          string  `json:"source"`
	Confidence      float64 `json:"confidence"`
	Relevance       float64 `json:"relevance"`
	RelatedConcepts []Ref   `json:"relatedConcepts"`
}

// SearchResult is the retrieval engine response.
type SearchResult struct {
	Success        bool        `json:"success"`
	Results        []SearchHit `json:"results"`
	TotalCount     int         `json:"totalCount"`
	SearchType     string      `json:"searchType"`
	IncludeContext bool        `json:"includeContext"`
}

// NodeSummary describes the start node of an exploration.
type NodeSummary struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Labels  []string `json:"labels"`
	Content string   `json:"content"`
}

// ConnectedNode is an entity reached during exploration.
type ConnectedNode struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	Content       string   `json:"content"`
	Source        string   `json:"source"`
	Confidence    float64  `json:"confidence"`
	Depth         int      `json:"depth"`
	Relationships []string `json:"relationships"`
}

// ExplorationResult is the traversal engine response.
type ExplorationResult struct {
	Success             bool            `json:"success"`
	StartNode           NodeSummary     `json:"startNode"`
	ConnectedNodes      []ConnectedNode `json:"connectedNodes"`
	RelationshipSummary map[string]int  `json:"relationshipSummary"`
	Visualization       string          `json:"visualization,omitempty"`
}

// PathSegment is one hop of a discovered path.
type PathSegment struct {
	Source       string `json:"source"`
	Relationship string `json:"relationship"`
	Target       string `json:"target"`
}

// Path is one discovered route between two entities.
type Path struct {
	Nodes    []NodeSummary `json:"nodes"`
	Segments []PathSegment `json:"segments"`
	Length   int           `json:"length"`
}

// PathResult is the path finder response.
type PathResult struct {
	Success            bool   `json:"success"`
	Found              bool   `json:"found"`
	Message            string `json:"message,omitempty"`
	Paths              []Path `json:"paths,omitempty"`
	ShortestPathLength int    `json:"shortestPathLength,omitempty"`
}

// Gap is one finding of the gap analyzer. Fields are populated per analysis type.
type Gap struct {
	EntityA         *Ref    `json:"entityA,omitempty"`
	EntityB         *Ref    `json:"entityB,omitempty"`
	Similarity      float64 `json:"similarity,omitempty"`
	Entity          *Ref    `json:"entity,omitempty"`
	ConnectionCount *int    `json:"connectionCount,omitempty"`
	Confidence      float64 `json:"confidence,omitempty"`
	Reason          string  `json:"reason,omitempty"`
	DaysSinceUpdate int     `json:"daysSinceUpdate,omitempty"`
}

// GapAnalysisResult is the gap analyzer response. Truncated is set when a
// missing-connections run scored only the first candidate pairs of a domain
// too large to compare exhaustively.
type GapAnalysisResult struct {
	Success      bool    `json:"success"`
	Domain       string  `json:"domain"`
	AnalysisType string  `json:"analysisType"`
	Threshold    float64 `json:"threshold"`
	Results      []Gap   `json:"results"`
	Count        int     `json:"count"`
	Truncated    bool    `json:"truncated,omitempty"`
}

// ExtractedFact is a stored fact and the concepts it was linked to.
type ExtractedFact struct {
	ID        string   `json:"id"`
	Statement string   `json:"statement"`
	Concepts  []string `json:"concepts"`
}

// ExtractionResults is the payload of a successful extraction.
type ExtractionResults struct {
	Concepts         []Ref           `json:"concepts"`
	Facts            []ExtractedFact `json:"facts"`
	ProcessingMethod string          `json:"processingMethod"`
	Source           Ref             `json:"source"`
}

// ExtractionResult is the extraction pipeline response.
type ExtractionResult struct {
	Success           bool              `json:"success"`
	ExtractionResults ExtractionResults `json:"extractionResults"`
}
