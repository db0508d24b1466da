package query

import (
	"fmt"

	"github.com/pkg/errors"
)

// ConceptParams describes a concept upsert.
type ConceptParams struct {
	ID          string
	Name        string
	Description string
	Source      string
	Confidence  float64
	Metadata    map[string]any
}

// UpsertConcept merges a Concept on its name. A new node takes all given
// values. An existing node keeps the larger confidence, keeps its description
// unless a non-empty one is given, and always has updatedAt refreshed.
func UpsertConcept(p ConceptParams) (Statement, error) {
	if p.Name == "" {
		return Statement{}, errors.New("concept name is required")
	}
	meta, err := encodeMetadata(p.Metadata)
	if err != nil {
		return Statement{}, err
	}
	return Statement{
		Cypher: `MERGE (c:Concept {name: $name})
ON CREATE SET c.id = $id,
              c.description = $description,
              c.source = $source,
              c.confidence = $confidence,
              c.metadata = $metadata,
              c.createdAt = datetime(),
              c.updatedAt = datetime()
ON MATCH SET c.confidence = CASE WHEN $confidence > coalesce(c.confidence, 0.0) THEN $confidence ELSE c.confidence END,
             c.description = CASE WHEN $description <> '' THEN $description ELSE c.description END,
             c.updatedAt = datetime()
RETURN c, c.createdAt = c.updatedAt AS created`,
		Params: map[string]any{
			"id":          p.ID,
			"name":        p.Name,
			"description": p.Description,
			"source":      p.Source,
			"confidence":  p.Confidence,
			"metadata":    meta,
		},
	}, nil
}

// FactParams describes a fact creation.
type FactParams struct {
	ID         string
	Statement  string
	Source     string
	Confidence float64
	FactType   string
	Metadata   map[string]any
}

// CreateFact always creates a new Fact node, even for a repeated statement.
func CreateFact(p FactParams) (Statement, error) {
	if p.Statement == "" {
		return Statement{}, errors.New("fact statement is required")
	}
	meta, err := encodeMetadata(p.Metadata)
	if err != nil {
		return Statement{}, err
	}
	return Statement{
		Cypher: `CREATE (f:Fact {
  id: $id,
  statement: $statement,
  source: $source,
  confidence: $confidence,
  factType: $factType,
  metadata: $metadata,
  createdAt: datetime(),
  updatedAt: datetime()
})
RETURN f`,
		Params: map[string]any{
			"id":         p.ID,
			"statement":  p.Statement,
			"source":     p.Source,
			"confidence": p.Confidence,
			"factType":   p.FactType,
			"metadata":   meta,
		},
	}, nil
}

// KnowledgeParams describes a generic labeled knowledge node.
type KnowledgeParams struct {
	ID          string
	Label       string
	Content     string
	ContentType string
	Source      string
	Confidence  float64
	Metadata    map[string]any
}

// CreateKnowledge creates a node with a caller-chosen label.
func CreateKnowledge(p KnowledgeParams) (Statement, error) {
	if p.Content == "" {
		return Statement{}, errors.New("content is required")
	}
	label := p.Label
	if label == "" {
		label = "Knowledge"
	}
	if err := ValidateIdentifier(label); err != nil {
		return Statement{}, errors.Wrap(err, "label")
	}
	meta, err := encodeMetadata(p.Metadata)
	if err != nil {
		return Statement{}, err
	}
	return Statement{
		Cypher: fmt.Sprintf(`CREATE (k:%s {
  id: $id,
  content: $content,
  contentType: $contentType,
  source: $source,
  confidence: $confidence,
  metadata: $metadata,
  createdAt: datetime(),
  updatedAt: datetime()
})
RETURN k`, label),
		Params: map[string]any{
			"id":          p.ID,
			"content":     p.Content,
			"contentType": p.ContentType,
			"source":      p.Source,
			"confidence":  p.Confidence,
			"metadata":    meta,
		},
	}, nil
}

// SourceParams describes a provenance Source node.
type SourceParams struct {
	ID          string
	Title       string
	URL         string
	Reliability float64
	Metadata    map[string]any
}

// CreateSource creates a Source node. Reliability doubles as its confidence.
func CreateSource(p SourceParams) (Statement, error) {
	if p.Title == "" {
		return Statement{}, errors.New("source title is required")
	}
	meta, err := encodeMetadata(p.Metadata)
	if err != nil {
		return Statement{}, err
	}
	return Statement{
		Cypher: `CREATE (s:Source {
  id: $id,
  title: $title,
  url: $url,
  reliability: $reliability,
  confidence: $reliability,
  metadata: $metadata,
  createdAt: datetime(),
  updatedAt: datetime()
})
RETURN s`,
		Params: map[string]any{
			"id":          p.ID,
			"title":       p.Title,
			"url":         p.URL,
			"reliability": p.Reliability,
			"metadata":    meta,
		},
	}, nil
}

// LinkFactToConcept merges a typed edge from a fact to a concept, both by id.
func LinkFactToConcept(factID, conceptID, relType string) (Statement, error) {
	if relType == "" {
		relType = "ABOUT"
	}
	if err := ValidateIdentifier(relType); err != nil {
		return Statement{}, errors.Wrap(err, "relationship type")
	}
	return Statement{
		Cypher: fmt.Sprintf(`MATCH (f:Fact {id: $factId})
MATCH (c:Concept {id: $conceptId})
MERGE (f)-[r:%s]->(c)
ON CREATE SET r.createdAt = datetime()
RETURN type(r) AS type`, relType),
		Params: map[string]any{"factId": factID, "conceptId": conceptID},
	}, nil
}

// LinkByID merges a typed edge between two entities known by id.
func LinkByID(sourceID, targetID, relType string) (Statement, error) {
	if err := ValidateIdentifier(relType); err != nil {
		return Statement{}, errors.Wrap(err, "relationship type")
	}
	return Statement{
		Cypher: fmt.Sprintf(`MATCH (a {id: $sourceId})
MATCH (b {id: $targetId})
MERGE (a)-[r:%s]->(b)
ON CREATE SET r.createdAt = datetime()
RETURN type(r) AS type`, relType),
		Params: map[string]any{"sourceId": sourceID, "targetId": targetID},
	}, nil
}

// Link merges a typed edge between two entities given by id or name.
// Properties are applied on every call; the edge itself is never duplicated.
func Link(source, target, relType string, props map[string]any) (Statement, error) {
	if err := ValidateIdentifier(relType); err != nil {
		return Statement{}, errors.Wrap(err, "relationship type")
	}
	if props == nil {
		props = map[string]any{}
	}
	return Statement{
		Cypher: fmt.Sprintf(`MATCH (a) WHERE %s
WITH a ORDER BY %s LIMIT 1
MATCH (b) WHERE %s AND b <> a
WITH a, b ORDER BY %s LIMIT 1
MERGE (a)-[r:%s]->(b)
ON CREATE SET r.createdAt = datetime()
SET r += $props
RETURN a.id AS sourceId, b.id AS targetId, type(r) AS type, r.createdAt = datetime() AS created`,
			matchRef("a", "source", source), rankRef("a", "source"),
			matchRef("b", "target", target), rankRef("b", "target"),
			relType),
		Params: map[string]any{"source": source, "target": target, "props": props},
	}, nil
}

// AttachToDomain merges the domain lazily and links the entity to it.
func AttachToDomain(entityID, domain, domainID string) (Statement, error) {
	if domain == "" {
		return Statement{}, errors.New("domain is required")
	}
	return Statement{
		Cypher: `MATCH (n {id: $entityId})
MERGE (d:Domain {name: $domain})
ON CREATE SET d.id = $domainId, d.createdAt = datetime(), d.updatedAt = datetime()
MERGE (n)-[:BELONGS_TO]->(d)
RETURN d.id AS domainId`,
		Params: map[string]any{"entityId": entityID, "domain": domain, "domainId": domainID},
	}, nil
}
