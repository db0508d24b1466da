package knowledge

import (
	"time"

	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/graph"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/models"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/query"
)

// unscoredConfidence ranks entities that never had a confidence set.
const unscoredConfidence = 0.5

// kindOf maps node labels to an entity kind.
func kindOf(labels []string) (models.Kind, string) {
	for _, l := range labels {
		switch models.Kind(l) {
		case models.KindConcept, models.KindFact, models.KindSource, models.KindDomain:
			return models.Kind(l), l
		}
	}
	if len(labels) > 0 {
		return models.KindGeneric, labels[0]
	}
	return models.KindGeneric, ""
}

// displayText mirrors the display field expression used in queries.
func displayText(props map[string]any) string {
	for _, key := range []string{"name", "statement", "content", "title"} {
		if s := graph.Prop(props, key); s != "" {
			return s
		}
	}
	return ""
}

// contentType is the caller-facing type of a node: the stored contentType
// for generic knowledge, otherwise the label.
func contentType(n graph.Node) string {
	if ct := graph.Prop(n.Props, "contentType"); ct != "" {
		return ct
	}
	_, label := kindOf(n.Labels)
	return label
}

func confidenceOf(props map[string]any) float64 {
	return graph.AsFloat(props["confidence"], unscoredConfidence)
}

func timeProp(props map[string]any, key string) time.Time {
	t, _ := props[key].(time.Time)
	return t
}

// toEntity maps a stored node onto the domain model.
func toEntity(n graph.Node) models.Entity {
	kind, label := kindOf(n.Labels)
	return models.Entity{
		ID:          graph.Prop(n.Props, "id"),
		Kind:        kind,
		Label:       label,
		PrimaryText: displayText(n.Props),
		Description: graph.Prop(n.Props, "description"),
		Source:      graph.Prop(n.Props, "source"),
		Confidence:  confidenceOf(n.Props),
		Metadata:    query.DecodeMetadata(n.Props["metadata"]),
		CreatedAt:   timeProp(n.Props, "createdAt"),
		UpdatedAt:   timeProp(n.Props, "updatedAt"),
	}
}

// toRefs reduces a list of {id, content} maps to refs.
func toRefs(maps []map[string]any) []models.Ref {
	refs := make([]models.Ref, 0, len(maps))
	for _, m := range maps {
		refs = append(refs, models.Ref{ID: graph.Prop(m, "id"), Content: graph.Prop(m, "content")})
	}
	return refs
}
