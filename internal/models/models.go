package models

import "time"

// Kind identifies what a stored entity represents.
type Kind string

const (
	KindConcept Kind = "Concept"
	KindFact    Kind = "Fact"
	KindSource  Kind = "Source"
	KindDomain  Kind = "Domain"
	// KindGeneric covers any other labeled node, e.g. Knowledge.
	KindGeneric Kind = "Generic"
)

// DefaultConfidence is applied when a caller does not assert one.
const DefaultConfidence = 0.8

// Entity is a knowledge unit stored in the graph.
type Entity struct {
	ID          string         `json:"id"`
	Kind        Kind           `json:"kind"`
	Label       string         `json:"label,omitempty"`
	PrimaryText string         `json:"primaryText"`
	Description string         `json:"description,omitempty"`
	Source      string         `json:"source,omitempty"`
	Confidence  float64        `json:"confidence"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"createdAt,omitzero"`
	UpdatedAt   time.Time      `json:"updatedAt,omitzero"`
}

// Relationship is a directed, typed edge between two entities.
type Relationship struct {
	SourceID   string         `json:"sourceId"`
	Type       string         `json:"type"`
	TargetID   string         `json:"targetId"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Ref is the id-and-text reduction of an entity used in result context lists.
type Ref struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}
