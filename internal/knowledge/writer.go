package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/graph"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/models"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/query"
)

// Writer creates entities and relationships.
type Writer struct {
	base
}

// NewWriter returns a Writer over store.
func NewWriter(store graph.Store, opts ...Option) *Writer {
	return &Writer{base: newBase(store, opts)}
}

// ConceptInput describes a concept to upsert.
type ConceptInput struct {
	Name        string
	Description string
	Source      string
	Confidence  *float64
	Metadata    map[string]any
}

// FactInput describes a fact to create.
type FactInput struct {
	Statement  string
	Source     string
	Confidence *float64
	FactType   string
	Metadata   map[string]any
}

func confidenceOr(c *float64, def float64) float64 {
	if c == nil {
		return def
	}
	return *c
}

// UpsertConcept creates the concept or merges into the existing one with the
// same name. The returned bool reports whether a new node was created.
func (w *Writer) UpsertConcept(ctx context.Context, in ConceptInput) (models.Entity, bool, error) {
	const op = "upsert concept"
	stmt, err := query.UpsertConcept(query.ConceptParams{
		ID:          w.newID(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Source:      in.Source,
		Confidence:  confidenceOr(in.Confidence, models.DefaultConfidence),
		Metadata:    in.Metadata,
	})
	if err != nil {
		return models.Entity{}, false, builderErr(op, err)
	}

	var (
		node    graph.Node
		created bool
	)
	err = w.withSession(ctx, op, func(sess graph.Session) error {
		node, created, err = runNode(ctx, sess, stmt, "c")
		if err != nil {
			return storeErr(op, "merge concept", err)
		}
		return nil
	})
	if err != nil {
		return models.Entity{}, false, err
	}
	return toEntity(node), created, nil
}

// CreateFact always creates a new fact node.
func (w *Writer) CreateFact(ctx context.Context, in FactInput) (models.Entity, error) {
	const op = "create fact"
	stmt, err := factStatement(w.newID(), in)
	if err != nil {
		return models.Entity{}, builderErr(op, err)
	}

	var node graph.Node
	err = w.withSession(ctx, op, func(sess graph.Session) error {
		node, _, err = runNode(ctx, sess, stmt, "f")
		if err != nil {
			return storeErr(op, "create fact", err)
		}
		return nil
	})
	if err != nil {
		return models.Entity{}, err
	}
	return toEntity(node), nil
}

// LinkFactToConcept merges an edge from a fact to a concept, ABOUT by default.
func (w *Writer) LinkFactToConcept(ctx context.Context, factID, conceptID, relType string) error {
	const op = "link fact"
	stmt, err := query.LinkFactToConcept(factID, conceptID, relType)
	if err != nil {
		return builderErr(op, err)
	}
	return w.withSession(ctx, op, func(sess graph.Session) error {
		res, err := sess.Run(ctx, stmt.Cypher, stmt.Params)
		if err != nil {
			return storeErr(op, "merge relationship", err)
		}
		if res.Single() == nil {
			return &Error{Kind: KindNotFound, Op: op, Err: errors.New("fact or concept not found")}
		}
		return nil
	})
}

// Link merges a relationship between two entities given by id or name.
func (w *Writer) Link(ctx context.Context, req models.LinkRequest) (*models.LinkResult, error) {
	const op = "create relationship"
	if err := checkRequest(req); err != nil {
		return nil, validationErr(op, err)
	}
	stmt, err := query.Link(req.Source, req.Target, req.Type, req.Properties)
	if err != nil {
		return nil, builderErr(op, err)
	}

	var out *models.LinkResult
	err = w.withSession(ctx, op, func(sess graph.Session) error {
		res, err := sess.Run(ctx, stmt.Cypher, stmt.Params)
		if err != nil {
			return storeErr(op, "merge relationship", err)
		}
		rec := res.Single()
		if rec == nil {
			return &Error{Kind: KindNotFound, Op: op,
				Err: errors.Errorf("no entity pair matches %q and %q", req.Source, req.Target)}
		}
		created, _ := rec["created"].(bool)
		out = &models.LinkResult{
			Success: true,
			Source:  rec.String("sourceId"),
			Type:    rec.String("type"),
			Target:  rec.String("targetId"),
			Created: created,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// StoreKnowledge stores one knowledge unit, its requested relationships and
// its domain membership in a single write transaction.
func (w *Writer) StoreKnowledge(ctx context.Context, req models.StoreRequest) (*models.StoreResult, error) {
	const op = "store knowledge"
	if err := checkRequest(req); err != nil {
		return nil, validationErr(op, err)
	}
	for _, rel := range req.Relationships {
		if err := query.ValidateIdentifier(rel.RelationshipType); err != nil {
			return nil, validationErr(op, errors.Wrap(err, "relationship type"))
		}
	}

	stmt, kind, err := w.entityStatement(req)
	if err != nil {
		return nil, builderErr(op, err)
	}

	var id string
	err = w.withSession(ctx, op, func(sess graph.Session) error {
		return sess.ExecuteWrite(ctx, func(tx graph.Runner) error {
			node, _, err := runNode(ctx, tx, stmt, entityColumn(kind))
			if err != nil {
				return storeErr(op, "create entity", err)
			}
			id = graph.Prop(node.Props, "id")

			for _, rel := range req.Relationships {
				link, err := query.Link(id, rel.TargetNode, rel.RelationshipType, rel.Properties)
				if err != nil {
					return builderErr(op, err)
				}
				res, err := tx.Run(ctx, link.Cypher, link.Params)
				if err != nil {
					return storeErr(op, "create relationship", err)
				}
				if res.Single() == nil {
					return &Error{Kind: KindNotFound, Op: op,
						Err: errors.Errorf("relationship target %q not found", rel.TargetNode)}
				}
			}

			if req.Domain != "" {
				if err := attachDomain(ctx, tx, w.newID, id, req.Domain); err != nil {
					return storeErr(op, "attach domain", err)
				}
			}
			return nil
		})
	})
	if err != nil {
		w.logger.Warn("store knowledge failed", "content_type", req.ContentType, "error", err)
		return nil, err
	}

	return &models.StoreResult{
		Success: true,
		ID:      id,
		Kind:    kind,
		Message: fmt.Sprintf("%s stored successfully", kind),
	}, nil
}

// entityStatement routes a store request to the matching node statement.
func (w *Writer) entityStatement(req models.StoreRequest) (query.Statement, models.Kind, error) {
	switch strings.ToLower(req.ContentType) {
	case "concept":
		stmt, err := query.UpsertConcept(query.ConceptParams{
			ID:          w.newID(),
			Name:        strings.TrimSpace(req.Content),
			Description: req.Description,
			Source:      req.Source,
			Confidence:  confidenceOr(req.Confidence, models.DefaultConfidence),
			Metadata:    req.Metadata,
		})
		return stmt, models.KindConcept, err
	case "fact":
		stmt, err := factStatement(w.newID(), FactInput{
			Statement:  req.Content,
			Source:     req.Source,
			Confidence: req.Confidence,
			FactType:   req.FactType,
			Metadata:   req.Metadata,
		})
		return stmt, models.KindFact, err
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = "knowledge"
	}
	stmt, err := query.CreateKnowledge(query.KnowledgeParams{
		ID:          w.newID(),
		Content:     req.Content,
		ContentType: contentType,
		Source:      req.Source,
		Confidence:  confidenceOr(req.Confidence, models.DefaultConfidence),
		Metadata:    req.Metadata,
	})
	return stmt, models.KindGeneric, err
}

func entityColumn(kind models.Kind) string {
	switch kind {
	case models.KindConcept:
		return "c"
	case models.KindFact:
		return "f"
	}
	return "k"
}

func factStatement(id string, in FactInput) (query.Statement, error) {
	factType := in.FactType
	if factType == "" {
		factType = "statement"
	}
	return query.CreateFact(query.FactParams{
		ID:         id,
		Statement:  strings.TrimSpace(in.Statement),
		Source:     in.Source,
		Confidence: confidenceOr(in.Confidence, models.DefaultConfidence),
		FactType:   factType,
		Metadata:   in.Metadata,
	})
}

// runNode executes stmt and returns the node in column, plus the optional
// "created" flag.
func runNode(ctx context.Context, r graph.Runner, stmt query.Statement, column string) (graph.Node, bool, error) {
	res, err := r.Run(ctx, stmt.Cypher, stmt.Params)
	if err != nil {
		return graph.Node{}, false, err
	}
	rec := res.Single()
	if rec == nil {
		return graph.Node{}, false, errors.New("no row returned")
	}
	node, ok := rec.Node(column)
	if !ok {
		return graph.Node{}, false, errors.Errorf("column %q is not a node", column)
	}
	created, _ := rec["created"].(bool)
	return node, created, nil
}

func runLink(ctx context.Context, r graph.Runner, stmt query.Statement) error {
	res, err := r.Run(ctx, stmt.Cypher, stmt.Params)
	if err != nil {
		return err
	}
	if res.Single() == nil {
		return errors.New("relationship endpoints not found")
	}
	return nil
}

func attachDomain(ctx context.Context, r graph.Runner, newID func() string, entityID, domain string) error {
	stmt, err := query.AttachToDomain(entityID, domain, newID())
	if err != nil {
		return err
	}
	return runLink(ctx, r, stmt)
}
