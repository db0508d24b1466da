package knowledge

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/extract"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/graph"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/journal"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/models"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/query"
)

// Confidence and reliability assigned to extracted entities.
const (
	extractedConceptConfidence = 0.7
	extractedFactConfidence    = 0.6
	extractedSourceReliability = 0.7

	extractedFactType = "extracted"
	previewLength     = 200
)

var slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)

// Ingestor turns unstructured text into concepts and facts with provenance.
type Ingestor struct {
	base
}

// NewIngestor returns an Ingestor over store.
func NewIngestor(store graph.Store, opts ...Option) *Ingestor {
	return &Ingestor{base: newBase(store, opts)}
}

// batchWrite accumulates what an extraction wrote so far.
type batchWrite struct {
	stage    string
	sourceID string
	concepts []models.Ref
	facts    []models.ExtractedFact
	entities []journal.Entity
}

func (b *batchWrite) record(id string, kind models.Kind, text string) {
	b.entities = append(b.entities, journal.Entity{EntityID: id, Kind: string(kind), Text: text})
}

// Extract stores the concepts and facts found in req.Content, a Source node
// for the batch, and the provenance edges between them, in one write
// transaction. The batch is recorded in the journal when one is configured.
func (in *Ingestor) Extract(ctx context.Context, req models.ExtractionRequest) (*models.ExtractionResult, error) {
	const op = "extract"
	if err := checkRequest(req); err != nil {
		return nil, validationErr(op, err)
	}

	batchID := in.newID()
	if in.journal != nil {
		id, err := in.journal.Begin(req.SourceName)
		if err != nil {
			in.logger.Warn("journal begin failed", "source", req.SourceName, "error", err)
		} else {
			batchID = id
		}
	}

	found := in.extractor.Extract(req.Content, req.SourceName)
	w := &batchWrite{}
	rollsBack := true
	err := in.withSession(ctx, op, func(sess graph.Session) error {
		rollsBack = graph.RollsBack(sess)
		return sess.ExecuteWrite(ctx, func(tx graph.Runner) error {
			return in.writeBatch(ctx, tx, req, batchID, found.Concepts, found.Facts, w)
		})
	})
	if err != nil {
		err = in.batchErr(op, w, rollsBack, err)
	}
	in.finish(batchID, w, rollsBack, err)
	if err != nil {
		return nil, err
	}

	method := found.Method
	if method == "" {
		method = "heuristic"
	}
	in.logger.Info("extraction committed",
		"source", req.SourceName, "batch", batchID,
		"concepts", len(w.concepts), "facts", len(w.facts))

	return &models.ExtractionResult{
		Success: true,
		ExtractionResults: models.ExtractionResults{
			Concepts:         w.concepts,
			Facts:            w.facts,
			ProcessingMethod: method,
			Source:           models.Ref{ID: w.sourceID, Content: sourceTitle(req.SourceName)},
		},
	}, nil
}

func (in *Ingestor) writeBatch(
	ctx context.Context, tx graph.Runner, req models.ExtractionRequest, batchID string,
	concepts []string, facts []extract.Fact, w *batchWrite,
) error {
	conceptIDs := make(map[string]string, len(concepts))
	w.concepts = make([]models.Ref, 0, len(concepts))
	w.facts = make([]models.ExtractedFact, 0, len(facts))

	w.stage = "upsert concepts"
	for _, name := range concepts {
		stmt, err := query.UpsertConcept(query.ConceptParams{
			ID:         in.newID(),
			Name:       name,
			Source:     req.SourceName,
			Confidence: extractedConceptConfidence,
			Metadata: map[string]any{
				"extractionMethod": "heuristic",
				"instructions":     req.Instructions,
			},
		})
		if err != nil {
			return err
		}
		node, _, err := runNode(ctx, tx, stmt, "c")
		if err != nil {
			return errors.Wrapf(err, "concept %q", name)
		}
		id := graph.Prop(node.Props, "id")
		conceptIDs[name] = id
		w.concepts = append(w.concepts, models.Ref{ID: id, Content: name})
		w.record(id, models.KindConcept, name)
	}

	w.stage = "create facts"
	for _, f := range facts {
		stmt, err := factStatement(in.newID(), FactInput{
			Statement:  f.Statement,
			Source:     req.SourceName,
			Confidence: ptr(extractedFactConfidence),
			FactType:   extractedFactType,
		})
		if err != nil {
			return err
		}
		node, _, err := runNode(ctx, tx, stmt, "f")
		if err != nil {
			return err
		}
		factID := graph.Prop(node.Props, "id")
		w.record(factID, models.KindFact, f.Statement)

		linked := make([]string, 0, len(f.Concepts))
		for _, name := range f.Concepts {
			conceptID, ok := conceptIDs[name]
			if !ok {
				continue
			}
			link, err := query.LinkFactToConcept(factID, conceptID, "ABOUT")
			if err != nil {
				return err
			}
			if err := runLink(ctx, tx, link); err != nil {
				return errors.Wrapf(err, "link fact to %q", name)
			}
			linked = append(linked, name)
		}
		w.facts = append(w.facts, models.ExtractedFact{ID: factID, Statement: f.Statement, Concepts: linked})
	}

	w.stage = "create source"
	title := sourceTitle(req.SourceName)
	stmt, err := query.CreateSource(query.SourceParams{
		ID:          in.newID(),
		Title:       title,
		URL:         fmt.Sprintf("mcp://%s/%s", slug(req.SourceName), batchID),
		Reliability: extractedSourceReliability,
		Metadata: map[string]any{
			"sourceName":     req.SourceName,
			"batchId":        batchID,
			"contentPreview": preview(req.Content),
		},
	})
	if err != nil {
		return err
	}
	node, _, err := runNode(ctx, tx, stmt, "s")
	if err != nil {
		return err
	}
	w.sourceID = graph.Prop(node.Props, "id")
	w.record(w.sourceID, models.KindSource, title)

	w.stage = "link provenance"
	for _, c := range w.concepts {
		if err := linkByID(ctx, tx, c.ID, w.sourceID, "DERIVED_FROM"); err != nil {
			return err
		}
	}
	for _, f := range w.facts {
		if err := linkByID(ctx, tx, f.ID, w.sourceID, "CITED_FROM"); err != nil {
			return err
		}
	}

	if req.Domain != "" {
		w.stage = "attach domain"
		for _, e := range w.entities {
			if err := attachDomain(ctx, tx, in.newID, e.EntityID, req.Domain); err != nil {
				return err
			}
		}
	}
	w.stage = "commit"
	return nil
}

// batchErr classifies a failed batch. On a store that rolls back, nothing
// the batch wrote survives, so the failure is a store error naming the
// stage; otherwise the entities written so far remain and it is a partial
// write.
func (in *Ingestor) batchErr(op string, w *batchWrite, rollsBack bool, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if rollsBack || len(w.entities) == 0 {
		return &Error{Kind: KindStore, Op: op, Err: errors.Wrapf(err, "%s: batch rolled back", w.stage)}
	}
	return &Error{Kind: KindPartialWrite, Op: op,
		Err: errors.Wrapf(err, "%s (%d entities written before failure)", w.stage, len(w.entities))}
}

func (in *Ingestor) finish(batchID string, w *batchWrite, rollsBack bool, err error) {
	if in.journal == nil {
		return
	}
	out := journal.Outcome{
		SourceID: w.sourceID,
		Entities: w.entities,
		Concepts: len(w.concepts),
		Facts:    len(w.facts),
		Err:      err,
	}
	if err != nil {
		out.FailedStage = w.stage
		if rollsBack {
			out = journal.Outcome{FailedStage: w.stage, Err: err, RolledBack: true}
		}
	}
	if jerr := in.journal.Finish(batchID, out); jerr != nil {
		in.logger.Warn("journal finish failed", "batch", batchID, "error", jerr)
	}
}

func linkByID(ctx context.Context, r graph.Runner, sourceID, targetID, relType string) error {
	stmt, err := query.LinkByID(sourceID, targetID, relType)
	if err != nil {
		return err
	}
	return runLink(ctx, r, stmt)
}

// sourceTitle turns a source name such as "claude-research_notes" into
// "Claude Research Notes".
func sourceTitle(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || r == ' ' || r == '.'
	})
	if len(words) == 0 {
		return name
	}
	return cases.Title(language.Und).String(strings.Join(words, " "))
}

func slug(name string) string {
	s := strings.Trim(slugSeparators.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if s == "" {
		return "source"
	}
	return s
}

func preview(content string) string {
	r := []rune(content)
	if len(r) <= previewLength {
		return content
	}
	return string(r[:previewLength])
}

func ptr[T any](v T) *T { return &v }
