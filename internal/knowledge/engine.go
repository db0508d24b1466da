// Package knowledge implements the query and extraction engine: retrieval,
// traversal, path finding, gap analysis, writes and text extraction over a
// graph.Store.
//
// Every operation acquires one session, issues its queries sequentially and
// releases the session on every exit path. No operation retries.
package knowledge

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/extract"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/graph"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/journal"
)

// Journal records extraction batches. *journal.Journal implements it.
type Journal interface {
	Begin(sourceName string) (string, error)
	Finish(batchID string, out journal.Outcome) error
}

// Option configures a component.
type Option func(*base)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(b *base) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithExtractor replaces the heuristic text extractor.
func WithExtractor(x extract.TextExtractor) Option {
	return func(b *base) {
		if x != nil {
			b.extractor = x
		}
	}
}

// WithJournal records extraction batches in j.
func WithJournal(j Journal) Option {
	return func(b *base) { b.journal = j }
}

// WithIDs replaces the entity id generator.
func WithIDs(gen func() string) Option {
	return func(b *base) {
		if gen != nil {
			b.newID = gen
		}
	}
}

type base struct {
	store     graph.Store
	logger    *slog.Logger
	extractor extract.TextExtractor
	journal   Journal
	newID     func() string
}

func newBase(store graph.Store, opts []Option) base {
	b := base{
		store:     store,
		logger:    slog.Default(),
		extractor: extract.Heuristic{},
		newID:     func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// withSession runs fn with a fresh session and always closes it.
func (b *base) withSession(ctx context.Context, op string, fn func(graph.Session) error) error {
	sess, err := b.store.OpenSession(ctx)
	if err != nil {
		b.logger.Warn("open graph session failed", "op", op, "error", err)
		return storeErr(op, "open session", err)
	}
	defer func() {
		if cerr := sess.Close(ctx); cerr != nil {
			b.logger.Warn("close graph session failed", "op", op, "error", cerr)
		}
	}()
	return fn(sess)
}

// Service bundles every engine component over one store.
type Service struct {
	*Writer
	*Retriever
	*Explorer
	*PathFinder
	*GapAnalyzer
	*Ingestor
}

// New constructs all components sharing store and options.
func New(store graph.Store, opts ...Option) *Service {
	return &Service{
		Writer:      NewWriter(store, opts...),
		Retriever:   NewRetriever(store, opts...),
		Explorer:    NewExplorer(store, opts...),
		PathFinder:  NewPathFinder(store, opts...),
		GapAnalyzer: NewGapAnalyzer(store, opts...),
		Ingestor:    NewIngestor(store, opts...),
	}
}
