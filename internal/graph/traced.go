package graph

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracedStore wraps a Store so every query and transaction produces a span.
//
// Span names:
//   - knowledge.graph.run for each query
//   - knowledge.graph.write_tx for each explicit write transaction
type TracedStore struct {
	inner  Store
	tracer trace.Tracer
}

// NewTracedStore decorates inner with spans from tracer.
func NewTracedStore(inner Store, tracer trace.Tracer) *TracedStore {
	return &TracedStore{inner: inner, tracer: tracer}
}

func (s *TracedStore) OpenSession(ctx context.Context) (Session, error) {
	sess, err := s.inner.OpenSession(ctx)
	if err != nil {
		return nil, err
	}
	return &tracedSession{inner: sess, tracer: s.tracer}, nil
}

func (s *TracedStore) Close(ctx context.Context) error {
	return s.inner.Close(ctx)
}

type tracedSession struct {
	inner  Session
	tracer trace.Tracer
}

func (s *tracedSession) Run(ctx context.Context, cypher string, params map[string]any) (*Result, error) {
	return tracedRun(ctx, s.tracer, s.inner, cypher, params, false)
}

func (s *tracedSession) ExecuteWrite(ctx context.Context, fn func(tx Runner) error) error {
	ctx, span := s.tracer.Start(ctx, "knowledge.graph.write_tx")
	defer span.End()

	err := s.inner.ExecuteWrite(ctx, func(tx Runner) error {
		return fn(&tracedRunner{inner: tx, tracer: s.tracer, txSpan: span})
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (s *tracedSession) NonAtomic() bool {
	return !RollsBack(s.inner)
}

func (s *tracedSession) Close(ctx context.Context) error {
	return s.inner.Close(ctx)
}

// tracedRunner parents every query span on the enclosing write_tx span,
// whatever context fn passes in.
type tracedRunner struct {
	inner  Runner
	tracer trace.Tracer
	txSpan trace.Span
}

func (r *tracedRunner) Run(ctx context.Context, cypher string, params map[string]any) (*Result, error) {
	ctx = trace.ContextWithSpan(ctx, r.txSpan)
	return tracedRun(ctx, r.tracer, r.inner, cypher, params, true)
}

func tracedRun(ctx context.Context, tracer trace.Tracer, r Runner, cypher string, params map[string]any, inTx bool) (*Result, error) {
	ctx, span := tracer.Start(ctx, "knowledge.graph.run", trace.WithAttributes(
		attribute.String("db.system", "neo4j"),
		attribute.String("db.operation", operationOf(cypher)),
		attribute.Int("db.params", len(params)),
		attribute.Bool("db.in_transaction", inTx),
	))
	defer span.End()

	res, err := r.Run(ctx, cypher, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("db.records", len(res.Records)),
		attribute.Int("db.nodes_created", res.Summary.NodesCreated),
		attribute.Int("db.relationships_created", res.Summary.RelationshipsCreated),
	)
	return res, nil
}

// operationOf returns the leading clause keyword of a query, e.g. MATCH or MERGE.
func operationOf(cypher string) string {
	fields := strings.Fields(cypher)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}
