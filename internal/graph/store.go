// Package graph defines the narrow contract the knowledge engine uses to talk
// to a property-graph store, and a Neo4j implementation of it.
package graph

import (
	"context"
	"time"
)

// Store hands out sessions against a graph database.
// Implementations must be safe for concurrent use.
type Store interface {
	// OpenSession acquires an execution context. Callers must Close it.
	OpenSession(ctx context.Context) (Session, error)

	// Close releases the underlying connection pool.
	Close(ctx context.Context) error
}

// Runner executes one parameterized query.
type Runner interface {
	Run(ctx context.Context, cypher string, params map[string]any) (*Result, error)
}

// Session is a scoped execution context. Run executes in auto-commit mode.
type Session interface {
	Runner

	// ExecuteWrite runs fn inside a single explicit transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	// It is never retried.
	ExecuteWrite(ctx context.Context, fn func(tx Runner) error) error

	Close(ctx context.Context) error
}

// NonAtomic is implemented by sessions whose ExecuteWrite applies each
// statement as it runs, so a failing fn leaves earlier writes in place.
type NonAtomic interface {
	NonAtomic() bool
}

// RollsBack reports whether a failed ExecuteWrite on sess discards every
// write fn made.
func RollsBack(sess Session) bool {
	n, ok := sess.(NonAtomic)
	return !ok || !n.NonAtomic()
}

// Result is the fully collected output of a query.
type Result struct {
	Records []Record
	Summary Summary
}

// Summary carries write counters reported by the store.
type Summary struct {
	NodesCreated         int
	RelationshipsCreated int
	PropertiesSet        int
	ExecutionTime        time.Duration
}

// Single returns the first record, or nil if the result is empty.
func (r *Result) Single() Record {
	if r == nil || len(r.Records) == 0 {
		return nil
	}
	return r.Records[0]
}

// Node is a graph vertex as returned by the store.
type Node struct {
	ElementID string
	Labels    []string
	Props     map[string]any
}

// HasLabel reports whether the node carries label.
func (n Node) HasLabel(label string) bool {
	for _, l := range n.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// Relationship is a graph edge as returned by the store.
type Relationship struct {
	ElementID string
	StartID   string
	EndID     string
	Type      string
	Props     map[string]any
}
