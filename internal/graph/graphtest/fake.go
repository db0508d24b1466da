// Package graphtest provides a scripted in-memory graph.Store for tests.
package graphtest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/graph"
)

// Call is one recorded query.
type Call struct {
	Cypher string
	Params map[string]any
	InTx   bool
}

type response struct {
	match   string
	records []graph.Record
	err     error
	sticky  bool
}

// Store is a fake graph.Store. Queued responses are consumed in order by the
// first query whose text contains the response's match fragment. Queries
// with no matching response return an empty result.
type Store struct {
	mu        sync.Mutex
	responses []*response
	calls     []Call

	opened     int
	closed     int
	commits    int
	rollbacks  int
	OpenErr    error
	storeClose int

	// NoRollback makes sessions behave like a store without transactions:
	// writes made before a failing ExecuteWrite stay in place.
	NoRollback bool
}

// New returns an empty fake store.
func New() *Store {
	return &Store{}
}

// On queues records for the next query containing match.
func (s *Store) On(match string, records ...graph.Record) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, &response{match: match, records: records})
	return s
}

// Always answers every query containing match with records.
func (s *Store) Always(match string, records ...graph.Record) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, &response{match: match, records: records, sticky: true})
	return s
}

// Fail makes the next query containing match return err.
func (s *Store) Fail(match string, err error) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, &response{match: match, err: err})
	return s
}

// Calls returns a copy of all recorded queries.
func (s *Store) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsMatching returns recorded queries whose text contains fragment.
func (s *Store) CallsMatching(fragment string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if strings.Contains(c.Cypher, fragment) {
			out = append(out, c)
		}
	}
	return out
}

// Sessions reports how many sessions were opened and closed.
func (s *Store) Sessions() (opened, closed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened, s.closed
}

// Transactions reports committed and rolled back write transactions.
func (s *Store) Transactions() (commits, rollbacks int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits, s.rollbacks
}

// Closed reports whether Close was called on the store.
func (s *Store) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storeClose > 0
}

func (s *Store) OpenSession(context.Context) (graph.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.OpenErr != nil {
		return nil, s.OpenErr
	}
	s.opened++
	return &session{store: s}, nil
}

func (s *Store) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storeClose++
	return nil
}

func (s *Store) run(cypher string, params map[string]any, inTx bool) (*graph.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Cypher: cypher, Params: params, InTx: inTx})

	for i, r := range s.responses {
		if r.match != "" && !strings.Contains(cypher, r.match) {
			continue
		}
		if !r.sticky {
			s.responses = append(s.responses[:i], s.responses[i+1:]...)
		}
		if r.err != nil {
			return nil, r.err
		}
		return &graph.Result{Records: r.records}, nil
	}
	return &graph.Result{}, nil
}

type session struct {
	store  *Store
	closed bool
}

func (s *session) Run(_ context.Context, cypher string, params map[string]any) (*graph.Result, error) {
	if s.closed {
		return nil, errors.New("session closed")
	}
	return s.store.run(cypher, params, false)
}

func (s *session) ExecuteWrite(ctx context.Context, fn func(tx graph.Runner) error) error {
	if s.closed {
		return errors.New("session closed")
	}
	err := fn(txRunner{store: s.store})

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if err != nil {
		if !s.store.NoRollback {
			s.store.rollbacks++
		}
		return err
	}
	s.store.commits++
	return nil
}

func (s *session) NonAtomic() bool { return s.store.NoRollback }

func (s *session) Close(context.Context) error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.store.mu.Lock()
	s.store.closed++
	s.store.mu.Unlock()
	return nil
}

type txRunner struct {
	store *Store
}

func (t txRunner) Run(_ context.Context, cypher string, params map[string]any) (*graph.Result, error) {
	return t.store.run(cypher, params, true)
}
