package knowledge

import (
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/graph"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/graph/graphtest"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/journal"
)

// sequentialIDs returns a deterministic id generator: id-1, id-2, ...
func sequentialIDs() func() string {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func testOptions(extra ...Option) []Option {
	return append([]Option{
		WithLogger(slog.New(slog.DiscardHandler)),
		WithIDs(sequentialIDs()),
	}, extra...)
}

func node(label string, props map[string]any) graph.Node {
	return graph.Node{ElementID: "4:x:" + fmt.Sprint(props["id"]), Labels: []string{label}, Props: props}
}

func concept(id, name string, confidence float64) graph.Node {
	return node("Concept", map[string]any{"id": id, "name": name, "confidence": confidence, "source": "agent"})
}

func fact(id, statement string) graph.Node {
	return node("Fact", map[string]any{"id": id, "statement": statement, "confidence": 0.6})
}

// assertSessionsBalanced fails when an operation leaked a session.
func assertSessionsBalanced(t *testing.T, store *graphtest.Store) {
	t.Helper()
	opened, closed := store.Sessions()
	if opened != closed {
		t.Fatalf("sessions opened %d, closed %d", opened, closed)
	}
}

// recordingJournal keeps batches in memory.
type recordingJournal struct {
	begun    []string
	outcomes map[string]journal.Outcome
}

func newRecordingJournal() *recordingJournal {
	return &recordingJournal{outcomes: make(map[string]journal.Outcome)}
}

func (j *recordingJournal) Begin(sourceName string) (string, error) {
	j.begun = append(j.begun, sourceName)
	return fmt.Sprintf("batch-%d", len(j.begun)), nil
}

func (j *recordingJournal) Finish(batchID string, out journal.Outcome) error {
	j.outcomes[batchID] = out
	return nil
}
