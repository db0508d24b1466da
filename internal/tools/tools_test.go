package tools

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/graph"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/graph/graphtest"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/journal"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/knowledge"
)

func newKnowledgeTools(store *graphtest.Store) *KnowledgeTools {
	return &KnowledgeTools{Engine: knowledge.New(store, knowledge.WithLogger(slog.New(slog.DiscardHandler)))}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", res.Content[0])
	return tc.Text
}

func TestSearchKnowledgeIncludesContextByDefault(t *testing.T) {
	store := graphtest.New()
	kt := newKnowledgeTools(store)

	res, _, err := kt.SearchKnowledge(context.Background(), nil, SearchInput{Query: "tax"})
	require.NoError(t, err)
	assert.False(t, res.IsError)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Equal(t, true, out["success"])
	assert.Equal(t, true, out["includeContext"])
	assert.Equal(t, "hybrid", out["searchType"])
	assert.Contains(t, store.Calls()[0].Cypher, "OPTIONAL MATCH")

	off := false
	_, _, err = kt.SearchKnowledge(context.Background(), nil, SearchInput{
		Query: "tax", IncludeContext: &off, SearchType: "exact",
		ContextFilters: &ContextFiltersInput{ContentType: []any{"concept", "fact"}},
	})
	require.NoError(t, err)
	call := store.Calls()[1]
	assert.NotContains(t, call.Cypher, "OPTIONAL MATCH")
	assert.Contains(t, call.Params["contentTypes"], "Fact")
}

func TestFailuresAreStructured(t *testing.T) {
	kt := newKnowledgeTools(graphtest.New())

	res, _, err := kt.AnalyzeKnowledgeGaps(context.Background(), nil, AnalyzeGapsInput{
		Domain: "finance", AnalysisType: "orphans",
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Equal(t, false, out["success"])
	assert.Contains(t, out["error"], "orphans")
}

func TestExploreUnknownEntityIsFailure(t *testing.T) {
	kt := newKnowledgeTools(graphtest.New())

	res, _, err := kt.ExploreKnowledgeGraph(context.Background(), nil, ExploreInput{StartEntity: "Nobody"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), `not found`)
}

func TestFindPathsNotFoundIsNotAnError(t *testing.T) {
	kt := newKnowledgeTools(graphtest.New())

	res, _, err := kt.FindKnowledgePaths(context.Background(), nil, FindPathsInput{EntityA: "a", EntityB: "b"})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), `"found": false`)
}

func TestStoreKnowledgeMapsRelationships(t *testing.T) {
	store := graphtest.New().
		On("CREATE (k:Knowledge", graph.Record{"k": graph.Node{Labels: []string{"Knowledge"}, Props: map[string]any{"id": "k-1"}}}).
		On("MERGE (a)-[r:SUPPORTS]->(b)", graph.Record{"type": "SUPPORTS"})
	kt := newKnowledgeTools(store)

	res, _, err := kt.StoreKnowledge(context.Background(), nil, StoreKnowledgeInput{
		Content:       "Premiums fund the cash value",
		Relationships: []RelationshipInput{{TargetNode: "Whole Life", RelationshipType: "SUPPORTS"}},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError, resultText(t, res))
	assert.Contains(t, resultText(t, res), `"id": "k-1"`)
	assert.Len(t, store.CallsMatching("SUPPORTS"), 1)
}

func TestExtractionHistory(t *testing.T) {
	j, err := journal.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })

	id, err := j.Begin("notes")
	require.NoError(t, err)
	require.NoError(t, j.Finish(id, journal.Outcome{SourceID: "s-1", Concepts: 1,
		Entities: []journal.Entity{{EntityID: "c-1", Kind: "Concept", Text: "Neo4j"}}}))

	et := &ExtractionTools{Journal: j}
	res, _, err := et.ExtractionHistory(context.Background(), nil, ExtractionHistoryInput{})
	require.NoError(t, err)
	var batches []journal.Batch
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &batches))
	require.Len(t, batches, 1)
	assert.Equal(t, journal.StatusCommitted, batches[0].Status)

	res, _, err = et.ExtractionHistory(context.Background(), nil, ExtractionHistoryInput{BatchID: id})
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), `"entityId": "c-1"`)

	res, _, err = et.ExtractionHistory(context.Background(), nil, ExtractionHistoryInput{BatchID: "missing"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestExtractionHistoryWithoutJournal(t *testing.T) {
	et := &ExtractionTools{}
	res, _, err := et.ExtractionHistory(context.Background(), nil, ExtractionHistoryInput{})
	require.NoError(t, err)
	assert.False(t, res.IsError)
}

func TestStringOrList(t *testing.T) {
	assert.Nil(t, stringOrList(nil))
	assert.Nil(t, stringOrList(""))
	assert.Equal(t, []string{"concept"}, stringOrList("concept"))
	assert.Equal(t, []string{"a", "b"}, stringOrList([]any{"a", 1, "b", ""}))
}

var (
	_ Engine   = (*knowledge.Service)(nil)
	_ BatchLog = (*journal.Journal)(nil)
)
