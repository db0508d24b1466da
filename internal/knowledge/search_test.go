package knowledge

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/graph"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/graph/graphtest"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/models"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/textsim"
)

func searchRow(n graph.Node, related ...map[string]any) graph.Record {
	list := make([]any, 0, len(related))
	for _, r := range related {
		list = append(list, r)
	}
	return graph.Record{"n": n, "content": displayText(n.Props), "related": list}
}

func TestSearchExactRanksByConfidence(t *testing.T) {
	store := graphtest.New().On("MATCH (n)",
		searchRow(concept("c-1", "Tax Planning", 0.6)),
		searchRow(concept("c-2", "Estate tax planning", 0.9)),
		searchRow(node("Fact", map[string]any{"id": "f-1", "statement": "Tax planning reduces liability"})),
	)
	r := NewRetriever(store, testOptions()...)

	res, err := r.Search(context.Background(), models.SearchRequest{
		Query: "tax planning", SearchType: models.SearchExact, MaxResults: 10,
	})
	require.NoError(t, err)
	require.Len(t, res.Results, 3)
	assert.Equal(t, 3, res.TotalCount)
	assert.Equal(t, "exact", res.SearchType)

	assert.Equal(t, "c-2", res.Results[0].ID)
	assert.Equal(t, 0.9, res.Results[0].Relevance)
	assert.Equal(t, "c-1", res.Results[1].ID)
	assert.Equal(t, "f-1", res.Results[2].ID)
	assert.Equal(t, unscoredConfidence, res.Results[2].Confidence)
	assert.Equal(t, "Fact", res.Results[2].ContentType)

	for _, hit := range res.Results {
		assert.Contains(t, strings.ToLower(hit.Content), "tax planning")
	}

	call := store.Calls()[0]
	assert.Equal(t, "tax planning", call.Params["query"])
	assert.Equal(t, 10, call.Params["limit"])
	assert.NotContains(t, call.Cypher, "OPTIONAL MATCH")
}

func TestSearchDefaultsToHybrid(t *testing.T) {
	store := graphtest.New().On("MATCH (n)",
		searchRow(concept("c-1", "Tax", 1.0)),
		searchRow(concept("c-2", "Tax Planning", 0.5),
			map[string]any{"id": "c-3", "content": "Infinite Banking"}),
	)
	r := NewRetriever(store, testOptions()...)

	res, err := r.Search(context.Background(), models.SearchRequest{Query: "Tax Planning", IncludeContext: true})
	require.NoError(t, err)
	assert.Equal(t, models.SearchHybrid, res.SearchType)
	assert.True(t, res.IncludeContext)

	// Similarity dominates confidence.
	require.Len(t, res.Results, 2)
	assert.Equal(t, "c-2", res.Results[0].ID)
	assert.InDelta(t, 0.7*1.0+0.3*0.5, res.Results[0].Relevance, 1e-9)
	assert.InDelta(t, 0.7*textsim.Similarity("Tax Planning", "Tax")+0.3*1.0, res.Results[1].Relevance, 1e-9)
	assert.Equal(t, []models.Ref{{ID: "c-3", Content: "Infinite Banking"}}, res.Results[0].RelatedConcepts)

	call := store.Calls()[0]
	assert.Equal(t, minCandidatePool, call.Params["limit"])
	assert.Contains(t, call.Cypher, "OPTIONAL MATCH (n)-[*1..1]-(m)")
}

func TestSearchRespectsMaxResults(t *testing.T) {
	rows := make([]graph.Record, 0, 30)
	for i := range 30 {
		rows = append(rows, searchRow(concept("c", "graph node", float64(i)/30)))
	}
	for _, st := range []string{models.SearchExact, models.SearchSemantic, models.SearchGraph, models.SearchHybrid} {
		store := graphtest.New().On("MATCH (n)", rows...)
		r := NewRetriever(store, testOptions()...)

		res, err := r.Search(context.Background(), models.SearchRequest{Query: "graph", SearchType: st, MaxResults: 4})
		require.NoError(t, err, st)
		assert.Len(t, res.Results, 4, st)
		for i := 1; i < len(res.Results); i++ {
			assert.GreaterOrEqual(t, res.Results[i-1].Relevance, res.Results[i].Relevance, st)
		}
	}
}

func TestSearchGraphAttachesTwoHops(t *testing.T) {
	store := graphtest.New()
	r := NewRetriever(store, testOptions()...)

	res, err := r.Search(context.Background(), models.SearchRequest{Query: "x", SearchType: models.SearchGraph})
	require.NoError(t, err)
	assert.Empty(t, res.Results)
	assert.Contains(t, store.Calls()[0].Cypher, "OPTIONAL MATCH (n)-[*1..2]-(m)")
}

func TestSearchSemanticBindsPattern(t *testing.T) {
	store := graphtest.New()
	r := NewRetriever(store, testOptions()...)

	_, err := r.Search(context.Background(), models.SearchRequest{
		Query: "whole life", SearchType: models.SearchSemantic,
		ContextFilters: models.ContextFilters{Domain: "finance", ContentTypes: []string{"concept"}},
	})
	require.NoError(t, err)
	call := store.Calls()[0]
	assert.Equal(t, "(?is).*whole.*life.*", call.Params["pattern"])
	assert.Equal(t, "finance", call.Params["domain"])
	assert.Contains(t, call.Params["contentTypes"], "Concept")
}

func TestSearchValidation(t *testing.T) {
	store := graphtest.New()
	r := NewRetriever(store, testOptions()...)

	_, err := r.Search(context.Background(), models.SearchRequest{Query: ""})
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = r.Search(context.Background(), models.SearchRequest{Query: "x", SearchType: "vector"})
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = r.Search(context.Background(), models.SearchRequest{Query: "x", MaxResults: 500})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maxResults must be at most 100")
	assert.Empty(t, store.Calls())
}

func TestSearchStoreFailureReturnsNoResults(t *testing.T) {
	store := graphtest.New().Fail("MATCH (n)", errors.New("syntax error"))
	r := NewRetriever(store, testOptions()...)

	res, err := r.Search(context.Background(), models.SearchRequest{Query: "x"})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, KindStore, KindOf(err))
	assert.Contains(t, err.Error(), "run search query")
	assertSessionsBalanced(t, store)
}
