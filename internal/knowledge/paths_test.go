package knowledge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/graph"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/graph/graphtest"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/models"
)

func segment(source, rel, target string) map[string]any {
	return map[string]any{"source": source, "relationship": rel, "target": target}
}

func TestFindPathsNotFound(t *testing.T) {
	store := graphtest.New()
	p := NewPathFinder(store, testOptions()...)

	res, err := p.FindPaths(context.Background(), models.PathRequest{
		EntityA: "Infinite Banking", EntityB: "Tax Planning", MaxPathLength: 1,
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.False(t, res.Found)
	assert.Contains(t, res.Message, "within 1 hops")
	assert.Empty(t, res.Paths)
	assertSessionsBalanced(t, store)
}

func TestFindPaths(t *testing.T) {
	store := graphtest.New().On("MATCH p = (a)",
		graph.Record{
			"pathLength": int64(1),
			"segments":   []any{segment("Infinite Banking", "RELATED_TO", "Tax Planning")},
			"nodes": []any{
				map[string]any{"id": "c-1", "name": "Infinite Banking", "labels": []any{"Concept"}},
				map[string]any{"id": "c-2", "name": "Tax Planning", "labels": []any{"Concept"}},
			},
		},
		graph.Record{
			"pathLength": int64(2),
			"segments": []any{
				segment("Infinite Banking", "ABOUT", "Policy loans"),
				segment("Policy loans", "ABOUT", "Tax Planning"),
			},
			"nodes": []any{},
		},
	)
	p := NewPathFinder(store, testOptions()...)

	res, err := p.FindPaths(context.Background(), models.PathRequest{
		EntityA: "Infinite Banking", EntityB: "Tax Planning", MaxPathLength: 2, IncludeNodes: true,
	})
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, 1, res.ShortestPathLength)
	require.Len(t, res.Paths, 2)

	first := res.Paths[0]
	assert.Equal(t, 1, first.Length)
	assert.Equal(t, []models.PathSegment{
		{Source: "Infinite Banking", Relationship: "RELATED_TO", Target: "Tax Planning"},
	}, first.Segments)
	require.Len(t, first.Nodes, 2)
	assert.Equal(t, []string{"Concept"}, first.Nodes[0].Labels)
	assert.Len(t, res.Paths[1].Segments, 2)

	call := store.Calls()[0]
	assert.Contains(t, call.Cypher, "[*1..2]")
	assert.Equal(t, "Infinite Banking", call.Params["entityA"])
}

func TestFindPathsDropsOverlongPaths(t *testing.T) {
	store := graphtest.New().On("MATCH p = (a)",
		graph.Record{"pathLength": int64(3), "segments": []any{}},
		graph.Record{"pathLength": int64(2), "segments": []any{}},
	)
	p := NewPathFinder(store, testOptions()...)

	res, err := p.FindPaths(context.Background(), models.PathRequest{EntityA: "a", EntityB: "b", MaxPathLength: 2})
	require.NoError(t, err)
	require.Len(t, res.Paths, 1)
	for _, path := range res.Paths {
		assert.LessOrEqual(t, path.Length, 2)
	}
	assert.Equal(t, 2, res.ShortestPathLength)
}

func TestFindPathsDefaultsAndValidation(t *testing.T) {
	store := graphtest.New()
	p := NewPathFinder(store, testOptions()...)

	_, err := p.FindPaths(context.Background(), models.PathRequest{EntityA: "a", EntityB: "b"})
	require.NoError(t, err)
	assert.Contains(t, store.Calls()[0].Cypher, "[*1..5]")

	_, err = p.FindPaths(context.Background(), models.PathRequest{EntityA: "a"})
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = p.FindPaths(context.Background(), models.PathRequest{
		EntityA: "a", EntityB: "b", RelationshipConstraints: []string{"bad type"},
	})
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Len(t, store.Calls(), 1)
}
