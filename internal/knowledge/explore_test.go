package knowledge

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/graph"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/graph/graphtest"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/models"
)

func exploreRow(n graph.Node, depth int, rels ...string) graph.Record {
	list := make([]any, 0, len(rels))
	for _, r := range rels {
		list = append(list, r)
	}
	return graph.Record{"connected": n, "content": displayText(n.Props), "depth": int64(depth), "relationships": list}
}

func TestExplore(t *testing.T) {
	start := concept("c-1", "Infinite Banking", 0.9)
	store := graphtest.New().
		On("LIMIT 1", graph.Record{"n": start, "content": "Infinite Banking"}).
		On("elementId(start)",
			exploreRow(concept("c-2", "Tax Planning", 0.8), 1, "RELATED_TO"),
			exploreRow(fact("f-1", "Policy loans are tax free"), 1, "ABOUT"),
			exploreRow(concept("c-3", "Estate Planning", 0.7), 2, "RELATED_TO", "RELATED_TO"),
		)
	e := NewExplorer(store, testOptions()...)

	res, err := e.Explore(context.Background(), models.ExplorationRequest{StartEntity: "Infinite Banking", MaxDepth: 2})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "c-1", res.StartNode.ID)
	assert.Equal(t, []string{"Concept"}, res.StartNode.Labels)
	require.Len(t, res.ConnectedNodes, 3)
	assert.Equal(t, "Tax Planning", res.ConnectedNodes[0].Name)
	assert.Equal(t, "Fact", res.ConnectedNodes[1].Type)
	assert.Equal(t, 2, res.ConnectedNodes[2].Depth)
	assert.Equal(t, map[string]int{"RELATED_TO": 3, "ABOUT": 1}, res.RelationshipSummary)
	assert.Empty(t, res.Visualization)

	calls := store.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, start.ElementID, calls[1].Params["startId"])
	assert.Contains(t, calls[1].Cypher, "[*1..2]")
	assertSessionsBalanced(t, store)
}

func TestExploreNeverExceedsMaxDepth(t *testing.T) {
	store := graphtest.New().
		On("LIMIT 1", graph.Record{"n": concept("c-1", "A", 0.9)}).
		On("elementId(start)",
			exploreRow(concept("c-2", "B", 0.8), 1, "R"),
			exploreRow(concept("c-3", "C", 0.8), 4, "R", "R", "R", "R"),
		)
	e := NewExplorer(store, testOptions()...)

	res, err := e.Explore(context.Background(), models.ExplorationRequest{StartEntity: "A", MaxDepth: 1})
	require.NoError(t, err)
	for _, n := range res.ConnectedNodes {
		assert.LessOrEqual(t, n.Depth, 1)
	}
}

func TestExploreUnknownStart(t *testing.T) {
	store := graphtest.New()
	e := NewExplorer(store, testOptions()...)

	_, err := e.Explore(context.Background(), models.ExplorationRequest{StartEntity: "Nothing Here"})
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Contains(t, err.Error(), `"Nothing Here" not found`)
	assert.Len(t, store.Calls(), 1)
	assertSessionsBalanced(t, store)
}

func TestExploreRejectsUnsafeRelationshipTypes(t *testing.T) {
	store := graphtest.New().On("LIMIT 1", graph.Record{"n": concept("c-1", "A", 0.9)})
	e := NewExplorer(store, testOptions()...)

	_, err := e.Explore(context.Background(), models.ExplorationRequest{
		StartEntity: "A", RelationshipTypes: []string{"RELATED_TO]-(x) DELETE x//"},
	})
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Empty(t, store.CallsMatching("elementId(start)"))
}

func TestExploreDepthBounds(t *testing.T) {
	e := NewExplorer(graphtest.New(), testOptions()...)
	_, err := e.Explore(context.Background(), models.ExplorationRequest{StartEntity: "A", MaxDepth: 11})
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestExploreVisualization(t *testing.T) {
	rows := make([]graph.Record, 0, 25)
	for i := range 25 {
		rows = append(rows, exploreRow(concept(fmt.Sprintf("c-%d", i+2), fmt.Sprintf("Neighbour %d", i), 0.8), 1, "RELATED_TO"))
	}
	long := "A concept name that is clearly longer than thirty characters"
	store := graphtest.New().
		On("LIMIT 1", graph.Record{"n": concept("c-1", long, 0.9)}).
		On("elementId(start)", rows...)
	e := NewExplorer(store, testOptions()...)

	res, err := e.Explore(context.Background(), models.ExplorationRequest{StartEntity: "c", Visualize: true})
	require.NoError(t, err)
	require.Len(t, res.ConnectedNodes, 25)

	viz := res.Visualization
	assert.True(t, strings.HasPrefix(viz, "digraph"), viz)
	assert.Contains(t, viz, long[:30]+"...")
	assert.NotContains(t, viz, long)
	assert.Contains(t, viz, "Neighbour 19")
	assert.NotContains(t, viz, "Neighbour 20")
	assert.Equal(t, maxVisualNodes, strings.Count(viz, "RELATED_TO"))
}

func TestTruncateLabel(t *testing.T) {
	assert.Equal(t, "short", truncateLabel("short"))
	assert.Equal(t, strings.Repeat("é", 30)+"...", truncateLabel(strings.Repeat("é", 31)))
}
