package graph

import (
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAccessors(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r := Record{
		"s":     "text",
		"i":     int64(7),
		"f":     0.25,
		"t":     now,
		"list":  []any{"a", 1, "b"},
		"maps":  []any{map[string]any{"id": "x"}, "skip"},
		"node":  Node{ElementID: "4:a:1", Labels: []string{"Concept"}},
		"wrong": 3,
	}

	assert.Equal(t, "text", r.String("s"))
	assert.Equal(t, "", r.String("i"))
	assert.Equal(t, 7, r.Int("i"))
	assert.Equal(t, 0, r.Int("missing"))
	assert.Equal(t, 0.25, r.Float("f", 1))
	assert.Equal(t, 7.0, r.Float("i", 1))
	assert.Equal(t, 1.0, r.Float("missing", 1))
	assert.Equal(t, []string{"a", "b"}, r.Strings("list"))
	assert.Equal(t, []map[string]any{{"id": "x"}}, r.Maps("maps"))
	assert.Empty(t, r.Maps("missing"))

	ts, ok := r.Time("t")
	require.True(t, ok)
	assert.True(t, ts.Equal(now))

	n, ok := r.Node("node")
	require.True(t, ok)
	assert.True(t, n.HasLabel("Concept"))
	assert.False(t, n.HasLabel("Fact"))
	_, ok = r.Node("wrong")
	assert.False(t, ok)
}

func TestResultSingle(t *testing.T) {
	assert.Nil(t, (&Result{}).Single())
	res := &Result{Records: []Record{{"a": 1}, {"a": 2}}}
	assert.Equal(t, Record{"a": 1}, res.Single())
}

func TestConvertValue(t *testing.T) {
	local := time.Date(2025, 5, 6, 7, 8, 9, 0, time.UTC)
	in := []any{
		dbtype.Node{ElementId: "4:a:1", Labels: []string{"Fact"}, Props: map[string]any{
			"statement": "x",
			"nested":    []any{dbtype.LocalDateTime(local)},
		}},
		dbtype.Relationship{ElementId: "5:a:1", StartElementId: "4:a:1", EndElementId: "4:a:2", Type: "ABOUT"},
		map[string]any{"when": dbtype.Date(local)},
		"plain",
	}

	out, ok := convertValue(in).([]any)
	require.True(t, ok)
	require.Len(t, out, 4)

	n, ok := out[0].(Node)
	require.True(t, ok)
	assert.Equal(t, "4:a:1", n.ElementID)
	assert.Equal(t, "x", Prop(n.Props, "statement"))
	assert.Equal(t, []any{local}, n.Props["nested"])

	rel, ok := out[1].(Relationship)
	require.True(t, ok)
	assert.Equal(t, "ABOUT", rel.Type)
	assert.Equal(t, "4:a:2", rel.EndID)

	assert.Equal(t, map[string]any{"when": local}, out[2])
	assert.Equal(t, "plain", out[3])
}
