package graphtest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/graph"
)

func TestQueuedAndStickyResponses(t *testing.T) {
	ctx := context.Background()
	s := New().
		On("MATCH", graph.Record{"n": 1}).
		Always("MERGE", graph.Record{"m": 1}).
		Fail("DELETE", errors.New("boom"))

	sess, err := s.OpenSession(ctx)
	require.NoError(t, err)

	res, err := sess.Run(ctx, "MATCH (n) RETURN n", nil)
	require.NoError(t, err)
	assert.Len(t, res.Records, 1)

	res, err = sess.Run(ctx, "MATCH (n) RETURN n", nil)
	require.NoError(t, err)
	assert.Empty(t, res.Records)

	for range 2 {
		res, err = sess.Run(ctx, "MERGE (n) RETURN n", nil)
		require.NoError(t, err)
		assert.Len(t, res.Records, 1)
	}

	_, err = sess.Run(ctx, "MATCH (n) DELETE n", nil)
	require.EqualError(t, err, "boom")

	require.NoError(t, sess.Close(ctx))
	_, err = sess.Run(ctx, "MATCH (n) RETURN n", nil)
	require.Error(t, err)

	assert.Len(t, s.Calls(), 5)
	assert.Len(t, s.CallsMatching("MERGE"), 2)
	opened, closed := s.Sessions()
	assert.Equal(t, 1, opened)
	assert.Equal(t, 1, closed)
}

func TestExecuteWriteAccounting(t *testing.T) {
	ctx := context.Background()
	s := New()
	sess, err := s.OpenSession(ctx)
	require.NoError(t, err)

	require.NoError(t, sess.ExecuteWrite(ctx, func(tx graph.Runner) error {
		_, err := tx.Run(ctx, "CREATE (n)", nil)
		return err
	}))
	require.Error(t, sess.ExecuteWrite(ctx, func(graph.Runner) error { return errors.New("abort") }))

	commits, rollbacks := s.Transactions()
	assert.Equal(t, 1, commits)
	assert.Equal(t, 1, rollbacks)
	assert.True(t, s.Calls()[0].InTx)

	require.NoError(t, s.Close(ctx))
	assert.True(t, s.Closed())
}

func TestOpenErr(t *testing.T) {
	s := New()
	s.OpenErr = errors.New("unavailable")
	_, err := s.OpenSession(context.Background())
	require.Error(t, err)
}
