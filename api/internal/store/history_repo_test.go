package store

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calc-agent/api/internal/agent"
	"calc-agent/api/internal/types"
)

func openTestDB(t *testing.T) *HistoryRepo {
	t.Helper()
	dsn := os.Getenv("CALC_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("CALC_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(ctx, db))
	return NewHistoryRepo(db)
}

func TestHistoryRoundTrip(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	plotExpr := "x^2 " + uuid.NewString()[:6]
	outs := []agent.Outcome{
		{ID: uuid.NewString(), Input: "!basic 2 + 2", Message: "✅ Result: 4", Domain: types.DomainBasicMath,
			Expression: "2 + 2", Result: &types.CalculationResult{Result: types.Number(4), ConfidenceScore: 1}},
		{ID: uuid.NewString(), Input: "eval('x')", Message: "❌ Security error", Failed: true},
		{ID: uuid.NewString(), Input: "!plot " + plotExpr, Message: "✅", Domain: types.DomainGraphPlotter,
			Expression: plotExpr, PlotPath: "/tmp/p.png",
			Result: &types.CalculationResult{Result: types.String("Plot created"), ConfidenceScore: 0.9}},
	}
	for _, o := range outs {
		require.NoError(t, repo.Record(ctx, o))
	}
	require.NoError(t, repo.Record(ctx, outs[0]), "duplicate ids are ignored")

	recent, err := repo.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	ids := map[string]Entry{}
	for _, e := range recent {
		ids[e.ID] = e
	}
	basic := ids[outs[0].ID]
	assert.Equal(t, "basic_math", basic.Domain)
	assert.JSONEq(t, `4`, string(extractResult(t, basic)))
	assert.Nil(t, ids[outs[1].ID].Confidence)

	plots, err := repo.PlotPaths(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/p.png", plots[plotExpr])
}

func extractResult(t *testing.T, e Entry) []byte {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(e.Result, &m))
	b, err := json.Marshal(m["result"])
	require.NoError(t, err)
	return b
}

func TestSafeDSNSummary(t *testing.T) {
	assert.Equal(t, "host=db port=5432 db=calc user=calc",
		SafeDSNSummary("postgres://calc:secret@db:5432/calc?sslmode=disable"))
	assert.Equal(t, "host=db db=calc user=calc", SafeDSNSummary("postgres://calc:secret@db/calc"))
}
