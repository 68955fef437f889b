package cache

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calc-agent/api/internal/types"
)

func TestKey(t *testing.T) {
	k := Key(types.DomainCalculus, "derivative x^2")
	assert.True(t, strings.HasPrefix(k, "calc:calculus:"))
	assert.Len(t, strings.TrimPrefix(k, "calc:calculus:"), 64)
	assert.NotEqual(t, k, Key(types.DomainBasicMath, "derivative x^2"))
}

func TestRedisRoundTrip(t *testing.T) {
	url := os.Getenv("CALC_TEST_REDIS_URL")
	if url == "" {
		t.Skip("CALC_TEST_REDIS_URL not set")
	}
	c, err := New(url, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()
	require.NoError(t, c.Ping(ctx))

	expr := "17 * 3 " + time.Now().Format(time.RFC3339Nano)
	_, hit := c.Get(ctx, types.DomainBasicMath, expr)
	assert.False(t, hit)

	c.Set(ctx, types.DomainBasicMath, expr, &types.CalculationResult{
		Result:          types.Number(51),
		Steps:           []string{"17 * 3 = 51"},
		ConfidenceScore: 1,
		Domain:          types.DomainBasicMath,
	})
	got, hit := c.Get(ctx, types.DomainBasicMath, expr)
	require.True(t, hit)
	assert.Equal(t, "51", got.Result.String())
	assert.Equal(t, []string{"17 * 3 = 51"}, got.Steps)
	assert.Equal(t, types.DomainBasicMath, got.Domain)
}

func TestBadURL(t *testing.T) {
	_, err := New("not-a-url", time.Minute)
	assert.Error(t, err)
}
