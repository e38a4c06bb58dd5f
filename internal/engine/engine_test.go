package engine

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lagoon-network/vae/internal/cache"
	"github.com/lagoon-network/vae/internal/datafetcher"
	"github.com/lagoon-network/vae/internal/types"
)

// newHistoryBackend serves a flat 10-sample APR series of 5.0 for every
// history query, so predictions are deterministic across calls.
func newHistoryBackend(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":{"vaultHistory":{"points":[`)
		for i := 0; i < 10; i++ {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"timestamp":%d,"aprPct":5.0,"tvlUsd":1000000}`, 1700000000+i*86400)
		}
		fmt.Fprint(w, `]}}}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestEngine(t *testing.T, endpoint string) (*Engine, *cache.Cache) {
	t.Helper()

	c, err := cache.New(time.Minute)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	eng, err := NewEngine(Config{
		Fetcher: datafetcher.NewClient(endpoint),
		Cache:   c,
	})
	require.NoError(t, err)
	return eng, c
}

func TestForecastYieldDistinctFeesDoNotShareCache(t *testing.T) {
	srv := newHistoryBackend(t)
	eng, c := newTestEngine(t, srv.URL)
	ctx := context.Background()

	first, err := eng.ForecastYield(ctx, "0xAbC", 30, &types.FeeParameters{ManagementFeePct: 1.0})
	require.NoError(t, err)
	require.NotNil(t, first.FeeAdjusted)
	assert.InDelta(t, 1.0, first.FeeAdjusted.ManagementDragPct, 1e-9)
	assert.InDelta(t, 4.0, first.FeeAdjusted.NetPredictedReturn, 1e-9)

	// Flush pending cache writes so a colliding key would actually be served.
	c.Wait()

	second, err := eng.ForecastYield(ctx, "0xAbC", 30, &types.FeeParameters{ManagementFeePct: 2.0})
	require.NoError(t, err)
	require.NotNil(t, second.FeeAdjusted)
	assert.InDelta(t, 2.0, second.FeeAdjusted.ManagementDragPct, 1e-9)
	assert.InDelta(t, 3.0, second.FeeAdjusted.NetPredictedReturn, 1e-9)
}

func TestForecastCacheKeyEncodesFeeSchedule(t *testing.T) {
	margin := 4.0

	noFees := forecastCacheKey("0xabc", 30, nil)
	mgmtOne := forecastCacheKey("0xabc", 30, &types.FeeParameters{ManagementFeePct: 1.0})
	mgmtTwo := forecastCacheKey("0xabc", 30, &types.FeeParameters{ManagementFeePct: 2.0})
	perfActive := forecastCacheKey("0xabc", 30, &types.FeeParameters{ManagementFeePct: 1.0, PerformanceFeePct: 20.0, PerformanceFeeActive: true})
	withMargin := forecastCacheKey("0xabc", 30, &types.FeeParameters{ManagementFeePct: 1.0, PerformanceFeePct: 20.0, PerformanceFeeActive: true, ObservedProfitMarginPct: &margin})

	keys := []string{noFees, mgmtOne, mgmtTwo, perfActive, withMargin}
	seen := map[string]bool{}
	for _, key := range keys {
		assert.False(t, seen[key], "duplicate cache key %q", key)
		seen[key] = true
	}

	// Identical schedules still share a key.
	assert.Equal(t, mgmtOne, forecastCacheKey("0xabc", 30, &types.FeeParameters{ManagementFeePct: 1.0}))
}

func TestForecastYieldSameRequestIsServedFromCache(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":{"vaultHistory":{"points":[{"timestamp":1700000000,"aprPct":5.0,"tvlUsd":1000000}]}}}`)
	}))
	t.Cleanup(srv.Close)

	eng, c := newTestEngine(t, srv.URL)
	ctx := context.Background()

	_, err := eng.ForecastYield(ctx, "0xabc", 30, nil)
	require.NoError(t, err)
	c.Wait()

	_, err = eng.ForecastYield(ctx, "0xabc", 30, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, hits)
}
