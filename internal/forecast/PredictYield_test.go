package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lagoon-network/vae/internal/types"
)

// dailySeries builds one sample per day with APRs produced by f(dayIndex).
func dailySeries(n int, f func(day int) float64) []types.YieldDataPoint {
	points := make([]types.YieldDataPoint, n)
	for i := 0; i < n; i++ {
		points[i] = types.YieldDataPoint{
			TimestampSeconds: int64(i) * 86400,
			APRPct:           f(i),
			TVLUSD:           1_000_000,
		}
	}
	return points
}

func TestPredictYieldEmptyHistory(t *testing.T) {
	prediction := PredictYield(nil, nil)

	assert.Zero(t, prediction.PredictedReturnPct)
	assert.Zero(t, prediction.Confidence)
	assert.Equal(t, types.TrendStable, prediction.Trend)
	assert.Empty(t, prediction.ProjectedReturns)
	assert.Nil(t, prediction.FeeAdjusted)
	require.Len(t, prediction.Insights, 1)
	assert.Equal(t, "No historical data available to generate a forecast", prediction.Insights[0])
}

func TestPredictYieldConstantSeries(t *testing.T) {
	history := dailySeries(30, func(int) float64 { return 5.0 })

	prediction := PredictYield(history, nil)

	// A flat series blends to the constant itself.
	assert.InDelta(t, 5.0, prediction.PredictedReturnPct, 1e-6)
	assert.Equal(t, types.TrendStable, prediction.Trend)
	assert.InDelta(t, 0, prediction.RegressionSlope, 1e-9)
	assert.InDelta(t, 0, prediction.VolatilityPct, 1e-9)
	assert.Equal(t, 30, prediction.SampleCount)
}

func TestPredictYieldTrendDirection(t *testing.T) {
	t.Run("rising series", func(t *testing.T) {
		history := dailySeries(20, func(day int) float64 { return 4.0 + 0.1*float64(day) })
		prediction := PredictYield(history, nil)

		assert.Equal(t, types.TrendIncreasing, prediction.Trend)
		assert.InDelta(t, 0.1, prediction.RegressionSlope, 1e-6)
		// A perfect line has full explanatory power.
		assert.InDelta(t, 1.0, prediction.RegressionR2, 1e-6)
	})

	t.Run("falling series", func(t *testing.T) {
		history := dailySeries(20, func(day int) float64 { return 8.0 - 0.2*float64(day) })
		prediction := PredictYield(history, nil)

		assert.Equal(t, types.TrendDecreasing, prediction.Trend)
		assert.InDelta(t, -0.2, prediction.RegressionSlope, 1e-6)
	})

	t.Run("slope inside the stable band", func(t *testing.T) {
		history := dailySeries(20, func(day int) float64 { return 5.0 + 0.005*float64(day) })
		prediction := PredictYield(history, nil)

		assert.Equal(t, types.TrendStable, prediction.Trend)
	})
}

func TestPredictYieldUnsortedInput(t *testing.T) {
	sorted := dailySeries(10, func(day int) float64 { return 4.0 + 0.1*float64(day) })
	shuffled := []types.YieldDataPoint{
		sorted[7], sorted[2], sorted[9], sorted[0], sorted[4],
		sorted[1], sorted[8], sorted[3], sorted[6], sorted[5],
	}

	assert.Equal(t, PredictYield(sorted, nil), PredictYield(shuffled, nil))
}

func TestPredictYieldConfidence(t *testing.T) {
	t.Run("perfect fit with full sample count caps at 0.9", func(t *testing.T) {
		history := dailySeries(30, func(day int) float64 { return 4.0 + 0.1*float64(day) })
		prediction := PredictYield(history, nil)

		// (min(1, 30/30)*0.4 + 1.0*0.6) * 0.9
		assert.InDelta(t, 0.9, prediction.Confidence, 1e-6)
	})

	t.Run("short noisy history scores low", func(t *testing.T) {
		history := dailySeries(3, func(day int) float64 { return []float64{5, 9, 4}[day] })
		prediction := PredictYield(history, nil)

		assert.Less(t, prediction.Confidence, 0.4)
	})
}

func TestPredictYieldSingleSample(t *testing.T) {
	history := dailySeries(1, func(int) float64 { return 6.0 })

	prediction := PredictYield(history, nil)

	assert.Equal(t, 1, prediction.SampleCount)
	assert.Equal(t, types.TrendStable, prediction.Trend)
	assert.Zero(t, prediction.RegressionSlope)
	assert.Zero(t, prediction.RegressionR2)
	// Regression degrades to the single value; both EMAs fall back to it too.
	assert.InDelta(t, 6.0, prediction.PredictedReturnPct, 1e-9)
}

func TestProjectReturns(t *testing.T) {
	projections := projectReturns(10.0, 2.0)

	require.Len(t, projections, 4)
	assert.Equal(t, "7d", projections[0].Horizon)
	assert.Equal(t, 7, projections[0].Days)
	assert.InDelta(t, 10.0*7.0/365.0, projections[0].ExpectedPct, 1e-9)

	oneYear := projections[3]
	assert.Equal(t, "1y", oneYear.Horizon)
	assert.InDelta(t, 10.0, oneYear.ExpectedPct, 1e-9)
	assert.InDelta(t, 8.0, oneYear.LowPct, 1e-9)
	assert.InDelta(t, 12.0, oneYear.HighPct, 1e-9)

	// Bands widen with the square root of the horizon fraction.
	band7d := projections[0].HighPct - projections[0].ExpectedPct
	assert.InDelta(t, 2.0*math.Sqrt(7.0/365.0), band7d, 1e-9)
}

func TestProjectReturnsFloorsAtZero(t *testing.T) {
	projections := projectReturns(-5.0, 1.0)

	for _, p := range projections {
		assert.Zero(t, p.ExpectedPct, p.Horizon)
		assert.Zero(t, p.LowPct, p.Horizon)
	}
}

func TestFeeAdjustmentManagementOnly(t *testing.T) {
	history := dailySeries(30, func(int) float64 { return 5.0 })
	fees := &types.FeeParameters{ManagementFeePct: 1.0}

	prediction := PredictYield(history, fees)

	require.NotNil(t, prediction.FeeAdjusted)
	assert.InDelta(t, 1.0, prediction.FeeAdjusted.ManagementDragPct, 1e-9)
	assert.Zero(t, prediction.FeeAdjusted.PerformanceDragPct)
	assert.InDelta(t, 4.0, prediction.FeeAdjusted.NetPredictedReturn, 1e-6)
	require.Len(t, prediction.FeeAdjusted.ProjectedReturns, 4)
}

func TestFeeAdjustmentOmittedWithoutObservedMargin(t *testing.T) {
	history := dailySeries(30, func(int) float64 { return 5.0 })
	fees := &types.FeeParameters{
		ManagementFeePct:     1.0,
		PerformanceFeePct:    20.0,
		PerformanceFeeActive: true,
	}

	prediction := PredictYield(history, fees)

	// Active performance fee with no observed margin: no fee-adjusted output.
	assert.Nil(t, prediction.FeeAdjusted)
}

func TestFeeAdjustmentWithObservedMargin(t *testing.T) {
	history := dailySeries(30, func(int) float64 { return 5.0 })
	margin := 4.0
	fees := &types.FeeParameters{
		ManagementFeePct:        0.5,
		PerformanceFeePct:       20.0,
		PerformanceFeeActive:    true,
		ObservedProfitMarginPct: &margin,
	}

	prediction := PredictYield(history, fees)

	require.NotNil(t, prediction.FeeAdjusted)
	// 20% of the 4 point observed margin.
	assert.InDelta(t, 0.8, prediction.FeeAdjusted.PerformanceDragPct, 1e-9)
	assert.InDelta(t, 5.0-0.5-0.8, prediction.FeeAdjusted.NetPredictedReturn, 1e-6)
	assert.Contains(t, prediction.Insights, "Performance fees apply only above the vault's high-water mark")
}

func TestInsightsLimitedHistory(t *testing.T) {
	history := dailySeries(5, func(int) float64 { return 5.0 })

	prediction := PredictYield(history, nil)

	require.NotEmpty(t, prediction.Insights)
	assert.Equal(t, "Limited history (5 samples); forecast reliability is reduced", prediction.Insights[0])
}
