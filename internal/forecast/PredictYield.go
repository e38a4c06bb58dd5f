/*

This file contains the yield forecaster. It fits an ordinary least-squares
regression of APR against days since the first sample, blends the regression
projection with short and long exponential moving averages, and derives
confidence, trend, and fixed-horizon projections from the result.

*/

package forecast

import (
	"math"
	"sort"

	"github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/stat"

	"github.com/lagoon-network/vae/internal/logger"
	"github.com/lagoon-network/vae/internal/types"
)

var forecastLogger = logger.GetForComponent("yield_forecaster")

// Blend weights and model constants. The prediction is a heuristic blend,
// never a statistically rigorous interval, which is why confidence is capped
// at 90% by construction.
const (
	regressionWeight = 0.4
	emaShortWeight   = 0.4
	emaLongWeight    = 0.2

	emaShortWindow = 7
	emaLongWindow  = 30

	stableSlopeThreshold = 0.01

	confidenceSampleTarget = 30.0
	confidenceSampleWeight = 0.4
	confidenceFitWeight    = 0.6
	confidenceCap          = 0.9

	secondsPerDay = 86400.0
	daysPerYear   = 365.0
)

// projectionHorizons are the fixed forecast horizons.
var projectionHorizons = []struct {
	Label string
	Days  int
}{
	{"7d", 7},
	{"30d", 30},
	{"90d", 90},
	{"1y", 365},
}

// PredictYield forecasts the annualized return from a historical APR series.
// The input does not need to be sorted. An empty history is not an error: it
// yields an all-zero prediction with a stable trend and an explanatory
// insight.
func PredictYield(history []types.YieldDataPoint, fees *types.FeeParameters) types.YieldPrediction {
	if len(history) == 0 {
		return types.YieldPrediction{
			Trend:            types.TrendStable,
			ProjectedReturns: []types.ProjectedReturn{},
			Insights:         []string{"No historical data available to generate a forecast"},
		}
	}

	sorted := make([]types.YieldDataPoint, len(history))
	copy(sorted, history)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].TimestampSeconds < sorted[j].TimestampSeconds
	})

	n := len(sorted)
	days := make([]float64, n)
	aprs := make([]float64, n)
	for i, point := range sorted {
		days[i] = float64(point.TimestampSeconds-sorted[0].TimestampSeconds) / secondsPerDay
		aprs[i] = point.APRPct
	}

	slope, intercept, r2 := fitRegression(days, aprs)

	// Extrapolate the fitted line one step past the last observed day index.
	regressionProjection := slope*float64(n) + intercept
	emaShort := emaWithFallback(aprs, emaShortWindow)
	emaLong := emaWithFallback(aprs, emaLongWindow)

	predicted := regressionWeight*regressionProjection + emaShortWeight*emaShort + emaLongWeight*emaLong

	trend := types.TrendStable
	if math.Abs(slope) >= stableSlopeThreshold {
		if slope > 0 {
			trend = types.TrendIncreasing
		} else {
			trend = types.TrendDecreasing
		}
	}

	sampleConfidence := math.Min(1.0, float64(n)/confidenceSampleTarget)
	confidence := (sampleConfidence*confidenceSampleWeight + r2*confidenceFitWeight) * confidenceCap

	// Volatility over the raw APR samples themselves, not their returns.
	volatility := popStdDev(aprs)

	prediction := types.YieldPrediction{
		PredictedReturnPct: predicted,
		Confidence:         confidence,
		Trend:              trend,
		VolatilityPct:      volatility,
		RegressionSlope:    slope,
		RegressionR2:       r2,
		SampleCount:        n,
		ProjectedReturns:   projectReturns(predicted, volatility),
	}
	prediction.FeeAdjusted = applyFeeAdjustment(prediction, fees)
	prediction.Insights = generateInsights(prediction, fees)

	forecastLogger.Debug().
		Int("samples", n).
		Float64("predictedReturnPct", predicted).
		Float64("confidence", confidence).
		Str("trend", string(trend)).
		Float64("regressionSlope", slope).
		Float64("regressionR2", r2).
		Msg("Yield prediction completed")

	return prediction
}

// fitRegression runs OLS of APR on day index. Degenerate inputs (a single
// sample, or all samples at the same timestamp) flatten to a zero-slope line
// through the mean with zero explanatory power.
func fitRegression(days, aprs []float64) (slope, intercept, r2 float64) {
	if len(aprs) < 2 {
		return 0, aprs[0], 0
	}

	intercept, slope = stat.LinearRegression(days, aprs, nil, false)
	if math.IsNaN(slope) || math.IsInf(slope, 0) || math.IsNaN(intercept) || math.IsInf(intercept, 0) {
		return 0, stat.Mean(aprs, nil), 0
	}

	r2 = stat.RSquared(days, aprs, nil, intercept, slope)
	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		r2 = 0
	}
	if r2 < 0 {
		r2 = 0
	}
	if r2 > 1 {
		r2 = 1
	}
	return slope, intercept, r2
}

// emaWithFallback returns the last exponential moving average value over the
// given window, degrading to a simple average when the series is shorter than
// the window.
func emaWithFallback(values []float64, window int) float64 {
	if len(values) < window {
		return stat.Mean(values, nil)
	}
	ema := talib.Ema(values, window)
	last := ema[len(ema)-1]
	if math.IsNaN(last) || math.IsInf(last, 0) {
		return stat.Mean(values, nil)
	}
	return last
}

// popStdDev is the population (N, not N-1) standard deviation.
func popStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := stat.Mean(values, nil)
	var sumSqDiff float64
	for _, v := range values {
		sumSqDiff += math.Pow(v-mean, 2)
	}
	return math.Sqrt(sumSqDiff / float64(len(values)))
}

// projectReturns converts the annualized prediction into expected period
// returns for the fixed horizons, with a confidence band scaled by the square
// root of the horizon fraction. Expected and lower-bound values are floored
// at zero.
func projectReturns(predictedAnnualPct, volatilityPct float64) []types.ProjectedReturn {
	projections := make([]types.ProjectedReturn, 0, len(projectionHorizons))
	for _, horizon := range projectionHorizons {
		fraction := float64(horizon.Days) / daysPerYear
		expected := math.Max(0, predictedAnnualPct*fraction)
		band := volatilityPct * math.Sqrt(fraction)
		projections = append(projections, types.ProjectedReturn{
			Horizon:     horizon.Label,
			Days:        horizon.Days,
			ExpectedPct: expected,
			LowPct:      math.Max(0, expected-band),
			HighPct:     expected + band,
		})
	}
	return projections
}
