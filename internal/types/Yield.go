/*

This file contains the types for yield forecasting: the historical data point,
fee parameters, and the prediction result with projections and insights.

*/

package types

// Trend is the direction of the fitted APR regression line.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// YieldDataPoint is one historical APR/TVL observation. Chronological order
// is not assumed on input; the forecaster sorts by timestamp.
type YieldDataPoint struct {
	TimestampSeconds int64   `json:"timestamp"`
	APRPct           float64 `json:"apr_pct"`
	TVLUSD           float64 `json:"tvl_usd"`
}

// FeeParameters describes the vault fee schedule used to compute fee drag.
// ObservedProfitMarginPct is the actually realized profit margin; when the
// performance fee is active and no observed margin is available, fee-adjusted
// output is omitted entirely rather than approximated.
type FeeParameters struct {
	ManagementFeePct        float64  `json:"management_fee_pct"`
	PerformanceFeePct       float64  `json:"performance_fee_pct"`
	PerformanceFeeActive    bool     `json:"performance_fee_active"`
	ObservedProfitMarginPct *float64 `json:"observed_profit_margin_pct,omitempty"`
}

// ProjectedReturn is the expected period return for one fixed horizon,
// with a confidence band derived from historical APR volatility.
type ProjectedReturn struct {
	Horizon     string  `json:"horizon"`
	Days        int     `json:"days"`
	ExpectedPct float64 `json:"expected_pct"`
	LowPct      float64 `json:"low_pct"`
	HighPct     float64 `json:"high_pct"`
}

// FeeAdjustment carries the fee-drag figures and net projections. It is only
// present when fee drag could be computed from actual data.
type FeeAdjustment struct {
	ManagementDragPct  float64           `json:"management_drag_pct"`
	PerformanceDragPct float64           `json:"performance_drag_pct"`
	NetPredictedReturn float64           `json:"net_predicted_return"`
	ProjectedReturns   []ProjectedReturn `json:"projected_returns"`
}

// YieldPrediction is the complete forecaster output.
type YieldPrediction struct {
	PredictedReturnPct float64           `json:"predicted_return_pct"`
	Confidence         float64           `json:"confidence"`
	Trend              Trend             `json:"trend"`
	VolatilityPct      float64           `json:"volatility_pct"`
	RegressionSlope    float64           `json:"regression_slope"`
	RegressionR2       float64           `json:"regression_r2"`
	SampleCount        int               `json:"sample_count"`
	ProjectedReturns   []ProjectedReturn `json:"projected_returns"`
	FeeAdjusted        *FeeAdjustment    `json:"fee_adjusted,omitempty"`
	Insights           []string          `json:"insights"`
}
