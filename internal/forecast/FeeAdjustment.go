/*

This file contains the fee-drag adjustment and the plain-language insight
generation for yield predictions.

*/

package forecast

import (
	"fmt"

	"github.com/lagoon-network/vae/internal/types"
)

// applyFeeAdjustment computes the fee-adjusted prediction. The management fee
// is a flat annual drag. The performance-fee drag requires an actually
// observed profit margin: when the performance fee is active and no margin is
// supplied, the fee-adjusted output is omitted entirely rather than
// approximated with a placeholder assumption.
func applyFeeAdjustment(prediction types.YieldPrediction, fees *types.FeeParameters) *types.FeeAdjustment {
	if fees == nil {
		return nil
	}

	performanceDrag := 0.0
	if fees.PerformanceFeeActive {
		if fees.ObservedProfitMarginPct == nil {
			forecastLogger.Debug().
				Msg("Performance fee active but no observed profit margin supplied, omitting fee-adjusted output")
			return nil
		}
		margin := *fees.ObservedProfitMarginPct
		if margin > 0 {
			performanceDrag = fees.PerformanceFeePct / 100.0 * margin
		}
	}

	managementDrag := fees.ManagementFeePct
	netPredicted := prediction.PredictedReturnPct - managementDrag - performanceDrag

	return &types.FeeAdjustment{
		ManagementDragPct:  managementDrag,
		PerformanceDragPct: performanceDrag,
		NetPredictedReturn: netPredicted,
		ProjectedReturns:   projectReturns(netPredicted, prediction.VolatilityPct),
	}
}

// generateInsights produces the ordered advisory strings: data sufficiency,
// trend, volatility tier, confidence tier, regression strength, and fee notes
// when fee data is present.
func generateInsights(prediction types.YieldPrediction, fees *types.FeeParameters) []string {
	insights := make([]string, 0, 7)

	if prediction.SampleCount < 10 {
		insights = append(insights,
			fmt.Sprintf("Limited history (%d samples); forecast reliability is reduced", prediction.SampleCount))
	} else {
		insights = append(insights,
			fmt.Sprintf("Forecast built from %d historical samples", prediction.SampleCount))
	}

	switch prediction.Trend {
	case types.TrendIncreasing:
		insights = append(insights,
			fmt.Sprintf("Yield is trending upward at %.3f points per day", prediction.RegressionSlope))
	case types.TrendDecreasing:
		insights = append(insights,
			fmt.Sprintf("Yield is trending downward at %.3f points per day", -prediction.RegressionSlope))
	default:
		insights = append(insights, "Yield has been stable over the observed period")
	}

	switch {
	case prediction.VolatilityPct < 1.0:
		insights = append(insights, "APR volatility is low; realized returns should track the forecast closely")
	case prediction.VolatilityPct < 3.0:
		insights = append(insights, "APR volatility is moderate; expect some deviation from the forecast")
	default:
		insights = append(insights, "APR volatility is high; realized returns may deviate substantially from the forecast")
	}

	switch {
	case prediction.Confidence >= 0.7:
		insights = append(insights, "High forecast confidence")
	case prediction.Confidence >= 0.4:
		insights = append(insights, "Moderate forecast confidence")
	default:
		insights = append(insights, "Low forecast confidence; treat the projection as indicative only")
	}

	switch {
	case prediction.RegressionR2 >= 0.7:
		insights = append(insights,
			fmt.Sprintf("Strong linear trend in the data (r²=%.2f)", prediction.RegressionR2))
	case prediction.RegressionR2 >= 0.3:
		insights = append(insights,
			fmt.Sprintf("Weak linear trend in the data (r²=%.2f)", prediction.RegressionR2))
	default:
		insights = append(insights,
			fmt.Sprintf("No meaningful linear trend in the data (r²=%.2f)", prediction.RegressionR2))
	}

	if fees != nil && prediction.FeeAdjusted != nil {
		totalDrag := prediction.FeeAdjusted.ManagementDragPct + prediction.FeeAdjusted.PerformanceDragPct
		switch {
		case totalDrag >= 2.0:
			insights = append(insights,
				fmt.Sprintf("Fee drag is heavy at %.2f points of annual return", totalDrag))
		case totalDrag >= 0.5:
			insights = append(insights,
				fmt.Sprintf("Fee drag is moderate at %.2f points of annual return", totalDrag))
		default:
			insights = append(insights,
				fmt.Sprintf("Fee drag is light at %.2f points of annual return", totalDrag))
		}
		if fees.PerformanceFeeActive {
			insights = append(insights,
				"Performance fees apply only above the vault's high-water mark")
		}
	}

	return insights
}
