/*

This file contains the main entry point for portfolio optimization: target
allocation under the selected strategy, portfolio metrics, rebalance
detection, and human-readable recommendations.

*/

package optimizer

import (
	"fmt"
	"math"

	"github.com/lagoon-network/vae/internal/types"
)

// Defaults applied when the caller passes non-positive values.
const (
	DefaultRebalanceThresholdPct = 5.0
	DefaultRiskFreeRatePct       = 2.0
)

// Recommendation tier boundaries. These are behavioral contracts pinned by
// tests, not presentation details.
const (
	sharpeExcellentMin     = 2.0
	sharpeGoodMin          = 1.0
	diversificationHighMin = 0.8
	diversificationModMin  = 0.5
	driftSignificantPct    = 10.0
	driftModeratePct       = 5.0
)

var strategyDescriptions = map[types.Strategy]string{
	types.StrategyEqualWeight: "Equal weight: capital split evenly across all vaults",
	types.StrategyRiskParity:  "Risk parity: capital weighted toward lower-risk vaults",
	types.StrategyMaxSharpe:   "Max Sharpe: capital weighted toward the best risk-adjusted returns",
	types.StrategyMinVariance: "Min variance: capital weighted toward the most stable vaults",
}

// OptimizePortfolio computes target allocations for the given vaults under
// the selected strategy, along with portfolio metrics, rebalance diagnostics
// and recommendations. Non-positive rebalanceThresholdPct and riskFreeRatePct
// mean "use the default" (DefaultRebalanceThresholdPct and
// DefaultRiskFreeRatePct); a genuinely zero risk-free rate is not
// representable. An empty vault set is not an error: it yields a zeroed
// result with a single explanatory recommendation.
func OptimizePortfolio(vaults []types.VaultForOptimization, strategy types.Strategy, rebalanceThresholdPct, riskFreeRatePct float64) types.PortfolioOptimization {
	if rebalanceThresholdPct <= 0 {
		rebalanceThresholdPct = DefaultRebalanceThresholdPct
	}
	if riskFreeRatePct <= 0 {
		riskFreeRatePct = DefaultRiskFreeRatePct
	}

	if len(vaults) == 0 {
		optimizerLogger.Debug().Msg("No vaults in portfolio, returning zeroed optimization")
		return types.PortfolioOptimization{
			Strategy:           strategy,
			RebalanceThreshold: rebalanceThresholdPct,
			Positions:          []types.PortfolioPosition{},
			Recommendations:    []string{"No vaults in portfolio"},
		}
	}

	totalValueUSD := 0.0
	for _, v := range vaults {
		totalValueUSD += v.CurrentValueUSD
	}

	targetWeights := targetWeightsFor(vaults, strategy, riskFreeRatePct)
	positions := buildPositions(vaults, targetWeights, totalValueUSD)
	metrics := calculateMetrics(vaults, targetWeights, riskFreeRatePct)
	rebalanceNeeded := NeedsRebalancing(positions, rebalanceThresholdPct)

	result := types.PortfolioOptimization{
		Strategy:           strategy,
		TotalValueUSD:      totalValueUSD,
		Positions:          positions,
		Metrics:            metrics,
		RebalanceNeeded:    rebalanceNeeded,
		RebalanceThreshold: rebalanceThresholdPct,
	}
	result.Recommendations = generateRecommendations(result)

	optimizerLogger.Info().
		Str("strategy", string(strategy)).
		Int("vaultCount", len(vaults)).
		Float64("totalValueUSD", totalValueUSD).
		Float64("expectedReturn", metrics.ExpectedReturn).
		Bool("rebalanceNeeded", rebalanceNeeded).
		Msg("Portfolio optimization completed")

	return result
}

// calculateMetrics derives headline portfolio figures from the target
// weights. Portfolio risk is a weighted sum of per-vault volatilities, a
// deliberate simplification with no cross-vault correlation term.
func calculateMetrics(vaults []types.VaultForOptimization, targetWeights []float64, riskFreeRatePct float64) types.PortfolioMetrics {
	var expectedReturn, portfolioRisk, sumSquaredWeights float64
	for i, v := range vaults {
		weight := targetWeights[i] / 100.0
		expectedReturn += weight * v.ExpectedAPRPct
		portfolioRisk += weight * v.Volatility
		sumSquaredWeights += weight * weight
	}

	sharpe := 0.0
	if portfolioRisk > 0 {
		sharpe = (expectedReturn - riskFreeRatePct) / portfolioRisk
	}

	return types.PortfolioMetrics{
		ExpectedReturn:       expectedReturn,
		PortfolioRisk:        portfolioRisk,
		SharpeRatio:          sharpe,
		DiversificationScore: 1.0 - sumSquaredWeights,
	}
}

// NeedsRebalancing reports whether any position's allocation drift is
// strictly greater than the threshold. A drift exactly equal to the threshold
// does not trigger a rebalance.
func NeedsRebalancing(positions []types.PortfolioPosition, thresholdPct float64) bool {
	for _, p := range positions {
		if math.Abs(p.CurrentAllocationPct-p.TargetAllocationPct) > thresholdPct {
			return true
		}
	}
	return false
}

// generateRecommendations produces the ordered advisory lines: strategy
// description, Sharpe tier, diversification tier, drift tier, then one
// reduce/increase line per vault drifting more than 5 percentage points.
func generateRecommendations(result types.PortfolioOptimization) []string {
	recommendations := make([]string, 0, 4+len(result.Positions))

	if desc, ok := strategyDescriptions[result.Strategy]; ok {
		recommendations = append(recommendations, desc)
	} else {
		recommendations = append(recommendations, "Unknown strategy: allocated with equal weights")
	}

	switch {
	case result.Metrics.SharpeRatio > sharpeExcellentMin:
		recommendations = append(recommendations, "Excellent risk-adjusted returns expected from this allocation")
	case result.Metrics.SharpeRatio > sharpeGoodMin:
		recommendations = append(recommendations, "Good risk-adjusted returns expected from this allocation")
	case result.Metrics.SharpeRatio > 0:
		recommendations = append(recommendations, "Moderate risk-adjusted returns expected from this allocation")
	default:
		recommendations = append(recommendations, "Expected returns do not compensate for risk at the current risk-free rate")
	}

	switch {
	case result.Metrics.DiversificationScore > diversificationHighMin:
		recommendations = append(recommendations, "Portfolio is well diversified across vaults")
	case result.Metrics.DiversificationScore > diversificationModMin:
		recommendations = append(recommendations, "Portfolio is moderately diversified; consider spreading capital further")
	default:
		recommendations = append(recommendations, "Portfolio is concentrated in few vaults; diversification would reduce risk")
	}

	maxDrift := 0.0
	for _, p := range result.Positions {
		drift := math.Abs(p.CurrentAllocationPct - p.TargetAllocationPct)
		if drift > maxDrift {
			maxDrift = drift
		}
	}
	switch {
	case maxDrift > driftSignificantPct:
		recommendations = append(recommendations, "Significant allocation drift detected; rebalance soon")
	case maxDrift > driftModeratePct:
		recommendations = append(recommendations, "Moderate allocation drift detected; rebalance at the next opportunity")
	default:
		recommendations = append(recommendations, "Allocations are well balanced against targets")
	}

	for _, p := range result.Positions {
		drift := p.CurrentAllocationPct - p.TargetAllocationPct
		if drift > driftModeratePct {
			recommendations = append(recommendations,
				fmt.Sprintf("reduce: %s is %.1f points above its target allocation", p.Name, drift))
		} else if drift < -driftModeratePct {
			recommendations = append(recommendations,
				fmt.Sprintf("increase: %s is %.1f points below its target allocation", p.Name, -drift))
		}
	}

	return recommendations
}
