/*

This file contains the per-strategy target weight calculations. Every strategy
produces raw weights that are normalized to sum to 100, and every division
site carries an explicit guard so no NaN or Inf can reach a result field.

*/

package optimizer

import (
	"math"

	"github.com/lagoon-network/vae/internal/logger"
	"github.com/lagoon-network/vae/internal/types"
)

var optimizerLogger = logger.GetForComponent("portfolio_optimizer")

// Stabilizers for the weight formulas. Small additive constants keep the
// denominators away from zero for risk-free or volatility-free vaults.
const (
	riskParityEpsilon  = 0.01
	maxSharpeEpsilon   = 0.01
	minVarianceEpsilon = 0.0001
)

// equalWeights assigns 100/n to every vault.
func equalWeights(n int) []float64 {
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 100.0 / float64(n)
	}
	return weights
}

// riskParityWeights weights each vault proportionally to the inverse of its
// risk score, so low-risk vaults absorb more capital.
func riskParityWeights(vaults []types.VaultForOptimization) []float64 {
	raw := make([]float64, len(vaults))
	for i, v := range vaults {
		raw[i] = 1.0 / (v.RiskScore + riskParityEpsilon)
	}
	return normalizeWeights(raw)
}

// maxSharpeWeights weights each vault proportionally to its Sharpe ratio
// against the risk-free rate, with negative ratios floored at zero. When no
// vault beats the risk-free rate, the strategy falls back to equal weight.
func maxSharpeWeights(vaults []types.VaultForOptimization, riskFreeRatePct float64) []float64 {
	raw := make([]float64, len(vaults))
	var total float64
	for i, v := range vaults {
		sharpe := (v.ExpectedAPRPct - riskFreeRatePct) / (v.Volatility + maxSharpeEpsilon)
		raw[i] = math.Max(0, sharpe)
		total += raw[i]
	}
	if total <= 0 {
		optimizerLogger.Debug().
			Float64("riskFreeRatePct", riskFreeRatePct).
			Msg("No vault has a positive Sharpe ratio, falling back to equal weight")
		return equalWeights(len(vaults))
	}
	return normalizeWeights(raw)
}

// minVarianceWeights weights each vault proportionally to the inverse of its
// return variance.
func minVarianceWeights(vaults []types.VaultForOptimization) []float64 {
	raw := make([]float64, len(vaults))
	for i, v := range vaults {
		raw[i] = 1.0 / (v.Volatility*v.Volatility + minVarianceEpsilon)
	}
	return normalizeWeights(raw)
}

// normalizeWeights scales raw weights so they sum to 100. A non-positive
// total degrades to equal weight rather than dividing by zero.
func normalizeWeights(raw []float64) []float64 {
	var total float64
	for _, w := range raw {
		total += w
	}
	if total <= 0 {
		return equalWeights(len(raw))
	}
	weights := make([]float64, len(raw))
	for i, w := range raw {
		weights[i] = w / total * 100.0
	}
	return weights
}

// targetWeightsFor dispatches over the closed strategy set. An unknown
// strategy degrades to equal weight; the web layer rejects unknown strategies
// before they reach this point.
func targetWeightsFor(vaults []types.VaultForOptimization, strategy types.Strategy, riskFreeRatePct float64) []float64 {
	switch strategy {
	case types.StrategyEqualWeight:
		return equalWeights(len(vaults))
	case types.StrategyRiskParity:
		return riskParityWeights(vaults)
	case types.StrategyMaxSharpe:
		return maxSharpeWeights(vaults, riskFreeRatePct)
	case types.StrategyMinVariance:
		return minVarianceWeights(vaults)
	default:
		optimizerLogger.Warn().
			Str("strategy", string(strategy)).
			Msg("Unknown strategy, falling back to equal weight")
		return equalWeights(len(vaults))
	}
}

// buildPositions derives per-vault positions from target weights.
// RebalancePct is sign-only (±100) when the current value is zero, so a
// division by zero never propagates into the result.
func buildPositions(vaults []types.VaultForOptimization, targetWeights []float64, totalValueUSD float64) []types.PortfolioPosition {
	positions := make([]types.PortfolioPosition, len(vaults))
	for i, v := range vaults {
		currentPct := 0.0
		if totalValueUSD > 0 {
			currentPct = v.CurrentValueUSD / totalValueUSD * 100.0
		}

		targetValue := totalValueUSD * targetWeights[i] / 100.0
		rebalanceAmount := targetValue - v.CurrentValueUSD

		var rebalancePct float64
		switch {
		case v.CurrentValueUSD > 0:
			rebalancePct = rebalanceAmount / v.CurrentValueUSD * 100.0
		case rebalanceAmount > 0:
			rebalancePct = 100.0
		case rebalanceAmount < 0:
			rebalancePct = -100.0
		}

		positions[i] = types.PortfolioPosition{
			Address:              v.Address,
			Name:                 v.Name,
			CurrentAllocationPct: currentPct,
			TargetAllocationPct:  targetWeights[i],
			CurrentValueUSD:      v.CurrentValueUSD,
			TargetValueUSD:       targetValue,
			RebalanceAmountUSD:   rebalanceAmount,
			RebalancePct:         rebalancePct,
		}
	}
	return positions
}

// CalculateEqualWeight builds positions for the equal-weight strategy.
func CalculateEqualWeight(vaults []types.VaultForOptimization, totalValueUSD float64) []types.PortfolioPosition {
	return buildPositions(vaults, equalWeights(len(vaults)), totalValueUSD)
}

// CalculateRiskParity builds positions for the risk-parity strategy.
func CalculateRiskParity(vaults []types.VaultForOptimization, totalValueUSD float64) []types.PortfolioPosition {
	return buildPositions(vaults, riskParityWeights(vaults), totalValueUSD)
}

// CalculateMaxSharpe builds positions for the max-Sharpe strategy.
func CalculateMaxSharpe(vaults []types.VaultForOptimization, totalValueUSD, riskFreeRatePct float64) []types.PortfolioPosition {
	return buildPositions(vaults, maxSharpeWeights(vaults, riskFreeRatePct), totalValueUSD)
}

// CalculateMinVariance builds positions for the minimum-variance strategy.
func CalculateMinVariance(vaults []types.VaultForOptimization, totalValueUSD float64) []types.PortfolioPosition {
	return buildPositions(vaults, minVarianceWeights(vaults), totalValueUSD)
}
