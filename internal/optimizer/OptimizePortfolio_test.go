package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lagoon-network/vae/internal/types"
)

func threeVaults() []types.VaultForOptimization {
	return []types.VaultForOptimization{
		{Address: "0xaaa", Name: "Alpha", CurrentValueUSD: 100_000, ExpectedAPRPct: 8.0, Volatility: 2.0, RiskScore: 0.2},
		{Address: "0xbbb", Name: "Beta", CurrentValueUSD: 100_000, ExpectedAPRPct: 12.0, Volatility: 5.0, RiskScore: 0.5},
		{Address: "0xccc", Name: "Gamma", CurrentValueUSD: 100_000, ExpectedAPRPct: 4.0, Volatility: 1.0, RiskScore: 0.1},
	}
}

func targetSum(positions []types.PortfolioPosition) float64 {
	var sum float64
	for _, p := range positions {
		sum += p.TargetAllocationPct
	}
	return sum
}

func TestOptimizeEqualWeightBalancedPortfolio(t *testing.T) {
	result := OptimizePortfolio(threeVaults(), types.StrategyEqualWeight, 0, 0)

	require.Len(t, result.Positions, 3)
	assert.InDelta(t, 300_000, result.TotalValueUSD, 1e-9)
	assert.InDelta(t, 100.0, targetSum(result.Positions), 1e-9)

	for _, p := range result.Positions {
		assert.InDelta(t, 100.0/3.0, p.TargetAllocationPct, 1e-9)
		assert.InDelta(t, 100.0/3.0, p.CurrentAllocationPct, 1e-9)
		assert.InDelta(t, 0, p.RebalanceAmountUSD, 1e-6)
		assert.InDelta(t, 0, p.RebalancePct, 1e-6)
	}
	assert.False(t, result.RebalanceNeeded)
	assert.InDelta(t, DefaultRebalanceThresholdPct, result.RebalanceThreshold, 1e-9)
}

func TestAllStrategiesNormalizeToOneHundred(t *testing.T) {
	strategies := []types.Strategy{
		types.StrategyEqualWeight,
		types.StrategyRiskParity,
		types.StrategyMaxSharpe,
		types.StrategyMinVariance,
	}

	for _, strategy := range strategies {
		t.Run(string(strategy), func(t *testing.T) {
			result := OptimizePortfolio(threeVaults(), strategy, 5.0, 2.0)
			assert.InDelta(t, 100.0, targetSum(result.Positions), 1e-6)
		})
	}
}

func TestRiskParityFavorsLowRiskVaults(t *testing.T) {
	result := OptimizePortfolio(threeVaults(), types.StrategyRiskParity, 5.0, 2.0)

	byName := map[string]types.PortfolioPosition{}
	for _, p := range result.Positions {
		byName[p.Name] = p
	}

	// Gamma (risk 0.1) > Alpha (risk 0.2) > Beta (risk 0.5).
	assert.Greater(t, byName["Gamma"].TargetAllocationPct, byName["Alpha"].TargetAllocationPct)
	assert.Greater(t, byName["Alpha"].TargetAllocationPct, byName["Beta"].TargetAllocationPct)
}

func TestMinVarianceFavorsStableVaults(t *testing.T) {
	result := OptimizePortfolio(threeVaults(), types.StrategyMinVariance, 5.0, 2.0)

	byName := map[string]types.PortfolioPosition{}
	for _, p := range result.Positions {
		byName[p.Name] = p
	}

	assert.Greater(t, byName["Gamma"].TargetAllocationPct, byName["Alpha"].TargetAllocationPct)
	assert.Greater(t, byName["Alpha"].TargetAllocationPct, byName["Beta"].TargetAllocationPct)
}

func TestMaxSharpeFallsBackToEqualWeight(t *testing.T) {
	vaults := []types.VaultForOptimization{
		{Address: "0xaaa", Name: "Alpha", CurrentValueUSD: 50_000, ExpectedAPRPct: 1.0, Volatility: 2.0},
		{Address: "0xbbb", Name: "Beta", CurrentValueUSD: 50_000, ExpectedAPRPct: 0.5, Volatility: 3.0},
	}

	// Risk-free rate above every vault's APR floors all Sharpe ratios at zero.
	result := OptimizePortfolio(vaults, types.StrategyMaxSharpe, 5.0, 10.0)

	require.Len(t, result.Positions, 2)
	for _, p := range result.Positions {
		assert.InDelta(t, 50.0, p.TargetAllocationPct, 1e-9)
	}
}

func TestOptimizeEmptyPortfolio(t *testing.T) {
	result := OptimizePortfolio(nil, types.StrategyRiskParity, 5.0, 2.0)

	assert.Equal(t, types.StrategyRiskParity, result.Strategy)
	assert.Zero(t, result.TotalValueUSD)
	assert.Empty(t, result.Positions)
	assert.False(t, result.RebalanceNeeded)
	assert.Equal(t, []string{"No vaults in portfolio"}, result.Recommendations)
}

func TestZeroValueVaultRebalancePctIsSignOnly(t *testing.T) {
	vaults := []types.VaultForOptimization{
		{Address: "0xaaa", Name: "Alpha", CurrentValueUSD: 100_000, ExpectedAPRPct: 5.0, Volatility: 1.0, RiskScore: 0.3},
		{Address: "0xbbb", Name: "Beta", CurrentValueUSD: 0, ExpectedAPRPct: 5.0, Volatility: 1.0, RiskScore: 0.3},
	}

	result := OptimizePortfolio(vaults, types.StrategyEqualWeight, 5.0, 2.0)

	require.Len(t, result.Positions, 2)
	beta := result.Positions[1]
	assert.Zero(t, beta.CurrentAllocationPct)
	assert.InDelta(t, 50_000, beta.RebalanceAmountUSD, 1e-6)
	assert.InDelta(t, 100.0, beta.RebalancePct, 1e-9)

	alpha := result.Positions[0]
	assert.InDelta(t, -50.0, alpha.RebalancePct, 1e-9)
}

func TestNeedsRebalancingThresholdIsStrict(t *testing.T) {
	positions := []types.PortfolioPosition{
		{CurrentAllocationPct: 55.0, TargetAllocationPct: 50.0},
		{CurrentAllocationPct: 45.0, TargetAllocationPct: 50.0},
	}

	// Drift of exactly 5 points does not trigger at a 5 point threshold.
	assert.False(t, NeedsRebalancing(positions, 5.0))
	assert.True(t, NeedsRebalancing(positions, 4.99))
}

func TestCalculateMetrics(t *testing.T) {
	vaults := []types.VaultForOptimization{
		{ExpectedAPRPct: 10.0, Volatility: 2.0},
		{ExpectedAPRPct: 6.0, Volatility: 4.0},
	}
	weights := []float64{50, 50}

	metrics := calculateMetrics(vaults, weights, 2.0)

	assert.InDelta(t, 8.0, metrics.ExpectedReturn, 1e-9)
	assert.InDelta(t, 3.0, metrics.PortfolioRisk, 1e-9)
	assert.InDelta(t, 2.0, metrics.SharpeRatio, 1e-9)
	assert.InDelta(t, 0.5, metrics.DiversificationScore, 1e-9)
}

func TestSharpeIsZeroWhenPortfolioRiskIsZero(t *testing.T) {
	vaults := []types.VaultForOptimization{
		{ExpectedAPRPct: 10.0, Volatility: 0},
	}

	metrics := calculateMetrics(vaults, []float64{100}, 2.0)

	assert.Zero(t, metrics.SharpeRatio)
	assert.Zero(t, metrics.PortfolioRisk)
}

func TestCalculateStrategyWrappers(t *testing.T) {
	vaults := threeVaults()
	const totalValueUSD = 300_000.0

	tests := []struct {
		name      string
		positions []types.PortfolioPosition
	}{
		{"equal_weight", CalculateEqualWeight(vaults, totalValueUSD)},
		{"risk_parity", CalculateRiskParity(vaults, totalValueUSD)},
		{"max_sharpe", CalculateMaxSharpe(vaults, totalValueUSD, 2.0)},
		{"min_variance", CalculateMinVariance(vaults, totalValueUSD)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Len(t, tt.positions, 3)
			assert.InDelta(t, 100.0, targetSum(tt.positions), 1e-6)

			var targetValueSum float64
			for _, p := range tt.positions {
				targetValueSum += p.TargetValueUSD
				assert.GreaterOrEqual(t, p.TargetAllocationPct, 0.0)
			}
			assert.InDelta(t, totalValueUSD, targetValueSum, 1e-6)
		})
	}
}

func TestCalculateEqualWeightSplitsEvenly(t *testing.T) {
	positions := CalculateEqualWeight(threeVaults(), 300_000)

	require.Len(t, positions, 3)
	for _, p := range positions {
		assert.InDelta(t, 100.0/3.0, p.TargetAllocationPct, 1e-9)
		assert.InDelta(t, 100_000, p.TargetValueUSD, 1e-6)
		assert.InDelta(t, 0, p.RebalanceAmountUSD, 1e-6)
	}
}

func TestRecommendationsOrderAndDriftLines(t *testing.T) {
	vaults := []types.VaultForOptimization{
		{Address: "0xaaa", Name: "Alpha", CurrentValueUSD: 80_000, ExpectedAPRPct: 10.0, Volatility: 2.0, RiskScore: 0.3},
		{Address: "0xbbb", Name: "Beta", CurrentValueUSD: 20_000, ExpectedAPRPct: 10.0, Volatility: 2.0, RiskScore: 0.3},
	}

	result := OptimizePortfolio(vaults, types.StrategyEqualWeight, 5.0, 2.0)

	require.True(t, result.RebalanceNeeded)
	require.GreaterOrEqual(t, len(result.Recommendations), 6)

	assert.Equal(t, strategyDescriptions[types.StrategyEqualWeight], result.Recommendations[0])
	assert.Contains(t, result.Recommendations[3], "Significant allocation drift")
	assert.Contains(t, result.Recommendations, "reduce: Alpha is 30.0 points above its target allocation")
	assert.Contains(t, result.Recommendations, "increase: Beta is 30.0 points below its target allocation")
}
