package comparison

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lagoon-network/vae/internal/types"
)

func floatPtr(v float64) *float64 { return &v }

func threeVaultsNoRisk() []types.VaultComparisonInput {
	return []types.VaultComparisonInput{
		{Address: "0xaaa", Name: "Alpha", TVLUSD: 1_000_000, APRPct: 0.05},
		{Address: "0xbbb", Name: "Beta", TVLUSD: 2_000_000, APRPct: 0.10},
		{Address: "0xccc", Name: "Gamma", TVLUSD: 3_000_000, APRPct: 0.15},
	}
}

func TestPercentile(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50}

	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{"minimum scores zero", 10, 0},
		{"second position", 20, 25},
		{"middle", 30, 50},
		{"fourth position", 40, 75},
		{"maximum scores one hundred", 50, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Percentile(tt.value, values), 1e-9)
		})
	}

	t.Run("empty set", func(t *testing.T) {
		assert.Zero(t, Percentile(5, nil))
	})

	t.Run("single element scores one hundred", func(t *testing.T) {
		assert.InDelta(t, 100, Percentile(5, []float64{5}), 1e-9)
	})

	t.Run("ties resolve to the first matching index", func(t *testing.T) {
		assert.InDelta(t, 0, Percentile(10, []float64{10, 10, 20}), 1e-9)
	})
}

func TestDeltaFromAverage(t *testing.T) {
	assert.InDelta(t, 50.0, DeltaFromAverage(3, 2), 1e-9)
	assert.InDelta(t, -50.0, DeltaFromAverage(1, 2), 1e-9)
	assert.Zero(t, DeltaFromAverage(5, 0))
	// Rounded to 2 decimals.
	assert.InDelta(t, 33.33, DeltaFromAverage(4, 3), 1e-9)
}

func TestNormalizeAndRankVaultsWithoutRisk(t *testing.T) {
	ranked := NormalizeAndRankVaults(threeVaultsNoRisk())

	require.Len(t, ranked, 3)

	// Gamma leads on both APR and TVL.
	assert.Equal(t, "0xccc", ranked[0].Address)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.InDelta(t, 100, ranked[0].OverallScore, 1e-9)

	assert.Equal(t, "0xbbb", ranked[1].Address)
	assert.Equal(t, 2, ranked[1].Rank)
	assert.InDelta(t, 50, ranked[1].OverallScore, 1e-9)

	assert.Equal(t, "0xaaa", ranked[2].Address)
	assert.Equal(t, 3, ranked[2].Rank)
	assert.InDelta(t, 0, ranked[2].OverallScore, 1e-9)

	// No vault carries a risk score, so no risk statistics appear.
	for _, v := range ranked {
		assert.Nil(t, v.RiskPercentile)
		assert.Nil(t, v.RiskDelta)
	}

	// Deltas against averages: avg TVL 2M, avg APR 0.10.
	assert.InDelta(t, 50.0, ranked[0].TVLDelta, 1e-9)
	assert.InDelta(t, 50.0, ranked[0].APRDelta, 1e-9)
	assert.InDelta(t, -50.0, ranked[2].TVLDelta, 1e-9)
}

func TestNormalizeAndRankVaultsWithRisk(t *testing.T) {
	vaults := []types.VaultComparisonInput{
		{Address: "0xaaa", Name: "Alpha", TVLUSD: 1_000_000, APRPct: 0.15, RiskScore: floatPtr(0.8)},
		{Address: "0xbbb", Name: "Beta", TVLUSD: 2_000_000, APRPct: 0.10, RiskScore: floatPtr(0.2)},
	}

	ranked := NormalizeAndRankVaults(vaults)

	require.Len(t, ranked, 2)

	// Alpha: APR 100, TVL 0, risk percentile inverted 100-100=0 -> 0.4*100 = 40.
	// Beta:  APR 0, TVL 100, risk inverted 100-0=100 -> 0.3*100 + 0.3*100 = 60.
	assert.Equal(t, "0xbbb", ranked[0].Address)
	assert.InDelta(t, 60, ranked[0].OverallScore, 1e-9)
	assert.Equal(t, "0xaaa", ranked[1].Address)
	assert.InDelta(t, 40, ranked[1].OverallScore, 1e-9)

	require.NotNil(t, ranked[0].RiskPercentile)
	assert.InDelta(t, 100, *ranked[0].RiskPercentile, 1e-9)
	require.NotNil(t, ranked[0].RiskDelta)
	// Beta risk 0.2 against average 0.5.
	assert.InDelta(t, -60.0, *ranked[0].RiskDelta, 1e-9)
}

func TestNormalizeAndRankVaultsMixedRiskFallsBack(t *testing.T) {
	vaults := []types.VaultComparisonInput{
		{Address: "0xaaa", Name: "Alpha", TVLUSD: 1_000_000, APRPct: 0.15, RiskScore: floatPtr(0.8)},
		{Address: "0xbbb", Name: "Beta", TVLUSD: 2_000_000, APRPct: 0.10},
	}

	ranked := NormalizeAndRankVaults(vaults)

	// One missing risk score disables risk weighting for the whole set.
	for _, v := range ranked {
		assert.Nil(t, v.RiskPercentile)
		assert.Nil(t, v.RiskDelta)
	}
}

func TestNormalizeAndRankVaultsStableTies(t *testing.T) {
	vaults := []types.VaultComparisonInput{
		{Address: "0xaaa", Name: "Alpha", TVLUSD: 1_000_000, APRPct: 0.10},
		{Address: "0xbbb", Name: "Beta", TVLUSD: 1_000_000, APRPct: 0.10},
	}

	ranked := NormalizeAndRankVaults(vaults)

	// Identical scores keep their input order.
	assert.Equal(t, "0xaaa", ranked[0].Address)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, "0xbbb", ranked[1].Address)
	assert.Equal(t, 2, ranked[1].Rank)
}

func TestNormalizeAndRankVaultsEmpty(t *testing.T) {
	assert.Empty(t, NormalizeAndRankVaults(nil))
}

func TestGenerateComparisonSummary(t *testing.T) {
	summary := GenerateComparisonSummary(threeVaultsNoRisk())

	assert.Equal(t, 3, summary.TotalVaults)
	assert.InDelta(t, 2_000_000, summary.AverageTVL, 1e-9)
	assert.InDelta(t, 0.10, summary.AverageAPR, 1e-9)

	assert.Equal(t, "0xccc", summary.BestPerformer.Address)
	assert.InDelta(t, 0.15, summary.BestPerformer.Metric, 1e-9)
	assert.Equal(t, "0xaaa", summary.WorstPerformer.Address)
	assert.Equal(t, "0xccc", summary.HighestTVL.Address)
	assert.InDelta(t, 3_000_000, summary.HighestTVL.Metric, 1e-9)
	assert.Equal(t, "0xaaa", summary.LowestTVL.Address)

	// Without full risk coverage the risk section stays empty.
	assert.Nil(t, summary.AverageRisk)
	assert.Nil(t, summary.SafestVault)
	assert.Nil(t, summary.RiskiestVault)
}

func TestGenerateComparisonSummaryWithRisk(t *testing.T) {
	vaults := threeVaultsNoRisk()
	vaults[0].RiskScore = floatPtr(0.6)
	vaults[1].RiskScore = floatPtr(0.2)
	vaults[2].RiskScore = floatPtr(0.4)

	summary := GenerateComparisonSummary(vaults)

	require.NotNil(t, summary.AverageRisk)
	assert.InDelta(t, 0.4, *summary.AverageRisk, 1e-9)
	require.NotNil(t, summary.SafestVault)
	assert.Equal(t, "0xbbb", summary.SafestVault.Address)
	assert.InDelta(t, 0.2, summary.SafestVault.Metric, 1e-9)
	require.NotNil(t, summary.RiskiestVault)
	assert.Equal(t, "0xaaa", summary.RiskiestVault.Address)
}

func TestGenerateComparisonSummaryEmpty(t *testing.T) {
	summary := GenerateComparisonSummary(nil)
	assert.Zero(t, summary.TotalVaults)
}
