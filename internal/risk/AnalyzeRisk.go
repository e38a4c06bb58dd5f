/*

This file contains the main entry point for vault risk analysis. It runs every
factor scoring function, combines the factor vector with the fixed weight
vector, and classifies the weighted aggregate into a risk level.

*/

package risk

import (
	"github.com/lagoon-network/vae/internal/types"
)

// Factor weights for the overall score. The vector is a convex combination:
// the weights sum to exactly 1.0, so the overall score inherits the [0,1]
// range of the individual factors. These constants are part of the scoring
// contract and must not be adjusted at runtime.
const (
	WeightTVL                 = 0.13
	WeightConcentration       = 0.09
	WeightVolatility          = 0.11
	WeightAge                 = 0.08
	WeightCurator             = 0.09
	WeightFee                 = 0.06
	WeightLiquidity           = 0.08
	WeightAPRConsistency      = 0.06
	WeightYieldSustainability = 0.06
	WeightSettlement          = 0.05
	WeightIntegration         = 0.05
	WeightCapacity            = 0.05
	WeightDiversification     = 0.05
	WeightTopProtocol         = 0.04
)

// Risk level thresholds over the overall score.
const (
	LevelLowMax    = 0.3
	LevelMediumMax = 0.6
	LevelHighMax   = 0.8
)

// AnalyzeRisk scores every risk factor for the given vault snapshot and
// aggregates them into an overall score and categorical level. It never fails
// on missing optional sections: each optional factor falls back to its
// documented neutral score instead.
func AnalyzeRisk(inputs types.RiskFactorInputs) types.RiskScoreBreakdown {
	breakdown := types.RiskScoreBreakdown{
		TVLRisk:                 CalculateTVLRisk(inputs.TVLUSD),
		ConcentrationRisk:       CalculateConcentrationRisk(inputs.TVLUSD, inputs.TotalProtocolTVLUSD),
		VolatilityRisk:          CalculateVolatilityRisk(inputs.PriceHistory),
		AgeRisk:                 CalculateAgeRisk(inputs.AgeInDays),
		CuratorRisk:             CalculateCuratorRisk(inputs.CuratorVaultCount, inputs.CuratorSuccessRate, inputs.CuratorSignals),
		FeeRisk:                 CalculateFeeRisk(inputs.ManagementFeePct, inputs.PerformanceFeePct, inputs.PerformanceFeeOn),
		LiquidityRisk:           CalculateLiquidityRisk(inputs.SafeAssetsUSD, inputs.PendingRedemptions),
		APRConsistencyRisk:      CalculateAPRConsistencyRisk(inputs.APRByPeriod),
		YieldSustainabilityRisk: CalculateYieldSustainabilityRisk(inputs.YieldComposition),
		SettlementRisk:          CalculateSettlementRisk(inputs.Settlement),
		IntegrationRisk:         CalculateIntegrationRisk(inputs.IntegrationCount),
		CapacityRisk:            CalculateCapacityRisk(inputs.Capacity),
		DiversificationRisk:     CalculateDiversificationRisk(inputs.Composition),
		TopProtocolRisk:         CalculateTopProtocolRisk(inputs.Composition),
	}

	breakdown.OverallRisk = breakdown.TVLRisk*WeightTVL +
		breakdown.ConcentrationRisk*WeightConcentration +
		breakdown.VolatilityRisk*WeightVolatility +
		breakdown.AgeRisk*WeightAge +
		breakdown.CuratorRisk*WeightCurator +
		breakdown.FeeRisk*WeightFee +
		breakdown.LiquidityRisk*WeightLiquidity +
		breakdown.APRConsistencyRisk*WeightAPRConsistency +
		breakdown.YieldSustainabilityRisk*WeightYieldSustainability +
		breakdown.SettlementRisk*WeightSettlement +
		breakdown.IntegrationRisk*WeightIntegration +
		breakdown.CapacityRisk*WeightCapacity +
		breakdown.DiversificationRisk*WeightDiversification +
		breakdown.TopProtocolRisk*WeightTopProtocol

	breakdown.RiskLevel = ClassifyRiskLevel(breakdown.OverallRisk)

	riskLogger.Debug().
		Float64("overallRisk", breakdown.OverallRisk).
		Str("riskLevel", string(breakdown.RiskLevel)).
		Float64("tvlUSD", inputs.TVLUSD).
		Int("ageInDays", inputs.AgeInDays).
		Msg("Vault risk analysis completed")

	return breakdown
}

// ClassifyRiskLevel maps an overall score onto the categorical level using
// the fixed 0.3/0.6/0.8 partition.
func ClassifyRiskLevel(overallRisk float64) types.RiskLevel {
	switch {
	case overallRisk < LevelLowMax:
		return types.RiskLevelLow
	case overallRisk < LevelMediumMax:
		return types.RiskLevelMedium
	case overallRisk < LevelHighMax:
		return types.RiskLevelHigh
	default:
		return types.RiskLevelCritical
	}
}
