/*

This file contains the individual risk factor scoring functions. Each maps a
continuous input onto a score in [0,1] (0 = lowest risk) through a fixed
breakpoint table. The tables are part of the algorithm's contract, not tunable
state: downstream comparison and optimization logic depends on score
continuity across releases, not just ordering.

*/

package risk

import (
	"math"

	"github.com/lagoon-network/vae/internal/logger"
	"github.com/lagoon-network/vae/internal/types"
)

var riskLogger = logger.GetForComponent("risk_scorer")

// NeutralScore is the documented fallback when an optional factor's backing
// data is unavailable. Missing data never fails the whole computation.
const NeutralScore = 0.5

// tvlRiskBands maps absolute TVL in USD onto a risk score. Larger vaults are
// harder to drain and have survived more scrutiny.
var tvlRiskBands = []struct {
	MinUSD float64
	Score  float64
}{
	{10_000_000, 0.1},
	{5_000_000, 0.2},
	{1_000_000, 0.3},
	{500_000, 0.5},
	{100_000, 0.7},
	{10_000, 0.9},
}

// CalculateTVLRisk scores the vault's absolute size.
// Anything below $10K scores the maximum 1.0.
func CalculateTVLRisk(tvlUSD float64) float64 {
	for _, band := range tvlRiskBands {
		if tvlUSD >= band.MinUSD {
			return band.Score
		}
	}
	return 1.0
}

// CalculateConcentrationRisk scores how much of the whole protocol's TVL sits
// in this single vault. A vault dominating its protocol concentrates failure
// impact. Returns the neutral score when protocol TVL is unknown or zero.
func CalculateConcentrationRisk(vaultTVLUSD, totalProtocolTVLUSD float64) float64 {
	if totalProtocolTVLUSD <= 0 {
		return NeutralScore
	}
	ratio := vaultTVLUSD / totalProtocolTVLUSD
	switch {
	case ratio < 0.05:
		return 0.1
	case ratio < 0.10:
		return 0.2
	case ratio < 0.20:
		return 0.4
	case ratio < 0.35:
		return 0.6
	case ratio < 0.50:
		return 0.8
	default:
		return 1.0
	}
}

// CalculateVolatilityRisk scores the standard deviation of period-over-period
// price-per-share returns. Fewer than 2 usable samples yields the neutral
// score. Non-positive prices are skipped the same way the volatility pipeline
// skips them when annualizing token volatility.
func CalculateVolatilityRisk(history []types.PricePoint) float64 {
	returns := periodReturns(history)
	if len(returns) < 1 {
		riskLogger.Debug().
			Int("samples", len(history)).
			Msg("Insufficient price history for volatility risk, using neutral score")
		return NeutralScore
	}

	stdev := populationStdDev(returns)
	switch {
	case stdev < 0.005:
		return 0.1
	case stdev < 0.01:
		return 0.2
	case stdev < 0.02:
		return 0.4
	case stdev < 0.05:
		return 0.6
	case stdev < 0.10:
		return 0.8
	default:
		return 1.0
	}
}

// periodReturns computes simple period-over-period returns from a price
// series, skipping pairs with non-positive prices.
func periodReturns(history []types.PricePoint) []float64 {
	if len(history) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(history)-1)
	for i := 1; i < len(history); i++ {
		prev := history[i-1].PricePerShare
		curr := history[i].PricePerShare
		if prev <= 0 || curr <= 0 {
			continue
		}
		returns = append(returns, (curr-prev)/prev)
	}
	return returns
}

// populationStdDev is the population (N, not N-1) standard deviation.
func populationStdDev(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	var sumSqDiff float64
	for _, v := range values {
		sumSqDiff += math.Pow(v-mean, 2)
	}
	return math.Sqrt(sumSqDiff / float64(n))
}

// CalculateAgeRisk scores vault age in days. Most vault exploits happen early
// in a vault's life, so young vaults carry the highest scores.
func CalculateAgeRisk(ageInDays int) float64 {
	switch {
	case ageInDays >= 365:
		return 0.1
	case ageInDays >= 180:
		return 0.2
	case ageInDays >= 90:
		return 0.4
	case ageInDays >= 30:
		return 0.6
	case ageInDays >= 7:
		return 0.8
	default:
		return 1.0
	}
}

// CalculateCuratorRisk scores the vault curator: a base score from track
// record length, a penalty proportional to the historical failure rate, and
// bonuses for professionalism signals. The result is clamped to [0,1].
func CalculateCuratorRisk(vaultCount int, successRate float64, signals types.CuratorSignals) float64 {
	var base float64
	switch {
	case vaultCount >= 10:
		base = 0.1
	case vaultCount >= 5:
		base = 0.2
	case vaultCount >= 2:
		base = 0.3
	case vaultCount == 1:
		base = 0.5
	default:
		base = 0.7
	}

	score := base + (1.0-clamp01(successRate))*0.5

	if signals.HasWebsite {
		score -= 0.1
	}
	if signals.HasDescription {
		score -= 0.1
	}
	if signals.MultipleCurators {
		score -= 0.15
	}
	if signals.CuratorCount > 1 {
		score -= math.Min(0.05*float64(signals.CuratorCount-1), 0.1)
	}

	return clamp01(score)
}

// CalculateFeeRisk scores the effective fee load. The performance fee only
// contributes when active, and is discounted to a tenth because it is only
// charged on realized profit.
func CalculateFeeRisk(managementFeePct, performanceFeePct float64, performanceFeeActive bool) float64 {
	effective := managementFeePct
	if performanceFeeActive {
		effective += performanceFeePct * 0.1
	}
	switch {
	case effective <= 0.5:
		return 0.1
	case effective <= 1.0:
		return 0.2
	case effective <= 1.5:
		return 0.4
	case effective <= 2.0:
		return 0.6
	case effective <= 3.0:
		return 0.8
	default:
		return 1.0
	}
}

// CalculateLiquidityRisk scores the vault's ability to cover pending
// redemptions with safe assets. No pending redemptions means there is nothing
// to cover and scores the minimum band.
func CalculateLiquidityRisk(safeAssetsUSD, pendingRedemptionsUSD float64) float64 {
	if pendingRedemptionsUSD <= 0 {
		return 0.1
	}
	coverage := safeAssetsUSD / pendingRedemptionsUSD
	switch {
	case coverage >= 2.0:
		return 0.1
	case coverage >= 1.5:
		return 0.2
	case coverage >= 1.0:
		return 0.4
	case coverage >= 0.75:
		return 0.6
	case coverage >= 0.5:
		return 0.8
	default:
		return 1.0
	}
}

// CalculateAPRConsistencyRisk scores the coefficient of variation across the
// available period APRs. Negative period APRs mark unavailable windows and
// are skipped; fewer than 2 usable samples yields the neutral score.
func CalculateAPRConsistencyRisk(aprs *types.APRByPeriod) float64 {
	if aprs == nil {
		return NeutralScore
	}

	samples := make([]float64, 0, 4)
	for _, apr := range []float64{aprs.Weekly, aprs.Monthly, aprs.Yearly, aprs.Inception} {
		if apr >= 0 {
			samples = append(samples, apr)
		}
	}
	if len(samples) < 2 {
		return NeutralScore
	}

	var sum float64
	for _, s := range samples {
		sum += s
	}
	mean := sum / float64(len(samples))
	if mean == 0 {
		return NeutralScore
	}

	cv := populationStdDev(samples) / mean
	switch {
	case cv < 0.10:
		return 0.1
	case cv < 0.25:
		return 0.2
	case cv < 0.50:
		return 0.4
	case cv < 0.75:
		return 0.6
	case cv < 1.0:
		return 0.8
	default:
		return 1.0
	}
}

// CalculateYieldSustainabilityRisk scores how much of the vault's APR comes
// from native yield rather than airdrops and incentives, which can vanish.
// A zero total APR (or missing composition) yields the neutral score.
func CalculateYieldSustainabilityRisk(composition *types.YieldComposition) float64 {
	if composition == nil || composition.TotalAPR == 0 {
		return NeutralScore
	}
	ratio := composition.NativeYieldsAPR / composition.TotalAPR
	switch {
	case ratio >= 0.8:
		return 0.1
	case ratio >= 0.6:
		return 0.3
	case ratio >= 0.4:
		return 0.5
	case ratio >= 0.2:
		return 0.7
	default:
		return 0.9
	}
}

// CalculateSettlementRisk averages a time-based score over average settlement
// days with a score over the ratio of pending settlement operations.
func CalculateSettlementRisk(settlement *types.SettlementInfo) float64 {
	if settlement == nil {
		return NeutralScore
	}

	var timeScore float64
	switch {
	case settlement.AvgDays <= 1:
		timeScore = 0.1
	case settlement.AvgDays <= 3:
		timeScore = 0.3
	case settlement.AvgDays <= 7:
		timeScore = 0.5
	case settlement.AvgDays <= 14:
		timeScore = 0.7
	default:
		timeScore = 0.9
	}

	var pendingScore float64
	switch {
	case settlement.PendingRatio < 0.05:
		pendingScore = 0.1
	case settlement.PendingRatio < 0.10:
		pendingScore = 0.3
	case settlement.PendingRatio < 0.25:
		pendingScore = 0.5
	case settlement.PendingRatio < 0.50:
		pendingScore = 0.7
	default:
		pendingScore = 0.9
	}

	return (timeScore + pendingScore) / 2.0
}

// CalculateIntegrationRisk scores the number of protocol integrations. Zero
// integrations is simpler but limited (0.3); exactly one is the lowest risk,
// a focused single-integration strategy; beyond that, every extra integration
// widens the attack surface.
func CalculateIntegrationRisk(integrationCount *int) float64 {
	if integrationCount == nil {
		return NeutralScore
	}
	count := *integrationCount
	switch {
	case count <= 0:
		return 0.3
	case count == 1:
		return 0.1
	case count <= 3:
		return 0.3
	case count <= 5:
		return 0.5
	case count <= 8:
		return 0.7
	default:
		return 0.9
	}
}

// CalculateCapacityRisk scores utilization against the configured capacity.
// The curve is U-shaped: under-utilized vaults (<30%) signal weak demand and
// near-capacity vaults (>90%) can no longer absorb deposits; the 30-70% band
// is the healthy middle. Uncapped vaults score a flat 0.2.
func CalculateCapacityRisk(capacity *types.CapacityInfo) float64 {
	if capacity == nil || capacity.MaxCapacity <= 0 {
		return 0.2
	}
	utilization := capacity.TotalAssets / capacity.MaxCapacity
	switch {
	case utilization < 0.3:
		return 0.6
	case utilization <= 0.7:
		return 0.2
	case utilization <= 0.9:
		return 0.4
	default:
		return 0.8
	}
}

// CalculateDiversificationRisk scores the Herfindahl-Hirschman Index over the
// vault's protocol composition: sum of squared shares, each share expressed
// as a fraction of 100. Below 0.15 is well-diversified; above 0.5 is critical
// concentration.
func CalculateDiversificationRisk(composition *types.CompositionInfo) float64 {
	if composition == nil || len(composition.PerProtocol) == 0 {
		return NeutralScore
	}

	var hhi float64
	for _, share := range composition.PerProtocol {
		fraction := share.Percent / 100.0
		hhi += fraction * fraction
	}

	switch {
	case hhi < 0.15:
		return 0.1
	case hhi < 0.25:
		return 0.3
	case hhi < 0.35:
		return 0.5
	case hhi < 0.50:
		return 0.7
	default:
		return 0.9
	}
}

// CalculateTopProtocolRisk scores the single largest protocol's share of the
// vault's composition.
func CalculateTopProtocolRisk(composition *types.CompositionInfo) float64 {
	if composition == nil {
		return NeutralScore
	}
	switch {
	case composition.TopProtocolPercent <= 20:
		return 0.1
	case composition.TopProtocolPercent <= 35:
		return 0.3
	case composition.TopProtocolPercent <= 50:
		return 0.5
	case composition.TopProtocolPercent <= 70:
		return 0.7
	case composition.TopProtocolPercent <= 85:
		return 0.85
	default:
		return 1.0
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
