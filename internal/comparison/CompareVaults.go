/*

This file contains the vault comparison module: normalization and ranking of
a small vault set on weighted composite scores, and the aggregate summary with
best/worst pointers.

*/

package comparison

import (
	"sort"

	"github.com/lagoon-network/vae/internal/logger"
	"github.com/lagoon-network/vae/internal/types"
)

var comparisonLogger = logger.GetForComponent("vault_comparison")

// Composite score weights. The risk-aware weighting only applies when every
// vault in the set carries a risk score; otherwise the score falls back to
// APR and TVL alone.
const (
	aprWeightWithRisk = 0.4
	tvlWeightWithRisk = 0.3
	riskWeight        = 0.3

	aprWeightNoRisk = 0.6
	tvlWeightNoRisk = 0.4
)

// NormalizeAndRankVaults computes percentile, delta, and composite score
// statistics for each vault and assigns 1-based ranks by descending overall
// score. Ties keep their input order.
func NormalizeAndRankVaults(vaults []types.VaultComparisonInput) []types.NormalizedVault {
	if len(vaults) == 0 {
		return []types.NormalizedVault{}
	}

	tvls := make([]float64, len(vaults))
	aprs := make([]float64, len(vaults))
	for i, v := range vaults {
		tvls[i] = v.TVLUSD
		aprs[i] = v.APRPct
	}
	avgTVL := average(tvls)
	avgAPR := average(aprs)

	haveRisk := allHaveRiskScores(vaults)
	var risks []float64
	var avgRisk float64
	if haveRisk {
		risks = make([]float64, len(vaults))
		for i, v := range vaults {
			risks[i] = *v.RiskScore
		}
		avgRisk = average(risks)
	}

	normalized := make([]types.NormalizedVault, len(vaults))
	for i, v := range vaults {
		entry := types.NormalizedVault{
			VaultComparisonInput: v,
			TVLPercentile:        Percentile(v.TVLUSD, tvls),
			APRPercentile:        Percentile(v.APRPct, aprs),
			TVLDelta:             DeltaFromAverage(v.TVLUSD, avgTVL),
			APRDelta:             DeltaFromAverage(v.APRPct, avgAPR),
		}

		if haveRisk {
			// Lower risk earns a higher percentile, so the raw rank position
			// is inverted before it enters the composite score.
			inverted := round2(100.0 - Percentile(*v.RiskScore, risks))
			riskDelta := DeltaFromAverage(*v.RiskScore, avgRisk)
			entry.RiskPercentile = &inverted
			entry.RiskDelta = &riskDelta
			entry.OverallScore = round2(aprWeightWithRisk*entry.APRPercentile +
				tvlWeightWithRisk*entry.TVLPercentile +
				riskWeight*inverted)
		} else {
			entry.OverallScore = round2(aprWeightNoRisk*entry.APRPercentile +
				tvlWeightNoRisk*entry.TVLPercentile)
		}

		normalized[i] = entry
	}

	sort.SliceStable(normalized, func(i, j int) bool {
		return normalized[i].OverallScore > normalized[j].OverallScore
	})
	for i := range normalized {
		normalized[i].Rank = i + 1
	}

	comparisonLogger.Debug().
		Int("vaultCount", len(vaults)).
		Bool("riskWeighted", haveRisk).
		Str("topVault", normalized[0].Address).
		Msg("Vaults normalized and ranked")

	return normalized
}

// GenerateComparisonSummary aggregates the vault set: averages plus pointers
// to the best/worst performer by APR, the highest/lowest TVL, and, when every
// vault carries risk data, the safest/riskiest vault. Pointers carry only the
// identifying fields, never the full vault record.
func GenerateComparisonSummary(vaults []types.VaultComparisonInput) types.ComparisonSummary {
	if len(vaults) == 0 {
		return types.ComparisonSummary{}
	}

	summary := types.ComparisonSummary{TotalVaults: len(vaults)}

	bestAPR, worstAPR := 0, 0
	highestTVL, lowestTVL := 0, 0
	var totalTVL, totalAPR float64
	for i, v := range vaults {
		totalTVL += v.TVLUSD
		totalAPR += v.APRPct
		if v.APRPct > vaults[bestAPR].APRPct {
			bestAPR = i
		}
		if v.APRPct < vaults[worstAPR].APRPct {
			worstAPR = i
		}
		if v.TVLUSD > vaults[highestTVL].TVLUSD {
			highestTVL = i
		}
		if v.TVLUSD < vaults[lowestTVL].TVLUSD {
			lowestTVL = i
		}
	}

	summary.AverageTVL = totalTVL / float64(len(vaults))
	summary.AverageAPR = totalAPR / float64(len(vaults))
	summary.BestPerformer = pointerFor(vaults[bestAPR], vaults[bestAPR].APRPct)
	summary.WorstPerformer = pointerFor(vaults[worstAPR], vaults[worstAPR].APRPct)
	summary.HighestTVL = pointerFor(vaults[highestTVL], vaults[highestTVL].TVLUSD)
	summary.LowestTVL = pointerFor(vaults[lowestTVL], vaults[lowestTVL].TVLUSD)

	if allHaveRiskScores(vaults) {
		safest, riskiest := 0, 0
		var totalRisk float64
		for i, v := range vaults {
			totalRisk += *v.RiskScore
			if *v.RiskScore < *vaults[safest].RiskScore {
				safest = i
			}
			if *v.RiskScore > *vaults[riskiest].RiskScore {
				riskiest = i
			}
		}
		avgRisk := totalRisk / float64(len(vaults))
		safestPtr := pointerFor(vaults[safest], *vaults[safest].RiskScore)
		riskiestPtr := pointerFor(vaults[riskiest], *vaults[riskiest].RiskScore)
		summary.AverageRisk = &avgRisk
		summary.SafestVault = &safestPtr
		summary.RiskiestVault = &riskiestPtr
	}

	return summary
}

func allHaveRiskScores(vaults []types.VaultComparisonInput) bool {
	for _, v := range vaults {
		if v.RiskScore == nil {
			return false
		}
	}
	return len(vaults) > 0
}

func pointerFor(v types.VaultComparisonInput, metric float64) types.VaultPointer {
	return types.VaultPointer{Address: v.Address, Name: v.Name, Metric: metric}
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
