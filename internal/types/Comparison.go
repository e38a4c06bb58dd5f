/*

This file contains the types for side-by-side vault comparison: the comparison
input record, the normalized/ranked output, and the aggregate summary.

*/

package types

// FeeInfo holds the vault fee schedule in basis points.
type FeeInfo struct {
	ManagementFeeBps  float64 `json:"management_fee_bps"`
	PerformanceFeeBps float64 `json:"performance_fee_bps"`
}

// VaultComparisonInput is one vault in a comparison set.
// RiskScore/RiskLevel and Fees are optional; the scorer only blends risk into
// the composite when every vault in the set carries a risk score.
type VaultComparisonInput struct {
	Address     string     `json:"address"`
	Name        string     `json:"name"`
	Symbol      string     `json:"symbol"`
	ChainID     int        `json:"chain_id"`
	TVLUSD      float64    `json:"tvl_usd"`
	APRPct      float64    `json:"apr_pct"`
	TotalShares *float64   `json:"total_shares,omitempty"`
	TotalAssets *float64   `json:"total_assets,omitempty"`
	RiskScore   *float64   `json:"risk_score,omitempty"`
	RiskLevel   *RiskLevel `json:"risk_level,omitempty"`
	Fees        *FeeInfo   `json:"fees,omitempty"`
}

// NormalizedVault is a comparison input augmented with rank, percentile and
// delta statistics. Rank is 1-based with 1 being the best composite score.
type NormalizedVault struct {
	VaultComparisonInput

	Rank           int      `json:"rank"`
	TVLPercentile  float64  `json:"tvl_percentile"`
	APRPercentile  float64  `json:"apr_percentile"`
	RiskPercentile *float64 `json:"risk_percentile,omitempty"`
	TVLDelta       float64  `json:"tvl_delta"`
	APRDelta       float64  `json:"apr_delta"`
	RiskDelta      *float64 `json:"risk_delta,omitempty"`
	OverallScore   float64  `json:"overall_score"`
}

// VaultPointer identifies a vault inside a summary without copying the full
// record; Metric carries the value that earned the vault its slot.
type VaultPointer struct {
	Address string  `json:"address"`
	Name    string  `json:"name"`
	Metric  float64 `json:"metric"`
}

// ComparisonSummary aggregates a comparison set. Risk fields are only
// populated when every vault in the set carries a risk score.
type ComparisonSummary struct {
	TotalVaults    int           `json:"total_vaults"`
	AverageTVL     float64       `json:"average_tvl"`
	AverageAPR     float64       `json:"average_apr"`
	AverageRisk    *float64      `json:"average_risk,omitempty"`
	BestPerformer  VaultPointer  `json:"best_performer"`
	WorstPerformer VaultPointer  `json:"worst_performer"`
	HighestTVL     VaultPointer  `json:"highest_tvl"`
	LowestTVL      VaultPointer  `json:"lowest_tvl"`
	SafestVault    *VaultPointer `json:"safest_vault,omitempty"`
	RiskiestVault  *VaultPointer `json:"riskiest_vault,omitempty"`
}
