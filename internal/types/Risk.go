/*

This file contains the input snapshot and result types for vault risk scoring.

*/

package types

// RiskLevel is the categorical risk classification derived from the overall score.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "Low"
	RiskLevelMedium   RiskLevel = "Medium"
	RiskLevelHigh     RiskLevel = "High"
	RiskLevelCritical RiskLevel = "Critical"
)

// CuratorSignals captures professionalism markers of the vault curator.
type CuratorSignals struct {
	HasWebsite       bool `json:"has_website"`
	HasDescription   bool `json:"has_description"`
	MultipleCurators bool `json:"multiple_curators"`
	CuratorCount     int  `json:"curator_count"`
}

// APRByPeriod holds annualized return figures sampled over different windows.
// Negative values mean the period APR is unavailable and is skipped by consumers.
type APRByPeriod struct {
	Weekly    float64 `json:"weekly"`
	Monthly   float64 `json:"monthly"`
	Yearly    float64 `json:"yearly"`
	Inception float64 `json:"inception"`
}

// YieldComposition breaks the total APR down by yield source.
type YieldComposition struct {
	TotalAPR        float64 `json:"total_apr"`
	NativeYieldsAPR float64 `json:"native_yields_apr"`
	AirdropsAPR     float64 `json:"airdrops_apr"`
	IncentivesAPR   float64 `json:"incentives_apr"`
}

// SettlementInfo describes how the vault processes redemption requests.
type SettlementInfo struct {
	AvgDays      float64 `json:"avg_days"`
	PendingRatio float64 `json:"pending_ratio"`
}

// CapacityInfo describes vault size relative to its configured maximum.
// MaxCapacity of zero means the vault is uncapped.
type CapacityInfo struct {
	TotalAssets float64 `json:"total_assets"`
	MaxCapacity float64 `json:"max_capacity"`
}

// ProtocolShare is one entry of the vault's underlying protocol composition.
type ProtocolShare struct {
	Protocol string  `json:"protocol"`
	Percent  float64 `json:"percent"`
}

// CompositionInfo describes how the vault's assets are spread across protocols.
type CompositionInfo struct {
	PerProtocol        []ProtocolShare `json:"per_protocol"`
	TopProtocolPercent float64         `json:"top_protocol_percent"`
}

// PricePoint is a single price-per-share observation.
type PricePoint struct {
	TimestampSeconds int64   `json:"timestamp"`
	PricePerShare    float64 `json:"price_per_share"`
}

// RiskFactorInputs is the per-vault snapshot consumed by the risk scorer.
// All fields describe already-fetched, already-validated on-chain state.
// Optional sections are nil when the backing data is unavailable; every
// scoring function degrades to a documented neutral score in that case.
type RiskFactorInputs struct {
	TVLUSD              float64        `json:"tvl_usd"`
	TotalProtocolTVLUSD float64        `json:"total_protocol_tvl_usd"`
	PriceHistory        []PricePoint   `json:"price_history"`
	AgeInDays           int            `json:"age_in_days"`
	CuratorVaultCount   int            `json:"curator_vault_count"`
	CuratorSuccessRate  float64        `json:"curator_success_rate"`
	CuratorSignals      CuratorSignals `json:"curator_signals"`
	ManagementFeePct    float64        `json:"management_fee_pct"`
	PerformanceFeePct   float64        `json:"performance_fee_pct"`
	PerformanceFeeOn    bool           `json:"performance_fee_active"`
	SafeAssetsUSD       float64        `json:"safe_assets_usd"`
	PendingRedemptions  float64        `json:"pending_redemptions_usd"`

	APRByPeriod      *APRByPeriod      `json:"apr_by_period,omitempty"`
	YieldComposition *YieldComposition `json:"yield_composition,omitempty"`
	Settlement       *SettlementInfo   `json:"settlement,omitempty"`
	IntegrationCount *int              `json:"integration_count,omitempty"`
	Capacity         *CapacityInfo     `json:"capacity,omitempty"`
	Composition      *CompositionInfo  `json:"composition,omitempty"`
}

// RiskScoreBreakdown holds one score per factor plus the weighted aggregate.
// Every factor score and the overall score lie in [0,1], 0 being lowest risk.
type RiskScoreBreakdown struct {
	TVLRisk                 float64 `json:"tvl_risk"`
	ConcentrationRisk       float64 `json:"concentration_risk"`
	VolatilityRisk          float64 `json:"volatility_risk"`
	AgeRisk                 float64 `json:"age_risk"`
	CuratorRisk             float64 `json:"curator_risk"`
	FeeRisk                 float64 `json:"fee_risk"`
	LiquidityRisk           float64 `json:"liquidity_risk"`
	APRConsistencyRisk      float64 `json:"apr_consistency_risk"`
	YieldSustainabilityRisk float64 `json:"yield_sustainability_risk"`
	SettlementRisk          float64 `json:"settlement_risk"`
	IntegrationRisk         float64 `json:"integration_risk"`
	CapacityRisk            float64 `json:"capacity_risk"`
	DiversificationRisk     float64 `json:"diversification_risk"`
	TopProtocolRisk         float64 `json:"top_protocol_risk"`

	OverallRisk float64   `json:"overall_risk"`
	RiskLevel   RiskLevel `json:"risk_level"`
}
