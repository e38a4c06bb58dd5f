/*

This file contains the types for portfolio optimization: the per-vault input
record, allocation strategies, per-position output, and the full optimization
result with metrics and recommendations.

*/

package types

// Strategy selects the allocation model used by the optimizer. The set is
// closed; the optimizer dispatches exhaustively over these values.
type Strategy string

const (
	StrategyEqualWeight Strategy = "equal_weight"
	StrategyRiskParity  Strategy = "risk_parity"
	StrategyMaxSharpe   Strategy = "max_sharpe"
	StrategyMinVariance Strategy = "min_variance"
)

// Valid reports whether s is one of the known allocation strategies.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyEqualWeight, StrategyRiskParity, StrategyMaxSharpe, StrategyMinVariance:
		return true
	}
	return false
}

// VaultForOptimization is the per-vault snapshot consumed by the optimizer.
type VaultForOptimization struct {
	Address         string  `json:"address"`
	Name            string  `json:"name"`
	ChainID         int     `json:"chain_id"`
	CurrentValueUSD float64 `json:"current_value_usd"`
	ExpectedAPRPct  float64 `json:"expected_apr_pct"`
	Volatility      float64 `json:"volatility"`
	RiskScore       float64 `json:"risk_score"`
}

// PortfolioPosition is the per-vault allocation result.
// RebalanceAmountUSD is signed: positive means buy into the vault.
type PortfolioPosition struct {
	Address              string  `json:"address"`
	Name                 string  `json:"name"`
	CurrentAllocationPct float64 `json:"current_allocation_pct"`
	TargetAllocationPct  float64 `json:"target_allocation_pct"`
	CurrentValueUSD      float64 `json:"current_value_usd"`
	TargetValueUSD       float64 `json:"target_value_usd"`
	RebalanceAmountUSD   float64 `json:"rebalance_amount_usd"`
	RebalancePct         float64 `json:"rebalance_pct"`
}

// PortfolioMetrics aggregates the target portfolio's headline figures.
// PortfolioRisk is a weighted sum of per-vault volatilities; cross-vault
// correlation is deliberately not modeled.
type PortfolioMetrics struct {
	ExpectedReturn       float64 `json:"expected_return"`
	PortfolioRisk        float64 `json:"portfolio_risk"`
	SharpeRatio          float64 `json:"sharpe_ratio"`
	DiversificationScore float64 `json:"diversification_score"`
}

// PortfolioOptimization is the complete optimizer output.
type PortfolioOptimization struct {
	Strategy           Strategy            `json:"strategy"`
	TotalValueUSD      float64             `json:"total_value_usd"`
	Positions          []PortfolioPosition `json:"positions"`
	Metrics            PortfolioMetrics    `json:"metrics"`
	RebalanceNeeded    bool                `json:"rebalance_needed"`
	RebalanceThreshold float64             `json:"rebalance_threshold"`
	Recommendations    []string            `json:"recommendations"`
}
