/*

This file contains the vault-state queries: the full risk snapshot for one
vault, the APR/TVL history for forecasting, and the lightweight records used
for side-by-side comparison.

*/

package datafetcher

import (
	"context"
	"fmt"

	"github.com/lagoon-network/vae/internal/types"
)

const vaultStateQuery = `
query VaultState($address: String!) {
  vault(address: $address) {
    address
    tvlUsd
    protocolTvlUsd
    ageInDays
    managementFeePct
    performanceFeePct
    performanceFeeActive
    safeAssetsUsd
    pendingRedemptionsUsd
    integrationCount
    priceHistory { timestamp pricePerShare }
    curator { vaultCount successRate hasWebsite hasDescription curatorCount }
    aprByPeriod { weekly monthly yearly inception }
    yieldComposition { totalApr nativeYieldsApr airdropsApr incentivesApr }
    settlement { avgDays pendingRatio }
    capacity { totalAssets maxCapacity }
    composition { topProtocolPercent perProtocol { protocol percent } }
  }
}`

// vaultStatePayload mirrors the indexer's vault shape. Optional sections are
// pointers so absence survives the translation into engine records.
type vaultStatePayload struct {
	Vault *struct {
		Address               string  `json:"address"`
		TVLUSD                float64 `json:"tvlUsd"`
		ProtocolTVLUSD        float64 `json:"protocolTvlUsd"`
		AgeInDays             int     `json:"ageInDays"`
		ManagementFeePct      float64 `json:"managementFeePct"`
		PerformanceFeePct     float64 `json:"performanceFeePct"`
		PerformanceFeeActive  bool    `json:"performanceFeeActive"`
		SafeAssetsUSD         float64 `json:"safeAssetsUsd"`
		PendingRedemptionsUSD float64 `json:"pendingRedemptionsUsd"`
		IntegrationCount      *int    `json:"integrationCount"`
		PriceHistory          []struct {
			Timestamp     int64   `json:"timestamp"`
			PricePerShare float64 `json:"pricePerShare"`
		} `json:"priceHistory"`
		Curator *struct {
			VaultCount     int     `json:"vaultCount"`
			SuccessRate    float64 `json:"successRate"`
			HasWebsite     bool    `json:"hasWebsite"`
			HasDescription bool    `json:"hasDescription"`
			CuratorCount   int     `json:"curatorCount"`
		} `json:"curator"`
		APRByPeriod *struct {
			Weekly    float64 `json:"weekly"`
			Monthly   float64 `json:"monthly"`
			Yearly    float64 `json:"yearly"`
			Inception float64 `json:"inception"`
		} `json:"aprByPeriod"`
		YieldComposition *struct {
			TotalAPR        float64 `json:"totalApr"`
			NativeYieldsAPR float64 `json:"nativeYieldsApr"`
			AirdropsAPR     float64 `json:"airdropsApr"`
			IncentivesAPR   float64 `json:"incentivesApr"`
		} `json:"yieldComposition"`
		Settlement *struct {
			AvgDays      float64 `json:"avgDays"`
			PendingRatio float64 `json:"pendingRatio"`
		} `json:"settlement"`
		Capacity *struct {
			TotalAssets float64 `json:"totalAssets"`
			MaxCapacity float64 `json:"maxCapacity"`
		} `json:"capacity"`
		Composition *struct {
			TopProtocolPercent float64 `json:"topProtocolPercent"`
			PerProtocol        []struct {
				Protocol string  `json:"protocol"`
				Percent  float64 `json:"percent"`
			} `json:"perProtocol"`
		} `json:"composition"`
	} `json:"vault"`
}

// GetVaultRiskInputs fetches and parses the full risk snapshot for a vault.
func (c *Client) GetVaultRiskInputs(ctx context.Context, address string) (types.RiskFactorInputs, error) {
	var payload vaultStatePayload
	if err := c.query(ctx, vaultStateQuery, map[string]any{"address": address}, &payload); err != nil {
		return types.RiskFactorInputs{}, fmt.Errorf("failed to fetch vault state for %s: %w", address, err)
	}
	if payload.Vault == nil {
		return types.RiskFactorInputs{}, ErrVaultNotFound
	}

	v := payload.Vault
	inputs := types.RiskFactorInputs{
		TVLUSD:              v.TVLUSD,
		TotalProtocolTVLUSD: v.ProtocolTVLUSD,
		AgeInDays:           v.AgeInDays,
		ManagementFeePct:    v.ManagementFeePct,
		PerformanceFeePct:   v.PerformanceFeePct,
		PerformanceFeeOn:    v.PerformanceFeeActive,
		SafeAssetsUSD:       v.SafeAssetsUSD,
		PendingRedemptions:  v.PendingRedemptionsUSD,
		IntegrationCount:    v.IntegrationCount,
	}

	if v.APRByPeriod != nil {
		inputs.APRByPeriod = &types.APRByPeriod{
			Weekly:    v.APRByPeriod.Weekly,
			Monthly:   v.APRByPeriod.Monthly,
			Yearly:    v.APRByPeriod.Yearly,
			Inception: v.APRByPeriod.Inception,
		}
	}
	if v.YieldComposition != nil {
		inputs.YieldComposition = &types.YieldComposition{
			TotalAPR:        v.YieldComposition.TotalAPR,
			NativeYieldsAPR: v.YieldComposition.NativeYieldsAPR,
			AirdropsAPR:     v.YieldComposition.AirdropsAPR,
			IncentivesAPR:   v.YieldComposition.IncentivesAPR,
		}
	}
	if v.Settlement != nil {
		inputs.Settlement = &types.SettlementInfo{
			AvgDays:      v.Settlement.AvgDays,
			PendingRatio: v.Settlement.PendingRatio,
		}
	}
	if v.Capacity != nil {
		inputs.Capacity = &types.CapacityInfo{
			TotalAssets: v.Capacity.TotalAssets,
			MaxCapacity: v.Capacity.MaxCapacity,
		}
	}

	inputs.PriceHistory = make([]types.PricePoint, 0, len(v.PriceHistory))
	for _, p := range v.PriceHistory {
		inputs.PriceHistory = append(inputs.PriceHistory, types.PricePoint{
			TimestampSeconds: p.Timestamp,
			PricePerShare:    p.PricePerShare,
		})
	}

	if v.Curator != nil {
		inputs.CuratorVaultCount = v.Curator.VaultCount
		inputs.CuratorSuccessRate = v.Curator.SuccessRate
		inputs.CuratorSignals = types.CuratorSignals{
			HasWebsite:       v.Curator.HasWebsite,
			HasDescription:   v.Curator.HasDescription,
			MultipleCurators: v.Curator.CuratorCount > 1,
			CuratorCount:     v.Curator.CuratorCount,
		}
	}

	if v.Composition != nil {
		composition := &types.CompositionInfo{
			TopProtocolPercent: v.Composition.TopProtocolPercent,
		}
		for _, share := range v.Composition.PerProtocol {
			composition.PerProtocol = append(composition.PerProtocol, types.ProtocolShare{
				Protocol: share.Protocol,
				Percent:  share.Percent,
			})
		}
		inputs.Composition = composition
	}

	fetchLogger.Debug().
		Str("address", address).
		Float64("tvlUSD", inputs.TVLUSD).
		Int("priceHistorySamples", len(inputs.PriceHistory)).
		Msg("Vault risk snapshot fetched")

	return inputs, nil
}

const priceHistoryQuery = `
query VaultHistory($address: String!, $days: Int!) {
  vaultHistory(address: $address, days: $days) {
    points { timestamp aprPct tvlUsd }
  }
}`

// GetYieldHistory fetches the APR/TVL time series used for forecasting.
func (c *Client) GetYieldHistory(ctx context.Context, address string, days int) ([]types.YieldDataPoint, error) {
	var payload struct {
		VaultHistory *struct {
			Points []struct {
				Timestamp int64   `json:"timestamp"`
				APRPct    float64 `json:"aprPct"`
				TVLUSD    float64 `json:"tvlUsd"`
			} `json:"points"`
		} `json:"vaultHistory"`
	}
	if err := c.query(ctx, priceHistoryQuery, map[string]any{"address": address, "days": days}, &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch yield history for %s: %w", address, err)
	}
	if payload.VaultHistory == nil {
		return nil, ErrVaultNotFound
	}

	points := make([]types.YieldDataPoint, 0, len(payload.VaultHistory.Points))
	for _, p := range payload.VaultHistory.Points {
		points = append(points, types.YieldDataPoint{
			TimestampSeconds: p.Timestamp,
			APRPct:           p.APRPct,
			TVLUSD:           p.TVLUSD,
		})
	}

	fetchLogger.Debug().
		Str("address", address).
		Int("days", days).
		Int("samples", len(points)).
		Msg("Yield history fetched")

	return points, nil
}

const comparisonQuery = `
query VaultsForComparison($addresses: [String!]!) {
  vaults(addresses: $addresses) {
    address
    name
    symbol
    chainId
    tvlUsd
    aprPct
    totalShares
    totalAssets
    riskScore
    riskLevel
    fees { managementFeeBps performanceFeeBps }
  }
}`

// GetVaultsForComparison fetches the lightweight comparison records for a set
// of vault addresses. The returned order follows the indexer's response.
func (c *Client) GetVaultsForComparison(ctx context.Context, addresses []string) ([]types.VaultComparisonInput, error) {
	var payload struct {
		Vaults []struct {
			Address     string           `json:"address"`
			Name        string           `json:"name"`
			Symbol      string           `json:"symbol"`
			ChainID     int              `json:"chainId"`
			TVLUSD      float64          `json:"tvlUsd"`
			APRPct      float64          `json:"aprPct"`
			TotalShares *float64         `json:"totalShares"`
			TotalAssets *float64         `json:"totalAssets"`
			RiskScore   *float64         `json:"riskScore"`
			RiskLevel   *types.RiskLevel `json:"riskLevel"`
			Fees        *struct {
				ManagementFeeBps  float64 `json:"managementFeeBps"`
				PerformanceFeeBps float64 `json:"performanceFeeBps"`
			} `json:"fees"`
		} `json:"vaults"`
	}
	if err := c.query(ctx, comparisonQuery, map[string]any{"addresses": addresses}, &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch vaults for comparison: %w", err)
	}
	if len(payload.Vaults) == 0 {
		return nil, ErrVaultNotFound
	}

	vaults := make([]types.VaultComparisonInput, 0, len(payload.Vaults))
	for _, v := range payload.Vaults {
		var fees *types.FeeInfo
		if v.Fees != nil {
			fees = &types.FeeInfo{
				ManagementFeeBps:  v.Fees.ManagementFeeBps,
				PerformanceFeeBps: v.Fees.PerformanceFeeBps,
			}
		}
		vaults = append(vaults, types.VaultComparisonInput{
			Address:     v.Address,
			Name:        v.Name,
			Symbol:      v.Symbol,
			ChainID:     v.ChainID,
			TVLUSD:      v.TVLUSD,
			APRPct:      v.APRPct,
			TotalShares: v.TotalShares,
			TotalAssets: v.TotalAssets,
			RiskScore:   v.RiskScore,
			RiskLevel:   v.RiskLevel,
			Fees:        fees,
		})
	}

	return vaults, nil
}
