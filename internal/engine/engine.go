/*

This file contains the analytics engine: the orchestrator that ties the
indexer client, the result cache, the persistence layer and the four analysis
modules together. Each entrypoint fetches the data it needs, runs the pure
analysis, caches the result and persists a snapshot.

*/

package engine

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lagoon-network/vae/internal/cache"
	"github.com/lagoon-network/vae/internal/comparison"
	"github.com/lagoon-network/vae/internal/datafetcher"
	"github.com/lagoon-network/vae/internal/forecast"
	"github.com/lagoon-network/vae/internal/logger"
	"github.com/lagoon-network/vae/internal/optimizer"
	"github.com/lagoon-network/vae/internal/risk"
	"github.com/lagoon-network/vae/internal/state"
	"github.com/lagoon-network/vae/internal/types"
)

// DefaultHistoryDays is the yield-history window fetched when the caller does
// not specify one.
const DefaultHistoryDays = 90

// Engine is the analytics engine with all its dependencies.
type Engine struct {
	logger  zerolog.Logger
	fetcher *datafetcher.Client
	cache   *cache.Cache
	persist bool
}

// Config holds the configuration for creating a new Engine instance.
type Config struct {
	Fetcher *datafetcher.Client
	Cache   *cache.Cache
	// Persist controls whether analysis snapshots are written to the database.
	Persist bool
}

// NewEngine creates a new analytics engine with dependency injection.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("data fetcher cannot be nil")
	}
	if cfg.Cache == nil {
		return nil, fmt.Errorf("cache cannot be nil")
	}

	return &Engine{
		logger:  logger.GetForComponent("engine"),
		fetcher: cfg.Fetcher,
		cache:   cfg.Cache,
		persist: cfg.Persist,
	}, nil
}

// ComparisonResult bundles the ranked vaults with the aggregate summary.
type ComparisonResult struct {
	Vaults  []types.NormalizedVault `json:"vaults"`
	Summary types.ComparisonSummary `json:"summary"`
}

// AnalyzeVaultRisk fetches the vault's current state and produces the full
// risk breakdown. Results are cached per vault address.
func (e *Engine) AnalyzeVaultRisk(ctx context.Context, address string) (types.RiskScoreBreakdown, error) {
	address = strings.ToLower(address)
	cacheKey := "risk:" + address

	if cached, ok := e.cache.Get(cacheKey); ok {
		if breakdown, ok := cached.(types.RiskScoreBreakdown); ok {
			return breakdown, nil
		}
	}

	inputs, err := e.fetcher.GetVaultRiskInputs(ctx, address)
	if err != nil {
		return types.RiskScoreBreakdown{}, fmt.Errorf("failed to fetch risk inputs: %w", err)
	}

	breakdown := risk.AnalyzeRisk(inputs)
	e.cache.Set(cacheKey, breakdown, address)
	e.saveSnapshot(state.AnalysisKindRisk, address, breakdown)

	return breakdown, nil
}

// ForecastYield fetches the vault's yield history and produces a prediction.
// historyDays bounds the fetched window; non-positive values use the default.
func (e *Engine) ForecastYield(ctx context.Context, address string, historyDays int, fees *types.FeeParameters) (types.YieldPrediction, error) {
	address = strings.ToLower(address)
	if historyDays <= 0 {
		historyDays = DefaultHistoryDays
	}
	cacheKey := forecastCacheKey(address, historyDays, fees)

	if cached, ok := e.cache.Get(cacheKey); ok {
		if prediction, ok := cached.(types.YieldPrediction); ok {
			return prediction, nil
		}
	}

	history, err := e.fetcher.GetYieldHistory(ctx, address, historyDays)
	if err != nil {
		return types.YieldPrediction{}, fmt.Errorf("failed to fetch yield history: %w", err)
	}

	prediction := forecast.PredictYield(history, fees)
	e.cache.Set(cacheKey, prediction, address)
	e.saveSnapshot(state.AnalysisKindForecast, address, prediction)

	return prediction, nil
}

// OptimizePortfolio runs one allocation strategy over the given vaults. The
// vaults arrive fully described from the caller, so no fetching is involved.
func (e *Engine) OptimizePortfolio(vaults []types.VaultForOptimization, strategy types.Strategy, rebalanceThresholdPct, riskFreeRatePct float64) (types.PortfolioOptimization, error) {
	if !strategy.Valid() {
		return types.PortfolioOptimization{}, fmt.Errorf("unknown strategy: %s", strategy)
	}

	result := optimizer.OptimizePortfolio(vaults, strategy, rebalanceThresholdPct, riskFreeRatePct)
	e.saveSnapshot(state.AnalysisKindOptimization, portfolioSubject(vaults), result)

	return result, nil
}

// CompareVaults fetches the comparison records for the given addresses and
// produces the ranked set plus its summary.
func (e *Engine) CompareVaults(ctx context.Context, addresses []string) (ComparisonResult, error) {
	normalized := make([]string, len(addresses))
	for i, addr := range addresses {
		normalized[i] = strings.ToLower(addr)
	}
	cacheKey := "compare:" + strings.Join(normalized, ",")

	if cached, ok := e.cache.Get(cacheKey); ok {
		if result, ok := cached.(ComparisonResult); ok {
			return result, nil
		}
	}

	vaults, err := e.fetcher.GetVaultsForComparison(ctx, normalized)
	if err != nil {
		return ComparisonResult{}, fmt.Errorf("failed to fetch vaults for comparison: %w", err)
	}

	result := ComparisonResult{
		Vaults:  comparison.NormalizeAndRankVaults(vaults),
		Summary: comparison.GenerateComparisonSummary(vaults),
	}
	e.cache.Set(cacheKey, result, normalized...)
	e.saveSnapshot(state.AnalysisKindComparison, strings.Join(normalized, ","), result)

	return result, nil
}

// InvalidateVault drops every cached result touching the given vault.
func (e *Engine) InvalidateVault(address string) {
	e.cache.InvalidateTag(strings.ToLower(address))
}

// saveSnapshot persists an analysis result. Persistence failures are logged
// and swallowed; the analysis result is still returned to the caller.
func (e *Engine) saveSnapshot(kind string, subject string, result any) {
	if !e.persist {
		return
	}

	start := time.Now()
	snapshotID, err := state.SaveAnalysis(kind, subject, result)
	if err != nil {
		e.logger.Warn().Err(err).Str("kind", kind).Str("subject", subject).Msg("Failed to persist analysis snapshot")
		return
	}

	e.logger.Debug().
		Int64("snapshotID", snapshotID).
		Str("kind", kind).
		Dur("duration", time.Since(start)).
		Msg("Analysis snapshot persisted")
}

// forecastCacheKey encodes the full request shape, fee schedule included, so
// two forecasts for the same vault with different fees never share an entry.
func forecastCacheKey(address string, historyDays int, fees *types.FeeParameters) string {
	if fees == nil {
		return fmt.Sprintf("forecast:%s:%d:nofees", address, historyDays)
	}

	margin := "none"
	if fees.ObservedProfitMarginPct != nil {
		margin = strconv.FormatFloat(*fees.ObservedProfitMarginPct, 'g', -1, 64)
	}
	return fmt.Sprintf("forecast:%s:%d:%g:%g:%t:%s",
		address, historyDays, fees.ManagementFeePct, fees.PerformanceFeePct, fees.PerformanceFeeActive, margin)
}

// portfolioSubject builds a stable label for an optimization run.
func portfolioSubject(vaults []types.VaultForOptimization) string {
	addresses := make([]string, len(vaults))
	for i, v := range vaults {
		addresses[i] = strings.ToLower(v.Address)
	}
	sort.Strings(addresses)
	return strings.Join(addresses, ",")
}
