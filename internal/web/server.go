package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/lagoon-network/vae/internal/datafetcher"
	"github.com/lagoon-network/vae/internal/engine"
	"github.com/lagoon-network/vae/internal/logger"
	"github.com/lagoon-network/vae/internal/state"
	"github.com/lagoon-network/vae/internal/types"
)

var webLogger = logger.GetForComponent("web_server")

// Comparison sets are bounded: a single vault has nothing to rank against and
// oversized sets blow up the indexer query.
const (
	minComparisonVaults = 2
	maxComparisonVaults = 10
)

// WebServer exposes the analytics engine over HTTP
type WebServer struct {
	router *mux.Router
	engine *engine.Engine
	port   string
}

// NewWebServer creates a new web server instance
func NewWebServer(port string, eng *engine.Engine) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router: mux.NewRouter(),
		engine: eng,
		port:   port,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	// Health endpoint (direct route)
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	// API endpoints
	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/risk", ws.handleRisk).Methods("POST")
	api.HandleFunc("/optimize", ws.handleOptimize).Methods("POST")
	api.HandleFunc("/forecast", ws.handleForecast).Methods("POST")
	api.HandleFunc("/compare", ws.handleCompare).Methods("POST")
	api.HandleFunc("/analyses", ws.handleGetAnalyses).Methods("GET")
	api.HandleFunc("/analyses/latest", ws.handleGetLatestAnalysis).Methods("GET")

	// Add CORS middleware
	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Start starts the web server
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// handleHealth returns server health status
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	dbHealthy := true
	if err := state.TestDBConnection(); err != nil {
		dbHealthy = false
	}

	overallStatus := "OK"
	statusCode := http.StatusOK
	if !dbHealthy {
		overallStatus = "DEGRADED"
		statusCode = http.StatusServiceUnavailable
	}

	response := map[string]interface{}{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"system": map[string]interface{}{
			"version":          runtime.Version(),
			"goroutines_count": runtime.NumGoroutine(),
			"alloc_bytes":      memStats.Alloc,
			"sys_bytes":        memStats.Sys,
			"gc_cycles":        memStats.NumGC,
		},
		"component": map[string]interface{}{
			"name":    "vae-vault-analytics-engine",
			"version": "1.0.0",
		},
		"database_healthy": dbHealthy,
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// handleRisk runs the risk breakdown for a single vault
func (ws *WebServer) handleRisk(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Address == "" {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Vault address is required")
		return
	}

	breakdown, err := ws.engine.AnalyzeVaultRisk(r.Context(), req.Address)
	if err != nil {
		if errors.Is(err, datafetcher.ErrVaultNotFound) {
			ws.writeErrorResponse(w, http.StatusNotFound, "Vault not found")
			return
		}
		webLogger.Error().Err(err).Str("address", req.Address).Msg("Risk analysis failed")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Risk analysis failed")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, breakdown)
}

// handleOptimize runs one allocation strategy over the submitted portfolio
func (ws *WebServer) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Vaults                []types.VaultForOptimization `json:"vaults"`
		Strategy              types.Strategy               `json:"strategy"`
		RebalanceThresholdPct float64                      `json:"rebalance_threshold_pct"`
		RiskFreeRatePct       float64                      `json:"risk_free_rate_pct"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.Strategy.Valid() {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Unknown strategy: "+string(req.Strategy))
		return
	}
	for _, v := range req.Vaults {
		if v.CurrentValueUSD < 0 {
			ws.writeErrorResponse(w, http.StatusBadRequest, "Vault values must be non-negative")
			return
		}
	}

	result, err := ws.engine.OptimizePortfolio(req.Vaults, req.Strategy, req.RebalanceThresholdPct, req.RiskFreeRatePct)
	if err != nil {
		webLogger.Error().Err(err).Str("strategy", string(req.Strategy)).Msg("Portfolio optimization failed")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Portfolio optimization failed")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, result)
}

// handleForecast runs the yield forecaster for a single vault
func (ws *WebServer) handleForecast(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address     string               `json:"address"`
		HistoryDays int                  `json:"history_days"`
		Fees        *types.FeeParameters `json:"fees,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Address == "" {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Vault address is required")
		return
	}

	prediction, err := ws.engine.ForecastYield(r.Context(), req.Address, req.HistoryDays, req.Fees)
	if err != nil {
		if errors.Is(err, datafetcher.ErrVaultNotFound) {
			ws.writeErrorResponse(w, http.StatusNotFound, "Vault not found")
			return
		}
		webLogger.Error().Err(err).Str("address", req.Address).Msg("Yield forecast failed")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Yield forecast failed")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, prediction)
}

// handleCompare runs the side-by-side comparison for a set of vaults
func (ws *WebServer) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Addresses []string `json:"addresses"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Addresses) < minComparisonVaults || len(req.Addresses) > maxComparisonVaults {
		ws.writeErrorResponse(w, http.StatusBadRequest,
			"Comparison requires between "+strconv.Itoa(minComparisonVaults)+" and "+strconv.Itoa(maxComparisonVaults)+" vault addresses")
		return
	}

	result, err := ws.engine.CompareVaults(r.Context(), req.Addresses)
	if err != nil {
		if errors.Is(err, datafetcher.ErrVaultNotFound) {
			ws.writeErrorResponse(w, http.StatusNotFound, "One or more vaults not found")
			return
		}
		webLogger.Error().Err(err).Msg("Vault comparison failed")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Vault comparison failed")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, result)
}

// handleGetAnalyses returns recent persisted analysis snapshots
func (ws *WebServer) handleGetAnalyses(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 100 {
			limit = parsedLimit
		}
	}
	kind := r.URL.Query().Get("kind")

	analyses, err := state.GetRecentAnalyses(kind, limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get recent analyses")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve analyses")
		return
	}

	response := map[string]interface{}{
		"analyses": analyses,
		"count":    len(analyses),
		"limit":    limit,
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetLatestAnalysis returns the newest persisted snapshot of one kind
// for one subject
func (ws *WebServer) handleGetLatestAnalysis(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	subject := r.URL.Query().Get("subject")
	if kind == "" || subject == "" {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Both kind and subject query parameters are required")
		return
	}

	record, err := state.GetLatestAnalysisForSubject(kind, subject)
	if err != nil {
		webLogger.Error().Err(err).Str("kind", kind).Str("subject", subject).Msg("Failed to get latest analysis")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve latest analysis")
		return
	}
	if record == nil {
		ws.writeErrorResponse(w, http.StatusNotFound, "No analysis found for the given kind and subject")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, record)
}

// writeJSONResponse writes a JSON response
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// corsMiddleware adds CORS headers
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests with a per-request ID
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.New().String()

		// Create a response writer wrapper to capture status code
		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		wrapper.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)

		webLogger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", wrapper.statusCode).
			Dur("duration", duration).
			Msg("HTTP request")
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
