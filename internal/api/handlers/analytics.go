package handlers

import (
	"net/http"

	"github.com/rvallee/portfolio-analytics/internal/service"
	"github.com/rvallee/portfolio-analytics/internal/validation"
)

// AnalyticsHandler handles analytics-related HTTP requests. All analytics
// endpoints are POST: the external bookkeeping layer sends the current
// holdings in the body and receives computed series or metrics.
type AnalyticsHandler struct {
	performanceService *service.PerformanceService
	analyticsService   *service.AnalyticsService
	enrichmentService  *service.EnrichmentService
	benchmarkSymbol    string
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(
	performanceService *service.PerformanceService,
	analyticsService *service.AnalyticsService,
	enrichmentService *service.EnrichmentService,
	benchmarkSymbol string,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		performanceService: performanceService,
		analyticsService:   analyticsService,
		enrichmentService:  enrichmentService,
		benchmarkSymbol:    benchmarkSymbol,
	}
}

// Performance computes the portfolio performance series for a period, or
// a single position's series when the symbol query parameter is present.
func (h *AnalyticsHandler) Performance(w http.ResponseWriter, r *http.Request) {
	holdings, ok := decodeHoldings(w, r)
	if !ok {
		return
	}
	period, ok := decodePeriod(w, r)
	if !ok {
		return
	}

	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		respondJSON(w, http.StatusOK, h.performanceService.PortfolioPerformance(r.Context(), holdings, period))
		return
	}

	if err := validation.ValidateSymbol(symbol); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid symbol", err)
		return
	}
	for _, holding := range holdings {
		if holding.Symbol == symbol {
			respondJSON(w, http.StatusOK, h.performanceService.PositionPerformance(r.Context(), holding, period))
			return
		}
	}
	respondError(w, http.StatusNotFound, "Symbol not found in holdings", nil)
}

// Summary computes the portfolio metrics block: valuation aggregates,
// volatility, beta, and Sharpe ratio.
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	holdings, ok := decodeHoldings(w, r)
	if !ok {
		return
	}
	period, ok := decodePeriod(w, r)
	if !ok {
		return
	}

	positions := h.enrichmentService.Enrich(r.Context(), holdings, period)
	respondJSON(w, http.StatusOK, h.analyticsService.PortfolioSummary(r.Context(), positions, period))
}

// CompareIndex projects portfolio performance against a benchmark index.
// The index query parameter overrides the configured default benchmark.
func (h *AnalyticsHandler) CompareIndex(w http.ResponseWriter, r *http.Request) {
	holdings, ok := decodeHoldings(w, r)
	if !ok {
		return
	}
	period, ok := decodePeriod(w, r)
	if !ok {
		return
	}

	indexSymbol := r.URL.Query().Get("index")
	if indexSymbol == "" {
		indexSymbol = h.benchmarkSymbol
	} else if err := validation.ValidateSymbol(indexSymbol); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid index symbol", err)
		return
	}

	performance := h.performanceService.PortfolioPerformance(r.Context(), holdings, period)
	respondJSON(w, http.StatusOK, h.performanceService.CompareWithIndex(r.Context(), performance.Data, indexSymbol))
}

// Recommendations runs the heuristic checks over the enriched positions
// and portfolio metrics.
func (h *AnalyticsHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	holdings, ok := decodeHoldings(w, r)
	if !ok {
		return
	}
	period, ok := decodePeriod(w, r)
	if !ok {
		return
	}

	positions := h.enrichmentService.Enrich(r.Context(), holdings, period)
	metrics := h.analyticsService.PortfolioSummary(r.Context(), positions, period)
	respondJSON(w, http.StatusOK, h.analyticsService.Recommendations(positions, metrics))
}

// Correlation computes pairwise return correlations between the holdings'
// instruments. Fewer than two positions yields an empty list.
func (h *AnalyticsHandler) Correlation(w http.ResponseWriter, r *http.Request) {
	holdings, ok := decodeHoldings(w, r)
	if !ok {
		return
	}
	period, ok := decodePeriod(w, r)
	if !ok {
		return
	}

	symbols := make([]string, 0, len(holdings))
	seen := make(map[string]struct{}, len(holdings))
	for _, holding := range holdings {
		if _, dup := seen[holding.Symbol]; dup {
			continue
		}
		seen[holding.Symbol] = struct{}{}
		symbols = append(symbols, holding.Symbol)
	}
	if len(symbols) < 2 {
		respondJSON(w, http.StatusOK, []struct{}{})
		return
	}

	respondJSON(w, http.StatusOK, h.analyticsService.CorrelationMatrix(r.Context(), symbols, period))
}

// EnrichPositions decorates the submitted holdings with market data and
// per-position metrics.
func (h *AnalyticsHandler) EnrichPositions(w http.ResponseWriter, r *http.Request) {
	holdings, ok := decodeHoldings(w, r)
	if !ok {
		return
	}
	period, ok := decodePeriod(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, h.enrichmentService.Enrich(r.Context(), holdings, period))
}
