package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rvallee/portfolio-analytics/internal/marketdata"
	"github.com/rvallee/portfolio-analytics/internal/validation"
)

// MarketHandler handles direct market data lookups
type MarketHandler struct {
	source marketdata.Source
}

// NewMarketHandler creates a new MarketHandler
func NewMarketHandler(source marketdata.Source) *MarketHandler {
	return &MarketHandler{
		source: source,
	}
}

// QuoteResponse is the current price of one instrument
type QuoteResponse struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// Quote returns the most recent available price for a symbol
func (h *MarketHandler) Quote(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if err := validation.ValidateSymbol(symbol); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid symbol", err)
		return
	}

	price, ok := h.source.CurrentPrice(r.Context(), symbol)
	if !ok {
		respondError(w, http.StatusNotFound, "No quote available", nil)
		return
	}
	respondJSON(w, http.StatusOK, QuoteResponse{Symbol: symbol, Price: price})
}

// ExchangeRateResponse is the conversion rate between two currencies
type ExchangeRateResponse struct {
	From string  `json:"from"`
	To   string  `json:"to"`
	Rate float64 `json:"rate"`
}

// ExchangeRate returns the rate converting one currency into another.
// The lookup never fails; an unavailable upstream yields the 1.0
// fallback rate.
func (h *MarketHandler) ExchangeRate(w http.ResponseWriter, r *http.Request) {
	from := chi.URLParam(r, "from")
	to := chi.URLParam(r, "to")
	if err := validation.ValidateSymbol(from); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid currency", err)
		return
	}
	if err := validation.ValidateSymbol(to); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid currency", err)
		return
	}

	respondJSON(w, http.StatusOK, ExchangeRateResponse{
		From: from,
		To:   to,
		Rate: h.source.ExchangeRate(r.Context(), from, to),
	})
}
