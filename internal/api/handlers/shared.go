package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/rvallee/portfolio-analytics/internal/model"
	"github.com/rvallee/portfolio-analytics/internal/validation"
)

// respondJSON sends a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Failed to encode JSON: %v", err)
		}
	}
}

// respondError sends a JSON error payload
func respondError(w http.ResponseWriter, status int, message string, err error) {
	errorResponse := map[string]string{
		"error": message,
	}
	if err != nil {
		errorResponse["detail"] = err.Error()
	}
	respondJSON(w, status, errorResponse)
}

// HoldingRequest is one position in an analytics request body.
type HoldingRequest struct {
	Symbol      string  `json:"symbol"`
	Quantity    float64 `json:"quantity"`
	AverageCost float64 `json:"average_cost"`
	AcquiredOn  string  `json:"acquired_on"` // YYYY-MM-DD
}

// HoldingsRequest is the common request body of the analytics endpoints:
// the caller-side bookkeeping layer supplies the current positions, the
// core computes over them.
type HoldingsRequest struct {
	Holdings []HoldingRequest `json:"holdings"`
}

// decodeHoldings parses and validates an analytics request body. On
// failure it writes the error response and returns false.
func decodeHoldings(w http.ResponseWriter, r *http.Request) ([]model.Holding, bool) {
	var req HoldingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return nil, false
	}

	holdings := make([]model.Holding, len(req.Holdings))
	for i, h := range req.Holdings {
		acquiredOn, err := time.ParseInLocation("2006-01-02", h.AcquiredOn, time.UTC)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid acquisition date", err)
			return nil, false
		}
		holdings[i] = model.Holding{
			Symbol:      h.Symbol,
			Quantity:    h.Quantity,
			AverageCost: h.AverageCost,
			AcquiredOn:  acquiredOn,
		}
	}

	if err := validation.ValidateHoldings(holdings, time.Now()); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid holdings", err)
		return nil, false
	}
	return holdings, true
}

// decodePeriod validates the period query parameter, writing the error
// response and returning false on failure.
func decodePeriod(w http.ResponseWriter, r *http.Request) (model.Period, bool) {
	period, err := validation.ValidatePeriod(r.URL.Query().Get("period"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid period", err)
		return "", false
	}
	return period, true
}
