package model

import "time"

// Holding is one position as supplied by the external bookkeeping layer:
// what is held, how much of it, at what average cost, and since when.
// Holdings are read-only inside the core; every analytics computation
// receives a fresh slice and never mutates it.
type Holding struct {
	Symbol      string    `json:"symbol"`
	Quantity    float64   `json:"quantity"`
	AverageCost float64   `json:"average_cost"`
	AcquiredOn  time.Time `json:"acquired_on"`
}

// Invested returns the capital originally committed to the holding.
func (h Holding) Invested() float64 {
	return h.Quantity * h.AverageCost
}

// EarliestAcquisition returns the oldest acquisition date across holdings,
// and false when the slice is empty.
func EarliestAcquisition(holdings []Holding) (time.Time, bool) {
	if len(holdings) == 0 {
		return time.Time{}, false
	}
	earliest := holdings[0].AcquiredOn
	for _, h := range holdings[1:] {
		if h.AcquiredOn.Before(earliest) {
			earliest = h.AcquiredOn
		}
	}
	return earliest, true
}

// EnrichedPosition is a holding decorated with live market data and
// per-position risk metrics. This is the shape the recommendation engine
// and the positions endpoint work with.
type EnrichedPosition struct {
	Symbol          string    `json:"symbol"`
	Quantity        float64   `json:"quantity"`
	AverageCost     float64   `json:"average_cost"`
	AcquiredOn      time.Time `json:"acquired_on"`
	CurrentPrice    float64   `json:"current_price"`
	TotalValue      float64   `json:"total_value"`
	Invested        float64   `json:"invested"`
	GainLoss        float64   `json:"gain_loss"`
	GainLossPercent float64   `json:"gain_loss_percent"`
	Weight          float64   `json:"weight"` // Percent of total portfolio value
	Beta            float64   `json:"beta"`
	Volatility      float64   `json:"volatility"` // Annualized, percent units
	LastUpdate      time.Time `json:"last_update"`
}
