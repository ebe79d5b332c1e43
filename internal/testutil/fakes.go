package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/rvallee/portfolio-analytics/internal/apperrors"
	"github.com/rvallee/portfolio-analytics/internal/marketdata"
	"github.com/rvallee/portfolio-analytics/internal/model"
)

// FakeSource is an in-memory marketdata.Source for tests. Histories are
// filtered by the requested window exactly as the real source filters by
// date range; symbols absent from Histories fail with ErrNoHistory, which
// exercises the fail-soft skip paths of the services.
type FakeSource struct {
	mu        sync.Mutex
	Histories map[string][]model.PricePoint
	Prices    map[string]float64
	Rates     map[string]float64 // keyed "USD/EUR"

	// HistoryCalls records the symbols fetched, in call order.
	HistoryCalls []string
}

// NewFakeSource creates an empty fake source.
func NewFakeSource() *FakeSource {
	return &FakeSource{
		Histories: make(map[string][]model.PricePoint),
		Prices:    make(map[string]float64),
		Rates:     make(map[string]float64),
	}
}

// History returns the configured points inside the window.
func (f *FakeSource) History(_ context.Context, symbol string, window marketdata.Window) ([]model.PricePoint, error) {
	f.mu.Lock()
	f.HistoryCalls = append(f.HistoryCalls, symbol)
	points, ok := f.Histories[symbol]
	f.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%s: %w", symbol, apperrors.ErrNoHistory)
	}

	filtered := []model.PricePoint{}
	for _, p := range points {
		day := model.Day(p.Date)
		if day.Before(window.Start) || day.After(window.End) {
			continue
		}
		filtered = append(filtered, p)
	}
	if len(filtered) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, apperrors.ErrNoHistory)
	}
	return filtered, nil
}

// CurrentPrice returns the configured quote, or false when absent.
func (f *FakeSource) CurrentPrice(_ context.Context, symbol string) (float64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	price, ok := f.Prices[symbol]
	return price, ok
}

// ExchangeRate mirrors the production fallback contract: identity for
// the same currency, 1.0 for unknown pairs.
func (f *FakeSource) ExchangeRate(_ context.Context, from, to string) float64 {
	if from == to {
		return 1.0
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if rate, ok := f.Rates[from+"/"+to]; ok {
		return rate
	}
	return 1.0
}
