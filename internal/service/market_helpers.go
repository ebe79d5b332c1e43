package service

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/rvallee/portfolio-analytics/internal/marketdata"
	"github.com/rvallee/portfolio-analytics/internal/model"
)

// maxConcurrentFetches bounds parallel upstream requests per computation.
const maxConcurrentFetches = 4

// fetchHistories fetches price histories for the given symbols in
// parallel and returns whatever arrived, keyed by symbol. A failed fetch
// excludes its symbol and is logged; it never fails the batch. The call
// returns only once every fetch has completed or failed, so callers can
// treat it as the synchronization barrier before alignment.
func fetchHistories(ctx context.Context, source marketdata.Source, symbols []string, window marketdata.Window) map[string][]model.PricePoint {
	var mu sync.Mutex
	histories := make(map[string][]model.PricePoint, len(symbols))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for _, symbol := range symbols {
		symbol := symbol
		g.Go(func() error {
			points, err := source.History(ctx, symbol, window)
			if err != nil {
				log.Printf("No historical data for %s, skipping: %v", symbol, err)
				return nil
			}
			mu.Lock()
			histories[symbol] = points
			mu.Unlock()
			return nil
		})
	}
	// Individual fetch failures are swallowed above, so Wait cannot fail.
	_ = g.Wait()

	return histories
}

// distinctSymbols returns the unique symbols across holdings, preserving
// first-seen order.
func distinctSymbols(holdings []model.Holding) []string {
	seen := make(map[string]struct{}, len(holdings))
	symbols := make([]string, 0, len(holdings))
	for _, h := range holdings {
		if _, ok := seen[h.Symbol]; ok {
			continue
		}
		seen[h.Symbol] = struct{}{}
		symbols = append(symbols, h.Symbol)
	}
	return symbols
}

// quantityBySymbol aggregates holding quantities per symbol so repeated
// positions in the same instrument act as one combined position.
func quantityBySymbol(holdings []model.Holding) map[string]float64 {
	quantities := make(map[string]float64, len(holdings))
	for _, h := range holdings {
		quantities[h.Symbol] += h.Quantity
	}
	return quantities
}
