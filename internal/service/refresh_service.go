package service

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rvallee/portfolio-analytics/internal/marketdata"
	"github.com/rvallee/portfolio-analytics/internal/pricestore"
)

// RefreshService keeps the local price cache warm: on a cron schedule it
// extends every tracked symbol's cached history up to the current date,
// so interactive analytics requests mostly hit the cache.
type RefreshService struct {
	upstream marketdata.Source
	store    *pricestore.Store
	now      func() time.Time
}

// NewRefreshService creates a new RefreshService
func NewRefreshService(upstream marketdata.Source, store *pricestore.Store) *RefreshService {
	return &RefreshService{
		upstream: upstream,
		store:    store,
		now:      time.Now,
	}
}

// SetClock replaces the service's time source
func (s *RefreshService) SetClock(now func() time.Time) {
	s.now = now
}

// Schedule registers the refresh job on the given cron runner.
func (s *RefreshService) Schedule(c *cron.Cron, spec string) error {
	_, err := c.AddFunc(spec, func() {
		s.RefreshAll(context.Background())
	})
	return err
}

// RefreshAll extends the cached history of every tracked symbol. Failures
// are per-symbol: one dead instrument does not stop the sweep.
func (s *RefreshService) RefreshAll(ctx context.Context) {
	symbols, err := s.store.TrackedSymbols()
	if err != nil {
		log.Printf("Price refresh: failed to list tracked symbols: %v", err)
		return
	}
	if len(symbols) == 0 {
		return
	}

	log.Printf("Price refresh: updating %d symbols", len(symbols))
	refreshed := 0
	for _, symbol := range symbols {
		if err := s.refreshSymbol(ctx, symbol); err != nil {
			log.Printf("Price refresh: %s failed: %v", symbol, err)
			continue
		}
		refreshed++
	}
	log.Printf("Price refresh: %d/%d symbols updated", refreshed, len(symbols))
}

// refreshSymbol fetches the gap between the symbol's last cached date and
// today, overlapping one day so a revised last close is corrected.
func (s *RefreshService) refreshSymbol(ctx context.Context, symbol string) error {
	coverage, err := s.store.GetCoverage(symbol)
	if err != nil {
		return err
	}

	window := marketdata.WindowSince(coverage.LastDate.AddDate(0, 0, -1), s.now())
	points, err := s.upstream.History(ctx, symbol, window)
	if err != nil {
		return err
	}
	return s.store.SavePoints(symbol, points)
}
