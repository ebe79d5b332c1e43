package marketdata

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/rvallee/portfolio-analytics/internal/apperrors"
	"github.com/rvallee/portfolio-analytics/internal/model"
	"github.com/rvallee/portfolio-analytics/internal/pricestore"
)

// CachingSource wraps an upstream Source with the local SQLite price
// store. Histories are served from the store when its coverage window
// spans the request and is fresh enough; otherwise the upstream is
// queried and the result written back. Store failures are logged and
// fall through to the upstream, never surfaced to callers.
type CachingSource struct {
	upstream Source
	store    *pricestore.Store
	// maxLag is how far the store's last cached date may trail the
	// requested end before the cache is considered stale.
	maxLag time.Duration
}

// NewCachingSource wraps an upstream source with the price store.
func NewCachingSource(upstream Source, store *pricestore.Store, maxLag time.Duration) *CachingSource {
	return &CachingSource{
		upstream: upstream,
		store:    store,
		maxLag:   maxLag,
	}
}

// History serves from the store when covered, otherwise fetches upstream
// and persists the result.
func (s *CachingSource) History(ctx context.Context, symbol string, window Window) ([]model.PricePoint, error) {
	if points, ok := s.cachedHistory(symbol, window); ok {
		return points, nil
	}

	points, err := s.upstream.History(ctx, symbol, window)
	if err != nil {
		return nil, err
	}
	if saveErr := s.store.SavePoints(symbol, points); saveErr != nil {
		log.Printf("Failed to cache history for %s: %v", symbol, saveErr)
	}
	return points, nil
}

// CurrentPrice always goes upstream; quotes are too short-lived to cache.
func (s *CachingSource) CurrentPrice(ctx context.Context, symbol string) (float64, bool) {
	return s.upstream.CurrentPrice(ctx, symbol)
}

// ExchangeRate delegates to the upstream, which carries its own cache.
func (s *CachingSource) ExchangeRate(ctx context.Context, from, to string) float64 {
	return s.upstream.ExchangeRate(ctx, from, to)
}

// cachedHistory reports the stored points and true when the store fully
// covers the window with acceptably fresh data.
func (s *CachingSource) cachedHistory(symbol string, window Window) ([]model.PricePoint, bool) {
	coverage, err := s.store.GetCoverage(symbol)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotCached) {
			log.Printf("Failed to read coverage for %s: %v", symbol, err)
		}
		return nil, false
	}

	if coverage.FirstDate.After(window.Start) {
		return nil, false
	}
	// The last cached date may legitimately trail the requested end: the
	// end is usually "today" and the upstream's last bar is yesterday's
	// close. Tolerate up to maxLag of trailing gap.
	if window.End.Sub(coverage.LastDate) > s.maxLag {
		return nil, false
	}

	points, err := s.store.Points(symbol, window.Start, window.End)
	if err != nil {
		log.Printf("Failed to read cached history for %s: %v", symbol, err)
		return nil, false
	}
	if len(points) == 0 {
		return nil, false
	}
	return points, true
}
