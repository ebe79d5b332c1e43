// Package marketdata is the only I/O boundary of the analytics core. It
// abstracts the upstream price provider behind the Source interface and
// implements the availability-over-correctness policies the rest of the
// system relies on: a failed fetch for one symbol never aborts a batch,
// and exchange rate lookups always produce a usable rate.
package marketdata

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/rvallee/portfolio-analytics/internal/apperrors"
	"github.com/rvallee/portfolio-analytics/internal/model"
	"github.com/rvallee/portfolio-analytics/internal/yahoo"
)

// Window is the inclusive date range of a history request.
type Window struct {
	Start time.Time
	End   time.Time
}

// WindowSince builds a window from a start date to today.
func WindowSince(start, now time.Time) Window {
	return Window{Start: model.Day(start), End: model.Day(now)}
}

// Source supplies per-instrument market data.
//
// History returns the instrument's native daily closes inside the window,
// oldest first; it returns apperrors.ErrNoHistory when the provider has no
// usable points. CurrentPrice reports false instead of an error when no
// quote is available. ExchangeRate never fails: it falls back to 1.0 so a
// dead FX feed degrades valuations instead of breaking them.
type Source interface {
	History(ctx context.Context, symbol string, window Window) ([]model.PricePoint, error)
	CurrentPrice(ctx context.Context, symbol string) (float64, bool)
	ExchangeRate(ctx context.Context, from, to string) float64
}

// YahooSource implements Source against the Yahoo Finance chart API.
type YahooSource struct {
	client       *yahoo.FinanceClient
	fxCache      *RateCache
	fetchTimeout time.Duration
}

// NewYahooSource wires a finance client with a per-fetch timeout and an
// exchange rate cache.
func NewYahooSource(client *yahoo.FinanceClient, fxCache *RateCache, fetchTimeout time.Duration) *YahooSource {
	return &YahooSource{
		client:       client,
		fxCache:      fxCache,
		fetchTimeout: fetchTimeout,
	}
}

// History fetches daily closes for the window. The fetch is bounded by the
// configured timeout so an unresponsive upstream cannot hang a whole
// portfolio computation.
func (s *YahooSource) History(ctx context.Context, symbol string, window Window) ([]model.PricePoint, error) {
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	// period2 is exclusive of the last day's bar when it lands exactly on
	// midnight, so extend by one day to keep the window inclusive.
	chart, err := s.client.ChartByDateRange(ctx, symbol, window.Start, window.End.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("fetch history for %s: %w", symbol, err)
	}

	points := make([]model.PricePoint, 0, len(chart.Bars))
	for _, bar := range chart.Bars {
		if bar.Date.Before(window.Start) || bar.Date.After(window.End) {
			continue
		}
		points = append(points, model.PricePoint{Date: bar.Date, Close: bar.Close})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, apperrors.ErrNoHistory)
	}
	return points, nil
}

// CurrentPrice fetches the most recent available close for the symbol.
// Yahoo occasionally returns nothing for range=1d outside trading hours,
// so a five day range is used and the last close taken.
func (s *YahooSource) CurrentPrice(ctx context.Context, symbol string) (float64, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	chart, err := s.client.ChartByRange(ctx, symbol, "5d")
	if err != nil {
		log.Printf("Failed to fetch current price for %s: %v", symbol, err)
		return 0, false
	}
	close, ok := chart.LastClose()
	if !ok {
		return 0, false
	}
	return close, true
}

// ExchangeRate returns the rate to multiply by to convert an amount of the
// from currency into the to currency. Same-currency conversion is identity.
// Fetched rates are cached; on any fetch failure the method logs and
// returns 1.0 rather than propagating the error, because a stale or
// missing rate must not take down valuation of an entire portfolio.
func (s *YahooSource) ExchangeRate(ctx context.Context, from, to string) float64 {
	if strings.EqualFold(from, to) {
		return 1.0
	}
	pair := yahoo.FXPairSymbol(from, to)

	if rate, ok := s.fxCache.Get(pair); ok {
		return rate
	}

	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	chart, err := s.client.ChartByRange(ctx, pair, "1d")
	if err != nil {
		log.Printf("Failed to fetch exchange rate %s->%s, using 1.0: %v", from, to, err)
		return 1.0
	}
	rate, ok := chart.LastClose()
	if !ok || rate <= 0 {
		log.Printf("No exchange rate data for %s, using 1.0", pair)
		return 1.0
	}

	s.fxCache.Put(pair, rate)
	return rate
}
