package service

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rvallee/portfolio-analytics/internal/marketdata"
	"github.com/rvallee/portfolio-analytics/internal/model"
)

// EnrichmentService decorates raw holdings with live market data and
// per-position risk metrics: current price, valuation, gain/loss,
// portfolio weight, beta, and volatility.
type EnrichmentService struct {
	source    marketdata.Source
	analytics *AnalyticsService
	now       func() time.Time
}

// NewEnrichmentService creates a new EnrichmentService
func NewEnrichmentService(source marketdata.Source, analytics *AnalyticsService) *EnrichmentService {
	return &EnrichmentService{
		source:    source,
		analytics: analytics,
		now:       time.Now,
	}
}

// SetClock replaces the service's time source
func (s *EnrichmentService) SetClock(now func() time.Time) {
	s.now = now
}

// Enrich computes the enriched view of each holding. Positions are
// processed in parallel; when no current quote is available the average
// cost stands in so the position still values at its invested capital
// instead of disappearing. Weights are computed once all valuations are
// known, against the value at computation time.
func (s *EnrichmentService) Enrich(ctx context.Context, holdings []model.Holding, period model.Period) []model.EnrichedPosition {
	positions := make([]model.EnrichedPosition, len(holdings))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, holding := range holdings {
		i, holding := i, holding
		g.Go(func() error {
			positions[i] = s.enrichOne(gctx, holding, period)
			return nil
		})
	}
	_ = g.Wait()

	totalValue := 0.0
	for _, p := range positions {
		totalValue += p.TotalValue
	}
	if totalValue > 0 {
		for i := range positions {
			positions[i].Weight = round(positions[i].TotalValue / totalValue * 100)
		}
	}
	return positions
}

func (s *EnrichmentService) enrichOne(ctx context.Context, holding model.Holding, period model.Period) model.EnrichedPosition {
	currentPrice, ok := s.source.CurrentPrice(ctx, holding.Symbol)
	if !ok {
		log.Printf("No current price for %s, valuing at average cost", holding.Symbol)
		currentPrice = holding.AverageCost
	}

	totalValue := holding.Quantity * currentPrice
	invested := holding.Invested()
	gainLoss := totalValue - invested
	gainLossPercent := 0.0
	if invested > 0 {
		gainLossPercent = gainLoss / invested * 100
	}

	return model.EnrichedPosition{
		Symbol:          holding.Symbol,
		Quantity:        holding.Quantity,
		AverageCost:     holding.AverageCost,
		AcquiredOn:      holding.AcquiredOn,
		CurrentPrice:    round(currentPrice),
		TotalValue:      round(totalValue),
		Invested:        round(invested),
		GainLoss:        round(gainLoss),
		GainLossPercent: round(gainLossPercent),
		Beta:            round(s.analytics.PositionBeta(ctx, holding.Symbol, period)),
		Volatility:      round(s.analytics.PositionVolatility(ctx, holding.Symbol, period)),
		LastUpdate:      s.now().UTC(),
	}
}
