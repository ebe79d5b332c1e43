package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/rvallee/portfolio-analytics/internal/config"
	"github.com/rvallee/portfolio-analytics/internal/marketdata"
	"github.com/rvallee/portfolio-analytics/internal/model"
	"github.com/rvallee/portfolio-analytics/internal/series"
)

// AnalyticsService derives portfolio-level risk metrics: volatility,
// beta, Sharpe ratio, pairwise correlations, and the recommendation
// heuristics built on top of them.
//
// Every method returns a neutral default (0.0 volatility, 1.0 beta,
// 0.0 Sharpe, empty slices) on degenerate input or missing market data,
// never an error. Degraded computations are logged.
type AnalyticsService struct {
	source marketdata.Source
	market config.MarketConfig
	now    func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(source marketdata.Source, market config.MarketConfig) *AnalyticsService {
	return &AnalyticsService{
		source: source,
		market: market,
		now:    time.Now,
	}
}

// SetClock replaces the service's time source. Tests use this to pin the
// period windows to fixed dates.
func (s *AnalyticsService) SetClock(now func() time.Time) {
	s.now = now
}

// PortfolioVolatility computes both volatility figures: the historical
// one over the requested period, and the realized one over each
// position's actual holding experience.
func (s *AnalyticsService) PortfolioVolatility(ctx context.Context, positions []model.EnrichedPosition, period model.Period) model.VolatilitySummary {
	return model.VolatilitySummary{
		Historical: s.HistoricalVolatility(ctx, positions, period),
		Realized:   s.RealizedVolatility(ctx, positions),
	}
}

// HistoricalVolatility computes the annualized volatility of the
// value-weighted portfolio return series over the period window.
// No positions or no usable history yields 0.0.
func (s *AnalyticsService) HistoricalVolatility(ctx context.Context, positions []model.EnrichedPosition, period model.Period) float64 {
	returns := s.weightedPortfolioReturns(ctx, positions, s.periodWindow(period))
	if len(returns) == 0 {
		return 0.0
	}
	return series.Volatility(returns, true, s.market.AnnualizationDays)
}

// RealizedVolatility measures volatility only over each position's
// holding period: per instrument the lookback starts at its acquisition
// date, then all return series are truncated to the shortest available
// length before the weighted combination. The figure reflects the
// holder's actual experience, not pre-acquisition market noise.
func (s *AnalyticsService) RealizedVolatility(ctx context.Context, positions []model.EnrichedPosition) float64 {
	if len(positions) == 0 {
		return 0.0
	}
	totalValue := totalPositionValue(positions)
	if totalValue == 0 {
		return 0.0
	}

	now := s.now()
	var weights []float64
	var returnSeries [][]model.ReturnPoint
	for _, pos := range positions {
		if pos.AcquiredOn.IsZero() {
			continue
		}
		// Fewer than two days held means at most one return point,
		// which cannot carry a deviation.
		if model.Day(now).Sub(model.Day(pos.AcquiredOn)) < 48*time.Hour {
			continue
		}

		window := marketdata.WindowSince(pos.AcquiredOn, now)
		points, err := s.source.History(ctx, pos.Symbol, window)
		if err != nil {
			log.Printf("No holding-period history for %s, skipping: %v", pos.Symbol, err)
			continue
		}
		returns := series.Returns(model.ValuesFromPrices(points, 1))
		if len(returns) == 0 {
			continue
		}
		weights = append(weights, pos.TotalValue/totalValue)
		returnSeries = append(returnSeries, returns)
	}
	if len(returnSeries) == 0 {
		return 0.0
	}

	shortest := len(returnSeries[0])
	for _, r := range returnSeries[1:] {
		if len(r) < shortest {
			shortest = len(r)
		}
	}
	if shortest < 2 {
		return 0.0
	}

	// Positions were acquired on different dates, so the truncated tails
	// are combined by offset from the most recent observation rather than
	// by calendar date.
	combined := make([]model.ReturnPoint, shortest)
	for i, returns := range returnSeries {
		tail := returns[len(returns)-shortest:]
		for j, r := range tail {
			combined[j].Return += weights[i] * r.Return
		}
	}
	return series.Volatility(combined, true, s.market.AnnualizationDays)
}

// PortfolioBeta computes the beta of the value-weighted portfolio return
// series against the configured benchmark. Missing market data or no
// usable position history yields the neutral beta of 1.0.
func (s *AnalyticsService) PortfolioBeta(ctx context.Context, positions []model.EnrichedPosition, period model.Period) float64 {
	window := s.periodWindow(period)

	marketPoints, err := s.source.History(ctx, s.market.BenchmarkSymbol, window)
	if err != nil {
		log.Printf("No market data for beta calculation (index: %s): %v", s.market.BenchmarkSymbol, err)
		return 1.0
	}
	marketReturns := series.Returns(model.ValuesFromPrices(marketPoints, 1))

	portfolioReturns := s.weightedPortfolioReturns(ctx, positions, window)
	if len(portfolioReturns) == 0 {
		log.Printf("No returns data for beta calculation")
		return 1.0
	}

	return series.Beta(portfolioReturns, marketReturns)
}

// PositionBeta computes one instrument's beta against the configured
// benchmark, 1.0 when either history is unavailable.
func (s *AnalyticsService) PositionBeta(ctx context.Context, symbol string, period model.Period) float64 {
	window := s.periodWindow(period)

	marketPoints, err := s.source.History(ctx, s.market.BenchmarkSymbol, window)
	if err != nil {
		log.Printf("No market data for beta calculation of %s against %s: %v", symbol, s.market.BenchmarkSymbol, err)
		return 1.0
	}
	positionPoints, err := s.source.History(ctx, symbol, window)
	if err != nil {
		log.Printf("No historical data for %s: %v", symbol, err)
		return 1.0
	}

	return series.Beta(
		series.Returns(model.ValuesFromPrices(positionPoints, 1)),
		series.Returns(model.ValuesFromPrices(marketPoints, 1)),
	)
}

// PositionVolatility computes one instrument's annualized volatility in
// percent units, 0.0 when history is unavailable.
func (s *AnalyticsService) PositionVolatility(ctx context.Context, symbol string, period model.Period) float64 {
	points, err := s.source.History(ctx, symbol, s.periodWindow(period))
	if err != nil {
		log.Printf("No historical data for %s: %v", symbol, err)
		return 0.0
	}
	returns := series.Returns(model.ValuesFromPrices(points, 1))
	return series.Volatility(returns, true, s.market.AnnualizationDays)
}

// SharpeRatio computes the annualized Sharpe ratio of the value-weighted
// portfolio return series against the configured risk-free rate.
func (s *AnalyticsService) SharpeRatio(ctx context.Context, positions []model.EnrichedPosition, period model.Period) float64 {
	returns := s.weightedPortfolioReturns(ctx, positions, s.periodWindow(period))
	if len(returns) == 0 {
		return 0.0
	}
	return series.SharpeRatio(returns, s.market.RiskFreeRate, s.market.AnnualizationDays)
}

// SharpeRatioCustom is the aggregate-return Sharpe variant: total
// portfolio return percent over invested capital, less the custom
// risk-free rate (percent units), divided by historical volatility.
func (s *AnalyticsService) SharpeRatioCustom(ctx context.Context, positions []model.EnrichedPosition, period model.Period) float64 {
	if len(positions) == 0 {
		return 0.0
	}
	var totalValue, totalInvested float64
	for _, p := range positions {
		totalValue += p.TotalValue
		totalInvested += p.Invested
	}
	if totalInvested == 0 {
		return 0.0
	}

	portfolioReturn := (totalValue - totalInvested) / totalInvested * 100
	volatility := s.HistoricalVolatility(ctx, positions, period)
	if volatility == 0 {
		return 0.0
	}
	return (portfolioReturn - s.market.CustomRiskFreeRate) / volatility
}

// CorrelationMatrix computes pairwise return correlations between the
// given instruments. Symbols without history are left out; fewer than two
// symbols with data yields an empty slice.
func (s *AnalyticsService) CorrelationMatrix(ctx context.Context, symbols []string, period model.Period) []model.Correlation {
	histories := fetchHistories(ctx, s.source, symbols, s.periodWindow(period))

	returnsBySymbol := make(map[string][]model.ReturnPoint, len(histories))
	withData := make([]string, 0, len(histories))
	for _, symbol := range symbols {
		points, ok := histories[symbol]
		if !ok {
			continue
		}
		returnsBySymbol[symbol] = series.Returns(model.ValuesFromPrices(points, 1))
		withData = append(withData, symbol)
	}

	correlations := []model.Correlation{}
	for i, symbol1 := range withData {
		for _, symbol2 := range withData[i+1:] {
			correlations = append(correlations, model.Correlation{
				Symbol1:     symbol1,
				Symbol2:     symbol2,
				Correlation: round(series.Correlation(returnsBySymbol[symbol1], returnsBySymbol[symbol2])),
			})
		}
	}
	return correlations
}

// PortfolioSummary composes the valuation aggregates and the full risk
// block for a set of enriched positions. Zero positions yields the
// neutral summary (1.0 beta, zero everything else).
func (s *AnalyticsService) PortfolioSummary(ctx context.Context, positions []model.EnrichedPosition, period model.Period) model.PortfolioMetrics {
	if len(positions) == 0 {
		return model.PortfolioMetrics{Beta: 1.0}
	}

	var totalValue, totalInvested float64
	for _, p := range positions {
		totalValue += p.TotalValue
		totalInvested += p.Invested
	}
	totalGainLoss := totalValue - totalInvested
	gainLossPercent := 0.0
	if totalInvested > 0 {
		gainLossPercent = totalGainLoss / totalInvested * 100
	}

	volatility := s.PortfolioVolatility(ctx, positions, period)
	return model.PortfolioMetrics{
		TotalValue:      round(totalValue),
		TotalInvested:   round(totalInvested),
		TotalGainLoss:   round(totalGainLoss),
		GainLossPercent: round(gainLossPercent),
		Volatility: model.VolatilitySummary{
			Historical: round(volatility.Historical),
			Realized:   round(volatility.Realized),
		},
		Beta:        round(s.PortfolioBeta(ctx, positions, period)),
		SharpeRatio: round(s.SharpeRatio(ctx, positions, period)),
	}
}

// Recommendations runs the heuristic checks over enriched positions and
// the portfolio summary. The checks are independent and evaluated in a
// fixed order: concentration per position, volatility per position,
// portfolio beta, Sharpe ratio. A portfolio can trigger any subset.
func (s *AnalyticsService) Recommendations(positions []model.EnrichedPosition, metrics model.PortfolioMetrics) []model.Recommendation {
	recommendations := []model.Recommendation{}

	totalValue := totalPositionValue(positions)
	if totalValue > 0 {
		for _, pos := range positions {
			weight := pos.TotalValue / totalValue * 100
			if weight >= 40 {
				recommendations = append(recommendations, model.Recommendation{
					ID:    uuid.New().String(),
					Type:  model.RecommendationWarning,
					Title: "High concentration",
					Description: fmt.Sprintf(
						"%s represents %.1f%% of your portfolio. Consider diversifying further.",
						pos.Symbol, weight,
					),
					Priority: model.PriorityHigh,
				})
			}
		}
	}

	for _, pos := range positions {
		if pos.Volatility > 50 {
			recommendations = append(recommendations, model.Recommendation{
				ID:    uuid.New().String(),
				Type:  model.RecommendationInfo,
				Title: "High volatility",
				Description: fmt.Sprintf(
					"%s has a volatility of %.1f%%. Keep a close eye on this position.",
					pos.Symbol, pos.Volatility,
				),
				Priority: model.PriorityMedium,
			})
		}
	}

	if metrics.Beta >= 0.9 && metrics.Beta <= 1.3 {
		recommendations = append(recommendations, model.Recommendation{
			ID:    uuid.New().String(),
			Type:  model.RecommendationSuccess,
			Title: "Balanced market exposure",
			Description: fmt.Sprintf(
				"Your portfolio beta (%.2f) indicates balanced exposure to the market.",
				metrics.Beta,
			),
			Priority: model.PriorityLow,
		})
	} else if metrics.Beta > 1.5 {
		recommendations = append(recommendations, model.Recommendation{
			ID:    uuid.New().String(),
			Type:  model.RecommendationWarning,
			Title: "High market exposure",
			Description: fmt.Sprintf(
				"Your beta (%.2f) is high. Your portfolio is more volatile than the market.",
				metrics.Beta,
			),
			Priority: model.PriorityHigh,
		})
	}

	if metrics.SharpeRatio > 1.0 {
		recommendations = append(recommendations, model.Recommendation{
			ID:    uuid.New().String(),
			Type:  model.RecommendationSuccess,
			Title: "Good risk-adjusted return",
			Description: fmt.Sprintf(
				"Your Sharpe ratio (%.2f) indicates a good return for the risk taken.",
				metrics.SharpeRatio,
			),
			Priority: model.PriorityLow,
		})
	}

	return recommendations
}

// weightedPortfolioReturns builds the single weighted portfolio return
// series: each position's price returns weighted by its share of current
// portfolio value, summed over the aligner's common calendar. Positions
// without history are excluded from both the weight denominator and the
// aggregation. Returns nil when nothing usable remains.
func (s *AnalyticsService) weightedPortfolioReturns(ctx context.Context, positions []model.EnrichedPosition, window marketdata.Window) []model.ReturnPoint {
	if len(positions) == 0 {
		return nil
	}

	symbols := make([]string, 0, len(positions))
	valueBySymbol := make(map[string]float64, len(positions))
	for _, p := range positions {
		if _, ok := valueBySymbol[p.Symbol]; !ok {
			symbols = append(symbols, p.Symbol)
		}
		valueBySymbol[p.Symbol] += p.TotalValue
	}

	histories := fetchHistories(ctx, s.source, symbols, window)
	if len(histories) == 0 {
		return nil
	}

	priceSeries := make(map[string]model.ValueSeries, len(histories))
	weightBase := 0.0
	for symbol, points := range histories {
		priceSeries[symbol] = model.ValuesFromPrices(points, 1)
		weightBase += valueBySymbol[symbol]
	}
	if weightBase == 0 {
		return nil
	}

	table := series.Align(priceSeries)
	if table.Empty() {
		return nil
	}

	var combined []model.ReturnPoint
	for _, symbol := range table.Symbols() {
		returns := series.Returns(table.Column(symbol))
		if combined == nil {
			combined = make([]model.ReturnPoint, len(returns))
			for i, r := range returns {
				combined[i].Date = r.Date
			}
		}
		weight := valueBySymbol[symbol] / weightBase
		for i, r := range returns {
			combined[i].Return += weight * r.Return
		}
	}
	return combined
}

// periodWindow resolves a period selector to a fetch window ending now.
// Analytics windows have no acquisition floor; the realized variant
// applies its own per-position clamp.
func (s *AnalyticsService) periodWindow(period model.Period) marketdata.Window {
	now := s.now()
	return marketdata.WindowSince(period.Start(now, time.Time{}), now)
}

// totalPositionValue sums the current market value across positions.
func totalPositionValue(positions []model.EnrichedPosition) float64 {
	var total float64
	for _, p := range positions {
		total += p.TotalValue
	}
	return total
}
