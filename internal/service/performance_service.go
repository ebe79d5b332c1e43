package service

import (
	"context"
	"log"
	"time"

	"github.com/rvallee/portfolio-analytics/internal/marketdata"
	"github.com/rvallee/portfolio-analytics/internal/model"
	"github.com/rvallee/portfolio-analytics/internal/series"
)

const dateLayout = "2006-01-02"

// PerformanceService computes portfolio and position value-over-time
// series and projects portfolio performance against a benchmark index.
//
// Its contract with the presentation layer: every method returns a
// well-formed, possibly empty result. Missing instruments degrade the
// result and are logged; they never fail the request.
type PerformanceService struct {
	source marketdata.Source
	now    func() time.Time
}

// NewPerformanceService creates a new PerformanceService
func NewPerformanceService(source marketdata.Source) *PerformanceService {
	return &PerformanceService{
		source: source,
		now:    time.Now,
	}
}

// SetClock replaces the service's time source. Tests use this to pin the
// period windows to fixed dates.
func (s *PerformanceService) SetClock(now func() time.Time) {
	s.now = now
}

// PortfolioPerformance computes the portfolio's combined value series
// over the requested period.
//
// Holdings trade on different native calendars (crypto on every calendar
// day, equities on exchange days only), so the per-symbol value series
// are aligned onto a unified calendar with forward/backward fill before
// being summed. Summing unaligned series would crater the combined value
// to near zero on every date one instrument has no native price.
//
// Change percentages are measured against the first aligned value.
// Periods without usable history yield the empty summary.
func (s *PerformanceService) PortfolioPerformance(ctx context.Context, holdings []model.Holding, period model.Period) model.PerformanceSummary {
	if len(holdings) == 0 {
		return model.EmptyPerformance()
	}

	now := s.now()
	earliest, _ := model.EarliestAcquisition(holdings)
	window := marketdata.WindowSince(period.Start(now, earliest), now)

	quantities := quantityBySymbol(holdings)
	histories := fetchHistories(ctx, s.source, distinctSymbols(holdings), window)
	if len(histories) == 0 {
		return model.EmptyPerformance()
	}

	valueSeries := make(map[string]model.ValueSeries, len(histories))
	for symbol, points := range histories {
		valueSeries[symbol] = model.ValuesFromPrices(points, quantities[symbol])
	}

	total := series.Align(valueSeries).Total()
	if len(total) == 0 {
		return model.EmptyPerformance()
	}

	initial := total[0].Value
	if initial <= 0 {
		return model.EmptyPerformance()
	}

	data := make([]model.PerformancePoint, len(total))
	for i, p := range total {
		data[i] = model.PerformancePoint{
			Date:          p.Date.Format(dateLayout),
			Value:         round(p.Value),
			ChangePercent: round((p.Value - initial) / initial * 100),
		}
	}

	final := total[len(total)-1].Value
	return model.PerformanceSummary{
		Data:               data,
		TotalReturn:        round(final - initial),
		TotalReturnPercent: round((final - initial) / initial * 100),
	}
}

// PositionPerformance computes the value series of a single holding. The
// window never starts before the acquisition date, and changes are
// measured against the invested capital (quantity times average cost),
// not against the first market value.
func (s *PerformanceService) PositionPerformance(ctx context.Context, holding model.Holding, period model.Period) model.PerformanceSummary {
	now := s.now()
	start := period.Start(now, holding.AcquiredOn)
	if acquired := model.Day(holding.AcquiredOn); start.Before(acquired) {
		start = acquired
	}

	points, err := s.source.History(ctx, holding.Symbol, marketdata.WindowSince(start, now))
	if err != nil {
		log.Printf("No historical data for position %s: %v", holding.Symbol, err)
		return model.EmptyPerformance()
	}

	invested := holding.Invested()
	data := make([]model.PerformancePoint, len(points))
	for i, p := range points {
		value := p.Close * holding.Quantity
		changePercent := 0.0
		if invested > 0 {
			changePercent = (value - invested) / invested * 100
		}
		data[i] = model.PerformancePoint{
			Date:          model.Day(p.Date).Format(dateLayout),
			Value:         round(value),
			ChangePercent: round(changePercent),
		}
	}

	final := points[len(points)-1].Close * holding.Quantity
	totalReturn := final - invested
	totalReturnPercent := 0.0
	if invested > 0 {
		totalReturnPercent = totalReturn / invested * 100
	}
	return model.PerformanceSummary{
		Data:               data,
		TotalReturn:        round(totalReturn),
		TotalReturnPercent: round(totalReturnPercent),
	}
}

// CompareWithIndex projects an already-computed portfolio percent-return
// series onto a benchmark index's native trading calendar.
//
// Unlike portfolio alignment this walks the index's own dates: for each
// date the portfolio's percent return is looked up exactly, and when
// absent the last known value is carried forward. Dates before the first
// known portfolio observation read 0.0, the explicit "no movement yet"
// default.
func (s *PerformanceService) CompareWithIndex(ctx context.Context, portfolio []model.PerformancePoint, indexSymbol string) model.IndexComparison {
	if len(portfolio) == 0 {
		return model.EmptyComparison()
	}

	start, err := time.ParseInLocation(dateLayout, portfolio[0].Date, time.UTC)
	if err != nil {
		log.Printf("Malformed portfolio series date %q: %v", portfolio[0].Date, err)
		return model.EmptyComparison()
	}
	end, err := time.ParseInLocation(dateLayout, portfolio[len(portfolio)-1].Date, time.UTC)
	if err != nil {
		log.Printf("Malformed portfolio series date %q: %v", portfolio[len(portfolio)-1].Date, err)
		return model.EmptyComparison()
	}

	indexPoints, err := s.source.History(ctx, indexSymbol, marketdata.Window{Start: start, End: end})
	if err != nil {
		log.Printf("No historical data for index %s: %v", indexSymbol, err)
		return model.EmptyComparison()
	}

	initialPrice := indexPoints[0].Close
	if initialPrice <= 0 {
		return model.EmptyComparison()
	}

	portfolioByDate := make(map[string]float64, len(portfolio))
	for _, p := range portfolio {
		portfolioByDate[p.Date] = p.ChangePercent
	}

	data := make([]model.ComparisonPoint, 0, len(indexPoints))
	lastPortfolioPercent := 0.0
	for _, p := range indexPoints {
		date := model.Day(p.Date).Format(dateLayout)
		if percent, ok := portfolioByDate[date]; ok {
			lastPortfolioPercent = percent
		}
		data = append(data, model.ComparisonPoint{
			Date:             date,
			PortfolioPercent: round(lastPortfolioPercent),
			IndexPercent:     round((p.Close - initialPrice) / initialPrice * 100),
		})
	}

	return model.IndexComparison{Data: data}
}
