package testutil

import (
	"testing"
	"time"

	"github.com/rvallee/portfolio-analytics/internal/model"
)

// Date parses a YYYY-MM-DD string into a midnight-UTC time, failing the
// test on malformed input.
func Date(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02", value, time.UTC)
	if err != nil {
		t.Fatalf("invalid test date %q: %v", value, err)
	}
	return parsed
}

// DailySeries builds a price history with one point on every calendar
// day, the way a 24/7 instrument trades. The price starts at startPrice
// and moves by step per day.
func DailySeries(t *testing.T, start string, days int, startPrice, step float64) []model.PricePoint {
	t.Helper()
	first := Date(t, start)
	points := make([]model.PricePoint, 0, days)
	for i := 0; i < days; i++ {
		points = append(points, model.PricePoint{
			Date:  first.AddDate(0, 0, i),
			Close: startPrice + step*float64(i),
		})
	}
	return points
}

// BusinessDaySeries builds a price history with points on weekdays only,
// the way an exchange-traded instrument trades. days counts calendar
// days scanned, not points produced.
func BusinessDaySeries(t *testing.T, start string, days int, startPrice, step float64) []model.PricePoint {
	t.Helper()
	first := Date(t, start)
	points := []model.PricePoint{}
	price := startPrice
	for i := 0; i < days; i++ {
		day := first.AddDate(0, 0, i)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		points = append(points, model.PricePoint{Date: day, Close: price})
		price += step
	}
	return points
}

// SeriesFromCloses builds a price history from explicit closes, one per
// consecutive calendar day starting at start.
func SeriesFromCloses(t *testing.T, start string, closes ...float64) []model.PricePoint {
	t.Helper()
	first := Date(t, start)
	points := make([]model.PricePoint, len(closes))
	for i, close := range closes {
		points[i] = model.PricePoint{Date: first.AddDate(0, 0, i), Close: close}
	}
	return points
}

// ValueSeriesOf builds a value series from explicit values, one per
// consecutive calendar day starting at start.
func ValueSeriesOf(t *testing.T, start string, values ...float64) model.ValueSeries {
	t.Helper()
	first := Date(t, start)
	series := make(model.ValueSeries, len(values))
	for i, v := range values {
		series[i] = model.ValuePoint{Date: first.AddDate(0, 0, i), Value: v}
	}
	return series
}

// Holding builds a holding record.
func Holding(t *testing.T, symbol string, quantity, averageCost float64, acquiredOn string) model.Holding {
	t.Helper()
	return model.Holding{
		Symbol:      symbol,
		Quantity:    quantity,
		AverageCost: averageCost,
		AcquiredOn:  Date(t, acquiredOn),
	}
}

// Position builds an enriched position with just the fields the
// analytics engine consumes.
func Position(t *testing.T, symbol string, totalValue, invested float64, acquiredOn string) model.EnrichedPosition {
	t.Helper()
	return model.EnrichedPosition{
		Symbol:     symbol,
		TotalValue: totalValue,
		Invested:   invested,
		AcquiredOn: Date(t, acquiredOn),
	}
}
