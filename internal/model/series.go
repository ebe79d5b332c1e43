package model

import "time"

// PricePoint is a single native observation of an instrument's closing price.
// Raw histories contain one point per trading day of the instrument's own
// calendar, which means gaps are expected (weekends for equities, none for
// crypto).
type PricePoint struct {
	Date  time.Time // Trading date, midnight UTC
	Close float64   // Closing price, always positive
}

// ValuePoint is a dated monetary value: a holding's quantity times price,
// or a portfolio's summed value on one date.
type ValuePoint struct {
	Date  time.Time
	Value float64
}

// ValueSeries is an ordered sequence of dated values. Raw series may have
// calendar gaps; a series produced by the aligner has strictly increasing
// dates with no gaps and no empty values.
type ValueSeries []ValuePoint

// ReturnPoint is a fractional day-over-day change derived from two
// consecutive values: (value[t] - value[t-1]) / value[t-1].
type ReturnPoint struct {
	Date   time.Time
	Return float64
}

// Day normalizes a timestamp to midnight UTC. All series arithmetic joins
// on calendar dates, so every date entering the core goes through here.
func Day(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

// ValuesFromPrices converts a price history into a value series by applying
// a constant quantity. A quantity of 1 yields the price series itself.
func ValuesFromPrices(prices []PricePoint, quantity float64) ValueSeries {
	series := make(ValueSeries, len(prices))
	for i, p := range prices {
		series[i] = ValuePoint{Date: Day(p.Date), Value: p.Close * quantity}
	}
	return series
}
