package series

import (
	"math"
	"sort"
	"time"

	"github.com/rvallee/portfolio-analytics/internal/model"
)

// Table is the result of aligning N value series onto one unified
// calendar: a sorted date axis plus one complete value column per symbol.
// Every cell is filled; rows that could not be completed were dropped
// during alignment.
type Table struct {
	Dates   []time.Time
	columns map[string][]float64
}

// Empty reports whether alignment produced no usable rows.
func (t Table) Empty() bool {
	return len(t.Dates) == 0
}

// Symbols lists the aligned columns in sorted order.
func (t Table) Symbols() []string {
	symbols := make([]string, 0, len(t.columns))
	for s := range t.columns {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

// Column returns one symbol's aligned value series, or nil when the
// symbol is not part of the table.
func (t Table) Column(symbol string) model.ValueSeries {
	col, ok := t.columns[symbol]
	if !ok {
		return nil
	}
	series := make(model.ValueSeries, len(t.Dates))
	for i, d := range t.Dates {
		series[i] = model.ValuePoint{Date: d, Value: col[i]}
	}
	return series
}

// Total returns the row-wise sum of all columns: the unified portfolio
// value series.
func (t Table) Total() model.ValueSeries {
	total := make(model.ValueSeries, len(t.Dates))
	for i, d := range t.Dates {
		var sum float64
		for _, col := range t.columns {
			sum += col[i]
		}
		total[i] = model.ValuePoint{Date: d, Value: sum}
	}
	return total
}

// Align reconciles value series with different native trading calendars
// onto one unified calendar so they can be summed and charted without
// spurious drops.
//
// The algorithm:
//  1. Union all distinct dates across the input series, ascending.
//  2. Re-index each series onto that calendar; cells with no native
//     observation start empty, never zero.
//  3. Forward-fill each column: a market holiday keeps the prior close,
//     because the position is still worth what it was last valued at.
//  4. Backward-fill leading gaps with the column's first observed value,
//     so a series starting late does not inject artificial zeros.
//  5. Drop any row still incomplete after both fills (only possible when
//     some input series is entirely empty).
//
// Empty input, or input whose every series is empty, yields an empty
// table; callers must treat that as "no data", not zero performance.
// Align is idempotent: aligning an already-aligned table's columns
// produces identical output.
func Align(seriesBySymbol map[string]model.ValueSeries) Table {
	calendar := unionCalendar(seriesBySymbol)
	if len(calendar) == 0 {
		return Table{columns: map[string][]float64{}}
	}

	index := make(map[time.Time]int, len(calendar))
	for i, d := range calendar {
		index[d] = i
	}

	columns := make(map[string][]float64, len(seriesBySymbol))
	for symbol, s := range seriesBySymbol {
		col := emptyColumn(len(calendar))
		for _, p := range s {
			col[index[model.Day(p.Date)]] = p.Value
		}
		forwardFill(col)
		backwardFillLeading(col)
		columns[symbol] = col
	}

	return dropIncompleteRows(calendar, columns)
}

// unionCalendar collects the sorted set of distinct dates across all
// input series.
func unionCalendar(seriesBySymbol map[string]model.ValueSeries) []time.Time {
	seen := make(map[time.Time]struct{})
	for _, s := range seriesBySymbol {
		for _, p := range s {
			seen[model.Day(p.Date)] = struct{}{}
		}
	}
	calendar := make([]time.Time, 0, len(seen))
	for d := range seen {
		calendar = append(calendar, d)
	}
	sort.Slice(calendar, func(i, j int) bool { return calendar[i].Before(calendar[j]) })
	return calendar
}

// Empty cells are NaN internally. NaN never leaves this file: rows
// containing one after both fill passes are dropped.
func emptyColumn(n int) []float64 {
	col := make([]float64, n)
	for i := range col {
		col[i] = math.NaN()
	}
	return col
}

// forwardFill propagates the most recent prior observation into each
// subsequent empty cell.
func forwardFill(col []float64) {
	last := math.NaN()
	for i, v := range col {
		if math.IsNaN(v) {
			col[i] = last
		} else {
			last = v
		}
	}
}

// backwardFillLeading fills the leading empty cells with the first
// observed value. After forwardFill the only possible empty cells are a
// leading run, so a single backward pass suffices.
func backwardFillLeading(col []float64) {
	next := math.NaN()
	for i := len(col) - 1; i >= 0; i-- {
		if math.IsNaN(col[i]) {
			col[i] = next
		} else {
			next = col[i]
		}
	}
}

// dropIncompleteRows removes calendar rows where any column is still
// empty and assembles the final table.
func dropIncompleteRows(calendar []time.Time, columns map[string][]float64) Table {
	keep := make([]int, 0, len(calendar))
	for i := range calendar {
		complete := true
		for _, col := range columns {
			if math.IsNaN(col[i]) {
				complete = false
				break
			}
		}
		if complete {
			keep = append(keep, i)
		}
	}

	dates := make([]time.Time, len(keep))
	compacted := make(map[string][]float64, len(columns))
	for symbol := range columns {
		compacted[symbol] = make([]float64, len(keep))
	}
	for outIdx, srcIdx := range keep {
		dates[outIdx] = calendar[srcIdx]
		for symbol, col := range columns {
			compacted[symbol][outIdx] = col[srcIdx]
		}
	}
	return Table{Dates: dates, columns: compacted}
}
