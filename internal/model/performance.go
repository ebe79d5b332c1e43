package model

// PerformancePoint is one charted entry of a performance series. The
// change percentage is measured against the first value of the series,
// not day-over-day.
type PerformancePoint struct {
	Date          string  `json:"date"` // YYYY-MM-DD
	Value         float64 `json:"value"`
	ChangePercent float64 `json:"change_percent"`
}

// PerformanceSummary is the portfolio- or position-level performance
// result handed to the presentation layer. A period with no usable
// history yields an empty Data slice with zero totals, never an error.
type PerformanceSummary struct {
	Data               []PerformancePoint `json:"data"`
	TotalReturn        float64            `json:"total_return"`
	TotalReturnPercent float64            `json:"total_return_percent"`
}

// EmptyPerformance is the neutral result for periods without data. Data is
// a non-nil empty slice so the boundary serializes it as [] and not null.
func EmptyPerformance() PerformanceSummary {
	return PerformanceSummary{Data: []PerformancePoint{}}
}

// ComparisonPoint pairs portfolio and benchmark percentage returns on one
// benchmark trading date.
type ComparisonPoint struct {
	Date             string  `json:"date"` // YYYY-MM-DD
	PortfolioPercent float64 `json:"portfolio_percent"`
	IndexPercent     float64 `json:"index_percent"`
}

// IndexComparison is the benchmark comparison result, one entry per date
// the benchmark index traded.
type IndexComparison struct {
	Data []ComparisonPoint `json:"data"`
}

// EmptyComparison is the neutral comparison result.
func EmptyComparison() IndexComparison {
	return IndexComparison{Data: []ComparisonPoint{}}
}

// VolatilitySummary carries the two portfolio volatility figures: the
// historical one over the requested window, and the realized one measured
// only over each position's actual holding period.
type VolatilitySummary struct {
	Historical float64 `json:"historical"`
	Realized   float64 `json:"realized"`
}

// PortfolioMetrics is the summary risk block of a portfolio: valuation
// aggregates plus volatility, beta, and Sharpe ratio.
type PortfolioMetrics struct {
	TotalValue      float64           `json:"total_value"`
	TotalInvested   float64           `json:"total_invested"`
	TotalGainLoss   float64           `json:"total_gain_loss"`
	GainLossPercent float64           `json:"gain_loss_percent"`
	Volatility      VolatilitySummary `json:"volatility"`
	Beta            float64           `json:"beta"`
	SharpeRatio     float64           `json:"sharpe_ratio"`
}

// Correlation is the pairwise correlation between two instruments' return
// series over a shared window.
type Correlation struct {
	Symbol1     string  `json:"symbol1"`
	Symbol2     string  `json:"symbol2"`
	Correlation float64 `json:"correlation"`
}
