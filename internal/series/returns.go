// Package series holds the pure numeric transforms of the analytics core:
// return derivation, volatility, beta, correlation, Sharpe ratio, and the
// calendar alignment algorithm. Nothing in this package performs I/O or
// keeps state; every function is deterministic over its inputs.
//
// Degenerate inputs never produce errors, NaN, or Infinity. Each function
// has a documented neutral fallback (0.0 volatility, 1.0 beta, and so on)
// matching the system-wide contract that a computation always yields a
// well-formed result.
package series

import (
	"math"
	"time"

	"github.com/rvallee/portfolio-analytics/internal/model"
)

// Returns derives fractional day-over-day returns from a value series.
// The first point has no prior value and is dropped, so the result is one
// shorter than the input. Points following a zero value are skipped: a
// return is undefined against a zero base.
func Returns(values model.ValueSeries) []model.ReturnPoint {
	if len(values) < 2 {
		return nil
	}
	returns := make([]model.ReturnPoint, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		prev := values[i-1].Value
		if prev == 0 {
			continue
		}
		returns = append(returns, model.ReturnPoint{
			Date:   values[i].Date,
			Return: (values[i].Value - prev) / prev,
		})
	}
	return returns
}

// Volatility computes the sample standard deviation of a return series,
// in percent units. When annualize is set, the daily figure is scaled by
// sqrt(periodsPerYear). The same periodsPerYear is applied to every
// instrument regardless of its trading calendar; see the package note on
// the annualization convention.
//
// Fewer than two returns yields 0.0.
func Volatility(returns []model.ReturnPoint, annualize bool, periodsPerYear int) float64 {
	vol := stdDev(returnValues(returns))
	if annualize {
		vol *= math.Sqrt(float64(periodsPerYear))
	}
	return vol * 100
}

// Beta computes covariance(asset, market) / variance(market) over the
// date intersection of the two return series. Fewer than two overlapping
// points, or a flat market, yields the neutral beta of 1.0.
func Beta(asset, market []model.ReturnPoint) float64 {
	assetVals, marketVals := intersect(asset, market)
	if len(assetVals) < 2 {
		return 1.0
	}

	marketVariance := variance(marketVals)
	if marketVariance == 0 {
		return 1.0
	}
	return covariance(assetVals, marketVals) / marketVariance
}

// Correlation computes the Pearson correlation of two return series over
// their date intersection. Fewer than two overlapping points, or a series
// with zero variance, yields 0.0.
func Correlation(returns1, returns2 []model.ReturnPoint) float64 {
	vals1, vals2 := intersect(returns1, returns2)
	if len(vals1) < 2 {
		return 0.0
	}

	std1 := stdDev(vals1)
	std2 := stdDev(vals2)
	if std1 == 0 || std2 == 0 {
		return 0.0
	}
	return covariance(vals1, vals2) / (std1 * std2)
}

// SharpeRatio computes the annualized Sharpe ratio of a daily return
// series against an annual risk-free rate expressed as a fraction
// (0.02 = 2%). The rate is de-annualized by periodsPerYear to a daily
// rate before the excess is taken. Zero volatility yields 0.0.
func SharpeRatio(returns []model.ReturnPoint, riskFreeRate float64, periodsPerYear int) float64 {
	vals := returnValues(returns)
	vol := stdDev(vals)
	if vol == 0 {
		return 0.0
	}

	dailyRate := riskFreeRate / float64(periodsPerYear)
	excess := make([]float64, len(vals))
	for i, v := range vals {
		excess[i] = v - dailyRate
	}
	return mean(excess) / vol * math.Sqrt(float64(periodsPerYear))
}

// intersect inner-joins two return series on date, preserving ascending
// order, and returns the paired values. Both inputs are date-ascending.
func intersect(a, b []model.ReturnPoint) (aVals, bVals []float64) {
	byDate := make(map[time.Time]float64, len(b))
	for _, p := range b {
		byDate[p.Date] = p.Return
	}
	for _, p := range a {
		if v, ok := byDate[p.Date]; ok {
			aVals = append(aVals, p.Return)
			bVals = append(bVals, v)
		}
	}
	return aVals, bVals
}

func returnValues(returns []model.ReturnPoint) []float64 {
	vals := make([]float64, len(returns))
	for i, r := range returns {
		vals[i] = r.Return
	}
	return vals
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// variance is the sample variance (n-1 denominator).
func variance(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m := mean(vals)
	var sum float64
	for _, v := range vals {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(vals)-1)
}

func stdDev(vals []float64) float64 {
	return math.Sqrt(variance(vals))
}

// covariance is the sample covariance (n-1 denominator) of two equal
// length slices.
func covariance(a, b []float64) float64 {
	if len(a) < 2 {
		return 0
	}
	meanA := mean(a)
	meanB := mean(b)
	var sum float64
	for i := range a {
		sum += (a[i] - meanA) * (b[i] - meanB)
	}
	return sum / float64(len(a)-1)
}
