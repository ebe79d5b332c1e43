package service_test

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/rvallee/portfolio-analytics/internal/model"
	"github.com/rvallee/portfolio-analytics/internal/testutil"
)

// TestHistoricalVolatility tests the headline volatility figure.
func TestHistoricalVolatility(t *testing.T) {
	t.Run("flat prices carry zero volatility", func(t *testing.T) {
		source := testutil.NewFakeSource()
		source.Histories["AAPL"] = testutil.DailySeries(t, "2024-02-01", 30, 100, 0)
		svc := testutil.NewTestAnalyticsService(t, source, "2024-03-01")
		positions := []model.EnrichedPosition{testutil.Position(t, "AAPL", 1000, 900, "2024-02-01")}

		if got := svc.HistoricalVolatility(context.Background(), positions, model.Period1M); got != 0 {
			t.Errorf("Expected 0 volatility for flat prices, got %v", got)
		}
	})

	t.Run("moving prices carry positive volatility", func(t *testing.T) {
		source := testutil.NewFakeSource()
		source.Histories["AAPL"] = testutil.SeriesFromCloses(t, "2024-02-20", 100, 104, 99, 108, 103, 110, 105)
		svc := testutil.NewTestAnalyticsService(t, source, "2024-03-01")
		positions := []model.EnrichedPosition{testutil.Position(t, "AAPL", 1000, 900, "2024-02-20")}

		if got := svc.HistoricalVolatility(context.Background(), positions, model.Period1M); got <= 0 {
			t.Errorf("Expected positive volatility, got %v", got)
		}
	})

	t.Run("no positions yields zero", func(t *testing.T) {
		svc := testutil.NewTestAnalyticsService(t, testutil.NewFakeSource(), "2024-03-01")

		if got := svc.HistoricalVolatility(context.Background(), nil, model.Period1M); got != 0 {
			t.Errorf("Expected 0 volatility for empty portfolio, got %v", got)
		}
	})

	t.Run("no usable history yields zero", func(t *testing.T) {
		svc := testutil.NewTestAnalyticsService(t, testutil.NewFakeSource(), "2024-03-01")
		positions := []model.EnrichedPosition{testutil.Position(t, "DELISTED", 1000, 900, "2024-02-01")}

		if got := svc.HistoricalVolatility(context.Background(), positions, model.Period1M); got != 0 {
			t.Errorf("Expected 0 volatility without history, got %v", got)
		}
	})
}

// TestRealizedVolatility tests the holding-period volatility variant.
//
// WHY: Realized volatility looks back only as far as the holder has
// actually owned each instrument, truncating every return series to the
// shortest holding so the weighted combination lines up tail-to-tail.
func TestRealizedVolatility(t *testing.T) {
	t.Run("single position uses its holding window", func(t *testing.T) {
		// Setup: history exists from February but the position was
		// acquired on March 1st; only the March tail may count. The
		// February prices swing wildly, the March prices are flat.
		source := testutil.NewFakeSource()
		february := testutil.SeriesFromCloses(t, "2024-02-01", 100, 150, 80, 160, 90)
		march := testutil.DailySeries(t, "2024-03-01", 10, 120, 0)
		source.Histories["AAPL"] = append(february, march...)
		svc := testutil.NewTestAnalyticsService(t, source, "2024-03-10")
		positions := []model.EnrichedPosition{testutil.Position(t, "AAPL", 1200, 1000, "2024-03-01")}

		// Execute
		got := svc.RealizedVolatility(context.Background(), positions)

		// Assert: the flat holding period carries no volatility.
		if got != 0 {
			t.Errorf("Expected 0 realized volatility over the flat holding period, got %v", got)
		}
	})

	t.Run("skips positions held under two days", func(t *testing.T) {
		source := testutil.NewFakeSource()
		source.Histories["AAPL"] = testutil.SeriesFromCloses(t, "2024-03-09", 100, 150)
		svc := testutil.NewTestAnalyticsService(t, source, "2024-03-10")
		positions := []model.EnrichedPosition{testutil.Position(t, "AAPL", 1500, 1000, "2024-03-09")}

		if got := svc.RealizedVolatility(context.Background(), positions); got != 0 {
			t.Errorf("Expected 0 for a day-old position, got %v", got)
		}
	})

	t.Run("skips positions without an acquisition date", func(t *testing.T) {
		source := testutil.NewFakeSource()
		source.Histories["AAPL"] = testutil.SeriesFromCloses(t, "2024-03-01", 100, 150, 90)
		svc := testutil.NewTestAnalyticsService(t, source, "2024-03-10")
		positions := []model.EnrichedPosition{{Symbol: "AAPL", TotalValue: 1000}}

		if got := svc.RealizedVolatility(context.Background(), positions); got != 0 {
			t.Errorf("Expected 0 without acquisition dates, got %v", got)
		}
	})

	t.Run("combines staggered acquisitions by tail offset", func(t *testing.T) {
		// Setup: one position held ten days, the other four. Both move,
		// so the combined measure must be positive; the truncation to the
		// shorter tail must not panic or misindex.
		source := testutil.NewFakeSource()
		source.Histories["AAPL"] = testutil.SeriesFromCloses(t, "2024-03-01", 100, 104, 99, 108, 103, 110, 105, 112, 107, 115)
		source.Histories["MSFT"] = testutil.SeriesFromCloses(t, "2024-03-07", 300, 310, 295, 320)
		svc := testutil.NewTestAnalyticsService(t, source, "2024-03-10")
		positions := []model.EnrichedPosition{
			testutil.Position(t, "AAPL", 1150, 1000, "2024-03-01"),
			testutil.Position(t, "MSFT", 640, 600, "2024-03-07"),
		}

		// Execute
		got := svc.RealizedVolatility(context.Background(), positions)

		// Assert
		if got <= 0 {
			t.Errorf("Expected positive realized volatility, got %v", got)
		}
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Errorf("Expected a finite figure, got %v", got)
		}
	})
}

// TestPortfolioBeta tests beta against the benchmark index.
func TestPortfolioBeta(t *testing.T) {
	t.Run("portfolio tracking the index has beta near one", func(t *testing.T) {
		// Setup: the single position moves identically to the benchmark.
		source := testutil.NewFakeSource()
		closes := []float64{5000, 5100, 4950, 5200, 5150, 5250}
		source.Histories["^GSPC"] = testutil.SeriesFromCloses(t, "2024-02-20", closes...)
		source.Histories["SPY"] = testutil.SeriesFromCloses(t, "2024-02-20", closes...)
		svc := testutil.NewTestAnalyticsService(t, source, "2024-03-01")
		positions := []model.EnrichedPosition{testutil.Position(t, "SPY", 1000, 900, "2024-02-20")}

		// Execute
		got := svc.PortfolioBeta(context.Background(), positions, model.Period1M)

		// Assert
		if math.Abs(got-1.0) > 1e-9 {
			t.Errorf("Expected beta 1.0 for an index tracker, got %v", got)
		}
	})

	t.Run("missing benchmark history yields neutral beta", func(t *testing.T) {
		source := testutil.NewFakeSource()
		source.Histories["AAPL"] = testutil.SeriesFromCloses(t, "2024-02-20", 100, 104, 99)
		svc := testutil.NewTestAnalyticsService(t, source, "2024-03-01")
		positions := []model.EnrichedPosition{testutil.Position(t, "AAPL", 1000, 900, "2024-02-20")}

		if got := svc.PortfolioBeta(context.Background(), positions, model.Period1M); got != 1.0 {
			t.Errorf("Expected neutral beta 1.0 without benchmark data, got %v", got)
		}
	})

	t.Run("no position history yields neutral beta", func(t *testing.T) {
		source := testutil.NewFakeSource()
		source.Histories["^GSPC"] = testutil.SeriesFromCloses(t, "2024-02-20", 5000, 5100, 4950)
		svc := testutil.NewTestAnalyticsService(t, source, "2024-03-01")
		positions := []model.EnrichedPosition{testutil.Position(t, "DELISTED", 1000, 900, "2024-02-20")}

		if got := svc.PortfolioBeta(context.Background(), positions, model.Period1M); got != 1.0 {
			t.Errorf("Expected neutral beta 1.0 without position data, got %v", got)
		}
	})
}

// TestSharpeRatio tests the portfolio Sharpe figures.
func TestSharpeRatio(t *testing.T) {
	t.Run("rising portfolio has positive Sharpe", func(t *testing.T) {
		source := testutil.NewFakeSource()
		source.Histories["AAPL"] = testutil.SeriesFromCloses(t, "2024-02-20", 100, 102, 101, 104, 103, 106)
		svc := testutil.NewTestAnalyticsService(t, source, "2024-03-01")
		positions := []model.EnrichedPosition{testutil.Position(t, "AAPL", 1060, 1000, "2024-02-20")}

		if got := svc.SharpeRatio(context.Background(), positions, model.Period1M); got <= 0 {
			t.Errorf("Expected positive Sharpe ratio, got %v", got)
		}
	})

	t.Run("no history yields zero", func(t *testing.T) {
		svc := testutil.NewTestAnalyticsService(t, testutil.NewFakeSource(), "2024-03-01")
		positions := []model.EnrichedPosition{testutil.Position(t, "DELISTED", 1000, 900, "2024-02-20")}

		if got := svc.SharpeRatio(context.Background(), positions, model.Period1M); got != 0 {
			t.Errorf("Expected 0 Sharpe without history, got %v", got)
		}
	})

	t.Run("custom variant uses aggregate return over volatility", func(t *testing.T) {
		// Setup: portfolio up 20% on invested capital with real price
		// movement backing the volatility denominator.
		source := testutil.NewFakeSource()
		source.Histories["AAPL"] = testutil.SeriesFromCloses(t, "2024-02-20", 100, 104, 99, 108, 103, 110)
		svc := testutil.NewTestAnalyticsService(t, source, "2024-03-01")
		positions := []model.EnrichedPosition{testutil.Position(t, "AAPL", 1200, 1000, "2024-02-20")}

		// Execute
		got := svc.SharpeRatioCustom(context.Background(), positions, model.Period1M)

		// Assert: (20 - 3) / historical volatility.
		vol := svc.HistoricalVolatility(context.Background(), positions, model.Period1M)
		want := (20.0 - 3.0) / vol
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("Expected custom Sharpe %v, got %v", want, got)
		}
	})

	t.Run("custom variant is zero when volatility is zero", func(t *testing.T) {
		source := testutil.NewFakeSource()
		source.Histories["AAPL"] = testutil.DailySeries(t, "2024-02-20", 10, 100, 0)
		svc := testutil.NewTestAnalyticsService(t, source, "2024-03-01")
		positions := []model.EnrichedPosition{testutil.Position(t, "AAPL", 1200, 1000, "2024-02-20")}

		if got := svc.SharpeRatioCustom(context.Background(), positions, model.Period1M); got != 0 {
			t.Errorf("Expected 0 custom Sharpe with zero volatility, got %v", got)
		}
	})
}

// TestCorrelationMatrix tests pairwise correlation output.
func TestCorrelationMatrix(t *testing.T) {
	t.Run("reports each unordered pair once", func(t *testing.T) {
		// Setup: three symbols, the third uncorrelated with the first two.
		source := testutil.NewFakeSource()
		source.Histories["AAPL"] = testutil.SeriesFromCloses(t, "2024-02-20", 100, 104, 99, 108, 103)
		source.Histories["MSFT"] = testutil.SeriesFromCloses(t, "2024-02-20", 200, 208, 198, 216, 206)
		source.Histories["GLD"] = testutil.SeriesFromCloses(t, "2024-02-20", 50, 50, 50, 50, 50)
		svc := testutil.NewTestAnalyticsService(t, source, "2024-03-01")

		// Execute
		matrix := svc.CorrelationMatrix(context.Background(), []string{"AAPL", "MSFT", "GLD"}, model.Period1M)

		// Assert
		if len(matrix) != 3 {
			t.Fatalf("Expected 3 pairs, got %d", len(matrix))
		}
		byPair := make(map[string]float64, len(matrix))
		for _, c := range matrix {
			byPair[c.Symbol1+"/"+c.Symbol2] = c.Correlation
		}
		if got := byPair["AAPL/MSFT"]; got != 1.0 {
			t.Errorf("Expected perfect correlation for proportional series, got %v", got)
		}
		if got := byPair["AAPL/GLD"]; got != 0.0 {
			t.Errorf("Expected 0.0 against a flat series, got %v", got)
		}
	})

	t.Run("drops symbols without history", func(t *testing.T) {
		source := testutil.NewFakeSource()
		source.Histories["AAPL"] = testutil.SeriesFromCloses(t, "2024-02-20", 100, 104, 99)
		svc := testutil.NewTestAnalyticsService(t, source, "2024-03-01")

		matrix := svc.CorrelationMatrix(context.Background(), []string{"AAPL", "DELISTED"}, model.Period1M)

		if len(matrix) != 0 {
			t.Errorf("Expected empty matrix with one usable symbol, got %d pairs", len(matrix))
		}
	})
}

// TestPortfolioSummary tests the composed metrics block.
func TestPortfolioSummary(t *testing.T) {
	t.Run("zero positions yield the neutral summary", func(t *testing.T) {
		svc := testutil.NewTestAnalyticsService(t, testutil.NewFakeSource(), "2024-03-01")

		metrics := svc.PortfolioSummary(context.Background(), nil, model.Period1M)

		if metrics.Beta != 1.0 {
			t.Errorf("Expected neutral beta 1.0, got %v", metrics.Beta)
		}
		if metrics.TotalValue != 0 || metrics.TotalInvested != 0 {
			t.Errorf("Expected zero valuation, got %v / %v", metrics.TotalValue, metrics.TotalInvested)
		}
		if metrics.Volatility.Historical != 0 || metrics.Volatility.Realized != 0 {
			t.Errorf("Expected zero volatility, got %+v", metrics.Volatility)
		}
		if metrics.SharpeRatio != 0 {
			t.Errorf("Expected zero Sharpe, got %v", metrics.SharpeRatio)
		}
	})

	t.Run("aggregates valuation across positions", func(t *testing.T) {
		// Setup
		source := testutil.NewFakeSource()
		source.Histories["AAPL"] = testutil.SeriesFromCloses(t, "2024-02-20", 100, 104, 99, 108)
		svc := testutil.NewTestAnalyticsService(t, source, "2024-03-01")
		positions := []model.EnrichedPosition{
			testutil.Position(t, "AAPL", 1500, 1000, "2024-02-20"),
			testutil.Position(t, "AAPL", 750, 500, "2024-02-20"),
		}

		// Execute
		metrics := svc.PortfolioSummary(context.Background(), positions, model.Period1M)

		// Assert
		if metrics.TotalValue != 2250 {
			t.Errorf("Expected total value 2250, got %v", metrics.TotalValue)
		}
		if metrics.TotalInvested != 1500 {
			t.Errorf("Expected total invested 1500, got %v", metrics.TotalInvested)
		}
		if metrics.TotalGainLoss != 750 {
			t.Errorf("Expected gain 750, got %v", metrics.TotalGainLoss)
		}
		if metrics.GainLossPercent != 50 {
			t.Errorf("Expected 50%% gain, got %v", metrics.GainLossPercent)
		}
	})
}

// TestRecommendations tests the heuristic thresholds and wording.
//
// WHY: Each rule has a hard documented threshold. The boundary tests pin
// them so a refactor cannot silently move a cutoff.
func TestRecommendations(t *testing.T) {
	svc := testutil.NewTestAnalyticsService(t, testutil.NewFakeSource(), "2024-03-01")

	titles := func(recs []model.Recommendation) []string {
		out := make([]string, len(recs))
		for i, r := range recs {
			out[i] = r.Title
		}
		return out
	}
	hasTitle := func(recs []model.Recommendation, title string) bool {
		for _, r := range recs {
			if r.Title == title {
				return true
			}
		}
		return false
	}

	t.Run("flags concentration at 40 percent and above", func(t *testing.T) {
		// Setup: 40% exactly triggers; just under does not.
		positions := []model.EnrichedPosition{
			testutil.Position(t, "AAPL", 400, 300, "2024-01-01"),
			testutil.Position(t, "MSFT", 600, 500, "2024-01-01"),
		}

		// Execute
		recs := svc.Recommendations(positions, model.PortfolioMetrics{})

		// Assert
		if !hasTitle(recs, "High concentration") {
			t.Fatalf("Expected concentration warning at 40%%, got %v", titles(recs))
		}
		var rec model.Recommendation
		for _, r := range recs {
			if r.Title == "High concentration" {
				rec = r
			}
		}
		if rec.Type != model.RecommendationWarning || rec.Priority != model.PriorityHigh {
			t.Errorf("Expected high-priority warning, got %s/%s", rec.Type, rec.Priority)
		}
		if !strings.Contains(rec.Description, "AAPL") || !strings.Contains(rec.Description, "40.0%") {
			t.Errorf("Expected description naming AAPL at 40.0%%, got %q", rec.Description)
		}
		if rec.ID == "" {
			t.Error("Expected a generated recommendation ID")
		}

		below := []model.EnrichedPosition{
			testutil.Position(t, "AAPL", 399, 300, "2024-01-01"),
			testutil.Position(t, "MSFT", 601, 500, "2024-01-01"),
		}
		if hasTitle(svc.Recommendations(below, model.PortfolioMetrics{}), "High concentration") {
			t.Error("Expected no concentration warning below 40%")
		}
	})

	t.Run("flags position volatility above 50", func(t *testing.T) {
		volatile := testutil.Position(t, "BTC-USD", 100, 100, "2024-01-01")
		volatile.Volatility = 50.1
		calm := testutil.Position(t, "AAPL", 900, 900, "2024-01-01")
		calm.Volatility = 50.0

		recs := svc.Recommendations([]model.EnrichedPosition{volatile, calm}, model.PortfolioMetrics{})

		count := 0
		for _, r := range recs {
			if r.Title == "High volatility" {
				count++
				if !strings.Contains(r.Description, "BTC-USD") {
					t.Errorf("Expected volatility note for BTC-USD, got %q", r.Description)
				}
				if r.Type != model.RecommendationInfo || r.Priority != model.PriorityMedium {
					t.Errorf("Expected medium-priority info, got %s/%s", r.Type, r.Priority)
				}
			}
		}
		if count != 1 {
			t.Errorf("Expected exactly one volatility note, got %d", count)
		}
	})

	t.Run("classifies beta bands", func(t *testing.T) {
		tests := []struct {
			name      string
			beta      float64
			wantTitle string
		}{
			{"balanced at lower bound", 0.9, "Balanced market exposure"},
			{"balanced at upper bound", 1.3, "Balanced market exposure"},
			{"no note between bands", 1.4, ""},
			{"high above 1.5", 1.51, "High market exposure"},
			{"no note below balanced", 0.5, ""},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				recs := svc.Recommendations(nil, model.PortfolioMetrics{Beta: tt.beta})

				got := ""
				for _, r := range recs {
					if r.Title == "Balanced market exposure" || r.Title == "High market exposure" {
						got = r.Title
					}
				}
				if got != tt.wantTitle {
					t.Errorf("Expected title %q for beta %v, got %q", tt.wantTitle, tt.beta, got)
				}
			})
		}
	})

	t.Run("flags Sharpe above one", func(t *testing.T) {
		recs := svc.Recommendations(nil, model.PortfolioMetrics{SharpeRatio: 1.01})
		if !hasTitle(recs, "Good risk-adjusted return") {
			t.Errorf("Expected Sharpe note, got %v", titles(recs))
		}

		recs = svc.Recommendations(nil, model.PortfolioMetrics{SharpeRatio: 1.0})
		if hasTitle(recs, "Good risk-adjusted return") {
			t.Error("Expected no Sharpe note at exactly 1.0")
		}
	})

	t.Run("evaluates rules in a fixed order", func(t *testing.T) {
		// Setup: trigger concentration, volatility, beta, and Sharpe at
		// once.
		concentrated := testutil.Position(t, "BTC-USD", 1000, 800, "2024-01-01")
		concentrated.Volatility = 80

		recs := svc.Recommendations(
			[]model.EnrichedPosition{concentrated},
			model.PortfolioMetrics{Beta: 1.1, SharpeRatio: 1.5},
		)

		want := []string{"High concentration", "High volatility", "Balanced market exposure", "Good risk-adjusted return"}
		got := titles(recs)
		if len(got) != len(want) {
			t.Fatalf("Expected %d recommendations, got %v", len(want), got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("Expected %q at position %d, got %q", want[i], i, got[i])
			}
		}
	})

	t.Run("empty portfolio yields a non-nil empty slice", func(t *testing.T) {
		recs := svc.Recommendations(nil, model.PortfolioMetrics{})
		if recs == nil {
			t.Fatal("Expected non-nil slice")
		}
		if len(recs) != 0 {
			t.Errorf("Expected no recommendations, got %v", titles(recs))
		}
	})
}
