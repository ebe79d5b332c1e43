package testutil

import (
	"testing"
	"time"

	"github.com/rvallee/portfolio-analytics/internal/config"
	"github.com/rvallee/portfolio-analytics/internal/marketdata"
	"github.com/rvallee/portfolio-analytics/internal/service"
)

// TestMarketConfig is the deterministic metrics configuration used
// across service tests.
func TestMarketConfig() config.MarketConfig {
	return config.MarketConfig{
		BenchmarkSymbol:    "^GSPC",
		BaseCurrency:       "EUR",
		RiskFreeRate:       0.02,
		CustomRiskFreeRate: 3.0,
		AnnualizationDays:  252,
		FetchTimeout:       time.Second,
		RequestsPerSecond:  0,
	}
}

// FixedClock returns a clock function pinned to the given date.
func FixedClock(t *testing.T, date string) func() time.Time {
	t.Helper()
	at := Date(t, date)
	return func() time.Time { return at }
}

// NewTestAnalyticsService builds an analytics service over a source with
// its clock pinned to the given date.
func NewTestAnalyticsService(t *testing.T, source marketdata.Source, today string) *service.AnalyticsService {
	t.Helper()
	svc := service.NewAnalyticsService(source, TestMarketConfig())
	svc.SetClock(FixedClock(t, today))
	return svc
}

// NewTestPerformanceService builds a performance service over a source
// with its clock pinned to the given date.
func NewTestPerformanceService(t *testing.T, source marketdata.Source, today string) *service.PerformanceService {
	t.Helper()
	svc := service.NewPerformanceService(source)
	svc.SetClock(FixedClock(t, today))
	return svc
}

// NewTestEnrichmentService builds an enrichment service with its clock
// pinned to the given date.
func NewTestEnrichmentService(t *testing.T, source marketdata.Source, today string) *service.EnrichmentService {
	t.Helper()
	svc := service.NewEnrichmentService(source, NewTestAnalyticsService(t, source, today))
	svc.SetClock(FixedClock(t, today))
	return svc
}
