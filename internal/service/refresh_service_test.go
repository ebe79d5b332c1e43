package service_test

import (
	"context"
	"testing"

	"github.com/rvallee/portfolio-analytics/internal/pricestore"
	"github.com/rvallee/portfolio-analytics/internal/service"
	"github.com/rvallee/portfolio-analytics/internal/testutil"
)

// TestRefreshAll tests the scheduled cache warm-up sweep.
func TestRefreshAll(t *testing.T) {
	t.Run("extends coverage of every tracked symbol", func(t *testing.T) {
		// Setup: the store knows AAPL up to March 5th; the upstream has
		// history through the 10th.
		store := pricestore.NewStore(testutil.SetupTestDB(t))
		if err := store.SavePoints("AAPL", testutil.SeriesFromCloses(t, "2024-03-01", 100, 101, 102, 103, 104)); err != nil {
			t.Fatalf("Failed to seed store: %v", err)
		}
		upstream := testutil.NewFakeSource()
		upstream.Histories["AAPL"] = testutil.DailySeries(t, "2024-03-01", 10, 100, 1)
		svc := service.NewRefreshService(upstream, store)
		svc.SetClock(testutil.FixedClock(t, "2024-03-10"))

		// Execute
		svc.RefreshAll(context.Background())

		// Assert
		coverage, err := store.GetCoverage("AAPL")
		if err != nil {
			t.Fatalf("Failed to read coverage: %v", err)
		}
		if !coverage.LastDate.Equal(testutil.Date(t, "2024-03-10")) {
			t.Errorf("Expected coverage extended to 2024-03-10, got %v", coverage.LastDate)
		}
		points, err := store.Points("AAPL", testutil.Date(t, "2024-03-01"), testutil.Date(t, "2024-03-10"))
		if err != nil {
			t.Fatalf("Failed to read points: %v", err)
		}
		if len(points) != 10 {
			t.Errorf("Expected 10 cached points after refresh, got %d", len(points))
		}
	})

	t.Run("one failing symbol does not stop the sweep", func(t *testing.T) {
		// Setup: two tracked symbols, only one still resolvable upstream.
		store := pricestore.NewStore(testutil.SetupTestDB(t))
		for _, symbol := range []string{"AAPL", "DELISTED"} {
			if err := store.SavePoints(symbol, testutil.SeriesFromCloses(t, "2024-03-01", 100, 101)); err != nil {
				t.Fatalf("Failed to seed %s: %v", symbol, err)
			}
		}
		upstream := testutil.NewFakeSource()
		upstream.Histories["AAPL"] = testutil.DailySeries(t, "2024-03-01", 8, 100, 1)
		svc := service.NewRefreshService(upstream, store)
		svc.SetClock(testutil.FixedClock(t, "2024-03-08"))

		// Execute
		svc.RefreshAll(context.Background())

		// Assert: the healthy symbol was still refreshed.
		coverage, err := store.GetCoverage("AAPL")
		if err != nil {
			t.Fatalf("Failed to read coverage: %v", err)
		}
		if !coverage.LastDate.Equal(testutil.Date(t, "2024-03-08")) {
			t.Errorf("Expected AAPL extended to 2024-03-08, got %v", coverage.LastDate)
		}
	})

	t.Run("empty store is a no-op", func(t *testing.T) {
		store := pricestore.NewStore(testutil.SetupTestDB(t))
		upstream := testutil.NewFakeSource()
		svc := service.NewRefreshService(upstream, store)

		svc.RefreshAll(context.Background())

		if len(upstream.HistoryCalls) != 0 {
			t.Errorf("Expected no upstream calls for an empty store, got %d", len(upstream.HistoryCalls))
		}
	})
}
