package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rvallee/portfolio-analytics/internal/api"
	"github.com/rvallee/portfolio-analytics/internal/config"
	"github.com/rvallee/portfolio-analytics/internal/database"
	"github.com/rvallee/portfolio-analytics/internal/marketdata"
	"github.com/rvallee/portfolio-analytics/internal/pricestore"
	"github.com/rvallee/portfolio-analytics/internal/service"
	"github.com/rvallee/portfolio-analytics/internal/yahoo"
)

// cacheMaxLag is how far the cached history may trail today before a
// request goes back upstream. Wide enough to span a long weekend.
const cacheMaxLag = 4 * 24 * time.Hour

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open price cache database and apply migrations
	db, err := database.Open(cfg.Cache.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Printf("Connected to price cache: %s", cfg.Cache.DBPath)

	// Wire the market data source: Yahoo behind the local price cache
	financeClient := yahoo.NewFinanceClient(cfg.Market.RequestsPerSecond)
	fxCache := marketdata.NewRateCache(cfg.Cache.FXRateTTL, cfg.Cache.FXRateMaxEntries)
	yahooSource := marketdata.NewYahooSource(financeClient, fxCache, cfg.Market.FetchTimeout)
	store := pricestore.NewStore(db)
	source := marketdata.NewCachingSource(yahooSource, store, cacheMaxLag)

	// Create services
	systemService := service.NewSystemService(db)
	performanceService := service.NewPerformanceService(source)
	analyticsService := service.NewAnalyticsService(source, cfg.Market)
	enrichmentService := service.NewEnrichmentService(source, analyticsService)
	refreshService := service.NewRefreshService(yahooSource, store)

	// Schedule the price cache refresh
	scheduler := cron.New()
	if err := refreshService.Schedule(scheduler, cfg.Cache.RefreshSchedule); err != nil {
		log.Fatalf("Failed to schedule price refresh: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Create router
	router := api.NewRouter(systemService, performanceService, analyticsService, enrichmentService, source, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
