package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server ServerConfig
	CORS   CORSConfig
	Market MarketConfig
	Cache  CacheConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// MarketConfig holds market data and metrics configuration
type MarketConfig struct {
	// BenchmarkSymbol is the default index used for beta and comparisons.
	BenchmarkSymbol string
	// BaseCurrency is the currency all monetary values are reported in.
	BaseCurrency string
	// RiskFreeRate is the annual risk-free rate as a fraction (0.02 = 2%),
	// used by the returns-based Sharpe ratio.
	RiskFreeRate float64
	// CustomRiskFreeRate is the annual risk-free rate in percent units
	// (3.0 = 3%), used by the aggregate-return Sharpe variant.
	CustomRiskFreeRate float64
	// AnnualizationDays is the trading-period count used to annualize
	// volatility and Sharpe figures. It is applied uniformly to every
	// instrument, including 24/7 ones.
	AnnualizationDays int
	// FetchTimeout bounds a single upstream history or quote fetch.
	FetchTimeout time.Duration
	// RequestsPerSecond throttles calls to the upstream provider.
	RequestsPerSecond float64
}

// CacheConfig holds configuration for the local caches
type CacheConfig struct {
	// DBPath locates the SQLite price history cache.
	DBPath string
	// FXRateTTL is how long a fetched exchange rate stays valid.
	FXRateTTL time.Duration
	// FXRateMaxEntries bounds the exchange rate cache size.
	FXRateMaxEntries int
	// RefreshSchedule is the cron spec for refreshing cached histories.
	RefreshSchedule string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		Market: MarketConfig{
			BenchmarkSymbol:    getEnv("MARKET_BENCHMARK", "^GSPC"),
			BaseCurrency:       getEnv("MARKET_BASE_CURRENCY", "EUR"),
			RiskFreeRate:       getEnvFloat("MARKET_RISK_FREE_RATE", 0.02),
			CustomRiskFreeRate: getEnvFloat("MARKET_CUSTOM_RISK_FREE_RATE", 3.0),
			AnnualizationDays:  getEnvInt("MARKET_ANNUALIZATION_DAYS", 252),
			FetchTimeout:       getEnvDuration("MARKET_FETCH_TIMEOUT", 10*time.Second),
			RequestsPerSecond:  getEnvFloat("MARKET_REQUESTS_PER_SECOND", 5),
		},
		Cache: CacheConfig{
			DBPath:           getEnv("CACHE_DB_PATH", "./data/price_cache.db"),
			FXRateTTL:        getEnvDuration("CACHE_FX_TTL", 5*time.Minute),
			FXRateMaxEntries: getEnvInt("CACHE_FX_MAX_ENTRIES", 64),
			RefreshSchedule:  getEnv("CACHE_REFRESH_SCHEDULE", "30 6 * * *"),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvFloat gets a float environment variable or returns a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// getEnvDuration gets a duration environment variable or returns a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
