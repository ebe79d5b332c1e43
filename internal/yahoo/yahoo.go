package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the production Yahoo Finance chart endpoint prefix.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// FinanceClient fetches daily price charts and spot quotes from the Yahoo
// Finance chart API. All outgoing requests pass through a shared rate
// limiter so that batch portfolio computations, which fetch one chart per
// distinct symbol, do not hammer the upstream.
type FinanceClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// NewFinanceClient creates a client throttled to requestsPerSecond.
// A non-positive rate disables throttling.
func NewFinanceClient(requestsPerSecond float64) *FinanceClient {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &FinanceClient{
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(limit, 1),
		baseURL:    DefaultBaseURL,
	}
}

// SetBaseURL overrides the API endpoint prefix. Used by tests to point the
// client at a local server.
func (c *FinanceClient) SetBaseURL(baseURL string) {
	c.baseURL = strings.TrimRight(baseURL, "/")
}

// ChartByRange fetches daily bars using Yahoo's relative range format
// ("5d", "1mo", "1y", "2y", ...), which selects the most recent trading
// days of the instrument's own calendar.
func (c *FinanceClient) ChartByRange(ctx context.Context, symbol, chartRange string) (Chart, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s", c.baseURL, symbol, chartRange)
	return c.fetchChart(ctx, symbol, url)
}

// ChartByDateRange fetches daily bars between two dates (inclusive) using
// Yahoo's Unix-timestamp period format.
func (c *FinanceClient) ChartByDateRange(ctx context.Context, symbol string, start, end time.Time) (Chart, error) {
	url := fmt.Sprintf(
		"%s/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d",
		c.baseURL,
		symbol,
		start.Unix(),
		end.Unix(),
	)
	return c.fetchChart(ctx, symbol, url)
}

// FXPairSymbol builds the Yahoo ticker for a currency pair, e.g.
// FXPairSymbol("USD", "EUR") -> "USDEUR=X".
func FXPairSymbol(from, to string) string {
	return strings.ToUpper(from) + strings.ToUpper(to) + "=X"
}

// fetchChart executes a chart query and parses the result into bars.
func (c *FinanceClient) fetchChart(ctx context.Context, symbol, url string) (Chart, error) {
	response, err := c.query(ctx, url)
	if err != nil {
		return Chart{}, err
	}
	if len(response.Chart.Result) == 0 {
		return Chart{}, fmt.Errorf("no results returned for symbol %s", symbol)
	}
	return parseChart(response)
}

// parseChart converts a raw chart response into a Chart, validating that
// the timestamp and close arrays are present and of matching length.
func parseChart(response ChartResponse) (Chart, error) {
	result := response.Chart.Result[0]

	if len(result.Timestamp) == 0 {
		return Chart{}, fmt.Errorf("no price data returned")
	}
	if len(result.Indicators.Quote) == 0 || len(result.Indicators.Quote[0].Close) == 0 {
		return Chart{}, fmt.Errorf("no close prices returned")
	}
	quote := result.Indicators.Quote[0]
	if len(quote.Close) != len(result.Timestamp) {
		return Chart{}, fmt.Errorf("mismatched data lengths")
	}

	bars := make([]Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		// The API reports null closes as 0 for halted days; those carry no
		// price information and are skipped.
		if quote.Close[i] <= 0 {
			continue
		}
		bar := Bar{
			Date:  time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Close: quote.Close[i],
		}
		if i < len(quote.Open) {
			bar.Open = quote.Open[i]
		}
		if i < len(quote.High) {
			bar.High = quote.High[i]
		}
		if i < len(quote.Low) {
			bar.Low = quote.Low[i]
		}
		if i < len(quote.Volume) {
			bar.Volume = quote.Volume[i]
		}
		bars = append(bars, bar)
	}

	return Chart{
		Symbol:   result.Meta.Symbol,
		Currency: result.Meta.Currency,
		Exchange: result.Meta.ExchangeName,
		Name:     result.Meta.LongName,
		Bars:     bars,
	}, nil
}

// query executes a single rate-limited HTTP request against the chart API.
func (c *FinanceClient) query(ctx context.Context, url string) (ChartResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return ChartResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ChartResponse{}, err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ChartResponse{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return ChartResponse{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return ChartResponse{}, fmt.Errorf("yahoo returned status %d", resp.StatusCode)
	}

	var response ChartResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return ChartResponse{}, err
	}

	if response.Chart.Error != nil {
		return response, fmt.Errorf("yahoo error: %s", *response.Chart.Error)
	}

	return response, nil
}
