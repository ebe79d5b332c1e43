package yahoo

import "time"

// ChartResponse maps the raw JSON of the Yahoo Finance chart API.
//
// Layout of interest:
//   - Chart.Result: array of result objects (one element in practice)
//   - Chart.Result[].Meta: symbol metadata (currency, exchange)
//   - Chart.Result[].Timestamp: Unix timestamps, one per data point
//   - Chart.Result[].Indicators.Quote[0]: parallel OHLCV arrays
//   - Chart.Error: optional error reported by the API itself
type ChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency     string `json:"currency"`
				Symbol       string `json:"symbol"`
				ExchangeName string `json:"exchangeName"`
				LongName     string `json:"longName"`
				ShortName    string `json:"shortName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *string `json:"error"`
	} `json:"chart"`
}

// Chart is the parsed, type-safe form of a chart response: symbol metadata
// plus one Bar per trading day of the instrument's native calendar.
type Chart struct {
	Symbol   string
	Currency string
	Exchange string
	Name     string
	Bars     []Bar
}

// Bar is one trading day of OHLCV data. Date carries midnight UTC; the
// upstream intraday timestamp is deliberately discarded because the rest
// of the system joins series on calendar dates.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// LastClose returns the most recent closing price of the chart, and false
// when the chart holds no bars.
func (c Chart) LastClose() (float64, bool) {
	if len(c.Bars) == 0 {
		return 0, false
	}
	return c.Bars[len(c.Bars)-1].Close, true
}
