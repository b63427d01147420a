package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"StockPredictor/internal/apperr"
	"StockPredictor/internal/model"

	"github.com/go-resty/resty/v2"
)

// DefaultAlphaVantageURL is the public Alpha Vantage endpoint.
const DefaultAlphaVantageURL = "https://www.alphavantage.co"

// AlphaVantageFetcher implements Fetcher using the TIME_SERIES_DAILY function.
type AlphaVantageFetcher struct {
	BaseURL string
	APIKey  string
	Client  *resty.Client
}

// NewAlphaVantageFetcher creates a fetcher. An empty baseURL selects the public endpoint.
func NewAlphaVantageFetcher(baseURL, apiKey string, client *resty.Client) *AlphaVantageFetcher {
	if baseURL == "" {
		baseURL = DefaultAlphaVantageURL
	}
	return &AlphaVantageFetcher{BaseURL: baseURL, APIKey: apiKey, Client: client}
}

func (f *AlphaVantageFetcher) Name() string { return "alphavantage" }

// avEnvelope holds the top-level keys that decide whether a 200 is usable.
type avEnvelope struct {
	ErrorMessage string         `json:"Error Message"`
	Note         string         `json:"Note"`
	Information  string         `json:"Information"`
	MetaData     map[string]any `json:"Meta Data"`
}

const (
	avSeriesKey = "Time Series (Daily)"
	avOpen      = "1. open"
	avHigh      = "2. high"
	avLow       = "3. low"
	avClose     = "4. close"
	avVolume    = "5. volume"
)

func (f *AlphaVantageFetcher) Fetch(ctx context.Context, symbol string) (*RawSeries, error) {
	body, err := getJSON(ctx, f.Client, f.Name(), f.BaseURL+"/query", map[string]string{
		"function":   "TIME_SERIES_DAILY",
		"symbol":     symbol,
		"apikey":     f.APIKey,
		"outputsize": "compact",
	})
	if err != nil {
		return nil, err
	}

	var env avEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, apperr.Upstream("Invalid response from upstream API.",
			&UpstreamError{Provider: f.Name(), Reason: ReasonMalformedBody, Err: err})
	}
	if env.ErrorMessage != "" {
		return nil, apperr.Upstream(fmt.Sprintf("Invalid stock symbol: %s", symbol),
			&UpstreamError{Provider: f.Name(), Reason: ReasonInvalidSymbol})
	}
	if env.Note != "" || env.Information != "" {
		return nil, rateLimited(f.Name())
	}
	if env.MetaData == nil {
		env.MetaData = map[string]any{}
	}

	return &RawSeries{
		Provider:  f.Name(),
		Symbol:    symbol,
		Meta:      env.MetaData,
		Body:      body,
		FetchedAt: time.Now(),
	}, nil
}

func (f *AlphaVantageFetcher) Normalize(raw *RawSeries) []model.DailyBar {
	bars := []model.DailyBar{}
	if raw == nil || len(raw.Body) == 0 {
		return bars
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw.Body, &doc); err != nil {
		return bars
	}
	seriesRaw, ok := doc[avSeriesKey]
	if !ok {
		return bars
	}
	var series map[string]json.RawMessage
	if err := json.Unmarshal(seriesRaw, &series); err != nil {
		slog.Warn("alphavantage: time series is not an object", "symbol", raw.Symbol, "error", err)
		return bars
	}

	skipped := 0
	for date, recRaw := range series {
		bar, ok := parseAVRecord(date, recRaw)
		if !ok {
			skipped++
			continue
		}
		bars = append(bars, bar)
	}
	if skipped > 0 {
		slog.Warn("alphavantage: skipped malformed records", "symbol", raw.Symbol, "skipped", skipped)
	}
	return newestFirst(bars)
}

func parseAVRecord(date string, raw json.RawMessage) (model.DailyBar, bool) {
	var rec map[string]json.RawMessage
	if err := json.Unmarshal(raw, &rec); err != nil {
		return model.DailyBar{}, false
	}
	var prices [4]float64
	for i, key := range []string{avOpen, avHigh, avLow, avClose} {
		v, ok := parseNumber(rec[key])
		if !ok {
			return model.DailyBar{}, false
		}
		prices[i] = v
	}
	vol, ok := parseNumber(rec[avVolume])
	if !ok || vol != math.Trunc(vol) {
		return model.DailyBar{}, false
	}
	bar := model.DailyBar{
		Date:   date,
		Open:   prices[0],
		High:   prices[1],
		Low:    prices[2],
		Close:  prices[3],
		Volume: int64(vol),
	}
	return bar, valid(bar)
}
