package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"StockPredictor/internal/apperr"
	"StockPredictor/internal/model"

	"github.com/go-resty/resty/v2"
)

// DefaultPolygonURL is the public Polygon.io endpoint.
const DefaultPolygonURL = "https://api.polygon.io"

// polygonWindowDays is the calendar range requested per call.
const polygonWindowDays = 30

// PolygonFetcher implements Fetcher using the daily aggregates endpoint.
type PolygonFetcher struct {
	BaseURL string
	APIKey  string
	Client  *resty.Client
	Now     func() time.Time
}

// NewPolygonFetcher creates a fetcher. An empty baseURL selects the public endpoint.
func NewPolygonFetcher(baseURL, apiKey string, client *resty.Client) *PolygonFetcher {
	if baseURL == "" {
		baseURL = DefaultPolygonURL
	}
	return &PolygonFetcher{BaseURL: baseURL, APIKey: apiKey, Client: client, Now: time.Now}
}

func (f *PolygonFetcher) Name() string { return "polygon" }

type polygonEnvelope struct {
	Ticker       string          `json:"ticker"`
	Status       string          `json:"status"`
	Error        string          `json:"error"`
	Message      string          `json:"message"`
	RequestID    string          `json:"request_id"`
	QueryCount   int             `json:"queryCount"`
	ResultsCount int             `json:"resultsCount"`
	Adjusted     bool            `json:"adjusted"`
	Results      json.RawMessage `json:"results"`
}

// polygonAgg is one aggregate; pointers distinguish missing fields from zeros.
type polygonAgg struct {
	T  *int64   `json:"t"`
	O  *float64 `json:"o"`
	H  *float64 `json:"h"`
	L  *float64 `json:"l"`
	C  *float64 `json:"c"`
	V  *float64 `json:"v"`
	VW *float64 `json:"vw"`
}

func (f *PolygonFetcher) Fetch(ctx context.Context, symbol string) (*RawSeries, error) {
	to := f.Now().UTC()
	from := to.AddDate(0, 0, -polygonWindowDays)
	endpoint := fmt.Sprintf("%s/v2/aggs/ticker/%s/range/1/day/%s/%s",
		f.BaseURL, url.PathEscape(symbol), from.Format(model.DateLayout), to.Format(model.DateLayout))

	body, err := getJSON(ctx, f.Client, f.Name(), endpoint, map[string]string{
		"adjusted": "true",
		"sort":     "desc",
		"limit":    "120",
		"apiKey":   f.APIKey,
	})
	if err != nil {
		return nil, err
	}

	var env polygonEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, apperr.Upstream("Invalid response from upstream API.",
			&UpstreamError{Provider: f.Name(), Reason: ReasonMalformedBody, Err: err})
	}
	if env.Status == "ERROR" || env.Status == "NOT_AUTHORIZED" || env.Error != "" {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		if strings.Contains(strings.ToLower(msg), "exceeded") {
			return nil, rateLimited(f.Name())
		}
		return nil, apperr.Upstream(fmt.Sprintf("Upstream provider error: %s", msg),
			&UpstreamError{Provider: f.Name(), Reason: ReasonProviderError})
	}

	return &RawSeries{
		Provider: f.Name(),
		Symbol:   symbol,
		Meta: map[string]any{
			"ticker":       env.Ticker,
			"queryCount":   env.QueryCount,
			"resultsCount": env.ResultsCount,
			"adjusted":     env.Adjusted,
			"request_id":   env.RequestID,
			"from":         from.Format(model.DateLayout),
			"to":           to.Format(model.DateLayout),
		},
		Body:      body,
		FetchedAt: time.Now(),
	}, nil
}

func (f *PolygonFetcher) Normalize(raw *RawSeries) []model.DailyBar {
	bars := []model.DailyBar{}
	if raw == nil || len(raw.Body) == 0 {
		return bars
	}
	var env polygonEnvelope
	if err := json.Unmarshal(raw.Body, &env); err != nil || len(env.Results) == 0 || string(env.Results) == "null" {
		return bars
	}
	var results []json.RawMessage
	if err := json.Unmarshal(env.Results, &results); err != nil {
		slog.Warn("polygon: results is not an array", "symbol", raw.Symbol, "error", err)
		return bars
	}

	skipped := 0
	for _, r := range results {
		bar, ok := parsePolygonAgg(r)
		if !ok {
			skipped++
			continue
		}
		bars = append(bars, bar)
	}
	if skipped > 0 {
		slog.Warn("polygon: skipped malformed records", "symbol", raw.Symbol, "skipped", skipped)
	}
	return newestFirst(bars)
}

func parsePolygonAgg(raw json.RawMessage) (model.DailyBar, bool) {
	var a polygonAgg
	if err := json.Unmarshal(raw, &a); err != nil {
		return model.DailyBar{}, false
	}
	if a.T == nil || a.O == nil || a.H == nil || a.L == nil || a.C == nil || a.V == nil {
		return model.DailyBar{}, false
	}
	bar := model.DailyBar{
		Date:   time.UnixMilli(*a.T).UTC().Format(model.DateLayout),
		Open:   *a.O,
		High:   *a.H,
		Low:    *a.L,
		Close:  *a.C,
		Volume: int64(*a.V),
	}
	if !valid(bar) {
		return model.DailyBar{}, false
	}
	change := bar.Close - bar.Open
	bar.Change = roundPtr(change, 4)
	bar.ChangePercent = roundPtr(change/bar.Open*100, 4)
	if a.VW != nil && *a.VW > 0 {
		bar.VWAP = roundPtr(*a.VW, 4)
	}
	return bar, true
}
