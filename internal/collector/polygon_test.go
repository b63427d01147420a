package collector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func polygonResults(start time.Time, closes []float64) []map[string]any {
	out := make([]map[string]any, 0, len(closes))
	for i := len(closes) - 1; i >= 0; i-- {
		c := closes[i]
		out = append(out, map[string]any{
			"t":  start.AddDate(0, 0, i).UnixMilli(),
			"o":  c - 1,
			"h":  c + 1,
			"l":  c - 2,
			"c":  c,
			"v":  2500000.0,
			"vw": c - 0.25,
		})
	}
	return out
}

func newPolygonServer(t *testing.T, handler http.HandlerFunc) *PolygonFetcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	f := NewPolygonFetcher(srv.URL, "poly-key", NewUpstreamClient(fastClientOptions()))
	f.Now = func() time.Time { return time.Date(2024, 3, 31, 15, 0, 0, 0, time.UTC) }
	return f
}

func TestPolygon_FetchAndNormalize(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	f := newPolygonServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/aggs/ticker/MSFT/range/1/day/2024-03-01/2024-03-31" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("apiKey") != "poly-key" || r.URL.Query().Get("adjusted") != "true" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"ticker":       "MSFT",
			"status":       "OK",
			"queryCount":   12,
			"resultsCount": 12,
			"adjusted":     true,
			"request_id":   "abc",
			"results":      polygonResults(start, flatThenRising(12, 2)),
		})
	})

	raw, err := f.Fetch(context.Background(), "MSFT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw.Meta["ticker"] != "MSFT" || raw.Meta["from"] != "2024-03-01" || raw.Meta["to"] != "2024-03-31" {
		t.Errorf("unexpected meta: %v", raw.Meta)
	}

	bars := f.Normalize(raw)
	if len(bars) != 12 {
		t.Fatalf("expected 12 bars, got %d", len(bars))
	}
	newest := bars[0]
	if newest.Date != "2024-03-12" || newest.Close != 110 {
		t.Errorf("unexpected newest bar %+v", newest)
	}
	if newest.Volume != 2500000 {
		t.Errorf("expected volume 2500000, got %d", newest.Volume)
	}
	if newest.Change == nil || *newest.Change != 1 {
		t.Errorf("expected change 1, got %v", newest.Change)
	}
	if newest.ChangePercent == nil || *newest.ChangePercent != 0.9174 {
		t.Errorf("expected change_percent 0.9174, got %v", newest.ChangePercent)
	}
	if newest.VWAP == nil || *newest.VWAP != 109.75 {
		t.Errorf("expected vwap 109.75, got %v", newest.VWAP)
	}
}

func TestPolygon_NormalizeSkipsMalformedAndDuplicates(t *testing.T) {
	f := NewPolygonFetcher("", "k", nil)
	day := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	next := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC).UnixMilli()
	body, _ := json.Marshal(map[string]any{
		"status": "OK",
		"results": []any{
			map[string]any{"t": next, "o": 10, "h": 11, "l": 9, "c": 10.5, "v": 100},
			map[string]any{"t": next, "o": 20, "h": 21, "l": 19, "c": 20.5, "v": 100},
			map[string]any{"t": day, "o": 10, "h": 11, "l": 9, "v": 100},
			map[string]any{"t": day, "o": "x", "h": 11, "l": 9, "c": 10, "v": 100},
			"garbage",
		},
	})
	bars := f.Normalize(&RawSeries{Body: body})
	if len(bars) != 1 {
		t.Fatalf("expected 1 bar, got %d: %+v", len(bars), bars)
	}
	if bars[0].Close != 10.5 {
		t.Errorf("expected first occurrence to win, got close %v", bars[0].Close)
	}
	if bars[0].VWAP != nil {
		t.Error("vwap should be absent when not supplied")
	}
}

func TestPolygon_NormalizeEmpty(t *testing.T) {
	f := NewPolygonFetcher("", "k", nil)
	for _, body := range []string{`{"status":"OK","resultsCount":0}`, `{"results": null}`, `{"results": []}`} {
		if bars := f.Normalize(&RawSeries{Body: []byte(body)}); bars == nil || len(bars) != 0 {
			t.Errorf("%s: expected empty slice, got %v", body, bars)
		}
	}
}

func TestPolygon_ProviderErrors(t *testing.T) {
	tests := []struct {
		body   string
		reason UpstreamReason
	}{
		{`{"status":"ERROR","error":"You've exceeded the maximum requests per minute"}`, ReasonRateLimited},
		{`{"status":"NOT_AUTHORIZED","message":"Your plan doesn't include this data timeframe."}`, ReasonProviderError},
		{`{"status":"ERROR","error":"Unknown API Key"}`, ReasonProviderError},
	}
	for _, tt := range tests {
		f := newPolygonServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(tt.body))
		})
		_, err := f.Fetch(context.Background(), "MSFT")
		if ReasonOf(err) != tt.reason {
			t.Errorf("%s: expected %s, got %v", tt.body, tt.reason, err)
		}
	}
}
