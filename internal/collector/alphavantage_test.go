package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"StockPredictor/internal/apperr"
)

func newAVServer(t *testing.T, handler http.HandlerFunc) (*AlphaVantageFetcher, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewAlphaVantageFetcher(srv.URL, "test-key", NewUpstreamClient(fastClientOptions())), &hits
}

func TestAlphaVantage_FetchAndNormalize(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f, _ := newAVServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/query" || q.Get("function") != "TIME_SERIES_DAILY" ||
			q.Get("symbol") != "AAPL" || q.Get("apikey") != "test-key" || q.Get("outputsize") != "compact" {
			t.Errorf("unexpected request: %s", r.URL.String())
		}
		if r.Header.Get("User-Agent") != "StockPredictionApp/1.0" {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		if !r.Close {
			t.Error("expected Connection: close")
		}
		w.Write(avDocument("AAPL", start, flatThenRising(15, 5)))
	})

	raw, err := f.Fetch(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw.Meta["2. Symbol"] != "AAPL" {
		t.Errorf("meta data not carried: %v", raw.Meta)
	}

	bars := f.Normalize(raw)
	if len(bars) != 15 {
		t.Fatalf("expected 15 bars, got %d", len(bars))
	}
	if bars[0].Date != "2024-01-15" || bars[14].Date != "2024-01-01" {
		t.Errorf("expected newest-first, got %s..%s", bars[0].Date, bars[14].Date)
	}
	if bars[0].Close != 110 || bars[0].Volume != 1000014 {
		t.Errorf("unexpected newest bar: %+v", bars[0])
	}
	if bars[0].Change != nil || bars[0].VWAP != nil {
		t.Error("alphavantage bars carry no derived fields")
	}
}

func TestAlphaVantage_NormalizeSkipsMalformedRecords(t *testing.T) {
	f := NewAlphaVantageFetcher("", "k", nil)
	body := []byte(`{
		"Meta Data": {},
		"Time Series (Daily)": {
			"2024-01-05": {"1. open": "10", "2. high": "11", "3. low": "9", "4. close": "10.5", "5. volume": "100"},
			"2024-01-04": {"1. open": "abc", "2. high": "11", "3. low": "9", "4. close": "10.5", "5. volume": "100"},
			"2024-01-03": {"1. open": "10", "2. high": "11", "3. low": "9", "5. volume": "100"},
			"2024-13-45": {"1. open": "10", "2. high": "11", "3. low": "9", "4. close": "10.5", "5. volume": "100"},
			"2024-01-02": {"1. open": "10", "2. high": "11", "3. low": "9", "4. close": "-1", "5. volume": "100"},
			"2024-01-01": "not an object",
			"2023-12-29": {"1. open": 10, "2. high": 11, "3. low": 9, "4. close": 9.5, "5. volume": 50}
		}
	}`)
	bars := f.Normalize(&RawSeries{Symbol: "X", Body: body})
	if len(bars) != 2 {
		t.Fatalf("expected 2 valid bars, got %d: %+v", len(bars), bars)
	}
	if bars[0].Date != "2024-01-05" || bars[1].Date != "2023-12-29" {
		t.Errorf("unexpected dates %s, %s", bars[0].Date, bars[1].Date)
	}
}

func TestAlphaVantage_NormalizeEmpty(t *testing.T) {
	f := NewAlphaVantageFetcher("", "k", nil)
	for _, body := range []string{`{}`, `{"Time Series (Daily)": {}}`, `{"Time Series (Daily)": []}`} {
		bars := f.Normalize(&RawSeries{Body: []byte(body)})
		if bars == nil || len(bars) != 0 {
			t.Errorf("%s: expected empty non-nil slice, got %v", body, bars)
		}
	}
	if bars := f.Normalize(nil); len(bars) != 0 {
		t.Errorf("nil payload: expected empty, got %v", bars)
	}
}

func TestAlphaVantage_ApplicationErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		reason UpstreamReason
		msg    string
	}{
		{"invalid symbol", `{"Error Message": "Invalid API call."}`, ReasonInvalidSymbol, "Invalid stock symbol: ZZZZ"},
		{"note", `{"Note": "Thank you for using Alpha Vantage!"}`, ReasonRateLimited, "API limit reached. Please try again later."},
		{"information", `{"Information": "rate limit is 25 requests per day"}`, ReasonRateLimited, "API limit reached. Please try again later."},
		{"not json", `<html>oops</html>`, ReasonMalformedBody, "Invalid response from upstream API."},
	}
	for _, tt := range tests {
		f, _ := newAVServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(tt.body))
		})
		_, err := f.Fetch(context.Background(), "ZZZZ")
		if err == nil {
			t.Fatalf("%s: expected error", tt.name)
		}
		if apperr.KindOf(err) != apperr.KindUpstream {
			t.Errorf("%s: expected upstream kind, got %s", tt.name, apperr.KindOf(err))
		}
		if ReasonOf(err) != tt.reason {
			t.Errorf("%s: expected reason %s, got %s", tt.name, tt.reason, ReasonOf(err))
		}
		if err.Error() != tt.msg {
			t.Errorf("%s: expected message %q, got %q", tt.name, tt.msg, err.Error())
		}
	}
}
