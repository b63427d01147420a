package collector

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"StockPredictor/internal/model"

	"github.com/shopspring/decimal"
)

// parseNumber accepts both JSON numbers and numeric strings; providers are
// not consistent about which they send.
func parseNumber(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return v, err == nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return v, true
}

// valid reports whether a candidate bar satisfies the DailyBar invariants.
func valid(b model.DailyBar) bool {
	if _, err := time.Parse(model.DateLayout, b.Date); err != nil {
		return false
	}
	for _, p := range []float64{b.Open, b.High, b.Low, b.Close} {
		if p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return false
		}
	}
	return b.Volume >= 0
}

// newestFirst drops duplicate dates, keeping the first occurrence, and
// sorts descending by date.
func newestFirst(bars []model.DailyBar) []model.DailyBar {
	seen := make(map[string]struct{}, len(bars))
	out := make([]model.DailyBar, 0, len(bars))
	for _, b := range bars {
		if _, dup := seen[b.Date]; dup {
			continue
		}
		seen[b.Date] = struct{}{}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

func roundPtr(v float64, places int32) *float64 {
	r := decimal.NewFromFloat(v).Round(places).InexactFloat64()
	return &r
}
