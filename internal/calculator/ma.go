package calculator

import (
	"errors"
	"sort"

	"StockPredictor/internal/model"

	"github.com/shopspring/decimal"
)

// Moving-average windows reported on every enriched bar.
const (
	ShortWindow = 20
	LongWindow  = 50
)

// CalculateSMA computes the simple moving average of the last period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// TrailingSMA returns, for every element of values, the mean of the trailing
// window ending at it. The window is clamped to the number of values seen so
// far, so the result is defined for every index.
func TrailingSMA(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 0 {
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		n := i + 1
		if n > window {
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// MovingAverages enriches bars with MA20 and MA50. Input may be in any order;
// the result is newest-first.
func MovingAverages(bars []model.DailyBar) []model.EnrichedBar {
	asc := make([]model.DailyBar, len(bars))
	copy(asc, bars)
	sort.SliceStable(asc, func(i, j int) bool { return asc[i].Date < asc[j].Date })

	closes := model.Closes(asc)
	short := TrailingSMA(closes, ShortWindow)
	long := TrailingSMA(closes, LongWindow)

	enriched := make([]model.EnrichedBar, len(asc))
	for i, b := range asc {
		enriched[i] = model.EnrichedBar{
			DailyBar: b,
			MA20:     round(short[i], 4),
			MA50:     round(long[i], 4),
		}
	}
	sort.SliceStable(enriched, func(i, j int) bool { return enriched[i].Date > enriched[j].Date })
	return enriched
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
