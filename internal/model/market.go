package model

import "time"

// DateLayout is the calendar-date format used as the key of a bar sequence.
const DateLayout = "2006-01-02"

// DailyBar is one trading day's summary for a symbol.
type DailyBar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`

	// Derived fields, only set when the provider supplies their inputs.
	Change        *float64 `json:"change,omitempty"`
	ChangePercent *float64 `json:"change_percent,omitempty"`
	VWAP          *float64 `json:"vwap,omitempty"`
}

// Time parses Date. Normalized bars always carry a valid date.
func (b DailyBar) Time() time.Time {
	t, _ := time.Parse(DateLayout, b.Date)
	return t
}

// EnrichedBar is a DailyBar plus its trailing moving averages.
type EnrichedBar struct {
	DailyBar
	MA20 float64 `json:"ma_20"`
	MA50 float64 `json:"ma_50"`
}

// Closes extracts close prices in slice order.
func Closes(bars []DailyBar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
