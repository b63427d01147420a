package model

import "time"

// StockAnalysis is the assembled result of one pipeline run for a symbol.
type StockAnalysis struct {
	Symbol     string           `json:"symbol"`
	Provider   string           `json:"-"`
	Data       []EnrichedBar    `json:"data"`
	Prediction PredictionResult `json:"prediction"`
	MetaData   map[string]any   `json:"meta_data"`
	Timestamp  time.Time        `json:"timestamp"`
}

// Latest returns the newest enriched bar, if any.
func (a *StockAnalysis) Latest() (EnrichedBar, bool) {
	if a == nil || len(a.Data) == 0 {
		return EnrichedBar{}, false
	}
	return a.Data[0], true
}
