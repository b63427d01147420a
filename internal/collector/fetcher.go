package collector

import (
	"context"
	"encoding/json"
	"time"

	"StockPredictor/internal/model"
)

// Fetcher is the adapter boundary to one market-data provider. Provider
// field names never leave the implementation.
type Fetcher interface {
	// Fetch issues a single upstream request for the symbol's recent daily
	// bars. Failures are *apperr.Error values of KindUpstream.
	Fetch(ctx context.Context, symbol string) (*RawSeries, error)
	// Normalize maps a fetched payload to bars sorted newest-first. Bad
	// records are skipped; an empty result set yields an empty slice.
	Normalize(raw *RawSeries) []model.DailyBar
	Name() string
}

// RawSeries is a provider response that passed transport and
// application-level checks but has not been normalized yet.
type RawSeries struct {
	Provider  string
	Symbol    string
	Meta      map[string]any
	Body      json.RawMessage
	FetchedAt time.Time
}
