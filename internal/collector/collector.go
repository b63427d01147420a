package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"StockPredictor/internal/apperr"
	"StockPredictor/internal/calculator"
	"StockPredictor/internal/model"
	"StockPredictor/internal/strategy"
)

const (
	// MinBars is the fewest normalized bars a symbol needs to be analyzed.
	MinBars = 10
	// ResponseBars caps the enriched bars returned to callers.
	ResponseBars = 30
)

// ErrInsufficientData is the message for a symbol with fewer than MinBars bars.
const ErrInsufficientData = "Insufficient data for analysis"

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price     float64
	DailyData []model.DailyBar
	Meta      map[string]any
	Err       error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) Fetch(_ context.Context, symbol string) (*RawSeries, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	bars := m.DailyData
	if bars == nil {
		bars = generateMockBars(m.Price, 60)
	}
	body, err := json.Marshal(bars)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	meta := m.Meta
	if meta == nil {
		meta = map[string]any{"source": "mock"}
	}
	return &RawSeries{Provider: m.Name(), Symbol: symbol, Meta: meta, Body: body, FetchedAt: time.Now()}, nil
}

func (m *MockFetcher) Normalize(raw *RawSeries) []model.DailyBar {
	var bars []model.DailyBar
	if raw == nil || json.Unmarshal(raw.Body, &bars) != nil {
		return []model.DailyBar{}
	}
	kept := bars[:0]
	for _, b := range bars {
		if valid(b) {
			kept = append(kept, b)
		}
	}
	return newestFirst(kept)
}

func generateMockBars(basePrice float64, count int) []model.DailyBar {
	bars := make([]model.DailyBar, count)
	today := time.Now().UTC().Truncate(24 * time.Hour)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.DailyBar{
			Date:   today.AddDate(0, 0, -(count - i)).Format(model.DateLayout),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector runs the fetch → normalize → indicators → prediction pipeline.
type Collector struct {
	Fetcher Fetcher
	Now     func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher) *Collector {
	return &Collector{Fetcher: fetcher, Now: time.Now}
}

// Collect analyzes one symbol. Returned errors are *apperr.Error values;
// an unavailable prediction is not an error.
func (c *Collector) Collect(ctx context.Context, symbol string) (*model.StockAnalysis, error) {
	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	log := slog.With("symbol", symbol, "provider", c.Fetcher.Name())
	log.Info("fetching data")

	raw, err := c.Fetcher.Fetch(ctx, symbol)
	if err != nil {
		log.Error("fetch failed", "error", err)
		if apperr.KindOf(err) == apperr.KindInternal {
			return nil, apperr.Internal(fmt.Errorf("fetch %s: %w", symbol, err))
		}
		return nil, err
	}

	bars := c.Fetcher.Normalize(raw)
	if len(bars) < MinBars {
		log.Warn("insufficient data", "bars", len(bars))
		return nil, apperr.Validation(ErrInsufficientData)
	}

	enriched := calculator.MovingAverages(bars)
	prediction := strategy.Predict(bars)
	if !prediction.Available() {
		log.Warn("prediction unavailable", "reason", prediction.Error)
	}
	if len(enriched) > ResponseBars {
		enriched = enriched[:ResponseBars]
	}

	log.Info("successfully processed data", "bars", len(bars), "trend", prediction.Trend)
	return &model.StockAnalysis{
		Symbol:     symbol,
		Provider:   c.Fetcher.Name(),
		Data:       enriched,
		Prediction: prediction,
		MetaData:   raw.Meta,
		Timestamp:  c.Now(),
	}, nil
}
