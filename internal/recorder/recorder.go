package recorder

import (
	"time"

	"StockPredictor/internal/model"
)

// AnalysisSnapshot is one recorded pipeline outcome for a symbol.
type AnalysisSnapshot struct {
	Timestamp      time.Time
	Symbol         string
	Provider       string
	CurrentPrice   float64
	MA20           float64
	MA50           float64
	Prediction     float64
	Confidence     float64
	Trend          string
	Recommendation string
	Error          string
}

// SnapshotFromAnalysis flattens an analysis into a snapshot.
func SnapshotFromAnalysis(a *model.StockAnalysis) *AnalysisSnapshot {
	snap := &AnalysisSnapshot{
		Timestamp:      a.Timestamp,
		Symbol:         a.Symbol,
		Provider:       a.Provider,
		Prediction:     a.Prediction.Prediction,
		Confidence:     a.Prediction.Confidence,
		Trend:          string(a.Prediction.Trend),
		Recommendation: a.Prediction.Recommendation,
		Error:          a.Prediction.Error,
	}
	if latest, ok := a.Latest(); ok {
		snap.CurrentPrice = latest.Close
		snap.MA20 = latest.MA20
		snap.MA50 = latest.MA50
	}
	return snap
}

// FailedSnapshot records a pipeline run that did not produce an analysis.
func FailedSnapshot(symbol, provider string, err error, at time.Time) *AnalysisSnapshot {
	return &AnalysisSnapshot{
		Timestamp: at,
		Symbol:    symbol,
		Provider:  provider,
		Trend:     string(model.TrendNeutral),
		Error:     err.Error(),
	}
}

// Recorder persists historical analyses for later review.
type Recorder interface {
	RecordAnalysis(snap *AnalysisSnapshot) error
	Recent(symbol string, limit int) ([]AnalysisSnapshot, error)
	Close() error
}
