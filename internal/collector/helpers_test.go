package collector

import (
	"encoding/json"
	"fmt"
	"time"

	"StockPredictor/internal/model"
)

func fastClientOptions() ClientOptions {
	return ClientOptions{
		Timeout:      2 * time.Second,
		RetryCount:   2,
		RetryWait:    time.Millisecond,
		RetryMaxWait: 5 * time.Millisecond,
	}
}

// avDocument renders an Alpha Vantage TIME_SERIES_DAILY body. closes are
// oldest-first, one per calendar day starting at start.
func avDocument(symbol string, start time.Time, closes []float64) []byte {
	series := make(map[string]map[string]string, len(closes))
	for i, c := range closes {
		series[start.AddDate(0, 0, i).Format(model.DateLayout)] = map[string]string{
			"1. open":   fmt.Sprintf("%.4f", c-0.5),
			"2. high":   fmt.Sprintf("%.4f", c+1),
			"3. low":    fmt.Sprintf("%.4f", c-1),
			"4. close":  fmt.Sprintf("%.4f", c),
			"5. volume": fmt.Sprintf("%d", 1000000+i),
		}
	}
	doc := map[string]any{
		"Meta Data": map[string]string{
			"1. Information": "Daily Prices (open, high, low, close) and Volumes",
			"2. Symbol":      symbol,
			"4. Output Size": "Compact",
		},
		"Time Series (Daily)": series,
	}
	b, _ := json.Marshal(doc)
	return b
}

func flatThenRising(n, flat int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		if i < flat {
			closes[i] = 100
		} else {
			closes[i] = 100 + float64(i-flat+1)
		}
	}
	return closes
}
