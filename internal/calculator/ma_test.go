package calculator

import (
	"fmt"
	"math"
	"testing"

	"StockPredictor/internal/model"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestCalculateSMA(t *testing.T) {
	got, err := CalculateSMA([]float64{1, 2, 3, 4, 5}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approx(got, 4.0) {
		t.Errorf("expected 4.0, got %v", got)
	}
	if _, err := CalculateSMA([]float64{1, 2}, 3); err == nil {
		t.Error("expected error for short input")
	}
	if _, err := CalculateSMA([]float64{1, 2}, 0); err == nil {
		t.Error("expected error for zero period")
	}
}

func TestTrailingSMA_ClampsWindow(t *testing.T) {
	got := TrailingSMA([]float64{1, 2, 3, 4, 5}, 3)
	want := []float64{1.0, 1.5, 2.0, 3.0, 4.0}
	for i := range want {
		if !approx(got[i], want[i]) {
			t.Errorf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestTrailingSMA_WindowOfOne(t *testing.T) {
	values := []float64{7, 3, 9}
	got := TrailingSMA(values, 1)
	for i, v := range values {
		if got[i] != v {
			t.Errorf("index %d: expected %v, got %v", i, v, got[i])
		}
	}
}

func makeBars(closes []float64) []model.DailyBar {
	bars := make([]model.DailyBar, len(closes))
	start := mustDate("2024-01-01")
	for i, c := range closes {
		bars[i] = model.DailyBar{
			Date:   start.AddDate(0, 0, i).Format(model.DateLayout),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func TestMovingAverages_OrderAndValues(t *testing.T) {
	bars := makeBars([]float64{1, 2, 3, 4, 5})
	// Feed newest-first to check the function sorts on its own.
	reversed := make([]model.DailyBar, len(bars))
	for i := range bars {
		reversed[i] = bars[len(bars)-1-i]
	}

	got := MovingAverages(reversed)
	if len(got) != 5 {
		t.Fatalf("expected 5 bars, got %d", len(got))
	}
	if got[0].Date != "2024-01-05" || got[4].Date != "2024-01-01" {
		t.Fatalf("expected newest-first order, got %s..%s", got[0].Date, got[4].Date)
	}
	// Five bars, both windows clamp to the count seen so far.
	if !approx(got[0].MA20, 3.0) || !approx(got[0].MA50, 3.0) {
		t.Errorf("newest bar: expected MA 3.0, got %v/%v", got[0].MA20, got[0].MA50)
	}
	if !approx(got[4].MA20, 1.0) {
		t.Errorf("oldest bar: expected MA20 1.0, got %v", got[4].MA20)
	}
}

func TestMovingAverages_RoundTripKeepsDates(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i%7)
	}
	bars := makeBars(closes)
	got := MovingAverages(bars)

	seen := make(map[string]bool, len(got))
	for i, b := range got {
		seen[b.Date] = true
		if b.MA20 <= 0 || b.MA50 <= 0 {
			t.Errorf("bar %s: moving averages not populated", b.Date)
		}
		if i > 0 && got[i-1].Date <= b.Date {
			t.Errorf("not descending at %d", i)
		}
	}
	for _, b := range bars {
		if !seen[b.Date] {
			t.Errorf("date %s lost", b.Date)
		}
	}

	// The newest bar has 60 observations: MA20 uses the last 20 closes.
	want, _ := CalculateSMA(closes, 20)
	if !approx(got[0].MA20, round(want, 4)) {
		t.Errorf("expected MA20 %v, got %v", want, got[0].MA20)
	}
}

func TestMovingAverages_DoesNotMutateInput(t *testing.T) {
	bars := makeBars([]float64{5, 4, 3})
	first := bars[0].Date
	_ = MovingAverages(bars)
	if bars[0].Date != first {
		t.Error("input slice was reordered")
	}
}

func ExampleTrailingSMA() {
	fmt.Println(TrailingSMA([]float64{1, 2, 3, 4, 5}, 3))
	// Output: [1 1.5 2 3 4]
}
