package calculator

import (
	"errors"
	"math"
)

// ErrDegenerateFit is returned when a line cannot be fitted to the input.
var ErrDegenerateFit = errors.New("degenerate input for linear fit")

// LinearSlope fits y = a + b*x by ordinary least squares with x = 0..n-1 and
// returns b.
func LinearSlope(y []float64) (float64, error) {
	n := len(y)
	if n < 2 {
		return 0, ErrDegenerateFit
	}
	xMean := float64(n-1) / 2
	yMean := 0.0
	for _, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, ErrDegenerateFit
		}
		yMean += v
	}
	yMean /= float64(n)

	var num, den float64
	for i, v := range y {
		dx := float64(i) - xMean
		num += dx * (v - yMean)
		den += dx * dx
	}
	slope := num / den
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return 0, ErrDegenerateFit
	}
	return slope, nil
}
