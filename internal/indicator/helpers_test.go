package indicator

import (
	"math"
	"time"
)

var baseTime = time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)

// wave returns n newest-first points oscillating around base with the given period.
func wave(n int, base float64, period int) []float64 {
	points := make([]float64, n)
	for i := range points {
		angle := 2 * math.Pi * float64(i) / float64(period)
		points[i] = base + 5*math.Sin(angle) + 0.03*float64(n-i)
	}

	return points
}

// chronological reverses newest-first points.
func chronological(points []float64) []float64 {
	out := make([]float64, len(points))
	for i, v := range points {
		out[len(points)-1-i] = v
	}

	return out
}
