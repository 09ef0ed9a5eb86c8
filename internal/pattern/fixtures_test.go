package pattern

import (
	"math"
	"time"

	"github.com/rxtech-lab/argo-scanner/internal/types"
)

var fixtureEnd = time.Date(2024, 12, 27, 0, 0, 0, 0, time.UTC)

// newest first; 10 falling, 10 rising then 9 falling bars ending below the first close
var divergenceCloses = []float64{
	77.0, 78.0, 79.0, 80.0, 81.0, 82.0, 83.0, 84.0, 85.0, 86.0,
	85.5, 85.0, 84.5, 84.0, 83.5, 83.0, 82.5, 82.0, 81.5, 81.0,
	83.8, 86.4, 88.8, 91.0, 93.0, 94.8, 96.4, 97.8, 99.0, 100.0,
}

// newest first
var pullbackCloses = []float64{
	76.0, 77.5, 79.0, 80.5, 82.0, 83.5, 85.0, 83.125, 81.25, 79.375,
	77.5, 75.625, 73.75, 71.875, 70.0, 71.48, 72.96, 74.44, 75.92, 77.4,
	78.88, 80.36, 81.84, 83.32, 84.8, 86.28, 87.76, 89.24, 90.72, 92.2,
	93.68, 95.16, 96.64, 98.12, 99.6, 99.2, 98.8, 98.4, 98.0, 97.6,
	97.2, 96.8, 96.4, 96.0, 95.6, 95.2, 94.8, 94.4, 94.0, 93.6,
	93.2, 92.8, 92.4, 92.0, 91.6, 91.2, 90.8, 90.4, 90.0,
}

// newest first
var (
	bottomUpOpens = []float64{
		80.5, 82.18, 84.16, 86.14, 88.12, 90.1, 92.08, 94.06, 96.04, 98.02,
		100.0, 98.0, 96.0, 94.0, 92.0, 90.0, 88.0, 86.0, 84.0, 82.0,
		80.0, 81.0, 82.0, 83.0, 84.0, 85.0, 86.0, 87.0, 88.0, 89.0,
		90.0, 91.0, 92.0, 92.5,
	}
	bottomUpCloses = []float64{
		81.2, 80.2, 82.18, 84.16, 86.14, 88.12, 90.1, 92.08, 94.06, 96.04,
		98.02, 100.0, 98.0, 96.0, 94.0, 92.0, 90.0, 88.0, 86.0, 84.0,
		82.0, 80.0, 81.0, 82.0, 83.0, 84.0, 85.0, 86.0, 87.0, 88.0,
		89.0, 90.0, 91.0, 92.0,
	}
)

// newest first; a 12 bar cycle topped by a close 0.3 above the previous high
var newHighCloses = []float64{
	98.4967, 97.9967, 97.5244, 96.3758, 94.8585, 93.3791, 92.334, 92.0033, 92.4756, 93.6242,
	95.1415, 96.6209, 97.666, 97.9967, 97.5244, 96.3758, 94.8585, 93.3791, 92.334, 92.0033,
	92.4756, 93.6242, 95.1415, 96.6209, 97.666, 97.9967, 97.5244, 96.3758, 94.8585, 93.3791,
	92.334, 92.0033, 92.4756, 93.6242, 95.1415, 96.6209, 97.666, 97.9967, 97.5244, 96.3758,
	94.8585, 93.3791, 92.334, 92.0033, 92.4756, 93.6242, 95.1415, 96.6209, 97.666, 97.9967,
	97.5244,
}

// newest first
var (
	piercingOpens  = []float64{84.5, 86.5, 87.5, 88.5, 89.5, 90.5, 91.5, 92.5, 93.5, 94.5, 95.5, 96.5, 97.5, 98.5, 99.5, 100.5}
	piercingCloses = []float64{85.9, 85.0, 87.0, 88.0, 89.0, 90.0, 91.0, 92.0, 93.0, 94.0, 95.0, 96.0, 97.0, 98.0, 99.0, 100.0}
)

// bars builds a daily series, newest first, ending at fixtureEnd. Highs and lows pad
// the bar body by pad.
func bars(opens, closes []float64, pad float64) types.Series {
	series := make(types.Series, len(closes))

	for i := range closes {
		top := math.Max(opens[i], closes[i])
		bottom := math.Min(opens[i], closes[i])
		series[i] = types.NewBar(fixtureEnd.AddDate(0, 0, -i), opens[i], top+pad, bottom-pad, closes[i], 1000)
	}

	return series
}

// flatBars builds bars whose open equals the close.
func flatBars(closes []float64) types.Series {
	return bars(closes, closes, 0)
}

// previousCloseOpens opens every bar at the close of the bar before it.
func previousCloseOpens(closes []float64) []float64 {
	opens := make([]float64, len(closes))
	for i := range closes {
		if i+1 < len(closes) {
			opens[i] = closes[i+1]
		} else {
			opens[i] = closes[i]
		}
	}

	return opens
}

// risingCloses returns n closes newest first, rising by step from start.
func risingCloses(n int, start, step float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[n-1-i] = start + step*float64(i)
	}

	return closes
}

// businessDays returns n weekdays starting Monday 2024-01-01, oldest first.
func businessDays(n int) []time.Time {
	days := make([]time.Time, 0, n)

	for day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC); len(days) < n; day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}

		days = append(days, day)
	}

	return days
}

// tripleScreenSeries builds a year of daily bars: a slow climb, a steeper climb after
// knee, and optionally a two day dip at the end. price overrides the close formula.
func tripleScreenSeries(dip bool, price func(i int) float64) types.Series {
	const days, knee = 260, 248

	if price == nil {
		price = func(i int) float64 {
			if i < knee {
				return 50 + 0.02*float64(i)
			}

			return 50 + 0.02*knee + 0.5*float64(i-knee)
		}
	}

	dates := businessDays(days)
	closes := make([]float64, days)

	for i := range closes {
		closes[i] = price(i)
	}

	if dip {
		base := closes[days-3]
		closes[days-2] = base - 1.2
		closes[days-1] = base - 2.4
	}

	series := make(types.Series, days)
	for i := range closes {
		// chronological index i maps to series index days-1-i
		volume := 1000 + 10*float64(i%7)
		series[days-1-i] = types.NewBar(dates[i], closes[i], closes[i]+0.1, closes[i]-0.1, closes[i], volume)
	}

	return series
}
