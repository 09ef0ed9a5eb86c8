package types

import (
	"math"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
)

// Series is an ordered run of bars for one symbol. Index 0 is the most recent bar.
type Series []Bar

// Len returns the number of bars.
func (s Series) Len() int {
	return len(s)
}

// Closes returns the closing prices, newest first.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, bar := range s {
		out[i] = bar.Close
	}

	return out
}

// Opens returns the opening prices, newest first.
func (s Series) Opens() []float64 {
	out := make([]float64, len(s))
	for i, bar := range s {
		out[i] = bar.Open
	}

	return out
}

// Volumes returns the volumes, newest first.
func (s Series) Volumes() []float64 {
	out := make([]float64, len(s))
	for i, bar := range s {
		out[i] = bar.Volume
	}

	return out
}

// Highs returns the high prices, newest first. It fails with a MalformedBarError
// naming the first bar whose high is absent.
func (s Series) Highs() ([]float64, error) {
	return s.extract("high", func(b Bar) optional.Option[float64] { return b.High })
}

// Lows returns the low prices, newest first. It fails with a MalformedBarError
// naming the first bar whose low is absent.
func (s Series) Lows() ([]float64, error) {
	return s.extract("low", func(b Bar) optional.Option[float64] { return b.Low })
}

func (s Series) extract(field string, get func(Bar) optional.Option[float64]) ([]float64, error) {
	out := make([]float64, len(s))

	for i, bar := range s {
		value := get(bar)
		if value.IsNone() {
			return nil, errors.NewMalformedBarError(i, field, "value is absent")
		}

		out[i] = value.Unwrap()
	}

	return out, nil
}

// Head returns at most the n most recent bars. The result shares storage with s.
func (s Series) Head(n int) Series {
	if n < 0 {
		return Series{}
	}

	if n >= len(s) {
		return s
	}

	return s[:n]
}

// Validate checks that prices are finite and that timestamps strictly decrease
// with the index. Zero timestamps are not compared.
func (s Series) Validate() error {
	for i, bar := range s {
		if !isFinite(bar.Open) {
			return errors.NewMalformedBarError(i, "open", "value is not finite")
		}

		if !isFinite(bar.Close) {
			return errors.NewMalformedBarError(i, "close", "value is not finite")
		}

		if !isFinite(bar.Volume) {
			return errors.NewMalformedBarError(i, "volume", "value is not finite")
		}

		if bar.High.IsSome() && !isFinite(bar.High.Unwrap()) {
			return errors.NewMalformedBarError(i, "high", "value is not finite")
		}

		if bar.Low.IsSome() && !isFinite(bar.Low.Unwrap()) {
			return errors.NewMalformedBarError(i, "low", "value is not finite")
		}

		if i == 0 || bar.Time.IsZero() || s[i-1].Time.IsZero() {
			continue
		}

		if !bar.Time.Before(s[i-1].Time) {
			return errors.NewMalformedBarError(i, "time", "series is not ordered newest first")
		}
	}

	return nil
}

// Weekly aggregates the series into ISO weeks, newest first. Each weekly bar opens with
// the oldest bar of the week and closes with the newest; volume is summed. A week's high
// or low is absent when any of its bars lacks one. The weekly bar time is Monday 00:00
// in the location of the bars.
func (s Series) Weekly() Series {
	weekly := Series{}

	for i := 0; i < len(s); {
		year, week := s[i].Time.ISOWeek()
		current := s[i]
		high := current.High
		low := current.Low
		volume := current.Volume
		open := current.Open

		j := i + 1
		for ; j < len(s); j++ {
			y, w := s[j].Time.ISOWeek()
			if y != year || w != week {
				break
			}

			open = s[j].Open
			volume += s[j].Volume
			high = mergeOption(high, s[j].High, math.Max)
			low = mergeOption(low, s[j].Low, math.Min)
		}

		weekly = append(weekly, Bar{
			Time:   weekStart(current.Time),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  current.Close,
			Volume: volume,
		})

		i = j
	}

	return weekly
}

func mergeOption(a, b optional.Option[float64], pick func(float64, float64) float64) optional.Option[float64] {
	if a.IsNone() || b.IsNone() {
		return optional.None[float64]()
	}

	return optional.Some(pick(a.Unwrap(), b.Unwrap()))
}

func weekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	year, month, day := t.Date()

	return time.Date(year, month, day-offset, 0, 0, 0, 0, t.Location())
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
