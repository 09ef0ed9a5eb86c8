package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// Bar is one OHLCV sample: one trading session, or one aggregated week in weekly mode.
// High and Low are absent while the session is still open.
type Bar struct {
	// Time is the opening time of the session
	Time time.Time `json:"time"`
	// Open is the opening price
	Open float64 `json:"open"`
	// High is the highest price, absent while the session is open
	High optional.Option[float64] `json:"high"`
	// Low is the lowest price, absent while the session is open
	Low optional.Option[float64] `json:"low"`
	// Close is the closing (or latest) price
	Close float64 `json:"close"`
	// Volume is the traded volume
	Volume float64 `json:"volume"`
}

// NewBar creates a bar with every value present.
func NewBar(t time.Time, open, high, low, closePrice, volume float64) Bar {
	return Bar{
		Time:   t,
		Open:   open,
		High:   optional.Some(high),
		Low:    optional.Some(low),
		Close:  closePrice,
		Volume: volume,
	}
}

// IsComplete reports whether both High and Low are present.
func (b Bar) IsComplete() bool {
	return b.High.IsSome() && b.Low.IsSome()
}

// IsPositive reports whether the bar closed at or above its open.
func (b Bar) IsPositive() bool {
	return b.Close >= b.Open
}
