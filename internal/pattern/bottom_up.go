package pattern

import (
	"github.com/rxtech-lab/argo-scanner/internal/indicator"
	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
)

// BottomUp fires when a low-lying negative bar is followed by a higher close that
// bounces off an untested support pivot, while price is still well below the recent top.
type BottomUp struct {
	lookback int
}

// NewBottomUp creates the detector scanning pivots in the most recent lookback bars.
func NewBottomUp(lookback int) *BottomUp {
	return &BottomUp{lookback: lookback}
}

func (b *BottomUp) Name() types.PatternName {
	return types.PatternBottomUpReversal
}

func (b *BottomUp) Evaluate(series types.Series, ind *indicator.Snapshot) (bool, error) {
	if err := needBars(series, lowPriceBars, "bottom up reversal"); err != nil {
		return false, err
	}

	closes := ind.Closes()
	if closes[1] >= series[1].Open {
		return false, nil
	}

	if closes[0] <= closes[1] {
		return false, nil
	}

	low, err := priceIsLow(closes, ind)
	if err != nil || !low {
		return false, err
	}

	if series[1].Low.IsNone() {
		return false, errors.NewMalformedBarError(1, "low", "value is absent")
	}

	if series[1].High.IsNone() {
		return false, errors.NewMalformedBarError(1, "high", "value is absent")
	}

	pivots, err := ind.Pivots(b.lookback)
	if err != nil {
		return false, err
	}

	rangeLow := series[1].Low.Unwrap()
	rangeHigh := max(closes[0], series[1].High.Unwrap())

	support := -1

	for _, pivot := range pivots {
		if pivot.Price > rangeHigh {
			continue
		}

		if pivot.Price < rangeLow {
			return false, nil
		}

		if pivot.Index > 2 && minOf(closes[2:pivot.Index]) < pivot.Price {
			return false, nil
		}

		support = pivot.Index

		break
	}

	if support < 2 {
		return false, nil
	}

	return closes[0] <= maxOf(closes[1:support])*0.9, nil
}
