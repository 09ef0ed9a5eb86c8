package pattern

import (
	"github.com/rxtech-lab/argo-scanner/internal/indicator"
	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
)

// NewHigh fires on a calm close above every previous high, backed by at least two
// nearby pivots, without an overbought RSI and with MACD momentum at least as strong
// as at the most recent pivot.
type NewHigh struct {
	params indicator.MACDParams
}

func NewNewHigh(params indicator.MACDParams) *NewHigh {
	return &NewHigh{params: params}
}

func (h *NewHigh) Name() types.PatternName {
	return types.PatternNewHigh
}

func (h *NewHigh) Evaluate(series types.Series, ind *indicator.Snapshot) (bool, error) {
	if err := needBars(series, 20, "new high"); err != nil {
		return false, err
	}

	closes := ind.Closes()

	prevHigh, err := previousHigh(series)
	if err != nil {
		return false, err
	}

	if closes[0] < prevHigh {
		return false, nil
	}

	ema5, err := ind.EMA(5)
	if err != nil {
		return false, err
	}

	ema10, err := ind.EMA(10)
	if err != nil {
		return false, err
	}

	// too steep
	if closes[0] > min(ema5[0], closes[1])*1.02 || ema5[0] > ema10[0]*1.02 {
		return false, nil
	}

	pivots, err := ind.Pivots(0)
	if err != nil {
		return false, err
	}

	near := 0
	for _, pivot := range pivots {
		if pivot.Price > closes[0]*0.95 {
			near++
		}
	}

	if near < 2 {
		return false, nil
	}

	rsi, err := ind.RSI(14)
	if err != nil {
		return false, err
	}

	if maxOf(rsi[:min(5, len(rsi))]) > 70 {
		return false, nil
	}

	result, err := ind.MACD(h.params)
	if err != nil {
		return false, err
	}

	index := pivots[0].Index
	if index >= len(result.Line) {
		return false, errors.NewInsufficientDataErrorf(index+1, len(result.Line), "",
			"pivot at bar %d is older than the MACD line", index)
	}

	return result.Line[0] >= result.Line[index], nil
}
