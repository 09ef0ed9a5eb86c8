package pattern

import (
	"math"

	"github.com/rxtech-lab/argo-scanner/internal/indicator"
	"github.com/rxtech-lab/argo-scanner/internal/types"
)

// RoundNumberHigh fires when a new high crosses a round price level. The level step is
// 1 below 10, 10 below 100 and 100 above.
type RoundNumberHigh struct{}

func NewRoundNumberHigh() *RoundNumberHigh {
	return &RoundNumberHigh{}
}

func (r *RoundNumberHigh) Name() types.PatternName {
	return types.PatternRoundNumberHigh
}

func (r *RoundNumberHigh) Evaluate(series types.Series, ind *indicator.Snapshot) (bool, error) {
	if err := needBars(series, 20, "round number high"); err != nil {
		return false, err
	}

	prevHigh, err := previousHigh(series)
	if err != nil {
		return false, err
	}

	current := ind.Closes()[0]
	if current < prevHigh {
		return false, nil
	}

	step := roundStep(current * 1.02)

	return math.Floor(current/step) != math.Floor(prevHigh/step), nil
}

func roundStep(price float64) float64 {
	switch {
	case price < 10:
		return 1
	case price < 100:
		return 10
	default:
		return 100
	}
}
