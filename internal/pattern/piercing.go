package pattern

import (
	"github.com/rxtech-lab/argo-scanner/internal/indicator"
	"github.com/rxtech-lab/argo-scanner/internal/types"
)

// Piercing fires on a large negative bar followed by a positive bar that opened below
// it, at a low price level.
type Piercing struct{}

func NewPiercing() *Piercing {
	return &Piercing{}
}

func (p *Piercing) Name() types.PatternName {
	return types.PatternLargeNegativeSmallPositive
}

func (p *Piercing) Evaluate(series types.Series, ind *indicator.Snapshot) (bool, error) {
	if err := needBars(series, lowPriceBars, "large negative small positive"); err != nil {
		return false, err
	}

	current, previous := series[0], series[1]

	switch {
	case current.Close < current.Open:
		return false, nil
	case previous.Close > previous.Open:
		return false, nil
	case previous.Open-previous.Close < previous.Open*0.01:
		return false, nil
	case current.Open >= min(previous.Open, previous.Close):
		return false, nil
	}

	return priceIsLow(ind.Closes(), ind)
}
