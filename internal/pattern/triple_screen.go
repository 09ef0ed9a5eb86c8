package pattern

import (
	"github.com/rxtech-lab/argo-scanner/internal/indicator"
	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
)

const (
	tripleScreenSMA   = 26
	tripleScreenForce = 13
)

// TripleScreen fires when the weekly impulse is bullish (close above a rising SMA26 and
// a non-falling MACD histogram) and the daily force index dips below zero.
type TripleScreen struct {
	params indicator.MACDParams
}

func NewTripleScreen(params indicator.MACDParams) *TripleScreen {
	return &TripleScreen{params: params}
}

func (t *TripleScreen) Name() types.PatternName {
	return types.PatternTripleScreen
}

func (t *TripleScreen) Evaluate(_ types.Series, ind *indicator.Snapshot) (bool, error) {
	bullish, err := t.weeklyImpulse(ind.Weekly())
	if err != nil || !bullish {
		return false, err
	}

	force, err := ind.ForceIndex(tripleScreenForce)
	if err != nil {
		return false, err
	}

	return force[0] < 0, nil
}

func (t *TripleScreen) weeklyImpulse(weekly *indicator.Snapshot) (bool, error) {
	result, err := weekly.MACD(t.params)
	if err != nil {
		return false, err
	}

	sma, err := weekly.SMA(tripleScreenSMA)
	if err != nil {
		return false, err
	}

	if len(sma) < 5 || len(result.Histogram) < 2 {
		return false, errors.NewInsufficientDataError(tripleScreenSMA+4, len(weekly.Closes()), "",
			"insufficient weekly data for the impulse test")
	}

	switch {
	case weekly.Closes()[0] < sma[0]:
		return false, nil
	case result.Histogram[0] < result.Histogram[1]:
		return false, nil
	case sma[0] < maxOf(sma[1:5]):
		return false, nil
	}

	return true, nil
}
