package pattern

import (
	"github.com/rxtech-lab/argo-scanner/internal/indicator"
	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
)

// MACDDivergence fires on a bullish divergence: price makes a lower low in the current
// MACD down phase while the MACD line makes a higher low than in the prior down phase.
type MACDDivergence struct {
	params indicator.MACDParams
	width  int
}

// NewMACDDivergence creates the detector. Each of the three phases must span width bars.
func NewMACDDivergence(params indicator.MACDParams, width int) *MACDDivergence {
	return &MACDDivergence{params: params, width: width}
}

func (d *MACDDivergence) Name() types.PatternName {
	return types.PatternMACDBullishDivergence
}

func (d *MACDDivergence) Evaluate(_ types.Series, ind *indicator.Snapshot) (bool, error) {
	result, err := ind.MACD(d.params)
	if err != nil {
		return false, err
	}

	line, hist := result.Line, result.Histogram
	if len(hist) < 2 {
		return false, errors.NewInsufficientDataError(2, len(hist), "", "insufficient MACD histogram for divergence")
	}

	if line[0] > 0 || result.Signal[0] > 0 || hist[0] > 0 {
		return false, nil
	}

	if hist[0] < hist[1] {
		return false, nil
	}

	n := len(hist)
	i := 0

	for i < n && hist[i] <= 0 {
		i++
	}

	if i == n {
		return false, errors.NewInsufficientDataError(n+1, n, "", "no dead cross in MACD histogram")
	}

	dead := i

	for i < n && hist[i] > 0 {
		i++
	}

	if i == n {
		return false, errors.NewInsufficientDataError(n+1, n, "", "no gold cross in MACD histogram")
	}

	gold := i

	for i < n && hist[i] <= 0 {
		i++
	}

	prior := i

	if dead < d.width || gold-dead < d.width || prior-gold < d.width {
		return false, nil
	}

	closes := ind.Closes()

	if minOf(closes[:dead]) >= minOf(closes[gold:prior]) {
		return false, nil
	}

	return minOf(line[:dead]) > minOf(line[gold:prior]), nil
}
