package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
)

const (
	// DefaultPivotWindow is the width of the window a pivot must dominate.
	DefaultPivotWindow = 10
	// DefaultPivotLookback is how many recent bars the reversal detectors scan for pivots.
	DefaultPivotLookback = 300
)

// SupportResistance finds pivots in the bodies of the bars. For every window of
// window bars, the midpoint bar is a resistance pivot when its body top is the highest
// body value in the window, or else a support pivot when its body bottom is the lowest.
// Pivots are returned most recent first. A series no longer than the window has none.
func SupportResistance(opens, closes []float64, window int) ([]types.Pivot, error) {
	if len(opens) != len(closes) {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter,
			"opens and closes differ in length: %d != %d", len(opens), len(closes))
	}

	if err := checkPeriod(window); err != nil {
		return nil, err
	}

	pivots := []types.Pivot{}

	for i := 0; i < len(closes)-window; i++ {
		windowMax, windowMin := math.Inf(-1), math.Inf(1)

		for j := i; j < i+window; j++ {
			windowMax = math.Max(windowMax, math.Max(opens[j], closes[j]))
			windowMin = math.Min(windowMin, math.Min(opens[j], closes[j]))
		}

		mid := i + window/2
		top := math.Max(opens[mid], closes[mid])
		bottom := math.Min(opens[mid], closes[mid])

		switch {
		case top == windowMax:
			pivots = append(pivots, types.Pivot{Price: top, Index: mid, Kind: types.PivotKindResistance})
		case bottom == windowMin:
			pivots = append(pivots, types.Pivot{Price: bottom, Index: mid, Kind: types.PivotKindSupport})
		}
	}

	return pivots, nil
}

// PivotIndicator precomputes pivots over the most recent lookback bars.
type PivotIndicator struct {
	lookbacks []int
}

// NewPivots creates a pivot indicator. Defaults to the reversal lookback and the full series (0).
func NewPivots(lookbacks ...int) Indicator {
	if len(lookbacks) == 0 {
		lookbacks = []int{DefaultPivotLookback, 0}
	}

	return &PivotIndicator{lookbacks: lookbacks}
}

// Name returns the name of the indicator.
func (p *PivotIndicator) Name() types.IndicatorType {
	return types.IndicatorTypePivots
}

// Config configures the lookbacks. Expected parameters: one or more lookbacks (int),
// where 0 stands for the full series.
func (p *PivotIndicator) Config(params ...any) error {
	if len(params) == 0 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects at least 1 parameter: lookback (int)")
	}

	lookbacks := make([]int, 0, len(params))

	for _, param := range params {
		lookback, ok := param.(int)
		if !ok || lookback < 0 {
			return errors.Newf(errors.ErrCodeInvalidParameter, "invalid lookback %v, expected a non-negative int", param)
		}

		lookbacks = append(lookbacks, lookback)
	}

	p.lookbacks = lookbacks

	return nil
}

// Compute stores the pivots for every configured lookback.
func (p *PivotIndicator) Compute(_ types.Series, snapshot *Snapshot) error {
	for _, lookback := range p.lookbacks {
		pivots, err := snapshot.computePivots(lookback)
		if err != nil {
			return err
		}

		snapshot.pivots[lookback] = pivots
	}

	return nil
}
