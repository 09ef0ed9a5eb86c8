// Package pattern implements the price-action detectors run by the scan engine.
//
// A detector is a pure predicate over one symbol's series and its indicator snapshot.
// It answers true when the pattern is present at the most recent bar, false when it is
// not, and returns a data error (InsufficientDataError or MalformedBarError) when the
// series cannot support the evaluation. Detectors never panic on short input.
package pattern

import (
	"github.com/rxtech-lab/argo-scanner/internal/indicator"
	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
)

// Detector evaluates one pattern for one symbol.
type Detector interface {
	// Name returns the pattern name used in reports
	Name() types.PatternName
	// Evaluate reports whether the pattern is present at the most recent bar
	Evaluate(series types.Series, ind *indicator.Snapshot) (bool, error)
}

// Options holds the tunable periods shared by the detectors. Thresholds are fixed.
type Options struct {
	// MACD periods for the divergence and new high detectors
	MACD indicator.MACDParams `yaml:"macd" json:"macd"`
	// PhaseWidth is the minimum width of each MACD phase
	PhaseWidth int `yaml:"phase_width" json:"phase_width" validate:"gt=0"`
	// PivotLookback bounds the pivot scan of the bottom-up detector
	PivotLookback int `yaml:"pivot_lookback" json:"pivot_lookback" validate:"gt=0"`
}

// DefaultOptions returns MACD 12/26/9, 5-bar phases and a 300-bar pivot lookback.
func DefaultOptions() Options {
	return Options{
		MACD:          indicator.DefaultMACDParams(),
		PhaseWidth:    5,
		PivotLookback: indicator.DefaultPivotLookback,
	}
}

// Names returns every pattern name in report order.
func Names() []types.PatternName {
	return []types.PatternName{
		types.PatternMACDBullishDivergence,
		types.PatternPullbackAfterBreakout,
		types.PatternBottomUpReversal,
		types.PatternNewHigh,
		types.PatternLargeNegativeSmallPositive,
		types.PatternRoundNumberHigh,
		types.PatternTripleScreen,
	}
}

// Default returns every detector in report order.
func Default(opts Options) []Detector {
	detectors := make([]Detector, 0, len(Names()))

	for _, name := range Names() {
		detector, _ := ByName(name, opts)
		detectors = append(detectors, detector)
	}

	return detectors
}

// ByName builds the detector registered under name.
func ByName(name types.PatternName, opts Options) (Detector, error) {
	switch name {
	case types.PatternMACDBullishDivergence:
		return NewMACDDivergence(opts.MACD, opts.PhaseWidth), nil
	case types.PatternPullbackAfterBreakout:
		return NewPullback(), nil
	case types.PatternBottomUpReversal:
		return NewBottomUp(opts.PivotLookback), nil
	case types.PatternNewHigh:
		return NewNewHigh(opts.MACD), nil
	case types.PatternLargeNegativeSmallPositive:
		return NewPiercing(), nil
	case types.PatternRoundNumberHigh:
		return NewRoundNumberHigh(), nil
	case types.PatternTripleScreen:
		return NewTripleScreen(opts.MACD), nil
	default:
		return nil, errors.Newf(errors.ErrCodePatternNotFound, "unknown pattern %q", name)
	}
}

// Resolve builds the detectors for the given names, keeping their order.
func Resolve(names []types.PatternName, opts Options) ([]Detector, error) {
	detectors := make([]Detector, 0, len(names))

	for _, name := range names {
		detector, err := ByName(name, opts)
		if err != nil {
			return nil, err
		}

		detectors = append(detectors, detector)
	}

	return detectors, nil
}

func minOf(values []float64) float64 {
	out := values[0]
	for _, v := range values[1:] {
		if v < out {
			out = v
		}
	}

	return out
}

func maxOf(values []float64) float64 {
	out := values[0]
	for _, v := range values[1:] {
		if v > out {
			out = v
		}
	}

	return out
}

// previousHigh returns the highest high of every bar but the most recent one.
func previousHigh(series types.Series) (float64, error) {
	highs, err := series[1:].Highs()
	if err != nil {
		var malformed *errors.MalformedBarError
		if errors.As(err, &malformed) {
			return 0, errors.NewMalformedBarError(malformed.Index+1, malformed.Field, malformed.Message)
		}

		return 0, err
	}

	return maxOf(highs), nil
}

// lowPriceBars is the history priceIsLow needs: EMA10 at bar 2.
const lowPriceBars = 12

// priceIsLow reports whether the closes of bars 1 and 2 sit at or below the lower of
// EMA5 and EMA10 at the same index.
func priceIsLow(closes []float64, ind *indicator.Snapshot) (bool, error) {
	ema5, err := ind.EMA(5)
	if err != nil {
		return false, err
	}

	ema10, err := ind.EMA(10)
	if err != nil {
		return false, err
	}

	if len(ema10) < 3 {
		return false, errors.NewInsufficientDataError(lowPriceBars, len(closes), "", "insufficient data for EMA(10) at bar 2")
	}

	for i := 1; i <= 2; i++ {
		if closes[i] > min(ema5[i], ema10[i]) {
			return false, nil
		}
	}

	return true, nil
}

func needBars(series types.Series, required int, what string) error {
	if len(series) < required {
		return errors.NewInsufficientDataErrorf(required, len(series), "", "insufficient data for %s", what)
	}

	return nil
}
