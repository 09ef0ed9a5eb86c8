package indicator

import (
	"fmt"

	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
)

// ForceIndex returns the EMA over n of (close[i] - close[i+1]) * volume[i].
func ForceIndex(closes, volumes []float64, n int) ([]float64, error) {
	if len(closes) != len(volumes) {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter,
			"closes and volumes differ in length: %d != %d", len(closes), len(volumes))
	}

	if err := checkPeriod(n); err != nil {
		return nil, err
	}

	if len(closes) < 2 {
		return nil, errors.NewInsufficientDataErrorf(n+1, len(closes), "", "insufficient data for ForceIndex(%d)", n)
	}

	raw := make([]float64, len(closes)-1)
	for i := range raw {
		raw[i] = (closes[i] - closes[i+1]) * volumes[i]
	}

	return EMA(raw, n)
}

// ForceIndexIndicator precomputes the force index of the series.
type ForceIndexIndicator struct {
	period int
}

// NewForceIndex creates a force index indicator with the default period of 13.
func NewForceIndex() Indicator {
	return &ForceIndexIndicator{period: 13}
}

// Name returns the name of the indicator.
func (f *ForceIndexIndicator) Name() types.IndicatorType {
	return types.IndicatorTypeForceIndex
}

// Config configures the force index. Expected parameters: period (int).
func (f *ForceIndexIndicator) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: period (int)")
	}

	periods, err := intParams("ForceIndex", params)
	if err != nil {
		return err
	}

	f.period = periods[0]

	return nil
}

// Compute stores the force index values, unless the series is too short.
func (f *ForceIndexIndicator) Compute(series types.Series, snapshot *Snapshot) error {
	values, err := ForceIndex(snapshot.closes, series.Volumes(), f.period)
	if errors.IsInsufficientDataError(err) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to compute ForceIndex(%d): %w", f.period, err)
	}

	snapshot.force[f.period] = values

	return nil
}
