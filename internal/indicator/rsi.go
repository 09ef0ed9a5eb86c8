package indicator

import (
	"fmt"

	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
)

// RSI returns the relative strength index of points using Wilder smoothing. Averages
// are seeded over the oldest n price changes. When the average loss is zero the value
// is 100.
func RSI(points []float64, n int) ([]float64, error) {
	if err := checkPeriod(n); err != nil {
		return nil, err
	}

	if len(points) < n+1 {
		return nil, errors.NewInsufficientDataErrorf(n+1, len(points), "", "insufficient data for RSI(%d)", n)
	}

	changes := len(points) - 1
	gains := make([]float64, changes)
	losses := make([]float64, changes)

	for i := 0; i < changes; i++ {
		change := points[i] - points[i+1]
		if change > 0 {
			gains[i] = change
		} else if change < 0 {
			losses[i] = -change
		}
	}

	avgGain, avgLoss := 0.0, 0.0
	for i := changes - n; i < changes; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}

	avgGain /= float64(n)
	avgLoss /= float64(n)

	out := make([]float64, len(points)-n)
	last := len(out) - 1
	out[last] = relativeStrength(avgGain, avgLoss)

	for i := last - 1; i >= 0; i-- {
		avgGain = (avgGain*float64(n-1) + gains[i]) / float64(n)
		avgLoss = (avgLoss*float64(n-1) + losses[i]) / float64(n)
		out[i] = relativeStrength(avgGain, avgLoss)
	}

	return out, nil
}

func relativeStrength(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}

	return 100 - 100/(1+avgGain/avgLoss)
}

// RSIIndicator precomputes the RSI of the closes.
type RSIIndicator struct {
	period int
}

// NewRSI creates an RSI indicator with the default period of 14.
func NewRSI() Indicator {
	return &RSIIndicator{period: 14}
}

// Name returns the name of the indicator.
func (r *RSIIndicator) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// Config configures the RSI indicator. Expected parameters: period (int).
func (r *RSIIndicator) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: period (int)")
	}

	periods, err := intParams("RSI", params)
	if err != nil {
		return err
	}

	r.period = periods[0]

	return nil
}

// Compute stores the RSI values, unless the series is too short.
func (r *RSIIndicator) Compute(_ types.Series, snapshot *Snapshot) error {
	values, err := RSI(snapshot.closes, r.period)
	if errors.IsInsufficientDataError(err) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to compute RSI(%d): %w", r.period, err)
	}

	snapshot.rsi[r.period] = values

	return nil
}
