package indicator

import (
	"fmt"

	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
)

// EMA returns the exponential moving average of points. The oldest value is seeded
// with the simple average of the oldest n points; each newer value blends the price
// with the previous average using ratio 2/(n+1).
func EMA(points []float64, n int) ([]float64, error) {
	if err := checkPeriod(n); err != nil {
		return nil, err
	}

	if n == 1 {
		return copyOf(points), nil
	}

	if len(points) < n {
		return nil, errors.NewInsufficientDataErrorf(n, len(points), "", "insufficient data for EMA(%d)", n)
	}

	ratio := 2.0 / float64(n+1)
	out := make([]float64, len(points)-n+1)

	sum := 0.0
	for _, v := range points[len(points)-n:] {
		sum += v
	}

	last := len(out) - 1
	out[last] = sum / float64(n)

	for i := last - 1; i >= 0; i-- {
		out[i] = points[i]*ratio + out[i+1]*(1-ratio)
	}

	return out, nil
}

// EMAIndicator precomputes exponential moving averages of the closes.
type EMAIndicator struct {
	periods []int
}

// NewEMA creates an EMA indicator. Defaults to the periods the detectors read: 5, 10 and 20.
func NewEMA(periods ...int) Indicator {
	if len(periods) == 0 {
		periods = []int{5, 10, 20}
	}

	return &EMAIndicator{periods: periods}
}

// Name returns the name of the indicator.
func (e *EMAIndicator) Name() types.IndicatorType {
	return types.IndicatorTypeEMA
}

// Config configures the periods. Expected parameters: one or more periods (int).
func (e *EMAIndicator) Config(params ...any) error {
	periods, err := intParams("EMA", params)
	if err != nil {
		return err
	}

	e.periods = periods

	return nil
}

// Periods returns the configured periods.
func (e *EMAIndicator) Periods() []int {
	return e.periods
}

// Compute stores an EMA per configured period. Periods longer than the series are
// left out so the detectors needing them report insufficient data themselves.
func (e *EMAIndicator) Compute(_ types.Series, snapshot *Snapshot) error {
	for _, period := range e.periods {
		values, err := EMA(snapshot.closes, period)
		if errors.IsInsufficientDataError(err) {
			continue
		}

		if err != nil {
			return fmt.Errorf("failed to compute EMA(%d): %w", period, err)
		}

		snapshot.ema[period] = values
	}

	return nil
}
