package indicator

import (
	"fmt"

	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
)

// SMA returns the simple moving average of points over windows of n values.
func SMA(points []float64, n int) ([]float64, error) {
	if err := checkPeriod(n); err != nil {
		return nil, err
	}

	if n == 1 {
		return copyOf(points), nil
	}

	if len(points) < n {
		return nil, errors.NewInsufficientDataErrorf(n, len(points), "", "insufficient data for SMA(%d)", n)
	}

	out := make([]float64, len(points)-n+1)
	for i := range out {
		sum := 0.0
		for _, v := range points[i : i+n] {
			sum += v
		}

		out[i] = sum / float64(n)
	}

	return out, nil
}

// MA precomputes simple moving averages of the closes at one or more periods.
type MA struct {
	periods []int
}

// NewMA creates a simple moving average indicator. Defaults to period 26.
func NewMA(periods ...int) Indicator {
	if len(periods) == 0 {
		periods = []int{26}
	}

	return &MA{periods: periods}
}

// Name returns the name of the indicator.
func (m *MA) Name() types.IndicatorType {
	return types.IndicatorTypeSMA
}

// Config configures the periods. Expected parameters: one or more periods (int).
func (m *MA) Config(params ...any) error {
	periods, err := intParams("MA", params)
	if err != nil {
		return err
	}

	m.periods = periods

	return nil
}

// Compute stores an SMA per configured period. Periods longer than the series are skipped.
func (m *MA) Compute(series types.Series, snapshot *Snapshot) error {
	closes := snapshot.closes

	for _, period := range m.periods {
		values, err := SMA(closes, period)
		if errors.IsInsufficientDataError(err) {
			continue
		}

		if err != nil {
			return fmt.Errorf("failed to compute SMA(%d): %w", period, err)
		}

		snapshot.sma[period] = values
	}

	return nil
}

func checkPeriod(n int) error {
	if n <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", n)
	}

	return nil
}

func copyOf(points []float64) []float64 {
	out := make([]float64, len(points))
	copy(out, points)

	return out
}

func intParams(name string, params []any) ([]int, error) {
	if len(params) == 0 {
		return nil, errors.Newf(errors.ErrCodeMissingParameter, "%s Config expects at least 1 parameter: period (int)", name)
	}

	periods := make([]int, 0, len(params))

	for _, param := range params {
		period, ok := param.(int)
		if !ok {
			return nil, errors.Newf(errors.ErrCodeInvalidParameter, "invalid type for period parameter, expected int, got %T", param)
		}

		if err := checkPeriod(period); err != nil {
			return nil, err
		}

		periods = append(periods, period)
	}

	return periods, nil
}
