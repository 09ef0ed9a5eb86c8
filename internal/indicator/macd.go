package indicator

import (
	"fmt"

	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
)

// MACDParams are the periods of the fast, slow and signal averages.
type MACDParams struct {
	Fast   int `yaml:"fast" json:"fast" validate:"gt=0"`
	Slow   int `yaml:"slow" json:"slow" validate:"gtfield=Fast"`
	Signal int `yaml:"signal" json:"signal" validate:"gt=0"`
}

// DefaultMACDParams returns the usual 12/26/9 periods.
func DefaultMACDParams() MACDParams {
	return MACDParams{Fast: 12, Slow: 26, Signal: 9}
}

// MACDResult holds the three MACD series, newest first. Histogram and Signal have the
// same length; Line is longer by Signal-1 values.
type MACDResult struct {
	Line      []float64
	Signal    []float64
	Histogram []float64
}

// MACD computes the MACD line, its signal line and the histogram.
func MACD(points []float64, params MACDParams) (MACDResult, error) {
	fast, err := EMA(points, params.Fast)
	if err != nil {
		return MACDResult{}, err
	}

	slow, err := EMA(points, params.Slow)
	if err != nil {
		return MACDResult{}, err
	}

	line := make([]float64, min(len(fast), len(slow)))
	for i := range line {
		line[i] = fast[i] - slow[i]
	}

	signal, err := EMA(line, params.Signal)
	if err != nil {
		return MACDResult{}, err
	}

	histogram := make([]float64, len(signal))
	for i := range histogram {
		histogram[i] = line[i] - signal[i]
	}

	return MACDResult{
		Line:      line,
		Signal:    signal,
		Histogram: histogram,
	}, nil
}

// MACDIndicator precomputes MACD over the closes.
type MACDIndicator struct {
	params MACDParams
}

// NewMACD creates a MACD indicator with the default 12/26/9 periods.
func NewMACD() Indicator {
	return &MACDIndicator{params: DefaultMACDParams()}
}

// Name returns the name of the indicator.
func (m *MACDIndicator) Name() types.IndicatorType {
	return types.IndicatorTypeMACD
}

// Config configures the MACD indicator. Expected parameters: fastPeriod (int), slowPeriod (int), signalPeriod (int).
func (m *MACDIndicator) Config(params ...any) error {
	if len(params) != 3 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 3 parameters: fastPeriod (int), slowPeriod (int), signalPeriod (int)")
	}

	periods, err := intParams("MACD", params)
	if err != nil {
		return err
	}

	if periods[1] <= periods[0] {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "slowPeriod (%d) must be greater than fastPeriod (%d)", periods[1], periods[0])
	}

	m.params = MACDParams{Fast: periods[0], Slow: periods[1], Signal: periods[2]}

	return nil
}

// Compute stores the MACD result, unless the series is too short for it.
func (m *MACDIndicator) Compute(_ types.Series, snapshot *Snapshot) error {
	result, err := MACD(snapshot.closes, m.params)
	if errors.IsInsufficientDataError(err) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to compute MACD: %w", err)
	}

	snapshot.macd[m.params] = result

	return nil
}
