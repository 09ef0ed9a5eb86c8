package indicator

import (
	"github.com/rxtech-lab/argo-scanner/internal/types"
)

// Snapshot caches the indicators of one symbol for one cycle. It is filled by the
// registry indicators before any detector runs and is read-only afterwards. A lookup
// that was not precomputed is computed on demand and not stored, so concurrent readers
// never write.
type Snapshot struct {
	series types.Series
	closes []float64
	opens  []float64
	ema    map[int][]float64
	sma    map[int][]float64
	macd   map[MACDParams]MACDResult
	rsi    map[int][]float64
	force  map[int][]float64
	pivots map[int][]types.Pivot
	weekly *Snapshot
}

// NewSnapshot creates an empty snapshot for series.
func NewSnapshot(series types.Series) *Snapshot {
	return &Snapshot{
		series: series,
		closes: series.Closes(),
		opens:  series.Opens(),
		ema:    make(map[int][]float64),
		sma:    make(map[int][]float64),
		macd:   make(map[MACDParams]MACDResult),
		rsi:    make(map[int][]float64),
		force:  make(map[int][]float64),
		pivots: make(map[int][]types.Pivot),
	}
}

// Build creates a snapshot for series and runs every indicator in the registry on it.
func Build(series types.Series, registry IndicatorRegistry) (*Snapshot, error) {
	snapshot := NewSnapshot(series)

	if registry == nil {
		return snapshot, nil
	}

	if err := registry.Precompute(series, snapshot); err != nil {
		return nil, err
	}

	return snapshot, nil
}

// Series returns the series the snapshot was built for.
func (s *Snapshot) Series() types.Series {
	return s.series
}

// Closes returns the closing prices, newest first.
func (s *Snapshot) Closes() []float64 {
	return s.closes
}

// EMA returns the EMA of the closes for period n.
func (s *Snapshot) EMA(n int) ([]float64, error) {
	if values, ok := s.ema[n]; ok {
		return values, nil
	}

	return EMA(s.closes, n)
}

// SMA returns the SMA of the closes for period n.
func (s *Snapshot) SMA(n int) ([]float64, error) {
	if values, ok := s.sma[n]; ok {
		return values, nil
	}

	return SMA(s.closes, n)
}

// MACD returns the MACD of the closes.
func (s *Snapshot) MACD(params MACDParams) (MACDResult, error) {
	if result, ok := s.macd[params]; ok {
		return result, nil
	}

	return MACD(s.closes, params)
}

// RSI returns the RSI of the closes for period n.
func (s *Snapshot) RSI(n int) ([]float64, error) {
	if values, ok := s.rsi[n]; ok {
		return values, nil
	}

	return RSI(s.closes, n)
}

// ForceIndex returns the force index of the series for period n.
func (s *Snapshot) ForceIndex(n int) ([]float64, error) {
	if values, ok := s.force[n]; ok {
		return values, nil
	}

	return ForceIndex(s.closes, s.series.Volumes(), n)
}

// Pivots returns the support/resistance pivots of the most recent lookback bars.
// A lookback of 0 scans the whole series.
func (s *Snapshot) Pivots(lookback int) ([]types.Pivot, error) {
	if pivots, ok := s.pivots[lookback]; ok {
		return pivots, nil
	}

	return s.computePivots(lookback)
}

// Weekly returns a snapshot over the weekly aggregation of the series. It is set by
// AttachWeekly during preparation, or built empty on demand.
func (s *Snapshot) Weekly() *Snapshot {
	if s.weekly != nil {
		return s.weekly
	}

	return NewSnapshot(s.series.Weekly())
}

// AttachWeekly precomputes the weekly snapshot with the given registry.
func (s *Snapshot) AttachWeekly(registry IndicatorRegistry) error {
	weekly, err := Build(s.series.Weekly(), registry)
	if err != nil {
		return err
	}

	s.weekly = weekly

	return nil
}

func (s *Snapshot) computePivots(lookback int) ([]types.Pivot, error) {
	opens, closes := s.opens, s.closes
	if lookback > 0 && lookback < len(closes) {
		opens, closes = opens[:lookback], closes[:lookback]
	}

	return SupportResistance(opens, closes, DefaultPivotWindow)
}
