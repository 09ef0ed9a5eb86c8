package indicator

import (
	"sync"

	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
)

// IndicatorRegistry holds the indicators precomputed into every snapshot.
type IndicatorRegistry interface {
	RegisterIndicator(indicator Indicator) error
	GetIndicator(name types.IndicatorType) (Indicator, error)
	// ListIndicators returns the indicator names in registration order.
	ListIndicators() []types.IndicatorType
	RemoveIndicator(name types.IndicatorType) error
	// Precompute runs every registered indicator on series, in registration order.
	Precompute(series types.Series, snapshot *Snapshot) error
}

// IndicatorRegistryV1 keeps its indicators in registration order behind a RWMutex.
type IndicatorRegistryV1 struct {
	order []Indicator
	mu    sync.RWMutex
}

// NewIndicatorRegistry creates an empty indicator registry.
func NewIndicatorRegistry() IndicatorRegistry {
	return &IndicatorRegistryV1{
		order: nil,
		mu:    sync.RWMutex{},
	}
}

// NewDefaultRegistry creates a registry with the shared indicator set read by the
// built-in detectors: EMA 5/10/20, SMA 26, MACD 12/26/9, RSI 14, force index 13 and pivots.
func NewDefaultRegistry() IndicatorRegistry {
	registry := NewIndicatorRegistry()

	for _, ind := range []Indicator{
		NewEMA(),
		NewMA(),
		NewMACD(),
		NewRSI(),
		NewForceIndex(),
		NewPivots(),
	} {
		// names are distinct
		_ = registry.RegisterIndicator(ind)
	}

	return registry
}

// RegisterIndicator appends indicator. Names must be unique.
func (r *IndicatorRegistryV1) RegisterIndicator(indicator Indicator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(indicator.Name()) >= 0 {
		return errors.Newf(errors.ErrCodeIndicatorAlreadyExists, "indicator %s is already registered", indicator.Name())
	}

	r.order = append(r.order, indicator)

	return nil
}

// GetIndicator looks an indicator up by name.
func (r *IndicatorRegistryV1) GetIndicator(name types.IndicatorType) (Indicator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.indexOf(name)
	if idx < 0 {
		return nil, errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator %s not found", name)
	}

	return r.order[idx], nil
}

func (r *IndicatorRegistryV1) ListIndicators() []types.IndicatorType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]types.IndicatorType, len(r.order))
	for i, ind := range r.order {
		names[i] = ind.Name()
	}

	return names
}

// RemoveIndicator drops an indicator, keeping the order of the others.
func (r *IndicatorRegistryV1) RemoveIndicator(name types.IndicatorType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(name)
	if idx < 0 {
		return errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator %s not found", name)
	}

	r.order = append(r.order[:idx:idx], r.order[idx+1:]...)

	return nil
}

// Precompute stops at the first indicator that fails and reports its name in the error.
// Indicators skip periods the series is too short for, so a failure here means bad input.
func (r *IndicatorRegistryV1) Precompute(series types.Series, snapshot *Snapshot) error {
	r.mu.RLock()
	indicators := make([]Indicator, len(r.order))
	copy(indicators, r.order)
	r.mu.RUnlock()

	for _, ind := range indicators {
		if err := ind.Compute(series, snapshot); err != nil {
			if errors.IsDataError(err) {
				return err
			}

			return errors.Wrapf(errors.ErrCodeIndicatorCalculation, err, "indicator %s failed", ind.Name())
		}
	}

	return nil
}

func (r *IndicatorRegistryV1) indexOf(name types.IndicatorType) int {
	for i, ind := range r.order {
		if ind.Name() == name {
			return i
		}
	}

	return -1
}
