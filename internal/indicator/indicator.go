// Package indicator holds the technical indicators used by the pattern detectors.
//
// Every function takes data ordered newest first (index 0 is the most recent bar) and
// returns a series with the same orientation. A result of period n lacks the oldest n-1
// entries of its input. Nothing here mutates its input.
package indicator

import (
	"github.com/rxtech-lab/argo-scanner/internal/types"
)

// Indicator precomputes one family of values into a symbol's Snapshot.
type Indicator interface {
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// Config replaces the indicator parameters
	Config(params ...any) error
	// Compute stores the indicator values for series into snapshot. It fails with
	// an InsufficientDataError when the series is too short.
	Compute(series types.Series, snapshot *Snapshot) error
}
