package engine

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-scanner/internal/datasource"
	"github.com/rxtech-lab/argo-scanner/internal/types"
)

// Lifecycle callback types for a scan cycle.
// Callbacks with an error return abort the cycle when they return an error.

// OnCycleStartCallback is called before the series of a cycle are loaded.
type OnCycleStartCallback func(cycleID string, frequency types.Frequency, symbols int) error

// OnCycleEndCallback is called when a cycle ends, successfully or not.
type OnCycleEndCallback func(report types.Report, err error)

// OnEvaluationCallback is called after each (pattern, symbol) evaluation. It is called
// concurrently from pool tasks.
type OnEvaluationCallback func(symbol string, name types.PatternName, hit bool, err error, elapsed time.Duration)

// Callbacks holds the lifecycle callbacks of the scan engine.
// All fields are pointers - nil means no callback will be invoked.
type Callbacks struct {
	OnCycleStart *OnCycleStartCallback
	OnCycleEnd   *OnCycleEndCallback
	OnEvaluation *OnEvaluationCallback
}

// Schedule selects how evaluation work is split into pool tasks.
type Schedule string

const (
	// SchedulePerSymbol runs one task per symbol evaluating every pattern
	SchedulePerSymbol Schedule = "per_symbol"
	// SchedulePerRule runs one task per pattern evaluating every symbol
	SchedulePerRule Schedule = "per_rule"
)

// AllSchedules lists the accepted schedules.
var AllSchedules = []any{string(SchedulePerSymbol), string(SchedulePerRule)}

// Engine evaluates every configured pattern against every symbol of a watchlist.
type Engine interface {
	// Load resets the cycle state and takes the series of a new cycle. Symbols in missing,
	// or without a series, are recorded as missing data.
	Load(watchlist []string, series map[string]types.Series, missing []string) error
	// Prepare validates every series and precomputes the shared indicators.
	// Must be called after Load.
	Prepare() error
	// Run evaluates every (pattern, symbol) pair. Must be called after Prepare.
	// Failing evaluations exclude the symbol; they never abort the batch.
	Run(callbacks Callbacks) error
	// Report returns the outcome of the current cycle.
	Report() types.Report
	// Cycle runs Load, Prepare, Run and Report on series read from source.
	Cycle(ctx context.Context, source datasource.SeriesSource, watchlist []string, frequency types.Frequency, callbacks Callbacks) (types.Report, error)
}
