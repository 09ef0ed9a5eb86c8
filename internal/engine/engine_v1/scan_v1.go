package engine

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-scanner/internal/datasource"
	"github.com/rxtech-lab/argo-scanner/internal/engine"
	"github.com/rxtech-lab/argo-scanner/internal/indicator"
	"github.com/rxtech-lab/argo-scanner/internal/logger"
	"github.com/rxtech-lab/argo-scanner/internal/pattern"
	"github.com/rxtech-lab/argo-scanner/internal/pool"
	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
	"go.uber.org/zap"
)

type cycleState int

const (
	stateEmpty cycleState = iota
	stateLoaded
	statePrepared
	stateRan
)

// Option customizes a ScanEngineV1.
type Option func(*ScanEngineV1)

// WithDetectors replaces the detectors built from the configuration.
func WithDetectors(detectors ...pattern.Detector) Option {
	return func(e *ScanEngineV1) {
		e.detectors = detectors
	}
}

// WithRegistry replaces the default indicator registry used by Prepare.
func WithRegistry(registry indicator.IndicatorRegistry) Option {
	return func(e *ScanEngineV1) {
		e.registry = registry
	}
}

// WithClock replaces the clock used to stamp reports.
func WithClock(clock func() time.Time) Option {
	return func(e *ScanEngineV1) {
		e.clock = clock
	}
}

// ScanEngineV1 runs detectors over a watchlist through a bounded pool.
//
// One engine runs one cycle at a time. Load resets every piece of cycle state, so
// the same engine can be reused across cycles.
type ScanEngineV1 struct {
	config    ScanEngineV1Config
	log       *logger.Logger
	detectors []pattern.Detector
	registry  indicator.IndicatorRegistry
	clock     func() time.Time

	state     cycleState
	cycleID   string
	frequency types.Frequency
	watchlist []string
	position  map[string]int
	series    map[string]types.Series
	snapshots map[string]*indicator.Snapshot

	// guarded by the pool lock during Prepare and Run
	hits            map[types.PatternName]map[string]struct{}
	missingData     map[string]struct{}
	missingAnalysis map[string]struct{}
}

// NewScanEngineV1 creates a scan engine. The configuration is validated and the
// detectors are resolved from its pattern list unless WithDetectors is given.
func NewScanEngineV1(config ScanEngineV1Config, log *logger.Logger, opts ...Option) (*ScanEngineV1, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	detectors, err := config.detectors()
	if err != nil {
		return nil, err
	}

	e := &ScanEngineV1{
		config:    config,
		log:       log.Named("engine"),
		detectors: detectors,
		registry:  indicator.NewDefaultRegistry(),
		clock:     time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.reset()

	return e, nil
}

var _ engine.Engine = (*ScanEngineV1)(nil)

func (e *ScanEngineV1) reset() {
	e.state = stateEmpty
	e.cycleID = ""
	e.frequency = types.FrequencyDaily
	e.watchlist = nil
	e.position = make(map[string]int)
	e.series = make(map[string]types.Series)
	e.snapshots = make(map[string]*indicator.Snapshot)
	e.hits = make(map[types.PatternName]map[string]struct{})
	e.missingData = make(map[string]struct{})
	e.missingAnalysis = make(map[string]struct{})
}

// Load implements engine.Engine.
func (e *ScanEngineV1) Load(watchlist []string, series map[string]types.Series, missing []string) error {
	return e.load(uuid.NewString(), watchlist, series, missing)
}

func (e *ScanEngineV1) load(cycleID string, watchlist []string, series map[string]types.Series, missing []string) error {
	e.reset()
	e.cycleID = cycleID

	for _, symbol := range watchlist {
		if _, seen := e.position[symbol]; seen {
			continue
		}

		e.position[symbol] = len(e.watchlist)
		e.watchlist = append(e.watchlist, symbol)
	}

	for _, symbol := range missing {
		e.missingData[symbol] = struct{}{}
	}

	for _, symbol := range e.watchlist {
		if _, excluded := e.missingData[symbol]; excluded {
			continue
		}

		s, ok := series[symbol]
		if !ok {
			e.missingData[symbol] = struct{}{}

			continue
		}

		e.series[symbol] = s
	}

	e.state = stateLoaded

	e.log.Debug("Cycle loaded",
		zap.String("cycle_id", e.cycleID),
		zap.Int("symbols", len(e.watchlist)),
		zap.Int("missing_data", len(e.missingData)),
	)

	return nil
}

// Prepare implements engine.Engine.
func (e *ScanEngineV1) Prepare() error {
	if e.state < stateLoaded {
		return errors.New(errors.ErrCodeEngineNotLoaded, "Load must be called before Prepare")
	}

	workers, err := pool.New(e.config.Concurrency)
	if err != nil {
		return err
	}

	attachWeekly := e.frequency == types.FrequencyDaily && e.hasPattern(types.PatternTripleScreen)

	e.snapshots = make(map[string]*indicator.Snapshot, len(e.series))

	for _, symbol := range e.watchlist {
		symbol := symbol
		series, ok := e.series[symbol]
		if !ok {
			continue
		}

		workers.Submit(func() {
			snapshot, err := e.prepareSymbol(symbol, series, attachWeekly)

			workers.Lock()
			defer workers.Unlock()

			if err != nil {
				e.log.Info("Excluding symbol from the cycle",
					zap.String("symbol", symbol),
					zap.Error(err),
				)
				e.missingData[symbol] = struct{}{}

				return
			}

			e.snapshots[symbol] = snapshot
		})
	}

	workers.AwaitAll()

	e.state = statePrepared

	return nil
}

func (e *ScanEngineV1) prepareSymbol(symbol string, series types.Series, attachWeekly bool) (*indicator.Snapshot, error) {
	if len(series) < e.config.MinBars {
		return nil, errors.NewInsufficientDataError(e.config.MinBars, len(series), symbol, "series is too short")
	}

	if err := series.Validate(); err != nil {
		return nil, errors.WithSymbol(err, symbol)
	}

	snapshot, err := indicator.Build(series, e.registry)
	if err != nil {
		return nil, err
	}

	if attachWeekly {
		if err := snapshot.AttachWeekly(e.registry); err != nil {
			return nil, err
		}
	}

	return snapshot, nil
}

// Run implements engine.Engine.
func (e *ScanEngineV1) Run(callbacks engine.Callbacks) error {
	if e.state < statePrepared {
		return errors.New(errors.ErrCodeEngineNotPrepared, "Prepare must be called before Run")
	}

	if len(e.detectors) == 0 {
		return errors.New(errors.ErrCodeEngineNoDetectors, "no detectors configured")
	}

	workers, err := pool.New(e.config.Concurrency)
	if err != nil {
		return err
	}

	symbols := e.preparedSymbols()

	switch e.config.Schedule {
	case engine.SchedulePerRule:
		for _, detector := range e.detectors {
			detector := detector
			workers.Submit(func() {
				for _, symbol := range symbols {
					e.evaluate(workers, detector, symbol, callbacks)
				}
			})
		}
	default:
		for _, symbol := range symbols {
			symbol := symbol
			workers.Submit(func() {
				for _, detector := range e.detectors {
					e.evaluate(workers, detector, symbol, callbacks)
				}
			})
		}
	}

	workers.AwaitAll()

	e.state = stateRan

	return nil
}

func (e *ScanEngineV1) preparedSymbols() []string {
	symbols := make([]string, 0, len(e.snapshots))

	for _, symbol := range e.watchlist {
		if _, ok := e.snapshots[symbol]; ok {
			symbols = append(symbols, symbol)
		}
	}

	return symbols
}

func (e *ScanEngineV1) evaluate(workers *pool.Pool, detector pattern.Detector, symbol string, callbacks engine.Callbacks) {
	name := detector.Name()
	start := time.Now()

	hit, err := safeEvaluate(detector, e.series[symbol], e.snapshots[symbol])

	if callbacks.OnEvaluation != nil {
		(*callbacks.OnEvaluation)(symbol, name, hit, err, time.Since(start))
	}

	workers.Lock()
	defer workers.Unlock()

	if err != nil {
		e.logEvaluationError(symbol, name, err)
		e.missingAnalysis[symbol] = struct{}{}

		return
	}

	if !hit {
		return
	}

	if e.hits[name] == nil {
		e.hits[name] = make(map[string]struct{})
	}

	e.hits[name][symbol] = struct{}{}
}

func (e *ScanEngineV1) logEvaluationError(symbol string, name types.PatternName, err error) {
	fields := []zap.Field{
		zap.String("symbol", symbol),
		zap.String("pattern", string(name)),
		zap.Error(err),
	}

	if errors.IsDataError(err) {
		e.log.Debug("Not enough data to evaluate pattern", fields...)

		return
	}

	e.log.Warn("Pattern evaluation failed", fields...)
}

// safeEvaluate turns a detector panic into an error.
func safeEvaluate(detector pattern.Detector, series types.Series, snapshot *indicator.Snapshot) (hit bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			hit = false
			err = errors.Newf(errors.ErrCodeDetectorPanic, "detector %s panicked: %v", detector.Name(), r)
		}
	}()

	return detector.Evaluate(series, snapshot)
}

// Report implements engine.Engine.
func (e *ScanEngineV1) Report() types.Report {
	excluded := func(symbol string) bool {
		_, noData := e.missingData[symbol]
		_, noAnalysis := e.missingAnalysis[symbol]

		return noData || noAnalysis
	}

	results := make([]types.SignalResult, 0, len(e.detectors))

	for _, detector := range e.detectors {
		hits := e.hits[detector.Name()]

		symbols := make([]string, 0, len(hits))
		for symbol := range hits {
			if !excluded(symbol) {
				symbols = append(symbols, symbol)
			}
		}

		if len(symbols) == 0 {
			continue
		}

		results = append(results, types.SignalResult{
			Name:    detector.Name(),
			Symbols: e.inWatchlistOrder(symbols),
		})
	}

	return types.Report{
		CycleID:         e.cycleID,
		Frequency:       e.frequency,
		GeneratedAt:     e.clock(),
		Results:         results,
		MissingData:     e.inWatchlistOrder(setKeys(e.missingData)),
		MissingAnalysis: e.inWatchlistOrder(setKeys(e.missingAnalysis)),
	}
}

// inWatchlistOrder sorts symbols by watchlist position. Symbols outside the
// watchlist sort last, by name.
func (e *ScanEngineV1) inWatchlistOrder(symbols []string) []string {
	rank := func(symbol string) int {
		if pos, ok := e.position[symbol]; ok {
			return pos
		}

		return len(e.position)
	}

	sort.Slice(symbols, func(i, j int) bool {
		ri, rj := rank(symbols[i]), rank(symbols[j])
		if ri != rj {
			return ri < rj
		}

		return symbols[i] < symbols[j]
	})

	return symbols
}

// Cycle implements engine.Engine.
func (e *ScanEngineV1) Cycle(ctx context.Context, source datasource.SeriesSource, watchlist []string, frequency types.Frequency, callbacks engine.Callbacks) (report types.Report, err error) {
	started := time.Now()
	cycleID := uuid.NewString()

	if callbacks.OnCycleEnd != nil {
		defer func() {
			(*callbacks.OnCycleEnd)(report, err)
		}()
	}

	if callbacks.OnCycleStart != nil {
		if err := (*callbacks.OnCycleStart)(cycleID, frequency, len(watchlist)); err != nil {
			return types.Report{}, err
		}
	}

	series, missing, err := source.GetSeries(ctx, watchlist, frequency)
	if err != nil {
		return types.Report{}, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to load series", err)
	}

	if err := e.load(cycleID, watchlist, series, missing); err != nil {
		return types.Report{}, err
	}

	e.frequency = frequency

	if err := e.Prepare(); err != nil {
		return types.Report{}, err
	}

	if err := e.Run(callbacks); err != nil {
		return types.Report{}, err
	}

	report = e.Report()

	e.log.Info("Cycle complete",
		zap.String("cycle_id", report.CycleID),
		zap.String("frequency", string(frequency)),
		zap.Int("symbols", len(e.watchlist)),
		zap.Int("hits", report.HitCount()),
		zap.Int("missing_data", len(report.MissingData)),
		zap.Int("missing_analysis", len(report.MissingAnalysis)),
		zap.Duration("elapsed", time.Since(started)),
	)

	return report, nil
}

func (e *ScanEngineV1) hasPattern(name types.PatternName) bool {
	for _, detector := range e.detectors {
		if detector.Name() == name {
			return true
		}
	}

	return false
}

func setKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}

	return keys
}
