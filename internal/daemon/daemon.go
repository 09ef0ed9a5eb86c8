// Package daemon runs scan cycles on a cron schedule and serves the latest report,
// health and Prometheus metrics over HTTP.
package daemon

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/moznion/go-optional"
	"github.com/robfig/cron/v3"
	"github.com/rxtech-lab/argo-scanner/internal/config"
	"github.com/rxtech-lab/argo-scanner/internal/datasource"
	"github.com/rxtech-lab/argo-scanner/internal/engine"
	"github.com/rxtech-lab/argo-scanner/internal/logger"
	"github.com/rxtech-lab/argo-scanner/internal/metrics"
	"github.com/rxtech-lab/argo-scanner/internal/recorder"
	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Cycler runs one scan cycle. engine.Engine satisfies it.
type Cycler interface {
	Cycle(ctx context.Context, source datasource.SeriesSource, watchlist []string, frequency types.Frequency, callbacks engine.Callbacks) (types.Report, error)
}

// Config is the daemon configuration plus what every cycle scans.
type Config struct {
	config.DaemonConfig
	Watchlist []string
	Frequency types.Frequency
}

// Option configures a Daemon.
type Option func(*Daemon)

// WithBackOff replaces the retry policy between failed attempts of a cycle.
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(d *Daemon) {
		d.newBackOff = newBackOff
	}
}

// WithRecorder stores every successful report.
func WithRecorder(r recorder.Recorder) Option {
	return func(d *Daemon) {
		d.recorder = r
	}
}

// WithMetrics records cycle metrics and serves them on /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Daemon) {
		d.metrics = m
	}
}

// Daemon schedules scan cycles.
type Daemon struct {
	config     Config
	cycler     Cycler
	source     datasource.SeriesSource
	recorder   recorder.Recorder
	metrics    *metrics.Metrics
	logger     *logger.Logger
	newBackOff func() backoff.BackOff
	cron       *cron.Cron
	schedule   cron.Schedule
	started    time.Time
	running    atomic.Bool

	mu          sync.RWMutex
	latest      optional.Option[types.Report]
	lastRun     time.Time
	lastSuccess time.Time
	lastErr     error
}

// New creates a daemon. The schedule must be a standard five-field cron expression.
func New(cfg Config, cycler Cycler, source datasource.SeriesSource, log *logger.Logger, opts ...Option) (*Daemon, error) {
	if len(cfg.Watchlist) == 0 {
		return nil, errors.New(errors.ErrCodeMissingParameter, "daemon watchlist is empty")
	}

	schedule, err := cron.ParseStandard(cfg.Schedule)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid schedule %q", cfg.Schedule)
	}

	if cfg.Frequency == "" {
		cfg.Frequency = types.FrequencyDaily
	}

	d := &Daemon{
		config:     cfg,
		cycler:     cycler,
		source:     source,
		recorder:   recorder.NewNoopRecorder(),
		logger:     log.Named("daemon"),
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		schedule:   schedule,
		started:    time.Now(),
		latest:     optional.None[types.Report](),
	}

	for _, opt := range opts {
		opt(d)
	}

	cronLog := cronLogger{log: d.logger.Sugar()}
	d.cron = cron.New(
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)

	return d, nil
}

// Run starts the scheduler and the HTTP server, and blocks until ctx is done.
func (d *Daemon) Run(ctx context.Context) error {
	d.cron.Schedule(d.schedule, cron.FuncJob(func() {
		d.tick(ctx)
	}))

	var server *http.Server

	serverErr := make(chan error, 1)

	if d.config.Listen != "" {
		server = &http.Server{
			Addr:              d.config.Listen,
			Handler:           d.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			d.logger.Info("HTTP server listening", zap.String("addr", d.config.Listen))

			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				serverErr <- err
			}
		}()
	}

	d.cron.Start()
	d.logger.Info("Scheduler started",
		zap.String("schedule", d.config.Schedule),
		zap.Time("next", d.schedule.Next(time.Now())),
	)

	if d.config.RunOnStart {
		d.tick(ctx)
	}

	var err error

	select {
	case <-ctx.Done():
	case serveErr := <-serverErr:
		err = errors.Wrap(errors.ErrCodeInvalidConfiguration, "HTTP server failed", serveErr)
	}

	// wait for a running job before shutting the server down
	<-d.cron.Stop().Done()
	d.logger.Info("Scheduler stopped")

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			d.logger.Warn("HTTP server shutdown failed", zap.Error(shutdownErr))
		}
	}

	return err
}

func (d *Daemon) tick(ctx context.Context) {
	if _, err := d.RunCycle(ctx); err != nil {
		d.logger.Error("Scan cycle failed", zap.Error(err))
	}
}

// RunCycle runs one cycle, retrying while the data source is unavailable, and stores
// the report. It fails with ErrCodeCycleInProgress when a cycle is already running.
func (d *Daemon) RunCycle(ctx context.Context) (types.Report, error) {
	if !d.running.CAS(false, true) {
		return types.Report{}, errors.New(errors.ErrCodeCycleInProgress, "a scan cycle is already running")
	}
	defer d.running.Store(false)

	callbacks := engine.Callbacks{}
	if d.metrics != nil {
		callbacks = d.metrics.Callbacks(callbacks)
	}

	attempt := 0
	policy := backoff.WithContext(backoff.WithMaxRetries(d.newBackOff(), uint64(d.config.MaxRetries)), ctx)

	report, err := backoff.RetryWithData(func() (types.Report, error) {
		attempt++

		report, err := d.cycler.Cycle(ctx, d.source, d.config.Watchlist, d.config.Frequency, callbacks)
		if err == nil {
			return report, nil
		}

		if !isRetryable(ctx, err) {
			return types.Report{}, backoff.Permanent(err)
		}

		d.logger.Warn("Scan cycle attempt failed",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		return types.Report{}, err
	}, policy)

	d.mu.Lock()
	d.lastRun = time.Now()
	d.lastErr = err

	if err == nil {
		d.lastSuccess = d.lastRun
		d.latest = optional.Some(report)
	}
	d.mu.Unlock()

	if err != nil {
		return types.Report{}, err
	}

	if saveErr := d.recorder.Save(ctx, report); saveErr != nil {
		d.logger.Warn("Failed to record report", zap.String("cycle_id", report.CycleID), zap.Error(saveErr))
	}

	return report, nil
}

// Latest returns the last successful report of this process, falling back to the
// recorder after a restart.
func (d *Daemon) Latest(ctx context.Context) (optional.Option[types.Report], error) {
	d.mu.RLock()
	latest := d.latest
	d.mu.RUnlock()

	if latest.IsSome() {
		return latest, nil
	}

	return d.recorder.Latest(ctx)
}

func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}

	return errors.ChainHasCode(err, errors.ErrCodeDataSourceUnavailable) ||
		errors.ChainHasCode(err, errors.ErrCodeQueryFailed)
}

// cronLogger routes cron's logs through zap.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
