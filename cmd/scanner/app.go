package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rxtech-lab/argo-scanner/internal/config"
	"github.com/rxtech-lab/argo-scanner/internal/datasource"
	"github.com/rxtech-lab/argo-scanner/internal/logger"
	"github.com/rxtech-lab/argo-scanner/internal/recorder"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// loadConfig reads the configuration named by the root --config flag and builds a
// logger writing to stderr, so reports on stdout stay parseable.
func loadConfig(cmd *cli.Command) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, nil, err
	}

	level := cfg.LogLevel
	if override := cmd.String("log-level"); override != "" {
		level = override
	}

	log, err := logger.NewLoggerWithOutput(level, "stderr")
	if err != nil {
		return nil, nil, err
	}

	return cfg, log, nil
}

// buildSource creates the configured series source, wrapped in a Redis cache when an
// address is configured and reachable. The returned function releases it.
func buildSource(ctx context.Context, cfg config.SourceConfig, log *logger.Logger) (datasource.SeriesSource, func(), error) {
	var (
		source  datasource.SeriesSource
		closers []func() error
	)

	switch cfg.Type {
	case config.SourceJSON:
		memory, err := datasource.LoadJSONFile(cfg.JSONFile)
		if err != nil {
			return nil, nil, err
		}

		source = memory
	default:
		duck, err := datasource.NewDuckDBSource(cfg.Database, datasource.DuckDBOptions{
			Lookback: cfg.Lookback,
			AsOf:     cfg.AsOf,
		}, log)
		if err != nil {
			return nil, nil, err
		}

		if err := duck.Initialize(cfg.Paths...); err != nil {
			duck.Close()

			return nil, nil, err
		}

		source = duck
		closers = append(closers, duck.Close)
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := client.Ping(pingCtx).Err()

		cancel()

		if err != nil {
			log.Warn("Redis is unreachable, running without the series cache",
				zap.String("addr", cfg.Redis.Addr),
				zap.Error(err),
			)
			client.Close()
		} else {
			source = datasource.NewRedisCache(client, source, datasource.CacheOptions{
				TTL:      cfg.Redis.TTL,
				Lookback: cfg.Lookback,
				AsOf:     cfg.AsOf,
			}, log)
			closers = append(closers, client.Close)
		}
	}

	release := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Warn("Failed to close source", zap.Error(err))
			}
		}
	}

	return source, release, nil
}

// openRecorder opens the SQLite history when a path is configured.
func openRecorder(cfg config.RecorderConfig, log *logger.Logger) (recorder.Recorder, error) {
	if cfg.Path == "" {
		return recorder.NewNoopRecorder(), nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRecorderFailed, "failed to create recorder directory", err)
	}

	return recorder.NewSQLiteRecorder(cfg.Path, log)
}
