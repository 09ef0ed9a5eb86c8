package main

import (
	"context"

	"github.com/rxtech-lab/argo-scanner/internal/daemon"
	enginev1 "github.com/rxtech-lab/argo-scanner/internal/engine/engine_v1"
	"github.com/rxtech-lab/argo-scanner/internal/metrics"
	"github.com/urfave/cli/v3"
)

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Run scan cycles on the configured cron schedule and serve /metrics, /healthz and /reports/latest",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Usage: "Override the configured HTTP address",
			},
			&cli.BoolFlag{
				Name:  "run-on-start",
				Usage: "Run a cycle immediately",
			},
		},
		Action: watchAction,
	}
}

func watchAction(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	if listen := cmd.String("listen"); listen != "" {
		cfg.Daemon.Listen = listen
	}

	if cmd.Bool("run-on-start") {
		cfg.Daemon.RunOnStart = true
	}

	symbols, err := cfg.Symbols()
	if err != nil {
		return err
	}

	source, release, err := buildSource(ctx, cfg.Source, log)
	if err != nil {
		return err
	}
	defer release()

	rec, err := openRecorder(cfg.Recorder, log)
	if err != nil {
		return err
	}
	defer rec.Close()

	scanner, err := enginev1.NewScanEngineV1(cfg.Engine, log)
	if err != nil {
		return err
	}

	d, err := daemon.New(daemon.Config{
		DaemonConfig: cfg.Daemon,
		Watchlist:    symbols,
		Frequency:    cfg.Frequency,
	}, scanner, source, log, daemon.WithRecorder(rec), daemon.WithMetrics(metrics.NewMetrics()))
	if err != nil {
		return err
	}

	return d.Run(ctx)
}
