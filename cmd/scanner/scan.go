package main

import (
	"context"

	"github.com/rxtech-lab/argo-scanner/internal/engine"
	enginev1 "github.com/rxtech-lab/argo-scanner/internal/engine/engine_v1"
	"github.com/rxtech-lab/argo-scanner/internal/report"
	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func scanCommand() *cli.Command {
	return &cli.Command{
		Name:  "scan",
		Usage: "Run one scan cycle and print the report",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the report as JSON",
			},
			&cli.StringFlag{
				Name:    "frequency",
				Aliases: []string{"f"},
				Usage:   "Override the configured frequency (daily, weekly)",
			},
			&cli.BoolFlag{
				Name:  "no-record",
				Usage: "Do not store the report in the configured recorder",
			},
		},
		Action: scanAction,
	}
}

func scanAction(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	frequency := cfg.Frequency
	if override := cmd.String("frequency"); override != "" {
		if frequency, err = types.ParseFrequency(override); err != nil {
			return err
		}
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

	scanner, err := enginev1.NewScanEngineV1(cfg.Engine, log)
	if err != nil {
		return err
	}

	result, err := scanner.Cycle(ctx, source, symbols, frequency, engine.Callbacks{})
	if err != nil {
		return err
	}

	if !cmd.Bool("no-record") {
		rec, err := openRecorder(cfg.Recorder, log)
		if err != nil {
			return err
		}
		defer rec.Close()

		if err := rec.Save(ctx, result); err != nil {
			log.Warn("Failed to record report", zap.Error(err))
		}
	}

	format := report.FormatTable
	if cmd.Bool("json") {
		format = report.FormatJSON
	}

	return report.Write(cmd.Root().Writer, result, format)
}
