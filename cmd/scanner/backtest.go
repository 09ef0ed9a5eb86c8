package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-scanner/internal/backtest"
	"github.com/rxtech-lab/argo-scanner/internal/report"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
	"github.com/urfave/cli/v3"
)

func backtestCommand() *cli.Command {
	dateConfig := cli.TimestampConfig{
		Timezone: time.UTC,
		Layouts:  []string{time.DateOnly},
	}

	return &cli.Command{
		Name:      "backtest",
		Usage:     "Print what buying each symbol on a date would have gained, lowest first",
		ArgsUsage: "[SYMBOL...]",
		Flags: []cli.Flag{
			&cli.TimestampFlag{
				Name:     "buy",
				Aliases:  []string{"b"},
				Usage:    "Buy at the close of this date (`YYYY-MM-DD`)",
				Required: true,
				Config:   dateConfig,
			},
			&cli.TimestampFlag{
				Name:     "sell-until",
				Aliases:  []string{"s"},
				Usage:    "Sell at the best close up to this date (`YYYY-MM-DD`)",
				Required: true,
				Config:   dateConfig,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the outcome as JSON",
			},
		},
		Action: backtestAction,
	}
}

func backtestAction(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	buy := cmd.Timestamp("buy")
	sellUntil := cmd.Timestamp("sell-until")

	symbols := cmd.Args().Slice()
	if len(symbols) == 0 {
		if symbols, err = cfg.Symbols(); err != nil {
			return err
		}
	}

	// the series must reach back to the buy date and stop at the sell date
	sourceConfig := cfg.Source
	sourceConfig.AsOf = optional.Some(sellUntil.AddDate(0, 0, 1).Add(-time.Nanosecond))

	if span := int(sellUntil.Sub(buy).Hours()/24) + 10; span > sourceConfig.Lookback {
		sourceConfig.Lookback = span
	}

	source, release, err := buildSource(ctx, sourceConfig, log)
	if err != nil {
		return err
	}
	defer release()

	outcome, err := backtest.Run(ctx, source, symbols, buy, sellUntil)
	if err != nil {
		return err
	}

	out := cmd.Root().Writer

	if cmd.Bool("json") {
		data, err := json.MarshalIndent(outcome, "", "  ")
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidParameter, "failed to marshal outcome", err)
		}

		_, err = fmt.Fprintln(out, string(data))

		return err
	}

	_, err = fmt.Fprint(out, report.RenderGains(outcome))

	return err
}
