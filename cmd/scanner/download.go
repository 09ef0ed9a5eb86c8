package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/rxtech-lab/argo-scanner/internal/config"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
	"github.com/rxtech-lab/argo-scanner/pkg/marketdata"
	"github.com/rxtech-lab/argo-scanner/pkg/marketdata/provider"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

// defaultHistoryYears is how far back a download starts when no start date is given.
const defaultHistoryYears = 2

func downloadCommand() *cli.Command {
	return &cli.Command{
		Name:  "download",
		Usage: "Download daily bars for the watchlist into parquet files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start date in `YYYY-MM-DD` format. Overrides download.start_date",
			},
			&cli.StringFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format. Overrides download.end_date",
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   fmt.Sprintf("Data provider (%s, %s). Overrides download.provider", provider.ProviderPolygon, provider.ProviderBinance),
			},
			&cli.StringFlag{
				Name:  "interval",
				Usage: "Bar interval such as 1d. Overrides download.interval",
			},
		},
		Action: downloadAction,
	}
}

func downloadAction(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	applyDownloadOverrides(&cfg.Download, cmd)

	symbols, err := cfg.Symbols()
	if err != nil {
		return err
	}

	start, end := downloadRange(cfg.Download.StartDate, cfg.Download.EndDate, time.Now())

	base := marketdata.BaseDownloadConfig{
		Tickers:   symbols,
		StartDate: start,
		EndDate:   end,
		Interval:  cfg.Download.Interval,
	}
	if err := base.Validate(); err != nil {
		return err
	}

	params, err := base.ToWatchlistParams()
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	progress := newDownloadProgress(out)

	client, err := marketdata.NewClient(marketdata.ClientConfig{
		ProviderType:  cfg.Download.Provider,
		WriterType:    marketdata.WriterDuckDB,
		DataPath:      cfg.Download.DataPath,
		PolygonApiKey: cfg.Download.APIKey(),
		MaxRetries:    cfg.Download.MaxRetries,
	}, progress.update, marketdata.WithLogger(log))
	if err != nil {
		return err
	}

	result, err := client.DownloadWatchlist(ctx, params)
	progress.finish()

	if err != nil {
		return err
	}

	return printDownloadResult(out, result)
}

func applyDownloadOverrides(download *config.DownloadConfig, cmd *cli.Command) {
	if start := cmd.String("start"); start != "" {
		download.StartDate = start
	}

	if end := cmd.String("end"); end != "" {
		download.EndDate = end
	}

	if p := cmd.String("provider"); p != "" {
		download.Provider = provider.ProviderType(p)
	}

	if interval := cmd.String("interval"); interval != "" {
		download.Interval = interval
	}
}

// downloadRange fills in an empty end date with today and an empty start date with
// defaultHistoryYears before the end.
func downloadRange(start, end string, now time.Time) (string, string) {
	if end == "" {
		end = now.UTC().Format(time.DateOnly)
	}

	if start == "" {
		endDate, err := marketdata.ParseDate(end)
		if err != nil {
			// left for validation to report
			return start, end
		}

		start = endDate.AddDate(-defaultHistoryYears, 0, 0).Format(time.DateOnly)
	}

	return start, end
}

func printDownloadResult(w io.Writer, result marketdata.WatchlistResult) error {
	tickers := make([]string, 0, len(result.Paths))
	for ticker := range result.Paths {
		tickers = append(tickers, ticker)
	}

	sort.Strings(tickers)

	for _, ticker := range tickers {
		fmt.Fprintf(w, "%s\t%s\n", ticker, result.Paths[ticker])
	}

	failed := make([]string, 0, len(result.Failed))
	for ticker := range result.Failed {
		failed = append(failed, ticker)
	}

	sort.Strings(failed)

	for _, ticker := range failed {
		fmt.Fprintf(w, "%s\tFAILED: %v\n", ticker, result.Failed[ticker])
	}

	if len(tickers) == 0 && len(failed) > 0 {
		return errors.Newf(errors.ErrCodeMarketDataFetchFailed, "all %d downloads failed", len(failed))
	}

	return nil
}

// downloadProgress shows one progress bar per ticker, in percent.
type downloadProgress struct {
	out     io.Writer
	bar     *progressbar.ProgressBar
	message string
}

func newDownloadProgress(out io.Writer) *downloadProgress {
	return &downloadProgress{out: out}
}

func (p *downloadProgress) update(current, total float64, message string) {
	if p.bar == nil || message != p.message {
		p.finish()

		p.message = message
		p.bar = progressbar.NewOptions(100,
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionSetDescription(message),
			progressbar.OptionShowCount(),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(p.out) }),
		)
	}

	if total <= 0 {
		return
	}

	_ = p.bar.Set(int(min(current/total, 1) * 100))
}

func (p *downloadProgress) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
}
