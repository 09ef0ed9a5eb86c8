// Package backtest measures what buying a watchlist on a given day would have earned.
//
// A symbol is bought at its close on the buy date (or the last bar before it) and
// sold at the best close afterwards, up to the sell date.
package backtest

import (
	"context"
	"sort"
	"time"

	"github.com/rxtech-lab/argo-scanner/internal/datasource"
	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
	"github.com/shopspring/decimal"
)

// Result is the outcome for one symbol.
type Result struct {
	Symbol      string          `json:"symbol"`
	BuyDate     time.Time       `json:"buy_date"`
	Cost        decimal.Decimal `json:"cost"`
	SellDate    time.Time       `json:"sell_date"`
	SellPrice   decimal.Decimal `json:"sell_price"`
	Gain        decimal.Decimal `json:"gain"`
	GainPercent decimal.Decimal `json:"gain_percent"`
}

// Outcome holds the results sorted by gain, lowest first, and the symbols that
// could not be evaluated.
type Outcome struct {
	Results []Result `json:"results"`
	Skipped []string `json:"skipped"`
}

// Run loads daily series for symbols from source and evaluates them.
func Run(ctx context.Context, source datasource.SeriesSource, symbols []string, buyDate, sellUntil time.Time) (Outcome, error) {
	if len(symbols) == 0 {
		return Outcome{}, errors.New(errors.ErrCodeMissingParameter, "at least one symbol is required")
	}

	if !sellUntil.After(buyDate) {
		return Outcome{}, errors.New(errors.ErrCodeInvalidParameter, "sell date must be after the buy date")
	}

	series, missing, err := source.GetSeries(ctx, symbols, types.FrequencyDaily)
	if err != nil {
		return Outcome{}, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to load series", err)
	}

	outcome := Evaluate(series, symbols, buyDate, sellUntil)

	skipped := make(map[string]struct{}, len(outcome.Skipped))
	for _, symbol := range outcome.Skipped {
		skipped[symbol] = struct{}{}
	}

	for _, symbol := range missing {
		if _, ok := skipped[symbol]; !ok {
			outcome.Skipped = append(outcome.Skipped, symbol)
		}
	}

	return outcome, nil
}

// Evaluate computes the gain of every symbol from newest-first series. Bars after
// sellUntil are ignored. Symbols without a bar on or before buyDate, or without a
// bar after it, are skipped.
func Evaluate(series map[string]types.Series, symbols []string, buyDate, sellUntil time.Time) Outcome {
	buyDay := day(buyDate)
	lastDay := day(sellUntil)

	outcome := Outcome{Results: []Result{}, Skipped: []string{}}

	for _, symbol := range symbols {
		result, ok := evaluateSymbol(symbol, series[symbol], buyDay, lastDay)
		if !ok {
			outcome.Skipped = append(outcome.Skipped, symbol)

			continue
		}

		outcome.Results = append(outcome.Results, result)
	}

	sort.SliceStable(outcome.Results, func(i, j int) bool {
		return outcome.Results[i].Gain.LessThan(outcome.Results[j].Gain)
	})

	return outcome
}

func evaluateSymbol(symbol string, series types.Series, buyDay, lastDay string) (Result, bool) {
	newest := 0
	for newest < len(series) && day(series[newest].Time) > lastDay {
		newest++
	}

	pos := newest
	for pos < len(series) && day(series[pos].Time) > buyDay {
		pos++
	}

	// no bar on or before the buy date, or nothing to sell into
	if pos >= len(series) || pos == newest {
		return Result{}, false
	}

	buy := series[pos]
	best := series[newest]

	for _, bar := range series[newest:pos] {
		if bar.Close > best.Close {
			best = bar
		}
	}

	cost := decimal.NewFromFloat(buy.Close)
	sell := decimal.NewFromFloat(best.Close)
	gain := sell.Sub(cost)

	percent := decimal.Zero
	if !cost.IsZero() {
		percent = gain.Div(cost).Mul(decimal.NewFromInt(100)).Round(2)
	}

	return Result{
		Symbol:      symbol,
		BuyDate:     buy.Time,
		Cost:        cost,
		SellDate:    best.Time,
		SellPrice:   sell,
		Gain:        gain,
		GainPercent: percent,
	}, true
}

func day(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}
