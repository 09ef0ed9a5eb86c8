package types

import "time"

// PatternName identifies a detector in configuration and reports.
type PatternName string

const (
	PatternMACDBullishDivergence      PatternName = "macd_bullish_divergence"
	PatternPullbackAfterBreakout      PatternName = "pullback_after_breakout"
	PatternBottomUpReversal           PatternName = "bottom_up_reversal"
	PatternNewHigh                    PatternName = "new_high"
	PatternLargeNegativeSmallPositive PatternName = "large_negative_small_positive"
	PatternRoundNumberHigh            PatternName = "round_number_high"
	PatternTripleScreen               PatternName = "triple_screen"
)

// SignalResult lists the symbols a pattern fired for, in watchlist order.
type SignalResult struct {
	Name    PatternName `json:"name"`
	Symbols []string    `json:"symbols"`
}

// Report is the outcome of one scan cycle.
type Report struct {
	// CycleID identifies the cycle
	CycleID string `json:"cycle_id"`
	// Frequency is the bar size the cycle ran on
	Frequency Frequency `json:"frequency"`
	// GeneratedAt is when the report was built
	GeneratedAt time.Time `json:"generated_at"`
	// Results holds one entry per pattern that fired for at least one symbol
	Results []SignalResult `json:"results"`
	// MissingData lists symbols whose series could not be loaded or validated
	MissingData []string `json:"missing_data"`
	// MissingAnalysis lists symbols for which at least one detector failed
	MissingAnalysis []string `json:"missing_analysis"`
}

// SymbolsFor returns the symbols recorded for a pattern, or nil.
func (r Report) SymbolsFor(name PatternName) []string {
	for _, result := range r.Results {
		if result.Name == name {
			return result.Symbols
		}
	}

	return nil
}

// HitCount returns the total number of (pattern, symbol) hits.
func (r Report) HitCount() int {
	total := 0
	for _, result := range r.Results {
		total += len(result.Symbols)
	}

	return total
}
