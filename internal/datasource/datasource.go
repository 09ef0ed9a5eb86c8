// Package datasource supplies the per-symbol bar series a scan cycle runs on.
//
// Every source returns series newest first (index 0 is the most recent bar) and
// reports symbols it holds no bars for in the missing list instead of failing the
// whole request. An error is returned only when the source itself is unusable.
package datasource

import (
	"context"

	"github.com/rxtech-lab/argo-scanner/internal/types"
)

// SeriesSource loads series for a watchlist.
type SeriesSource interface {
	// GetSeries returns the series of every symbol it could load and the symbols it could not.
	GetSeries(ctx context.Context, symbols []string, frequency types.Frequency) (map[string]types.Series, []string, error)
}

// barRecord is the flat wire form of a bar used by the JSON fixture and the cache.
type barRecord struct {
	Time   int64    `json:"time"`
	Open   float64  `json:"open"`
	High   *float64 `json:"high,omitempty"`
	Low    *float64 `json:"low,omitempty"`
	Close  float64  `json:"close"`
	Volume float64  `json:"volume"`
}
