package datasource

import (
	"context"
	"sync"

	"github.com/rxtech-lab/argo-scanner/internal/types"
)

// MemorySource serves daily series held in memory. Weekly requests are aggregated
// from the daily bars.
type MemorySource struct {
	mu   sync.RWMutex
	data map[string]types.Series
}

// NewMemorySource creates a source over the given daily series.
func NewMemorySource(data map[string]types.Series) *MemorySource {
	copied := make(map[string]types.Series, len(data))
	for symbol, series := range data {
		copied[symbol] = series
	}

	return &MemorySource{data: copied}
}

// Put replaces the daily series of a symbol.
func (m *MemorySource) Put(symbol string, series types.Series) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[symbol] = series
}

// Symbols returns the number of symbols held.
func (m *MemorySource) Symbols() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.data)
}

// GetSeries implements SeriesSource.
func (m *MemorySource) GetSeries(ctx context.Context, symbols []string, frequency types.Frequency) (map[string]types.Series, []string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]types.Series, len(symbols))
	missing := []string{}

	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		series, ok := m.data[symbol]
		if !ok || len(series) == 0 {
			missing = append(missing, symbol)

			continue
		}

		if frequency == types.FrequencyWeekly {
			series = series.Weekly()
		}

		out[symbol] = series
	}

	return out, missing, nil
}
