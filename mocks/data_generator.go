package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-scanner/internal/types"
)

// DataGenerator generates synthetic daily series for tests and benchmarks.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how a series is generated.
type GeneratorConfig struct {
	// EndTime is the time of the most recent bar
	EndTime time.Time
	// Interval is the duration between each bar
	Interval time.Duration
	// Count is the number of bars to generate
	Count int
	// InitialPrice is the price of the oldest bar
	InitialPrice float64
	// Volatility controls price movement (0.01 = 1% typical daily volatility)
	Volatility float64
	// Trend is the total drift over the series (-0.5 to 0.5 for bearish to bullish)
	Trend float64
	// VolumeBase is the average volume per bar
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
}

// DefaultConfig returns a year of daily bars.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		EndTime:        time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		Interval:       24 * time.Hour,
		Count:          260,
		InitialPrice:   100.0,
		Volatility:     0.015,
		Trend:          0.0,
		VolumeBase:     1_000_000,
		VolumeVariance: 0.3,
	}
}

// Generate creates a series, newest first, following a geometric Brownian motion.
func (g *DataGenerator) Generate(config GeneratorConfig) types.Series {
	chronological := make([]types.Bar, config.Count)
	currentPrice := config.InitialPrice
	start := config.EndTime.Add(-time.Duration(config.Count-1) * config.Interval)

	for i := 0; i < config.Count; i++ {
		open := currentPrice

		// Box-Muller transform for a normal draw
		u1 := g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		drift := config.Trend / float64(config.Count)

		closePrice := open * (1 + config.Volatility*z + drift)
		if closePrice <= 0 {
			closePrice = open * 0.99
		}

		highExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)
		lowExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)

		high := math.Max(open, closePrice) + highExtension
		low := math.Min(open, closePrice) - lowExtension

		if low <= 0 {
			low = math.Min(open, closePrice) * 0.99
		}

		volume := config.VolumeBase * (1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance)
		if volume < 0 {
			volume = config.VolumeBase * 0.1
		}

		chronological[i] = types.NewBar(
			start.Add(time.Duration(i)*config.Interval),
			roundToDecimals(open, 4),
			roundToDecimals(high, 4),
			roundToDecimals(low, 4),
			roundToDecimals(closePrice, 4),
			roundToDecimals(volume, 2),
		)

		currentPrice = closePrice
	}

	series := make(types.Series, config.Count)
	for i, bar := range chronological {
		series[config.Count-1-i] = bar
	}

	return series
}

// GenerateWatchlist generates one series per symbol, varying the initial price and
// volatility per symbol.
func (g *DataGenerator) GenerateWatchlist(symbols []string, baseConfig GeneratorConfig) map[string]types.Series {
	out := make(map[string]types.Series, len(symbols))

	for _, symbol := range symbols {
		config := baseConfig
		config.InitialPrice = baseConfig.InitialPrice * (0.8 + g.rng.Float64()*0.4)
		config.Volatility = baseConfig.Volatility * (0.8 + g.rng.Float64()*0.4)
		config.Trend = baseConfig.Trend + (g.rng.Float64()*2-1)*0.3

		out[symbol] = g.Generate(config)
	}

	return out
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
