package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-scanner/internal/logger"
	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/rxtech-lab/argo-scanner/mocks"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type DuckDBSourceTestSuite struct {
	suite.Suite
	path   string
	series map[string]types.Series
}

func TestDuckDBSourceSuite(t *testing.T) {
	suite.Run(t, new(DuckDBSourceTestSuite))
}

func (suite *DuckDBSourceTestSuite) SetupSuite() {
	config := mocks.DefaultConfig()
	config.Count = 30
	config.EndTime = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	suite.series = mocks.NewDataGenerator(11).GenerateWatchlist([]string{"AAA", "BBB"}, config)

	// BBB has a session that is still open
	open := suite.series["BBB"][0]
	open.High = optional.None[float64]()
	open.Low = optional.None[float64]()
	suite.series["BBB"][0] = open

	suite.path = filepath.Join(suite.T().TempDir(), "bars.parquet")
	suite.writeParquet(suite.path, suite.series)
}

func (suite *DuckDBSourceTestSuite) writeParquet(path string, data map[string]types.Series) {
	db, err := sql.Open("duckdb", "")
	suite.Require().NoError(err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE bars (time TIMESTAMP, symbol VARCHAR, open DOUBLE, high DOUBLE, low DOUBLE, close DOUBLE, volume DOUBLE)`)
	suite.Require().NoError(err)

	for symbol, series := range data {
		for _, bar := range series {
			var high, low any
			if bar.High.IsSome() {
				high = bar.High.Unwrap()
			}

			if bar.Low.IsSome() {
				low = bar.Low.Unwrap()
			}

			_, err := db.Exec(`INSERT INTO bars VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				bar.Time, symbol, bar.Open, high, low, bar.Close, bar.Volume)
			suite.Require().NoError(err)
		}
	}

	_, err = db.Exec(fmt.Sprintf(`COPY bars TO '%s' (FORMAT PARQUET)`, path))
	suite.Require().NoError(err)
}

func (suite *DuckDBSourceTestSuite) newSource(options DuckDBOptions) *DuckDBSource {
	source, err := NewDuckDBSource("", options, logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.T().Cleanup(func() { _ = source.Close() })

	suite.Require().NoError(source.Initialize(suite.path))

	return source
}

func (suite *DuckDBSourceTestSuite) TestDailyNewestFirst() {
	source := suite.newSource(DuckDBOptions{})

	got, missing, err := source.GetSeries(context.Background(), []string{"AAA", "ZZZ", "BBB"}, types.FrequencyDaily)
	suite.Require().NoError(err)
	suite.Equal([]string{"ZZZ"}, missing)

	expected := suite.series["AAA"]
	suite.Require().Len(got["AAA"], len(expected))

	for i := range expected {
		suite.True(expected[i].Time.Equal(got["AAA"][i].Time), "time at %d", i)
		suite.Equal(expected[i].Close, got["AAA"][i].Close)
		suite.Equal(expected[i].High.Unwrap(), got["AAA"][i].High.Unwrap())
	}

	suite.NoError(got["AAA"].Validate())
	suite.True(got["BBB"][0].High.IsNone())
	suite.True(got["BBB"][0].Low.IsNone())
	suite.True(got["BBB"][1].IsComplete())
}

func (suite *DuckDBSourceTestSuite) TestLookbackAndAsOf() {
	expected := suite.series["AAA"]

	tests := []struct {
		name      string
		options   DuckDBOptions
		expectLen int
		expectTop time.Time
	}{
		{
			name:      "lookback limits the newest bars",
			options:   DuckDBOptions{Lookback: 10},
			expectLen: 10,
			expectTop: expected[0].Time,
		},
		{
			name:      "as-of hides later bars",
			options:   DuckDBOptions{AsOf: optional.Some(expected[5].Time)},
			expectLen: len(expected) - 5,
			expectTop: expected[5].Time,
		},
	}

	for _, tc := range tests {
		tc := tc
		suite.Run(tc.name, func() {
			source := suite.newSource(tc.options)

			got, _, err := source.GetSeries(context.Background(), []string{"AAA"}, types.FrequencyDaily)
			suite.Require().NoError(err)
			suite.Require().Len(got["AAA"], tc.expectLen)
			suite.True(tc.expectTop.Equal(got["AAA"][0].Time))
		})
	}
}

func (suite *DuckDBSourceTestSuite) TestWeeklyMatchesSeriesAggregation() {
	source := suite.newSource(DuckDBOptions{})

	got, missing, err := source.GetSeries(context.Background(), []string{"AAA", "BBB"}, types.FrequencyWeekly)
	suite.Require().NoError(err)
	suite.Empty(missing)

	for _, symbol := range []string{"AAA", "BBB"} {
		expected := suite.series[symbol].Weekly()
		actual := got[symbol]
		suite.Require().Len(actual, len(expected), symbol)

		for i := range expected {
			suite.True(expected[i].Time.Equal(actual[i].Time), "%s week %d", symbol, i)
			suite.Equal(expected[i].Open, actual[i].Open)
			suite.Equal(expected[i].Close, actual[i].Close)
			suite.InDelta(expected[i].Volume, actual[i].Volume, 1e-6)
			suite.Equal(expected[i].High.IsSome(), actual[i].High.IsSome())

			if expected[i].High.IsSome() {
				suite.Equal(expected[i].High.Unwrap(), actual[i].High.Unwrap())
				suite.Equal(expected[i].Low.Unwrap(), actual[i].Low.Unwrap())
			}
		}
	}

	suite.True(got["BBB"][0].High.IsNone())
}

func (suite *DuckDBSourceTestSuite) TestErrors() {
	suite.Run("initialize needs a path", func() {
		source, err := NewDuckDBSource("", DuckDBOptions{}, logger.NewNopLogger())
		suite.Require().NoError(err)
		defer source.Close()

		suite.True(errors.HasCode(source.Initialize(), errors.ErrCodeMissingParameter))
	})

	suite.Run("query without a view fails", func() {
		source, err := NewDuckDBSource("", DuckDBOptions{}, logger.NewNopLogger())
		suite.Require().NoError(err)
		defer source.Close()

		_, _, err = source.GetSeries(context.Background(), []string{"AAA"}, types.FrequencyDaily)
		suite.True(errors.HasCode(err, errors.ErrCodeQueryFailed))
	})

	suite.Run("unknown frequency", func() {
		source := suite.newSource(DuckDBOptions{})

		_, _, err := source.GetSeries(context.Background(), []string{"AAA"}, types.Frequency("hourly"))
		suite.True(errors.HasCode(err, errors.ErrCodeInvalidFrequency))
	})
}
