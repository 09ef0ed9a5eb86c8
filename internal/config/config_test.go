package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-scanner/internal/engine"
	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/rxtech-lab/argo-scanner/internal/version"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
	"github.com/rxtech-lab/argo-scanner/pkg/marketdata/provider"
	"github.com/stretchr/testify/suite"
)

const fullConfig = `
version: v1.0.0
log_level: debug
frequency: weekly
watchlist:
  symbols: [SPY, QQQ]
  files: [lists/tech.txt]
engine:
  concurrency: 4
  schedule: per_rule
  min_bars: 30
  patterns: [new_high, macd_bullish_divergence]
  pattern:
    macd: {fast: 8, slow: 21, signal: 5}
    phase_width: 3
    pivot_lookback: 200
source:
  type: duckdb
  paths: [bars/*.parquet]
  database: cache/scanner.duckdb
  lookback: 300
  as_of: 2024-06-28T00:00:00Z
  redis:
    addr: localhost:6379
    db: 2
    ttl: 30m
download:
  provider: binance
  interval: 4h
  start_date: "2024-01-01"
  data_path: bars
  max_retries: 5
recorder:
  path: history.db
daemon:
  schedule: "*/15 9-16 * * 1-5"
  listen: ":9191"
  max_retries: 1
  run_on_start: true
`

type ConfigTestSuite struct {
	suite.Suite
	savedVersion string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) SetupTest() {
	suite.savedVersion = version.Version
	version.Version = "v1.0.0"
}

func (suite *ConfigTestSuite) TearDownTest() {
	version.Version = suite.savedVersion
}

func (suite *ConfigTestSuite) TestDefaultValidates() {
	config := Default()
	suite.NoError(config.Validate())

	parsed, err := Parse([]byte(""))
	suite.Require().NoError(err)
	suite.Equal(Default(), *parsed)
}

func (suite *ConfigTestSuite) TestParseFullConfig() {
	config, err := Parse([]byte(fullConfig))
	suite.Require().NoError(err)

	suite.Equal("debug", config.LogLevel)
	suite.Equal(types.FrequencyWeekly, config.Frequency)
	suite.Equal([]string{"SPY", "QQQ"}, config.Watchlist.Symbols)

	suite.Equal(4, config.Engine.Concurrency)
	suite.Equal(engine.SchedulePerRule, config.Engine.Schedule)
	suite.Equal(30, config.Engine.MinBars)
	suite.Equal([]types.PatternName{types.PatternNewHigh, types.PatternMACDBullishDivergence}, config.Engine.Patterns)
	suite.Equal(8, config.Engine.Pattern.MACD.Fast)
	suite.Equal(21, config.Engine.Pattern.MACD.Slow)
	suite.Equal(3, config.Engine.Pattern.PhaseWidth)

	suite.Equal([]string{"bars/*.parquet"}, config.Source.Paths)
	suite.Equal(300, config.Source.Lookback)
	suite.Require().True(config.Source.AsOf.IsSome())
	suite.True(config.Source.AsOf.Unwrap().Equal(time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)))
	suite.Equal("localhost:6379", config.Source.Redis.Addr)
	suite.Equal(2, config.Source.Redis.DB)
	suite.Equal(30*time.Minute, config.Source.Redis.TTL)

	suite.Equal(provider.ProviderBinance, config.Download.Provider)
	suite.Equal("4h", config.Download.Interval)
	suite.Equal("POLYGON_API_KEY", config.Download.APIKeyEnv)
	suite.Equal(5, config.Download.MaxRetries)

	suite.Equal("history.db", config.Recorder.Path)
	suite.Equal(":9191", config.Daemon.Listen)
	suite.True(config.Daemon.RunOnStart)
}

func (suite *ConfigTestSuite) TestParseKeepsDefaults() {
	config, err := Parse([]byte("engine:\n  concurrency: 2\n"))
	suite.Require().NoError(err)

	suite.Equal(2, config.Engine.Concurrency)
	suite.Equal(engine.SchedulePerSymbol, config.Engine.Schedule)
	suite.Equal(12, config.Engine.Pattern.MACD.Fast)
	suite.Equal(400, config.Source.Lookback)
	suite.True(config.Source.AsOf.IsNone())
	suite.Equal(12*time.Hour, config.Source.Redis.TTL)
}

func (suite *ConfigTestSuite) TestParseErrors() {
	tests := []struct {
		name string
		yaml string
		code errors.ErrorCode
	}{
		{name: "unknown key", yaml: "colour: blue\n", code: errors.ErrCodeInvalidConfiguration},
		{name: "bad frequency", yaml: "frequency: hourly\n", code: errors.ErrCodeInvalidConfiguration},
		{name: "bad log level", yaml: "log_level: loud\n", code: errors.ErrCodeInvalidConfiguration},
		{name: "unknown pattern", yaml: "engine:\n  patterns: [head_and_shoulders]\n", code: errors.ErrCodePatternNotFound},
		{name: "zero concurrency", yaml: "engine:\n  concurrency: 0\n", code: errors.ErrCodeInvalidConfiguration},
		{name: "slow not above fast", yaml: "engine:\n  pattern:\n    macd: {fast: 26, slow: 12, signal: 9}\n", code: errors.ErrCodeInvalidConfiguration},
		{name: "bad cron", yaml: "daemon:\n  schedule: every day\n", code: errors.ErrCodeInvalidConfiguration},
		{name: "json source without file", yaml: "source:\n  type: json\n", code: errors.ErrCodeInvalidConfiguration},
		{name: "bad provider", yaml: "download:\n  provider: yahoo\n", code: errors.ErrCodeInvalidConfiguration},
		{name: "newer config", yaml: "version: v1.4.0\n", code: errors.ErrCodeInvalidVersion},
		{name: "malformed yaml", yaml: "engine: [\n", code: errors.ErrCodeInvalidConfiguration},
	}

	for _, tc := range tests {
		tc := tc
		suite.Run(tc.name, func() {
			_, err := Parse([]byte(tc.yaml))
			suite.Error(err)
			suite.Equal(tc.code, errors.GetCode(err), err.Error())
		})
	}
}

func (suite *ConfigTestSuite) TestLoadResolvesPaths() {
	dir := suite.T().TempDir()
	suite.Require().NoError(os.MkdirAll(filepath.Join(dir, "lists"), 0o755))
	suite.Require().NoError(os.WriteFile(filepath.Join(dir, "lists", "tech.txt"), []byte("AAPL\nQQQ\nMSFT\n"), 0o644))

	path := filepath.Join(dir, "scanner.yaml")
	suite.Require().NoError(os.WriteFile(path, []byte(fullConfig), 0o644))

	config, err := Load(path)
	suite.Require().NoError(err)

	suite.Equal([]string{filepath.Join(dir, "bars/*.parquet")}, config.Source.Paths)
	suite.Equal(filepath.Join(dir, "cache/scanner.duckdb"), config.Source.Database)
	suite.Equal(filepath.Join(dir, "bars"), config.Download.DataPath)
	suite.Equal(filepath.Join(dir, "history.db"), config.Recorder.Path)

	symbols, err := config.Symbols()
	suite.NoError(err)
	suite.Equal([]string{"SPY", "QQQ", "AAPL", "MSFT"}, symbols)
}

func (suite *ConfigTestSuite) TestLoadExampleConfig() {
	config, err := Load(filepath.Join("..", "..", "examples", "scanner.yaml"))
	suite.Require().NoError(err)
	suite.Len(config.Engine.Patterns, 7)

	symbols, err := config.Symbols()
	suite.NoError(err)
	suite.Equal([]string{"AAPL", "MSFT", "NVDA", "GOOGL", "AMZN", "META", "TSLA"}, symbols)
}

func (suite *ConfigTestSuite) TestLoadMissingFile() {
	_, err := Load(filepath.Join(suite.T().TempDir(), "absent.yaml"))
	suite.Error(err)
	suite.Equal(errors.ErrCodeDataNotFound, errors.GetCode(err))
}

func (suite *ConfigTestSuite) TestEmptyWatchlist() {
	config := Default()

	_, err := config.Symbols()
	suite.Error(err)
	suite.Equal(errors.ErrCodeMissingParameter, errors.GetCode(err))
}

func (suite *ConfigTestSuite) TestAPIKey() {
	suite.T().Setenv("SCANNER_TEST_KEY", "secret")

	config := Default()
	config.Download.APIKeyEnv = "SCANNER_TEST_KEY"
	suite.Equal("secret", config.Download.APIKey())
}

func (suite *ConfigTestSuite) TestGenerateSchemaJSON() {
	schemaJSON, err := GenerateSchemaJSON()
	suite.Require().NoError(err)

	var schema map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(schemaJSON), &schema))
	suite.Equal("argo-scanner-config", schema["title"])

	properties, ok := schema["properties"].(map[string]any)
	suite.Require().True(ok)

	for _, key := range []string{"version", "frequency", "watchlist", "engine", "source", "download", "recorder", "daemon"} {
		suite.Contains(properties, key)
	}

	source, ok := properties["source"].(map[string]any)
	suite.Require().True(ok)

	sourceProperties, ok := source["properties"].(map[string]any)
	suite.Require().True(ok)

	asOf, ok := sourceProperties["as_of"].(map[string]any)
	suite.Require().True(ok)
	suite.Equal("date-time", asOf["format"])
}
