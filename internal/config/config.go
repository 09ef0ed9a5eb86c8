// Package config loads the scanner configuration file.
//
// The file is YAML. Missing keys keep the values of Default, relative paths are resolved
// against the directory of the file, and the optional version key is checked against the
// build version before the struct tags are validated.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/robfig/cron/v3"
	enginev1 "github.com/rxtech-lab/argo-scanner/internal/engine/engine_v1"
	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/rxtech-lab/argo-scanner/internal/version"
	"github.com/rxtech-lab/argo-scanner/internal/watchlist"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
	"github.com/rxtech-lab/argo-scanner/pkg/marketdata/provider"
	"gopkg.in/yaml.v3"
)

// SourceType selects the series source.
type SourceType string

const (
	SourceDuckDB SourceType = "duckdb"
	SourceJSON   SourceType = "json"
)

// Config is the root of the scanner configuration file.
type Config struct {
	Version   string                      `yaml:"version" json:"version" jsonschema:"title=Version,description=Scanner version the file was written for"`
	LogLevel  string                      `yaml:"log_level" json:"log_level" validate:"oneof=debug info warn error" jsonschema:"title=Log Level,enum=debug,enum=info,enum=warn,enum=error,default=info"`
	Frequency types.Frequency             `yaml:"frequency" json:"frequency" validate:"oneof=daily weekly" jsonschema:"title=Frequency,description=Bar size of a scan"`
	Watchlist WatchlistConfig             `yaml:"watchlist" json:"watchlist"`
	Engine    enginev1.ScanEngineV1Config `yaml:"engine" json:"engine"`
	Source    SourceConfig                `yaml:"source" json:"source"`
	Download  DownloadConfig              `yaml:"download" json:"download"`
	Recorder  RecorderConfig              `yaml:"recorder" json:"recorder"`
	Daemon    DaemonConfig                `yaml:"daemon" json:"daemon"`
}

// WatchlistConfig lists where the symbols come from. Symbols from all entries are merged
// in the order Symbols, Files, CSVFiles.
type WatchlistConfig struct {
	Symbols  []string            `yaml:"symbols" json:"symbols" jsonschema:"title=Symbols,description=Symbols listed inline"`
	Files    []string            `yaml:"files" json:"files" jsonschema:"title=Files,description=Watchlist text files with one symbol per line"`
	CSVFiles []string            `yaml:"csv_files" json:"csv_files" jsonschema:"title=CSV Files,description=Screener exports with Symbol and MarketCap columns"`
	CSVCap   watchlist.CapFilter `yaml:"csv_cap" json:"csv_cap"`
}

// SourceConfig configures where series are read from.
type SourceConfig struct {
	Type SourceType `yaml:"type" json:"type" validate:"oneof=duckdb json" jsonschema:"title=Type,enum=duckdb,enum=json,default=duckdb"`
	// Paths are parquet files or globs read by the duckdb source
	Paths []string `yaml:"paths" json:"paths" validate:"required_if=Type duckdb" jsonschema:"title=Paths,description=Parquet files or globs"`
	// Database is the DuckDB file; empty keeps the database in memory
	Database string                     `yaml:"database" json:"database" jsonschema:"title=Database,description=DuckDB database file. Empty keeps it in memory"`
	JSONFile string                     `yaml:"json_file" json:"json_file" validate:"required_if=Type json" jsonschema:"title=JSON File,description=Fixture file with bars per symbol"`
	Lookback int                        `yaml:"lookback" json:"lookback" validate:"gte=1" jsonschema:"title=Lookback,description=Bars read per symbol,minimum=1,default=400"`
	AsOf     optional.Option[time.Time] `yaml:"-" json:"as_of" jsonschema:"title=As Of,description=Ignore bars after this time"`
	Redis    RedisConfig                `yaml:"redis" json:"redis"`
}

// UnmarshalYAML decodes as_of into the optional AsOf field.
func (s *SourceConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain SourceConfig

	aux := struct {
		plain `yaml:",inline"`
		AsOf  *time.Time `yaml:"as_of"`
	}{plain: plain(*s)}

	if err := value.Decode(&aux); err != nil {
		return err
	}

	*s = SourceConfig(aux.plain)
	if aux.AsOf != nil {
		s.AsOf = optional.Some(*aux.AsOf)
	}

	return nil
}

// RedisConfig enables the series cache when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr" json:"addr" jsonschema:"title=Address,description=host:port of the Redis server. Empty disables the cache"`
	Password string        `yaml:"password" json:"password"`
	DB       int           `yaml:"db" json:"db" validate:"gte=0"`
	TTL      time.Duration `yaml:"ttl" json:"ttl" jsonschema:"title=TTL,description=Cache entry lifetime such as 12h"`
}

// DownloadConfig configures the download command.
type DownloadConfig struct {
	Provider  provider.ProviderType `yaml:"provider" json:"provider" validate:"oneof=polygon binance" jsonschema:"title=Provider,enum=polygon,enum=binance,default=polygon"`
	Interval  string                `yaml:"interval" json:"interval" validate:"oneof=1m 5m 15m 30m 1h 4h 1d 1w" jsonschema:"title=Interval,default=1d"`
	StartDate string                `yaml:"start_date" json:"start_date" jsonschema:"title=Start Date,description=YYYY-MM-DD. Empty means two years before the end date"`
	EndDate   string                `yaml:"end_date" json:"end_date" jsonschema:"title=End Date,description=YYYY-MM-DD. Empty means today"`
	DataPath  string                `yaml:"data_path" json:"data_path" validate:"required" jsonschema:"title=Data Path,description=Directory the parquet files are written to,default=data"`
	// APIKeyEnv names the environment variable holding the Polygon API key
	APIKeyEnv  string `yaml:"api_key_env" json:"api_key_env" jsonschema:"title=API Key Variable,default=POLYGON_API_KEY"`
	MaxRetries int    `yaml:"max_retries" json:"max_retries" validate:"gte=0" jsonschema:"title=Max Retries,minimum=0,default=3"`
}

// APIKey reads the Polygon API key from the environment.
func (d DownloadConfig) APIKey() string {
	return os.Getenv(d.APIKeyEnv)
}

// RecorderConfig enables the scan history when Path is set.
type RecorderConfig struct {
	Path string `yaml:"path" json:"path" jsonschema:"title=Path,description=SQLite file for scan history. Empty disables recording"`
}

// DaemonConfig configures the watch command.
type DaemonConfig struct {
	Schedule   string `yaml:"schedule" json:"schedule" validate:"required" jsonschema:"title=Schedule,description=Cron expression for scan cycles,default=0 18 * * 1-5"`
	Listen     string `yaml:"listen" json:"listen" jsonschema:"title=Listen,description=HTTP address for metrics and reports. Empty disables the server,default=:9090"`
	MaxRetries int    `yaml:"max_retries" json:"max_retries" validate:"gte=0" jsonschema:"title=Max Retries,description=Retries of a failed cycle,minimum=0,default=3"`
	RunOnStart bool   `yaml:"run_on_start" json:"run_on_start" jsonschema:"title=Run On Start,description=Run a cycle immediately when the daemon starts"`
}

// Default returns the configuration used for keys the file leaves out.
func Default() Config {
	return Config{
		Version:   "",
		LogLevel:  "info",
		Frequency: types.FrequencyDaily,
		Watchlist: WatchlistConfig{},
		Engine:    enginev1.DefaultConfig(),
		Source: SourceConfig{
			Type:     SourceDuckDB,
			Paths:    []string{"data/*.parquet"},
			Lookback: 400,
			AsOf:     optional.None[time.Time](),
			Redis:    RedisConfig{TTL: 12 * time.Hour},
		},
		Download: DownloadConfig{
			Provider:   provider.ProviderPolygon,
			Interval:   "1d",
			DataPath:   "data",
			APIKeyEnv:  "POLYGON_API_KEY",
			MaxRetries: 3,
		},
		Recorder: RecorderConfig{},
		Daemon: DaemonConfig{
			Schedule:   "0 18 * * 1-5",
			Listen:     ":9090",
			MaxRetries: 3,
		},
	}
}

// Load reads, checks and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to read config %s", path)
	}

	config, err := Parse(data)
	if err != nil {
		return nil, err
	}

	config.resolvePaths(filepath.Dir(path))

	return config, nil
}

// Parse decodes YAML on top of Default and validates the result. Unknown keys are errors.
func Parse(data []byte) (*Config, error) {
	config := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	if err := version.CheckConfigCompatibility(version.GetVersion(), config.Version); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks struct tags, pattern names and the daemon schedule.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	if err := c.Engine.Validate(); err != nil {
		return err
	}

	if _, err := cron.ParseStandard(c.Daemon.Schedule); err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid daemon schedule %q", c.Daemon.Schedule)
	}

	return nil
}

// Symbols reads and merges every watchlist entry.
func (c *Config) Symbols() ([]string, error) {
	fromFiles, err := watchlist.Read(c.Watchlist.Files...)
	if err != nil {
		return nil, err
	}

	lists := [][]string{c.Watchlist.Symbols, fromFiles}

	for _, path := range c.Watchlist.CSVFiles {
		symbols, err := watchlist.ReadCSV(path, c.Watchlist.CSVCap)
		if err != nil {
			return nil, err
		}

		lists = append(lists, symbols)
	}

	symbols := watchlist.Merge(lists...)
	if len(symbols) == 0 {
		return nil, errors.New(errors.ErrCodeMissingParameter, "watchlist is empty")
	}

	return symbols, nil
}

func (c *Config) resolvePaths(baseDir string) {
	resolve := func(path string) string {
		if path == "" || filepath.IsAbs(path) {
			return path
		}

		return filepath.Join(baseDir, path)
	}

	for i := range c.Watchlist.Files {
		c.Watchlist.Files[i] = resolve(c.Watchlist.Files[i])
	}

	for i := range c.Watchlist.CSVFiles {
		c.Watchlist.CSVFiles[i] = resolve(c.Watchlist.CSVFiles[i])
	}

	for i := range c.Source.Paths {
		c.Source.Paths[i] = resolve(c.Source.Paths[i])
	}

	c.Source.Database = resolve(c.Source.Database)
	c.Source.JSONFile = resolve(c.Source.JSONFile)
	c.Download.DataPath = resolve(c.Download.DataPath)
	c.Recorder.Path = resolve(c.Recorder.Path)
}
