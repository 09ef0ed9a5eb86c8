package marketdata

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
	"github.com/rxtech-lab/argo-scanner/pkg/marketdata/provider"
)

const dateLayout = "2006-01-02"

// BaseDownloadConfig contains common fields for all download configurations.
type BaseDownloadConfig struct {
	Tickers   []string `json:"tickers" jsonschema:"title=Tickers,description=The symbols to download data for (e.g. SPY or BTCUSDT),required" validate:"required,min=1,dive,required"`
	StartDate string   `json:"startDate" jsonschema:"title=Start Date,description=Start date as YYYY-MM-DD or RFC3339,required" validate:"required"`
	EndDate   string   `json:"endDate" jsonschema:"title=End Date,description=End date as YYYY-MM-DD or RFC3339,required" validate:"required"`
	Interval  string   `json:"interval" jsonschema:"title=Interval,description=Bar interval,required,enum=1m,enum=5m,enum=15m,enum=30m,enum=1h,enum=4h,enum=1d,enum=1w,default=1d" validate:"required,oneof=1m 5m 15m 30m 1h 4h 1d 1w"`
}

// PolygonDownloadConfig contains configuration for downloading from Polygon.io.
type PolygonDownloadConfig struct {
	BaseDownloadConfig

	ApiKey string `json:"apiKey" jsonschema:"title=API Key,description=Polygon.io API key for authentication,required" validate:"required"`
}

// BinanceDownloadConfig contains configuration for downloading from Binance.
// Binance public market data API does not require authentication.
type BinanceDownloadConfig struct {
	BaseDownloadConfig
}

// ParseDate accepts a plain date or an RFC3339 timestamp.
func ParseDate(value string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "invalid date %q, expected YYYY-MM-DD or RFC3339", value)
	}

	return t.UTC(), nil
}

// Validate validates the BaseDownloadConfig fields.
func (c *BaseDownloadConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	start, err := ParseDate(c.StartDate)
	if err != nil {
		return err
	}

	end, err := ParseDate(c.EndDate)
	if err != nil {
		return err
	}

	if !end.After(start) {
		return errors.New(errors.ErrCodeInvalidConfiguration, "endDate must be after startDate")
	}

	return nil
}

// Validate validates the PolygonDownloadConfig.
func (c *PolygonDownloadConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	return c.BaseDownloadConfig.Validate()
}

// Validate validates the BinanceDownloadConfig.
func (c *BinanceDownloadConfig) Validate() error {
	return c.BaseDownloadConfig.Validate()
}

// ToWatchlistParams converts a BaseDownloadConfig to WatchlistParams.
func (c *BaseDownloadConfig) ToWatchlistParams() (WatchlistParams, error) {
	startDate, err := ParseDate(c.StartDate)
	if err != nil {
		return WatchlistParams{}, err
	}

	endDate, err := ParseDate(c.EndDate)
	if err != nil {
		return WatchlistParams{}, err
	}

	interval, err := ParseTimespan(c.Interval)
	if err != nil {
		return WatchlistParams{}, err
	}

	return WatchlistParams{
		Tickers:   c.Tickers,
		StartDate: startDate,
		EndDate:   endDate,
		Interval:  interval,
	}, nil
}

// ToClientConfig converts a PolygonDownloadConfig to ClientConfig.
func (c *PolygonDownloadConfig) ToClientConfig(dataPath string) ClientConfig {
	return ClientConfig{
		ProviderType:  provider.ProviderPolygon,
		WriterType:    WriterDuckDB,
		DataPath:      dataPath,
		PolygonApiKey: c.ApiKey,
		MaxRetries:    DefaultMaxRetries,
	}
}

// ToClientConfig converts a BinanceDownloadConfig to ClientConfig.
func (c *BinanceDownloadConfig) ToClientConfig(dataPath string) ClientConfig {
	return ClientConfig{
		ProviderType:  provider.ProviderBinance,
		WriterType:    WriterDuckDB,
		DataPath:      dataPath,
		PolygonApiKey: "",
		MaxRetries:    DefaultMaxRetries,
	}
}

// ParsePolygonConfig parses JSON into a PolygonDownloadConfig.
func ParsePolygonConfig(jsonConfig string) (*PolygonDownloadConfig, error) {
	var config PolygonDownloadConfig
	if err := json.Unmarshal([]byte(jsonConfig), &config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse JSON config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// ParseBinanceConfig parses JSON into a BinanceDownloadConfig.
func ParseBinanceConfig(jsonConfig string) (*BinanceDownloadConfig, error) {
	var config BinanceDownloadConfig
	if err := json.Unmarshal([]byte(jsonConfig), &config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse JSON config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
