package marketdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-playground/validator/v10"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-scanner/internal/logger"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
	"github.com/rxtech-lab/argo-scanner/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-scanner/pkg/marketdata/writer"
	"go.uber.org/zap"
)

// WriterType defines the type of market data writer.
type WriterType string

const (
	WriterDuckDB WriterType = "duckdb"
)

// DefaultMaxRetries is the number of retries per symbol in DownloadWatchlist.
const DefaultMaxRetries = 3

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	ProviderType  provider.ProviderType `validate:"required,oneof=polygon binance"`
	WriterType    WriterType            `validate:"required,oneof=duckdb"`
	DataPath      string                `validate:"required"`
	PolygonApiKey string                `validate:"required_if=ProviderType polygon"`
	MaxRetries    int                   `validate:"gte=0"`
}

// DownloadParams holds the parameters for a market data download request.
type DownloadParams struct {
	Ticker     string          `validate:"required"`
	StartDate  time.Time       `validate:"required"`
	EndDate    time.Time       `validate:"required,gtfield=StartDate"`
	Multiplier int             `validate:"required,min=1"`
	Timespan   models.Timespan `validate:"required"`
}

// WatchlistParams describes a download of several tickers over the same range.
type WatchlistParams struct {
	Tickers   []string  `validate:"required,min=1,dive,required"`
	StartDate time.Time `validate:"required"`
	EndDate   time.Time `validate:"required,gtfield=StartDate"`
	Interval  Timespan  `validate:"required"`
}

// WatchlistResult maps each downloaded ticker to its parquet file and each failed ticker to its last error.
type WatchlistResult struct {
	Paths  map[string]string
	Failed map[string]error
}

// Client is the market data client responsible for downloading data from providers and storing it using writers.
type Client struct {
	provider   provider.Provider
	config     ClientConfig
	validate   *validator.Validate
	onProgress provider.OnDownloadProgress
	newBackOff func() backoff.BackOff
	logger     *logger.Logger
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithProvider replaces the provider selected by ProviderType.
func WithProvider(p provider.Provider) ClientOption {
	return func(c *Client) {
		c.provider = p
	}
}

// WithBackOff sets the retry policy factory used per ticker.
func WithBackOff(newBackOff func() backoff.BackOff) ClientOption {
	return func(c *Client) {
		c.newBackOff = newBackOff
	}
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) ClientOption {
	return func(c *Client) {
		c.logger = log
	}
}

// NewClient creates a new market data client with the given configuration.
func NewClient(config ClientConfig, onProgress provider.OnDownloadProgress, opts ...ClientOption) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	client := &Client{
		provider:   nil,
		config:     config,
		validate:   validate,
		onProgress: onProgress,
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		logger:     logger.NewNopLogger(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.provider == nil {
		marketProvider, err := provider.NewMarketDataProvider(config.ProviderType, provider.Options{
			PolygonAPIKey: config.PolygonApiKey,
		})
		if err != nil {
			return nil, err
		}

		client.provider = marketProvider
	}

	return client, nil
}

// Download runs one download and returns the path of the written parquet file.
// The context can be used to cancel the download operation.
func (c *Client) Download(ctx context.Context, params DownloadParams) (string, error) {
	if err := c.validate.Struct(params); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidParameter, "invalid download parameters", err)
	}

	marketWriter, err := c.setupWriter(params)
	if err != nil {
		return "", err
	}

	defer func() {
		if cerr := marketWriter.Close(); cerr != nil {
			c.logger.Warn("failed to close writer", zap.String("ticker", params.Ticker), zap.Error(cerr))
		}
	}()

	c.provider.ConfigWriter(marketWriter)

	path, err := c.provider.Download(
		ctx,
		params.Ticker,
		params.StartDate,
		params.EndDate,
		params.Multiplier,
		params.Timespan,
		c.onProgress,
	)
	if err != nil {
		return "", errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "download of %s failed", params.Ticker)
	}

	return path, nil
}

// DownloadWatchlist downloads every ticker in turn, retrying each with the client's backoff
// policy. A ticker that still fails is recorded in the result and the next one is attempted.
// Only invalid parameters and cancellation abort the whole batch.
func (c *Client) DownloadWatchlist(ctx context.Context, params WatchlistParams) (WatchlistResult, error) {
	result := WatchlistResult{
		Paths:  make(map[string]string, len(params.Tickers)),
		Failed: make(map[string]error),
	}

	if err := c.validate.Struct(params); err != nil {
		return result, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid watchlist download parameters", err)
	}

	if _, err := ParseTimespan(string(params.Interval)); err != nil {
		return result, err
	}

	for _, ticker := range params.Tickers {
		ticker := ticker
		if ctx.Err() != nil {
			return result, errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "download canceled", ctx.Err())
		}

		downloadParams := DownloadParams{
			Ticker:     ticker,
			StartDate:  params.StartDate,
			EndDate:    params.EndDate,
			Multiplier: params.Interval.Multiplier(),
			Timespan:   params.Interval.Timespan(),
		}

		var path string

		attempt := 0
		operation := func() error {
			attempt++

			var err error

			path, err = c.Download(ctx, downloadParams)
			if err != nil && !isRetryable(ctx, err) {
				return backoff.Permanent(err)
			}

			if err != nil {
				c.logger.Warn("download attempt failed", zap.String("ticker", ticker), zap.Int("attempt", attempt), zap.Error(err))
			}

			return err
		}

		policy := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), uint64(c.config.MaxRetries)), ctx)
		if err := backoff.Retry(operation, policy); err != nil {
			result.Failed[ticker] = err
			c.logger.Error("download failed", zap.String("ticker", ticker), zap.Error(err))

			continue
		}

		result.Paths[ticker] = path
		c.logger.Info("downloaded", zap.String("ticker", ticker), zap.String("path", path))
	}

	return result, nil
}

// isRetryable reports whether a failed download may succeed on another attempt.
func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}

	for _, code := range []errors.ErrorCode{
		errors.ErrCodeInvalidParameter,
		errors.ErrCodeInvalidTimespan,
		errors.ErrCodeMarketDataParseFailed,
		errors.ErrCodeMarketDataWriteFailed,
	} {
		if errors.ChainHasCode(err, code) {
			return false
		}
	}

	return true
}

// OutputFileName returns TICKER_START_END_MULTIPLIER_TIMESPAN.parquet for params.
func OutputFileName(params DownloadParams) string {
	return fmt.Sprintf("%s_%s_%s_%d_%s.parquet",
		params.Ticker,
		params.StartDate.Format("2006-01-02"),
		params.EndDate.Format("2006-01-02"),
		params.Multiplier,
		params.Timespan)
}

// setupWriter creates the writer for params. The provider initializes it.
func (c *Client) setupWriter(params DownloadParams) (writer.BarWriter, error) {
	switch c.config.WriterType {
	case WriterDuckDB:
		if err := os.MkdirAll(c.config.DataPath, 0o755); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to create data directory %s", c.config.DataPath)
		}

		return writer.NewDuckDBWriter(filepath.Join(c.config.DataPath, OutputFileName(params))), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "unsupported writer type: %s", c.config.WriterType)
	}
}
