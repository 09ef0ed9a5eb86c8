package provider

import (
	"context"
	"fmt"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
	"github.com/rxtech-lab/argo-scanner/pkg/marketdata/writer"
)

// binancePageSize is the number of klines Binance returns per request by default.
const binancePageSize = 500

// BinanceKlinesService builds and runs a klines request.
type BinanceKlinesService interface {
	Symbol(symbol string) BinanceKlinesService
	Interval(interval string) BinanceKlinesService
	StartTime(startTime int64) BinanceKlinesService
	EndTime(endTime int64) BinanceKlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// BinanceAPIClient is the part of the Binance client the provider uses.
type BinanceAPIClient interface {
	NewKlinesService() BinanceKlinesService
}

type binanceClientWrapper struct {
	client *binance.Client
}

func (w *binanceClientWrapper) NewKlinesService() BinanceKlinesService {
	return &binanceKlinesServiceWrapper{service: w.client.NewKlinesService()}
}

type binanceKlinesServiceWrapper struct {
	service *binance.KlinesService
}

func (s *binanceKlinesServiceWrapper) Symbol(symbol string) BinanceKlinesService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *binanceKlinesServiceWrapper) Interval(interval string) BinanceKlinesService {
	s.service = s.service.Interval(interval)

	return s
}

func (s *binanceKlinesServiceWrapper) StartTime(startTime int64) BinanceKlinesService {
	s.service = s.service.StartTime(startTime)

	return s
}

func (s *binanceKlinesServiceWrapper) EndTime(endTime int64) BinanceKlinesService {
	s.service = s.service.EndTime(endTime)

	return s
}

func (s *binanceKlinesServiceWrapper) Do(ctx context.Context) ([]*binance.Kline, error) {
	return s.service.Do(ctx)
}

type BinanceClient struct {
	apiClient BinanceAPIClient
	writer    writer.BarWriter
}

func NewBinanceClient() (Provider, error) {
	return NewBinanceClientWithAPI(&binanceClientWrapper{client: binance.NewClient("", "")}), nil
}

// NewBinanceClientWithAPI creates a Binance provider on top of an existing API client.
func NewBinanceClientWithAPI(api BinanceAPIClient) *BinanceClient {
	return &BinanceClient{
		apiClient: api,
		writer:    nil,
	}
}

func (c *BinanceClient) ConfigWriter(w writer.BarWriter) {
	c.writer = w
}

// Download pages through the klines of ticker between startDate and endDate and writes
// every kline as a bar. Pagination continues from the close time of the last kline.
func (c *BinanceClient) Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, multiplier int, timespan models.Timespan, onProgress OnDownloadProgress) (path string, err error) {
	interval, err := convertTimespanToBinanceInterval(timespan, multiplier)
	if err != nil {
		return "", err
	}

	if c.writer == nil {
		return "", errors.New(errors.ErrCodeMarketDataWriteFailed, "writer is not configured")
	}

	if err = c.writer.Initialize(); err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to initialize writer", err)
	}

	defer func() {
		if cerr := c.writer.Close(); cerr != nil && err == nil {
			err = errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "error closing writer", cerr)
		}
	}()

	startTimeMillis := startDate.UnixMilli()
	endTimeMillis := endDate.UnixMilli()
	currentStartTime := startTimeMillis
	message := fmt.Sprintf("Downloading %s klines from Binance", ticker)

	for {
		klines, fetchErr := c.apiClient.NewKlinesService().
			Symbol(ticker).
			Interval(interval).
			StartTime(currentStartTime).
			EndTime(endTimeMillis).
			Do(ctx)
		if fetchErr != nil {
			return "", errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "failed to fetch klines from Binance", fetchErr)
		}

		if err = processKlines(c.writer, ticker, klines); err != nil {
			return "", err
		}

		reportProgress(onProgress, float64(currentStartTime-startTimeMillis), float64(endTimeMillis-startTimeMillis), message)

		if len(klines) < binancePageSize {
			break
		}

		currentStartTime = klines[len(klines)-1].CloseTime + 1
		if currentStartTime >= endTimeMillis {
			break
		}
	}

	outputPath, err := c.writer.Finalize()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to finalize writer", err)
	}

	return outputPath, nil
}

// processKlines converts klines to bars and writes them. The open time is the bar time.
func processKlines(w writer.BarWriter, ticker string, klines []*binance.Kline) error {
	for i, k := range klines {
		values := make([]float64, 5)

		for j, raw := range []string{k.Open, k.High, k.Low, k.Close, k.Volume} {
			value, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "kline %d of %s has invalid number %q", i, ticker, raw)
			}

			values[j] = value
		}

		bar := types.NewBar(time.UnixMilli(k.OpenTime).UTC(), values[0], values[1], values[2], values[3], values[4])
		if err := w.Write(ticker, bar); err != nil {
			return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to write market data", err)
		}
	}

	return nil
}

// convertTimespanToBinanceInterval converts the polygon timespan and multiplier to a Binance interval string.
// Binance intervals: 1m, 3m, 5m, 15m, 30m, 1h, 2h, 4h, 6h, 8h, 12h, 1d, 3d, 1w, 1M
// Ref: https://binance-docs.github.io/apidocs/spot/en/#kline-candlestick-data
func convertTimespanToBinanceInterval(timespan models.Timespan, multiplier int) (string, error) {
	switch timespan {
	case models.Minute:
		return fmt.Sprintf("%dm", multiplier), nil
	case models.Hour:
		return fmt.Sprintf("%dh", multiplier), nil
	case models.Day:
		return fmt.Sprintf("%dd", multiplier), nil
	case models.Week:
		if multiplier == 1 {
			return "1w", nil
		}

		return "", errors.Newf(errors.ErrCodeInvalidTimespan, "unsupported weekly multiplier for Binance: %d", multiplier)
	case models.Month:
		if multiplier == 1 {
			return "1M", nil
		}

		return "", errors.Newf(errors.ErrCodeInvalidTimespan, "unsupported monthly multiplier for Binance: %d", multiplier)
	default:
		return "", errors.Newf(errors.ErrCodeInvalidTimespan, "unsupported timespan for Binance: %s", timespan)
	}
}
