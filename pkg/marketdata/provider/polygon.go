package provider

import (
	"context"
	"fmt"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
	"github.com/rxtech-lab/argo-scanner/pkg/marketdata/writer"
)

// PolygonAggsIterator iterates over aggregate bars returned by Polygon.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient is the part of the Polygon REST client the provider uses.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
}

type polygonClientWrapper struct {
	client *polygon.Client
}

func (w *polygonClientWrapper) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return w.client.ListAggs(ctx, params, options...)
}

type PolygonClient struct {
	apiClient PolygonAPIClient
	writer    writer.BarWriter
}

func NewPolygonClient(apiKey string) (Provider, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "apiKey is required")
	}

	return NewPolygonClientWithAPI(&polygonClientWrapper{client: polygon.New(apiKey)}), nil
}

// NewPolygonClientWithAPI creates a Polygon provider on top of an existing API client.
func NewPolygonClientWithAPI(api PolygonAPIClient) *PolygonClient {
	return &PolygonClient{
		apiClient: api,
		writer:    nil,
	}
}

func (c *PolygonClient) ConfigWriter(w writer.BarWriter) {
	c.writer = w
}

func (c *PolygonClient) Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, multiplier int, timespan models.Timespan, onProgress OnDownloadProgress) (path string, err error) {
	if c.writer == nil {
		return "", errors.New(errors.ErrCodeMarketDataWriteFailed, "no writer configured for PolygonClient. Call ConfigWriter first")
	}

	if err = c.writer.Initialize(); err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to initialize writer", err)
	}

	defer func() {
		if cerr := c.writer.Close(); cerr != nil && err == nil {
			err = errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "error closing writer", cerr)
		}
	}()

	totalDays := endDate.Sub(startDate).Hours()/24 + 1
	message := fmt.Sprintf("Downloading %s", ticker)

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: multiplier,
		Timespan:   timespan,
		From:       models.Millis(startDate),
		To:         models.Millis(endDate),
	}.WithLimit(50000)

	iter := c.apiClient.ListAggs(ctx, params)

	for iter.Next() {
		if ctx.Err() != nil {
			return "", errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "download canceled", ctx.Err())
		}

		agg := iter.Item()
		barTime := time.Time(agg.Timestamp).UTC()
		bar := types.NewBar(barTime, agg.Open, agg.High, agg.Low, agg.Close, agg.Volume)

		if err = c.writer.Write(ticker, bar); err != nil {
			return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to write data", err)
		}

		reportProgress(onProgress, barTime.Sub(startDate).Hours()/24, totalDays, message)
	}

	if iter.Err() != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "error iterating polygon aggregates", iter.Err())
	}

	reportProgress(onProgress, totalDays, totalDays, message)

	outputPath, err := c.writer.Finalize()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to finalize writer", err)
	}

	return outputPath, nil
}
