// Package provider downloads historical bars from remote market data APIs.
package provider

import (
	"context"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
	"github.com/rxtech-lab/argo-scanner/pkg/marketdata/writer"
)

// ProviderType names a market data provider in the configuration file.
type ProviderType string

const (
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
)

// OnDownloadProgress receives the download position of the current ticker.
type OnDownloadProgress = func(current float64, total float64, message string)

// Provider downloads bars into the writer set by ConfigWriter.
type Provider interface {
	ConfigWriter(writer writer.BarWriter)
	// Download fetches ticker between startDate and endDate in bars of multiplier x
	// timespan and returns the path the writer finalized to.
	Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, multiplier int, timespan models.Timespan, onProgress OnDownloadProgress) (path string, err error)
}

// Options holds the credentials providers may need.
type Options struct {
	PolygonAPIKey string
}

// NewMarketDataProvider creates the provider for providerType.
func NewMarketDataProvider(providerType ProviderType, opts Options) (Provider, error) {
	switch providerType {
	case ProviderBinance:
		return NewBinanceClient()
	case ProviderPolygon:
		return NewPolygonClient(opts.PolygonAPIKey)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", providerType)
	}
}

func reportProgress(onProgress OnDownloadProgress, current, total float64, message string) {
	if onProgress != nil {
		onProgress(current, total, message)
	}
}
