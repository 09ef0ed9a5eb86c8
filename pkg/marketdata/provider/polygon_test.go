package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	scannererrors "github.com/rxtech-lab/argo-scanner/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// mockPolygonAPIClient implements PolygonAPIClient for testing.
type mockPolygonAPIClient struct {
	iterator PolygonAggsIterator
	params   *models.ListAggsParams
}

func (m *mockPolygonAPIClient) ListAggs(_ context.Context, params *models.ListAggsParams, _ ...models.RequestOption) PolygonAggsIterator {
	m.params = params

	return m.iterator
}

// mockPolygonIterator implements PolygonAggsIterator for testing.
type mockPolygonIterator struct {
	aggs  []models.Agg
	index int
	err   error
}

func (m *mockPolygonIterator) Next() bool {
	if m.index < len(m.aggs) {
		m.index++

		return true
	}

	return false
}

func (m *mockPolygonIterator) Item() models.Agg {
	if m.index > 0 && m.index <= len(m.aggs) {
		return m.aggs[m.index-1]
	}

	return models.Agg{}
}

func (m *mockPolygonIterator) Err() error {
	return m.err
}

func dailyAggs(start time.Time, count int) []models.Agg {
	aggs := make([]models.Agg, 0, count)

	for i := 0; i < count; i++ {
		price := 100 + float64(i)
		aggs = append(aggs, models.Agg{
			Timestamp: models.Millis(start.Add(time.Duration(i) * 24 * time.Hour)),
			Open:      price,
			High:      price + 1,
			Low:       price - 1,
			Close:     price + 0.5,
			Volume:    1000000,
		})
	}

	return aggs
}

type PolygonClientTestSuite struct {
	suite.Suite
	start time.Time
	end   time.Time
}

func TestPolygonClientSuite(t *testing.T) {
	suite.Run(t, new(PolygonClientTestSuite))
}

func (suite *PolygonClientTestSuite) SetupTest() {
	suite.start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.end = time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
}

func (suite *PolygonClientTestSuite) TestNewPolygonClient() {
	client, err := NewPolygonClient("test-api-key")
	suite.NoError(err)

	polygonClient, ok := client.(*PolygonClient)
	suite.True(ok)
	suite.Nil(polygonClient.writer)

	_, ok = polygonClient.apiClient.(*polygonClientWrapper)
	suite.True(ok)

	_, err = NewPolygonClient("")
	suite.Error(err)
	suite.Equal(scannererrors.ErrCodeMissingParameter, scannererrors.GetCode(err))
}

func (suite *PolygonClientTestSuite) TestConfigWriter() {
	client := NewPolygonClientWithAPI(&mockPolygonAPIClient{})
	suite.Nil(client.writer)

	mockW := &mockWriter{}
	client.ConfigWriter(mockW)
	suite.Equal(mockW, client.writer)
}

func (suite *PolygonClientTestSuite) TestDownloadSuccess() {
	mockAPI := &mockPolygonAPIClient{iterator: &mockPolygonIterator{aggs: dailyAggs(suite.start, 5)}}
	mockW := &mockWriter{outputPath: "/tmp/spy.parquet"}

	client := NewPolygonClientWithAPI(mockAPI)
	client.ConfigWriter(mockW)

	path, err := client.Download(context.Background(), "SPY", suite.start, suite.end, 1, models.Day, nil)
	suite.NoError(err)
	suite.Equal("/tmp/spy.parquet", path)
	suite.Require().Len(mockW.writtenData, 5)
	suite.Equal(1, mockW.closeCallCount)

	suite.Require().NotNil(mockAPI.params)
	suite.Equal("SPY", mockAPI.params.Ticker)
	suite.Equal(models.Day, mockAPI.params.Timespan)
	suite.Equal(1, mockAPI.params.Multiplier)

	first := mockW.writtenData[0]
	suite.Equal("SPY", first.symbol)
	suite.Equal(suite.start, first.bar.Time)
	suite.InDelta(100.0, first.bar.Open, 1e-9)
	suite.InDelta(101.0, first.bar.High.Unwrap(), 1e-9)
	suite.InDelta(99.0, first.bar.Low.Unwrap(), 1e-9)
	suite.InDelta(100.5, first.bar.Close, 1e-9)
	suite.InDelta(1000000.0, first.bar.Volume, 1e-9)
}

func (suite *PolygonClientTestSuite) TestDownloadFailures() {
	tests := []struct {
		name     string
		writer   *mockWriter
		iterator *mockPolygonIterator
		code     scannererrors.ErrorCode
		errMsg   string
	}{
		{
			name:     "no writer",
			iterator: &mockPolygonIterator{},
			code:     scannererrors.ErrCodeMarketDataWriteFailed,
			errMsg:   "no writer configured",
		},
		{
			name:     "initialize error",
			writer:   &mockWriter{initializeErr: errors.New("no disk")},
			iterator: &mockPolygonIterator{},
			code:     scannererrors.ErrCodeMarketDataWriteFailed,
			errMsg:   "failed to initialize writer",
		},
		{
			name:     "iterator error",
			writer:   &mockWriter{},
			iterator: &mockPolygonIterator{aggs: dailyAggs(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 2), err: errors.New("rate limited")},
			code:     scannererrors.ErrCodeMarketDataFetchFailed,
			errMsg:   "rate limited",
		},
		{
			name:     "write error",
			writer:   &mockWriter{writeErr: errors.New("disk full"), writeErrAfterN: 1},
			iterator: &mockPolygonIterator{aggs: dailyAggs(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 3)},
			code:     scannererrors.ErrCodeMarketDataWriteFailed,
			errMsg:   "failed to write data",
		},
		{
			name:     "finalize error",
			writer:   &mockWriter{finalizeErr: errors.New("disk full")},
			iterator: &mockPolygonIterator{aggs: dailyAggs(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 1)},
			code:     scannererrors.ErrCodeMarketDataWriteFailed,
			errMsg:   "failed to finalize writer",
		},
		{
			name:     "close error",
			writer:   &mockWriter{closeErr: errors.New("close failed")},
			iterator: &mockPolygonIterator{aggs: dailyAggs(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 1)},
			code:     scannererrors.ErrCodeMarketDataWriteFailed,
			errMsg:   "error closing writer",
		},
	}

	for _, tc := range tests {
		tc := tc
		suite.Run(tc.name, func() {
			client := NewPolygonClientWithAPI(&mockPolygonAPIClient{iterator: tc.iterator})
			if tc.writer != nil {
				client.ConfigWriter(tc.writer)
			}

			_, err := client.Download(context.Background(), "SPY", suite.start, suite.end, 1, models.Day, nil)
			suite.Error(err)
			suite.Contains(err.Error(), tc.errMsg)
			suite.Equal(tc.code, scannererrors.GetCode(err))
		})
	}
}

func (suite *PolygonClientTestSuite) TestDownloadCancellation() {
	mockW := &mockWriter{}
	client := NewPolygonClientWithAPI(&mockPolygonAPIClient{iterator: &mockPolygonIterator{aggs: dailyAggs(suite.start, 3)}})
	client.ConfigWriter(mockW)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Download(ctx, "SPY", suite.start, suite.end, 1, models.Day, nil)
	suite.Error(err)
	suite.ErrorIs(err, context.Canceled)
	suite.Empty(mockW.writtenData)
	suite.Equal(0, mockW.finalizeCallCount)
}

func (suite *PolygonClientTestSuite) TestDownloadProgressCallback() {
	client := NewPolygonClientWithAPI(&mockPolygonAPIClient{iterator: &mockPolygonIterator{aggs: dailyAggs(suite.start, 4)}})
	client.ConfigWriter(&mockWriter{})

	var currents []float64
	var lastTotal float64

	_, err := client.Download(context.Background(), "SPY", suite.start, suite.end, 1, models.Day, func(current, total float64, message string) {
		currents = append(currents, current)
		lastTotal = total
		suite.Equal("Downloading SPY", message)
	})
	suite.NoError(err)
	// one call per bar plus the completion call
	suite.Equal([]float64{0, 1, 2, 3, 31}, currents)
	suite.InDelta(31.0, lastTotal, 1e-9)
}
