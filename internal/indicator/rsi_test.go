package indicator

import (
	"testing"

	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type RSITestSuite struct {
	suite.Suite
}

func TestRSISuite(t *testing.T) {
	suite.Run(t, new(RSITestSuite))
}

// newest first
var rsiSample = []float64{
	46.03, 46.0, 46.28, 46.28, 45.61, 46.03, 45.89, 46.08, 45.84,
	45.42, 45.1, 44.83, 44.33, 43.61, 44.15, 44.09, 44.34,
}

func (suite *RSITestSuite) TestRSI() {
	result, err := RSI(rsiSample, 14)
	suite.Require().NoError(err)
	suite.Require().Len(result, len(rsiSample)-14)

	suite.InDelta(66.48094183471265, result[0], 1e-9)
	suite.InDelta(66.24961855355505, result[1], 1e-9)
	suite.InDelta(70.46413502109705, result[2], 1e-9)
}

func (suite *RSITestSuite) TestRSIBounded() {
	points := wave(120, 50, 7)

	result, err := RSI(points, 14)
	suite.Require().NoError(err)

	for i, value := range result {
		suite.GreaterOrEqual(value, 0.0, "index %d", i)
		suite.LessOrEqual(value, 100.0, "index %d", i)
	}
}

func (suite *RSITestSuite) TestRSIWithoutLosses() {
	// newest first, strictly rising
	points := []float64{20, 19, 18, 17, 16, 15}

	result, err := RSI(points, 3)
	suite.Require().NoError(err)
	suite.Equal([]float64{100, 100, 100}, result)
}

func (suite *RSITestSuite) TestRSIErrors() {
	_, err := RSI(rsiSample[:14], 14)
	suite.True(errors.IsInsufficientDataError(err))

	_, err = RSI(rsiSample, 0)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))
}

func (suite *RSITestSuite) TestRSIIndicator() {
	ind := NewRSI()
	suite.Equal(types.IndicatorTypeRSI, ind.Name())

	err := ind.Config(1, 2)
	suite.True(errors.HasCode(err, errors.ErrCodeMissingParameter))

	series := seriesFromCloses(rsiSample)
	snapshot := NewSnapshot(series)
	suite.NoError(ind.Compute(series, snapshot))
	suite.Contains(snapshot.rsi, 14)

	short := seriesFromCloses(rsiSample[:5])
	shortSnapshot := NewSnapshot(short)
	suite.NoError(ind.Compute(short, shortSnapshot))
	suite.NotContains(shortSnapshot.rsi, 14)
}
