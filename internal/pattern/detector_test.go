package pattern

import (
	"testing"

	"github.com/rxtech-lab/argo-scanner/internal/indicator"
	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type DetectorTestSuite struct {
	suite.Suite
}

func TestDetectorSuite(t *testing.T) {
	suite.Run(t, new(DetectorTestSuite))
}

func (suite *DetectorTestSuite) TestDefaultOrder() {
	detectors := Default(DefaultOptions())
	suite.Require().Len(detectors, len(Names()))

	for i, name := range Names() {
		suite.Equal(name, detectors[i].Name())
	}
}

func (suite *DetectorTestSuite) TestByName() {
	detector, err := ByName(types.PatternNewHigh, DefaultOptions())
	suite.NoError(err)
	suite.IsType(&NewHigh{}, detector)

	_, err = ByName("head_and_shoulders", DefaultOptions())
	suite.True(errors.HasCode(err, errors.ErrCodePatternNotFound))
}

func (suite *DetectorTestSuite) TestResolve() {
	detectors, err := Resolve([]types.PatternName{types.PatternTripleScreen, types.PatternNewHigh}, DefaultOptions())
	suite.NoError(err)
	suite.Require().Len(detectors, 2)
	suite.Equal(types.PatternTripleScreen, detectors[0].Name())
	suite.Equal(types.PatternNewHigh, detectors[1].Name())

	_, err = Resolve([]types.PatternName{"unknown"}, DefaultOptions())
	suite.Error(err)
}

func (suite *DetectorTestSuite) TestDetectorsNeverPanicOnShortInput() {
	for n := 0; n <= 3; n++ {
		n := n
		closes := risingCloses(n, 10, 1)
		series := flatBars(closes)

		for _, detector := range Default(DefaultOptions()) {
			detector := detector
			suite.NotPanics(func() {
				result, err := detector.Evaluate(series, indicator.NewSnapshot(series))
				suite.False(result)
				suite.True(errors.IsDataError(err), "%s with %d bars: %v", detector.Name(), n, err)
			})
		}
	}
}
