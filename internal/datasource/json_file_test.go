package datasource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type JSONFileSourceTestSuite struct {
	suite.Suite
}

func TestJSONFileSourceSuite(t *testing.T) {
	suite.Run(t, new(JSONFileSourceTestSuite))
}

const fixture = `{
	"AAA": [
		{"time": "2024-01-03T00:00:00Z", "open": 10.5, "high": null, "close": 10.8, "volume": 1200},
		{"time": 1704153600, "open": 10, "high": 11, "low": 9.5, "close": 10.5, "volume": 1000}
	],
	"BBB": []
}`

func (suite *JSONFileSourceTestSuite) TestLoadJSONFile() {
	path := filepath.Join(suite.T().TempDir(), "bars.json")
	suite.Require().NoError(os.WriteFile(path, []byte(fixture), 0o600))

	source, err := LoadJSONFile(path)
	suite.Require().NoError(err)

	series, missing, err := source.GetSeries(context.Background(), []string{"AAA", "BBB"}, types.FrequencyDaily)
	suite.Require().NoError(err)
	suite.Equal([]string{"BBB"}, missing)

	aaa := series["AAA"]
	suite.Require().Len(aaa, 2)
	suite.True(aaa[0].Time.Equal(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)))
	suite.True(aaa[1].Time.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))
	suite.True(aaa[0].High.IsNone())
	suite.True(aaa[0].Low.IsNone())
	suite.Equal(11.0, aaa[1].High.Unwrap())
	suite.Equal(9.5, aaa[1].Low.Unwrap())
	suite.Equal(10.8, aaa[0].Close)
	suite.NoError(aaa.Validate())
}

func (suite *JSONFileSourceTestSuite) TestParseErrors() {
	tests := []struct {
		name string
		data string
		code errors.ErrorCode
	}{
		{name: "invalid json", data: `{"AAA": [`, code: errors.ErrCodeInvalidParameter},
		{name: "not an object", data: `[1, 2]`, code: errors.ErrCodeInvalidParameter},
		{name: "bars not an array", data: `{"AAA": {"open": 1}}`, code: errors.ErrCodeInvalidParameter},
		{name: "missing close", data: `{"AAA": [{"time": 1, "open": 1}]}`, code: errors.ErrCodeMalformedBar},
		{name: "bad time", data: `{"AAA": [{"time": "yesterday", "open": 1, "close": 1}]}`, code: errors.ErrCodeMalformedBar},
	}

	for _, tc := range tests {
		tc := tc
		suite.Run(tc.name, func() {
			_, err := ParseJSON([]byte(tc.data))
			suite.Require().Error(err)
			suite.Equal(tc.code, errors.GetCode(err))
		})
	}
}

func (suite *JSONFileSourceTestSuite) TestMissingFile() {
	_, err := LoadJSONFile(filepath.Join(suite.T().TempDir(), "missing.json"))
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDataSourceUnavailable))
}
