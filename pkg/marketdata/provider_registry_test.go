package marketdata

import (
	"encoding/json"
	"testing"

	"github.com/rxtech-lab/argo-scanner/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ProviderRegistryTestSuite struct {
	suite.Suite
}

func TestProviderRegistryTestSuite(t *testing.T) {
	suite.Run(t, new(ProviderRegistryTestSuite))
}

func (suite *ProviderRegistryTestSuite) TestGetSupportedProviders() {
	suite.Equal([]string{"binance", "polygon"}, GetSupportedProviders())
}

func (suite *ProviderRegistryTestSuite) TestGetProviderInfo() {
	info, err := GetProviderInfo("polygon")
	suite.NoError(err)
	suite.Equal("Polygon.io", info.DisplayName)
	suite.True(info.RequiresAuth)

	info, err = GetProviderInfo("binance")
	suite.NoError(err)
	suite.Equal("Binance", info.DisplayName)
	suite.False(info.RequiresAuth)

	_, err = GetProviderInfo("invalid")
	suite.Error(err)
	suite.Equal(errors.ErrCodeInvalidProvider, errors.GetCode(err))
}

func (suite *ProviderRegistryTestSuite) TestGetDownloadConfigSchema() {
	for _, name := range []string{"polygon", "binance"} {
		name := name
		suite.Run(name, func() {
			schema, err := GetDownloadConfigSchema(name)
			suite.Require().NoError(err)

			var schemaMap map[string]any
			suite.Require().NoError(json.Unmarshal([]byte(schema), &schemaMap))
			suite.Equal("object", schemaMap["type"])

			properties, ok := schemaMap["properties"].(map[string]any)
			suite.Require().True(ok)
			suite.Contains(properties, "tickers")
			suite.Contains(properties, "interval")

			_, hasKey := properties["apiKey"]
			suite.Equal(name == "polygon", hasKey)
		})
	}

	schema, err := GetDownloadConfigSchema("invalid")
	suite.Error(err)
	suite.Empty(schema)
}

func (suite *ProviderRegistryTestSuite) TestParseDownloadConfig() {
	config, err := ParseDownloadConfig("polygon", `{
		"tickers": ["SPY", "QQQ"],
		"startDate": "2024-01-01",
		"endDate": "2024-12-31",
		"interval": "1d",
		"apiKey": "test-api-key"
	}`)
	suite.Require().NoError(err)

	polygonConfig, ok := config.(*PolygonDownloadConfig)
	suite.Require().True(ok)
	suite.Equal([]string{"SPY", "QQQ"}, polygonConfig.Tickers)
	suite.Equal("test-api-key", polygonConfig.ApiKey)

	config, err = ParseDownloadConfig("binance", `{
		"tickers": ["BTCUSDT"],
		"startDate": "2024-01-01T00:00:00Z",
		"endDate": "2024-12-31T23:59:59Z",
		"interval": "4h"
	}`)
	suite.Require().NoError(err)

	_, ok = config.(*BinanceDownloadConfig)
	suite.True(ok)

	_, err = ParseDownloadConfig("invalid", `{"tickers": ["SPY"]}`)
	suite.Error(err)
	suite.Equal(errors.ErrCodeInvalidProvider, errors.GetCode(err))
}
