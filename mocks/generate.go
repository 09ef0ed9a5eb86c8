package mocks

//go:generate mockgen -destination=./mock_detector.go -package=mocks github.com/rxtech-lab/argo-scanner/internal/pattern Detector
//go:generate mockgen -destination=./mock_indicator.go -package=mocks github.com/rxtech-lab/argo-scanner/internal/indicator Indicator
//go:generate mockgen -destination=./mock_series_source.go -package=mocks github.com/rxtech-lab/argo-scanner/internal/datasource SeriesSource
//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/rxtech-lab/argo-scanner/pkg/marketdata/provider Provider
