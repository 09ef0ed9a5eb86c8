package marketdata

import (
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
)

// Timespan is a bar interval in the compact notation used in configuration files.
type Timespan string

const (
	TimespanOneMinute      Timespan = "1m"
	TimespanFiveMinutes    Timespan = "5m"
	TimespanFifteenMinutes Timespan = "15m"
	TimespanThirtyMinutes  Timespan = "30m"
	TimespanOneHour        Timespan = "1h"
	TimespanFourHours      Timespan = "4h"
	TimespanOneDay         Timespan = "1d"
	TimespanOneWeek        Timespan = "1w"
)

type timespanSpec struct {
	multiplier int
	timespan   models.Timespan
}

var timespans = map[Timespan]timespanSpec{
	TimespanOneMinute:      {1, models.Minute},
	TimespanFiveMinutes:    {5, models.Minute},
	TimespanFifteenMinutes: {15, models.Minute},
	TimespanThirtyMinutes:  {30, models.Minute},
	TimespanOneHour:        {1, models.Hour},
	TimespanFourHours:      {4, models.Hour},
	TimespanOneDay:         {1, models.Day},
	TimespanOneWeek:        {1, models.Week},
}

// ParseTimespan validates value against the supported intervals.
func ParseTimespan(value string) (Timespan, error) {
	if _, ok := timespans[Timespan(value)]; !ok {
		return "", errors.Newf(errors.ErrCodeInvalidTimespan, "unsupported interval: %q", value)
	}

	return Timespan(value), nil
}

// Multiplier returns the provider multiplier, 1 for unknown intervals.
func (t Timespan) Multiplier() int {
	if spec, ok := timespans[t]; ok {
		return spec.multiplier
	}

	return 1
}

// Timespan returns the provider timespan unit, day for unknown intervals.
func (t Timespan) Timespan() models.Timespan {
	if spec, ok := timespans[t]; ok {
		return spec.timespan
	}

	return models.Day
}
