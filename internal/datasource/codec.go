package datasource

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-scanner/internal/types"
)

func toRecords(series types.Series) []barRecord {
	records := make([]barRecord, len(series))

	for i, bar := range series {
		records[i] = barRecord{
			Time:   bar.Time.Unix(),
			Open:   bar.Open,
			High:   optionPointer(bar.High),
			Low:    optionPointer(bar.Low),
			Close:  bar.Close,
			Volume: bar.Volume,
		}
	}

	return records
}

func fromRecords(records []barRecord) types.Series {
	series := make(types.Series, len(records))

	for i, record := range records {
		series[i] = types.Bar{
			Time:   time.Unix(record.Time, 0).UTC(),
			Open:   record.Open,
			High:   pointerOption(record.High),
			Low:    pointerOption(record.Low),
			Close:  record.Close,
			Volume: record.Volume,
		}
	}

	return series
}

func optionPointer(value optional.Option[float64]) *float64 {
	if value.IsNone() {
		return nil
	}

	v := value.Unwrap()

	return &v
}

func pointerOption(value *float64) optional.Option[float64] {
	if value == nil {
		return optional.None[float64]()
	}

	return optional.Some(*value)
}
