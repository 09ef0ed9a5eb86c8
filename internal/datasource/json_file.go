package datasource

import (
	"os"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
	"github.com/tidwall/gjson"
)

// LoadJSONFile reads a fixture file into a MemorySource.
//
// The file maps each symbol to its bars, newest first:
//
//	{"AAPL": [{"time": "2024-01-05T00:00:00Z", "open": 1, "high": 2, "low": 0.5, "close": 1.5, "volume": 100}]}
//
// time is either an RFC 3339 string or unix seconds. high and low may be null or
// omitted for a session that is still open.
func LoadJSONFile(path string) (*MemorySource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to read fixture %s", path)
	}

	return ParseJSON(data)
}

// ParseJSON parses fixture content into a MemorySource.
func ParseJSON(data []byte) (*MemorySource, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "fixture is not valid JSON")
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "fixture must be an object keyed by symbol")
	}

	out := make(map[string]types.Series)

	var parseErr error

	root.ForEach(func(key, value gjson.Result) bool {
		symbol := key.String()

		if !value.IsArray() {
			parseErr = errors.Newf(errors.ErrCodeInvalidParameter, "%s: bars must be an array", symbol)

			return false
		}

		bars := value.Array()
		series := make(types.Series, 0, len(bars))

		for i, item := range bars {
			bar, err := parseBar(item)
			if err != nil {
				parseErr = errors.Wrapf(errors.ErrCodeMalformedBar, err, "%s: bar %d", symbol, i)

				return false
			}

			series = append(series, bar)
		}

		out[symbol] = series

		return true
	})

	if parseErr != nil {
		return nil, parseErr
	}

	return NewMemorySource(out), nil
}

func parseBar(item gjson.Result) (types.Bar, error) {
	for _, field := range []string{"open", "close"} {
		if !item.Get(field).Exists() {
			return types.Bar{}, errors.Newf(errors.ErrCodeMissingParameter, "missing %s", field)
		}
	}

	t, err := parseTime(item.Get("time"))
	if err != nil {
		return types.Bar{}, err
	}

	return types.Bar{
		Time:   t,
		Open:   item.Get("open").Float(),
		High:   optionalFloat(item.Get("high")),
		Low:    optionalFloat(item.Get("low")),
		Close:  item.Get("close").Float(),
		Volume: item.Get("volume").Float(),
	}, nil
}

func parseTime(value gjson.Result) (time.Time, error) {
	switch value.Type {
	case gjson.Null:
		return time.Time{}, nil
	case gjson.Number:
		return time.Unix(value.Int(), 0).UTC(), nil
	case gjson.String:
		t, err := time.Parse(time.RFC3339, value.String())
		if err != nil {
			return time.Time{}, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid time", err)
		}

		return t, nil
	default:
		return time.Time{}, errors.Newf(errors.ErrCodeInvalidParameter, "invalid time %s", value.Raw)
	}
}

func optionalFloat(value gjson.Result) optional.Option[float64] {
	if !value.Exists() || value.Type == gjson.Null {
		return optional.None[float64]()
	}

	return optional.Some(value.Float())
}
