// Package watchlist reads the symbol lists a scan runs over.
//
// A watchlist file holds one symbol per line. Text after '#' is a comment and blank lines
// are ignored. Screener exports in CSV form are read with ReadCSV.
package watchlist

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
)

const billion = 1e9

// CapFilter bounds the market cap of symbols read from a CSV export, in billions.
// A non-positive MaxBillion leaves the upper end open.
type CapFilter struct {
	MinBillion float64 `yaml:"min_billion" json:"min_billion" validate:"gte=0" jsonschema:"title=Minimum Market Cap,description=Minimum market cap in billions,minimum=0"`
	MaxBillion float64 `yaml:"max_billion" json:"max_billion" jsonschema:"title=Maximum Market Cap,description=Maximum market cap in billions. Zero means unbounded"`
}

// Read parses every file in order and merges the symbols, keeping the first occurrence.
func Read(paths ...string) ([]string, error) {
	lists := make([][]string, 0, len(paths))

	for _, path := range paths {
		file, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to open watchlist %s", path)
		}

		symbols, err := Parse(file)
		file.Close()

		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "failed to read watchlist %s", path)
		}

		lists = append(lists, symbols)
	}

	return Merge(lists...), nil
}

// Parse reads one symbol per line from r.
func Parse(r io.Reader) ([]string, error) {
	var symbols []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}

		symbol := strings.TrimSpace(line)
		if symbol == "" {
			continue
		}

		symbols = append(symbols, symbol)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return symbols, nil
}

// screenerRow is one row of a screener export. Other columns are ignored.
type screenerRow struct {
	Symbol    string `csv:"Symbol"`
	MarketCap string `csv:"MarketCap"`
}

// ReadCSV reads the Symbol column of a screener export, keeping rows whose MarketCap
// column falls inside filter. Rows with an unparsable market cap are skipped. An export
// in which no row carries both a symbol and a market cap lacks the required columns.
func ReadCSV(path string, filter CapFilter) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to open %s", path)
	}
	defer file.Close()

	var rows []screenerRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "failed to read %s", path)
	}

	symbols := make([]string, 0, len(rows))
	complete := false

	for _, row := range rows {
		symbol := strings.TrimSpace(row.Symbol)
		capText := strings.TrimSpace(row.MarketCap)

		if symbol == "" || capText == "" {
			continue
		}

		complete = true

		marketCap, err := strconv.ParseFloat(capText, 64)
		if err != nil {
			continue
		}

		if marketCap < filter.MinBillion*billion {
			continue
		}

		if filter.MaxBillion > 0 && marketCap > filter.MaxBillion*billion {
			continue
		}

		symbols = append(symbols, symbol)
	}

	if len(rows) > 0 && !complete {
		return nil, errors.Newf(errors.ErrCodeMissingParameter, "%s needs Symbol and MarketCap columns", path)
	}

	return Merge(symbols), nil
}

// Merge concatenates lists, dropping repeated symbols.
func Merge(lists ...[]string) []string {
	seen := make(map[string]struct{})
	merged := []string{}

	for _, list := range lists {
		for _, symbol := range list {
			if _, ok := seen[symbol]; ok {
				continue
			}

			seen[symbol] = struct{}{}
			merged = append(merged, symbol)
		}
	}

	return merged
}
