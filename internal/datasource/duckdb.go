package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-scanner/internal/logger"
	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
	"go.uber.org/zap"
)

// DefaultLookback is the number of bars loaded per symbol when no lookback is configured.
const DefaultLookback = 400

// DuckDBOptions tunes the bars a DuckDBSource returns.
type DuckDBOptions struct {
	// Lookback is the maximum number of bars returned per symbol
	Lookback int
	// AsOf hides every bar after the given time
	AsOf optional.Option[time.Time]
}

// DuckDBSource reads bars from parquet files through a DuckDB view named market_data
// with columns time, symbol, open, high, low, close, volume.
type DuckDBSource struct {
	db      *sql.DB
	logger  *logger.Logger
	sq      squirrel.StatementBuilderType
	options DuckDBOptions
}

// NewDuckDBSource opens a DuckDB database at path. An empty path opens an in-memory database.
func NewDuckDBSource(path string, options DuckDBOptions, log *logger.Logger) (*DuckDBSource, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	if options.Lookback <= 0 {
		options.Lookback = DefaultLookback
	}

	return &DuckDBSource{
		db:      db,
		logger:  log.Named("duckdb"),
		sq:      squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		options: options,
	}, nil
}

// Initialize points the market_data view at one or more parquet files or globs.
func (d *DuckDBSource) Initialize(paths ...string) error {
	if len(paths) == 0 {
		return errors.New(errors.ErrCodeMissingParameter, "at least one parquet path is required")
	}

	d.logger.Debug("Initializing DuckDB source", zap.Strings("paths", paths))

	if _, err := d.db.Exec(`DROP VIEW IF EXISTS market_data;`); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to drop existing view", err)
	}

	quoted := make([]string, len(paths))
	for i, path := range paths {
		quoted[i] = "'" + strings.ReplaceAll(path, "'", "''") + "'"
	}

	// squirrel has no CREATE VIEW support
	query := fmt.Sprintf(`
		CREATE VIEW market_data AS
		SELECT time, symbol, open, high, low, close, volume FROM read_parquet([%s]);
	`, strings.Join(quoted, ", "))

	if _, err := d.db.Exec(query); err != nil {
		return errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to create market_data view", err)
	}

	return nil
}

// GetSeries implements SeriesSource.
func (d *DuckDBSource) GetSeries(ctx context.Context, symbols []string, frequency types.Frequency) (map[string]types.Series, []string, error) {
	out := make(map[string]types.Series, len(symbols))
	missing := []string{}

	for _, symbol := range symbols {
		series, err := d.readSeries(ctx, symbol, frequency)
		if err != nil {
			return nil, nil, err
		}

		if len(series) == 0 {
			d.logger.Debug("No bars for symbol", zap.String("symbol", symbol))
			missing = append(missing, symbol)

			continue
		}

		out[symbol] = series
	}

	return out, missing, nil
}

// Close closes the database.
func (d *DuckDBSource) Close() error {
	return d.db.Close()
}

func (d *DuckDBSource) readSeries(ctx context.Context, symbol string, frequency types.Frequency) (types.Series, error) {
	builder, err := d.buildQuery(symbol, frequency)
	if err != nil {
		return nil, err
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to query bars for %s", symbol)
	}
	defer rows.Close()

	series := make(types.Series, 0, d.options.Lookback)

	for rows.Next() {
		var (
			timestamp           time.Time
			open, close, volume float64
			high, low           sql.NullFloat64
		)

		if err := rows.Scan(&timestamp, &open, &high, &low, &close, &volume); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan row", err)
		}

		series = append(series, types.Bar{
			Time:   timestamp,
			Open:   open,
			High:   nullOption(high),
			Low:    nullOption(low),
			Close:  close,
			Volume: volume,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating rows", err)
	}

	return series, nil
}

func (d *DuckDBSource) buildQuery(symbol string, frequency types.Frequency) (squirrel.SelectBuilder, error) {
	where := squirrel.And{squirrel.Eq{"symbol": symbol}}
	if d.options.AsOf.IsSome() {
		where = append(where, squirrel.LtOrEq{"time": d.options.AsOf.Unwrap()})
	}

	switch frequency {
	case types.FrequencyDaily:
		return d.sq.
			Select("time", "open", "high", "low", "close", "volume").
			From("market_data").
			Where(where).
			OrderBy("time DESC").
			Limit(uint64(d.options.Lookback)), nil
	case types.FrequencyWeekly:
		// a week with any open session has no high or low
		return d.sq.
			Select(
				"date_trunc('week', time) AS week",
				"arg_min(open, time)",
				"CASE WHEN count(high) = count(*) THEN max(high) END",
				"CASE WHEN count(low) = count(*) THEN min(low) END",
				"arg_max(close, time)",
				"sum(volume)",
			).
			From("market_data").
			Where(where).
			GroupBy("week").
			OrderBy("week DESC").
			Limit(uint64(d.options.Lookback)), nil
	default:
		return squirrel.SelectBuilder{}, errors.Newf(errors.ErrCodeInvalidFrequency, "unknown frequency %q", frequency)
	}
}

func nullOption(value sql.NullFloat64) optional.Option[float64] {
	if !value.Valid {
		return optional.None[float64]()
	}

	return optional.Some(value.Float64)
}
