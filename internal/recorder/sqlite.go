package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-scanner/internal/logger"
	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder stores reports in a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	sq     squirrel.StatementBuilderType
	logger *logger.Logger
	mu     sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the database at path and creates its tables.
func NewSQLiteRecorder(path string, log *logger.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRecorderFailed, "failed to open sqlite", err)
	}

	// every connection to ":memory:" would see its own database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeRecorderFailed, "failed to set WAL mode", err)
	}

	r := &SQLiteRecorder{
		db:     db,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		logger: log.Named("recorder"),
	}

	if err := r.migrate(); err != nil {
		db.Close()

		return nil, err
	}

	r.logger.Info("SQLite recorder opened", zap.String("path", path))

	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cycles (
			id               TEXT PRIMARY KEY,
			frequency        TEXT NOT NULL,
			generated_at     INTEGER NOT NULL,
			missing_data     TEXT NOT NULL,
			missing_analysis TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_generated ON cycles(generated_at)`,
		`CREATE TABLE IF NOT EXISTS hits (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_id      TEXT NOT NULL REFERENCES cycles(id),
			pattern       TEXT NOT NULL,
			pattern_order INTEGER NOT NULL,
			symbol        TEXT NOT NULL,
			symbol_order  INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_hits_symbol ON hits(symbol)`,
		`CREATE INDEX IF NOT EXISTS idx_hits_cycle ON hits(cycle_id)`,
	}

	for _, stmt := range stmts {
		if _, err := r.db.Exec(stmt); err != nil {
			return errors.Wrap(errors.ErrCodeRecorderFailed, "failed to create recorder tables", err)
		}
	}

	return nil
}

// Save implements Recorder.
func (r *SQLiteRecorder) Save(ctx context.Context, report types.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	missingData, err := encodeList(report.MissingData)
	if err != nil {
		return err
	}

	missingAnalysis, err := encodeList(report.MissingAnalysis)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeRecorderFailed, "failed to begin transaction", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = r.sq.Insert("cycles").
		Columns("id", "frequency", "generated_at", "missing_data", "missing_analysis").
		Values(report.CycleID, string(report.Frequency), report.GeneratedAt.UnixNano(), missingData, missingAnalysis).
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeRecorderFailed, err, "failed to insert cycle %s", report.CycleID)
	}

	hasHits := false
	insert := r.sq.Insert("hits").Columns("cycle_id", "pattern", "pattern_order", "symbol", "symbol_order")

	for i, result := range report.Results {
		for j, symbol := range result.Symbols {
			insert = insert.Values(report.CycleID, string(result.Name), i, symbol, j)
			hasHits = true
		}
	}

	if hasHits {
		if _, err = insert.RunWith(tx).ExecContext(ctx); err != nil {
			return errors.Wrapf(errors.ErrCodeRecorderFailed, err, "failed to insert hits of cycle %s", report.CycleID)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeRecorderFailed, "failed to commit report", err)
	}

	r.logger.Debug("Report recorded",
		zap.String("cycle_id", report.CycleID),
		zap.Int("hits", report.HitCount()),
	)

	return nil
}

// Latest implements Recorder.
func (r *SQLiteRecorder) Latest(ctx context.Context) (optional.Option[types.Report], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		report          types.Report
		frequency       string
		generatedAt     int64
		missingData     string
		missingAnalysis string
	)

	err := r.sq.Select("id", "frequency", "generated_at", "missing_data", "missing_analysis").
		From("cycles").
		OrderBy("generated_at DESC").
		Limit(1).
		RunWith(r.db).
		QueryRowContext(ctx).
		Scan(&report.CycleID, &frequency, &generatedAt, &missingData, &missingAnalysis)
	if errors.Is(err, sql.ErrNoRows) {
		return optional.None[types.Report](), nil
	}

	if err != nil {
		return optional.None[types.Report](), errors.Wrap(errors.ErrCodeRecorderFailed, "failed to query latest cycle", err)
	}

	report.Frequency = types.Frequency(frequency)
	report.GeneratedAt = time.Unix(0, generatedAt).UTC()

	if report.MissingData, err = decodeList(missingData); err != nil {
		return optional.None[types.Report](), err
	}

	if report.MissingAnalysis, err = decodeList(missingAnalysis); err != nil {
		return optional.None[types.Report](), err
	}

	if report.Results, err = r.results(ctx, report.CycleID); err != nil {
		return optional.None[types.Report](), err
	}

	return optional.Some(report), nil
}

func (r *SQLiteRecorder) results(ctx context.Context, cycleID string) ([]types.SignalResult, error) {
	rows, err := r.sq.Select("pattern", "symbol").
		From("hits").
		Where(squirrel.Eq{"cycle_id": cycleID}).
		OrderBy("pattern_order ASC", "symbol_order ASC").
		RunWith(r.db).
		QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeRecorderFailed, err, "failed to query hits of cycle %s", cycleID)
	}
	defer rows.Close()

	results := []types.SignalResult{}

	for rows.Next() {
		var pattern, symbol string
		if err := rows.Scan(&pattern, &symbol); err != nil {
			return nil, errors.Wrap(errors.ErrCodeRecorderFailed, "failed to scan hit", err)
		}

		name := types.PatternName(pattern)
		if n := len(results); n == 0 || results[n-1].Name != name {
			results = append(results, types.SignalResult{Name: name})
		}

		last := &results[len(results)-1]
		last.Symbols = append(last.Symbols, symbol)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRecorderFailed, "failed to read hits", err)
	}

	return results, nil
}

// SymbolHistory implements Recorder.
func (r *SQLiteRecorder) SymbolHistory(ctx context.Context, symbol string, limit int) ([]Hit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := r.sq.Select("c.id", "c.frequency", "c.generated_at", "h.pattern").
		From("hits h").
		Join("cycles c ON c.id = h.cycle_id").
		Where(squirrel.Eq{"h.symbol": symbol}).
		OrderBy("c.generated_at DESC", "h.pattern_order ASC")

	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	rows, err := query.RunWith(r.db).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeRecorderFailed, err, "failed to query history of %s", symbol)
	}
	defer rows.Close()

	hits := []Hit{}

	for rows.Next() {
		var (
			hit         Hit
			frequency   string
			pattern     string
			generatedAt int64
		)

		if err := rows.Scan(&hit.CycleID, &frequency, &generatedAt, &pattern); err != nil {
			return nil, errors.Wrap(errors.ErrCodeRecorderFailed, "failed to scan history row", err)
		}

		hit.Frequency = types.Frequency(frequency)
		hit.GeneratedAt = time.Unix(0, generatedAt).UTC()
		hit.Pattern = types.PatternName(pattern)
		hits = append(hits, hit)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRecorderFailed, "failed to read history", err)
	}

	return hits, nil
}

// Close closes the database.
func (r *SQLiteRecorder) Close() error {
	r.logger.Info("Closing SQLite recorder")

	return r.db.Close()
}

func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}

	data, err := json.Marshal(values)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeRecorderFailed, "failed to encode symbol list", err)
	}

	return string(data), nil
}

func decodeList(data string) ([]string, error) {
	values := []string{}
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRecorderFailed, "failed to decode symbol list", err)
	}

	return values, nil
}
