package writer

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
)

// DuckDBWriter buffers bars in an in-memory DuckDB table and exports them to a
// parquet file on Finalize. The file has the columns read by the scanner's
// DuckDB source: id, time, symbol, open, high, low, close, volume.
type DuckDBWriter struct {
	db         *sql.DB
	tx         *sql.Tx
	stmt       *sql.Stmt
	outputPath string
	written    int
}

// NewDuckDBWriter creates a writer exporting to outputPath.
func NewDuckDBWriter(outputPath string) BarWriter {
	return &DuckDBWriter{
		outputPath: outputPath,
	}
}

// Initialize opens the database, creates the table and prepares the insert statement.
// Calling it on an initialized writer is a no-op.
func (w *DuckDBWriter) Initialize() (err error) {
	if w.stmt != nil {
		return nil
	}

	w.db, err = sql.Open("duckdb", "")
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to open DuckDB connection", err)
	}

	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS market_data (
			id TEXT,
			time TIMESTAMP,
			symbol TEXT,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume DOUBLE
		)
	`)
	if err != nil {
		w.db.Close()
		w.db = nil

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to create table", err)
	}

	w.tx, err = w.db.Begin()
	if err != nil {
		w.db.Close()
		w.db = nil

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to begin transaction", err)
	}

	w.stmt, err = w.tx.Prepare(`
		INSERT INTO market_data (id, time, symbol, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		w.tx.Rollback()
		w.db.Close()
		w.tx, w.db = nil, nil

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to prepare statement", err)
	}

	return nil
}

// Write inserts one bar. Absent highs and lows are stored as NULL.
func (w *DuckDBWriter) Write(symbol string, bar types.Bar) error {
	if w.stmt == nil {
		return errors.New(errors.ErrCodeMarketDataWriteFailed, "writer not initialized")
	}

	var high, low any
	if bar.High.IsSome() {
		high = bar.High.Unwrap()
	}

	if bar.Low.IsSome() {
		low = bar.Low.Unwrap()
	}

	_, err := w.stmt.Exec(uuid.NewString(), bar.Time, symbol, bar.Open, high, low, bar.Close, bar.Volume)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to insert bar for %s", symbol)
	}

	w.written++

	return nil
}

// Written returns the number of bars written so far.
func (w *DuckDBWriter) Written() int {
	return w.written
}

// Finalize commits the transaction and exports the table to the parquet file.
func (w *DuckDBWriter) Finalize() (outputPath string, err error) {
	if w.tx == nil {
		return "", errors.New(errors.ErrCodeMarketDataWriteFailed, "writer not initialized or already finalized")
	}

	if err = w.stmt.Close(); err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to close statement", err)
	}

	w.stmt = nil

	if err = w.tx.Commit(); err != nil {
		w.tx.Rollback()
		w.tx = nil

		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to commit transaction", err)
	}

	w.tx = nil

	path := strings.ReplaceAll(w.outputPath, "'", "''")
	if _, err = w.db.Exec(fmt.Sprintf(`COPY (SELECT * FROM market_data ORDER BY symbol, time) TO '%s' (FORMAT PARQUET)`, path)); err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to export to parquet", err)
	}

	return w.outputPath, nil
}

// Close releases the statement, the transaction and the database.
func (w *DuckDBWriter) Close() error {
	var closeErrors []string

	if w.stmt != nil {
		if err := w.stmt.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Sprintf("failed to close statement: %v", err))
		}

		w.stmt = nil
	}

	if w.tx != nil {
		// a transaction still open here was never finalized
		_ = w.tx.Rollback()
		w.tx = nil
	}

	if w.db != nil {
		if err := w.db.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Sprintf("failed to close db connection: %v", err))
		}

		w.db = nil
	}

	if len(closeErrors) > 0 {
		return errors.New(errors.ErrCodeMarketDataWriteFailed, "errors occurred during close: "+strings.Join(closeErrors, "; "))
	}

	return nil
}

// OutputPath returns the parquet file path.
func (w *DuckDBWriter) OutputPath() string {
	return w.outputPath
}
