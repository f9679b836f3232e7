package cache

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/mkarlsen/pulse/internal/core"
)

// PriceStore is the persistent price tier: one row per (symbol, date)
// holding the adjusted close. Rows never expire; staleness is decided
// by range-completeness checks, not by time.
type PriceStore struct {
	db *sql.DB
}

// NewPriceStore opens (or creates) the price database at dbPath and
// ensures the schema exists. Use ":memory:" for an in-memory store in
// tests.
func NewPriceStore(dbPath string) (*PriceStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening price db: %w", err)
	}
	// SQLite serializes writers anyway, and a single pooled connection
	// keeps ":memory:" databases from splitting per connection.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS prices (
			symbol    TEXT NOT NULL,
			date      TEXT NOT NULL,
			adj_close REAL NOT NULL,
			PRIMARY KEY (symbol, date)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating prices table: %w", err)
	}

	return &PriceStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *PriceStore) Close() error {
	return s.db.Close()
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Read returns all rows for symbol with dates in [start, end] inclusive,
// ordered by date ascending.
func (s *PriceStore) Read(ctx context.Context, symbol string, start, end time.Time) (core.Series, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, adj_close FROM prices
		WHERE symbol = ? AND date BETWEEN ? AND ?
		ORDER BY date
	`, normalizeSymbol(symbol), core.DateKey(start), core.DateKey(end))
	if err != nil {
		return nil, fmt.Errorf("querying prices: %w", err)
	}
	defer rows.Close()

	var out core.Series
	for rows.Next() {
		var dateStr string
		var value float64
		if err := rows.Scan(&dateStr, &value); err != nil {
			return nil, fmt.Errorf("scanning price row: %w", err)
		}
		d, err := core.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("bad date in store: %w", err)
		}
		out = append(out, core.PricePoint{Date: d, Value: value})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating price rows: %w", err)
	}
	return out, nil
}

// Write upserts the given rows for symbol in a single transaction.
// Writing identical rows repeatedly is idempotent: one row per
// (symbol, date) key.
func (s *PriceStore) Write(ctx context.Context, symbol string, rows core.Series) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning write tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO prices (symbol, date, adj_close) VALUES (?, ?, ?)
		ON CONFLICT(symbol, date) DO UPDATE SET adj_close = excluded.adj_close
	`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	sym := normalizeSymbol(symbol)
	for _, p := range rows {
		if _, err := stmt.ExecContext(ctx, sym, core.DateKey(p.Date), p.Value); err != nil {
			return fmt.Errorf("upserting %s %s: %w", sym, core.DateKey(p.Date), err)
		}
	}
	return tx.Commit()
}

// Covers reports whether stored data fully spans [start, end]: earliest
// stored date <= start AND latest stored date >= end. Partially covered
// windows count as misses so callers never serve silently incomplete
// ranges.
func (s *PriceStore) Covers(ctx context.Context, symbol string, start, end time.Time) (bool, error) {
	var minDate, maxDate sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT MIN(date), MAX(date) FROM prices WHERE symbol = ?
	`, normalizeSymbol(symbol)).Scan(&minDate, &maxDate)
	if err != nil {
		return false, fmt.Errorf("querying coverage: %w", err)
	}
	if !minDate.Valid || !maxDate.Valid {
		return false, nil
	}
	return minDate.String <= core.DateKey(start) && maxDate.String >= core.DateKey(end), nil
}
