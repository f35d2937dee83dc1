// Package sqlite persists the signal-event log and the latest backtest
// stats. The event log is append-only and keyed on (symbol, date, type),
// so re-running detection over the same history is an idempotent no-op.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"stock-screenerv1/internal/model"
)

// Store is a single-writer SQLite store in WAL mode.
type Store struct {
	db *sql.DB
}

// DB returns the underlying sql.DB for health checks.
func (s *Store) DB() *sql.DB { return s.db }

// Open opens (creating if needed) the store at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	// Single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	log.Printf("[sqlite] opened database at %s", path)
	return &Store{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS signal_events (
			symbol      TEXT NOT NULL,
			date        TEXT NOT NULL,
			type        TEXT NOT NULL,
			close       REAL NOT NULL,
			ma200       REAL,
			fast_ma     REAL,
			slow_ma     REAL,
			trough_idx  INTEGER,
			created_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
			PRIMARY KEY (symbol, date, type)
		);

		CREATE TABLE IF NOT EXISTS backtest_stats (
			type        TEXT    NOT NULL,
			horizon     INTEGER NOT NULL,
			samples     INTEGER NOT NULL,
			win_rate    REAL    NOT NULL,
			mean_return REAL    NOT NULL,
			updated_at  INTEGER NOT NULL,
			PRIMARY KEY (type, horizon)
		);

		CREATE INDEX IF NOT EXISTS idx_signal_events_symbol ON signal_events (symbol);
	`)
	return err
}

// AppendEvents inserts events in one transaction. Duplicate
// (symbol, date, type) rows are ignored, keeping re-runs idempotent.
// Returns the number of newly inserted rows.
func (s *Store) AppendEvents(ctx context.Context, events []model.SignalEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO signal_events (symbol, date, type, close, ma200, fast_ma, slow_ma, trough_idx)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, e := range events {
		res, err := stmt.Exec(e.Symbol, e.Date, string(e.Type), e.Close, e.MA200, e.FastMA, e.SlowMA, e.TroughIndex)
		if err != nil {
			tx.Rollback()
			return 0, err
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// EventsBySymbol returns the full event history for one symbol, date order.
func (s *Store) EventsBySymbol(ctx context.Context, symbol string) ([]model.SignalEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, date, type, close, ma200, fast_ma, slow_ma, trough_idx
		FROM signal_events WHERE symbol = ? ORDER BY date
	`, symbol)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// Events returns the entire event log, ordered by symbol then date.
func (s *Store) Events(ctx context.Context) ([]model.SignalEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, date, type, close, ma200, fast_ma, slow_ma, trough_idx
		FROM signal_events ORDER BY symbol, date
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// EventSymbols returns the distinct symbols present in the event log.
func (s *Store) EventSymbols(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT symbol FROM signal_events ORDER BY symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, err
		}
		out = append(out, sym)
	}
	return out, rows.Err()
}

func scanEvents(rows *sql.Rows) ([]model.SignalEvent, error) {
	var out []model.SignalEvent
	for rows.Next() {
		var e model.SignalEvent
		var typ string
		var ma200, fastMA, slowMA sql.NullFloat64
		var troughIdx sql.NullInt64
		if err := rows.Scan(&e.Symbol, &e.Date, &typ, &e.Close, &ma200, &fastMA, &slowMA, &troughIdx); err != nil {
			return nil, err
		}
		e.Type = model.SignalType(typ)
		e.MA200 = ma200.Float64
		e.FastMA = fastMA.Float64
		e.SlowMA = slowMA.Float64
		e.TroughIndex = int(troughIdx.Int64)
		out = append(out, e)
	}
	return out, rows.Err()
}

// SaveStats replaces the persisted stats wholesale: one row per
// (type, horizon), stamped with the write time.
func (s *Store) SaveStats(ctx context.Context, stats []model.BacktestStat) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO backtest_stats (type, horizon, samples, win_rate, mean_return, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, st := range stats {
		if _, err := stmt.Exec(string(st.Type), st.Horizon, st.Samples, st.WinRate, st.MeanReturn, now); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Stats loads the persisted stats for a horizon.
func (s *Store) Stats(ctx context.Context, horizon int) ([]model.BacktestStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT type, horizon, samples, win_rate, mean_return
		FROM backtest_stats WHERE horizon = ? ORDER BY type
	`, horizon)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BacktestStat
	for rows.Next() {
		var st model.BacktestStat
		var typ string
		if err := rows.Scan(&typ, &st.Horizon, &st.Samples, &st.WinRate, &st.MeanReturn); err != nil {
			return nil, err
		}
		st.Type = model.SignalType(typ)
		out = append(out, st)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
