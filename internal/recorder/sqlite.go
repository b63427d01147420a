package recorder

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists analysis history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	slog.Info("sqlite recorder opened", "path", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_snapshots (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			symbol         TEXT NOT NULL,
			provider       TEXT,
			current_price  REAL,
			ma20           REAL,
			ma50           REAL,
			prediction     REAL,
			confidence     REAL,
			trend          TEXT,
			recommendation TEXT,
			error          TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analysis_symbol_ts ON analysis_snapshots(symbol, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordAnalysis(snap *AnalysisSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := snap.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO analysis_snapshots
		(timestamp, symbol, provider, current_price, ma20, ma50,
		 prediction, confidence, trend, recommendation, error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		ts.UnixMilli(), strings.ToUpper(snap.Symbol), snap.Provider,
		snap.CurrentPrice, snap.MA20, snap.MA50,
		snap.Prediction, snap.Confidence, snap.Trend, snap.Recommendation, snap.Error,
	)
	return err
}

// Recent returns up to limit snapshots for symbol, newest first.
func (r *SQLiteRecorder) Recent(symbol string, limit int) ([]AnalysisSnapshot, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(`SELECT timestamp, symbol, provider, current_price, ma20, ma50,
			prediction, confidence, trend, recommendation, error
		FROM analysis_snapshots WHERE symbol = ? ORDER BY timestamp DESC, id DESC LIMIT ?`,
		strings.ToUpper(symbol), limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []AnalysisSnapshot
	for rows.Next() {
		var (
			s  AnalysisSnapshot
			ts int64
		)
		if err := rows.Scan(&ts, &s.Symbol, &s.Provider, &s.CurrentPrice, &s.MA20, &s.MA50,
			&s.Prediction, &s.Confidence, &s.Trend, &s.Recommendation, &s.Error); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		s.Timestamp = time.UnixMilli(ts)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	slog.Info("closing sqlite recorder")
	return r.db.Close()
}
