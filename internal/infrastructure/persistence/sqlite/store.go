// Package sqlite is the embedded prediction store used when no PostgreSQL
// server is available.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // driver: sqlite
)

const schema = `
CREATE TABLE IF NOT EXISTS predictions (
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL,
  timestamp INTEGER NOT NULL,
  input_features TEXT NOT NULL,
  risk_score REAL NOT NULL,
  recommended_loan TEXT NOT NULL,
  approval_decision TEXT NOT NULL,
  tier_code TEXT NOT NULL,
  model_version TEXT NOT NULL,
  actual_loan_approved INTEGER,
  actual_loan_amount TEXT,
  actual_default INTEGER,
  days_to_default INTEGER,
  outcome_notes TEXT,
  outcome_timestamp INTEGER,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_predictions_customer_id ON predictions (customer_id);
CREATE INDEX IF NOT EXISTS idx_predictions_timestamp ON predictions (timestamp);
CREATE INDEX IF NOT EXISTS idx_predictions_approval_decision ON predictions (approval_decision);

CREATE TABLE IF NOT EXISTS drift_metrics (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  timestamp INTEGER NOT NULL,
  metric_name TEXT NOT NULL,
  metric_value REAL NOT NULL,
  chunk_start INTEGER,
  chunk_end INTEGER,
  details TEXT,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS model_metrics (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  timestamp INTEGER NOT NULL,
  metric_name TEXT NOT NULL,
  metric_value REAL NOT NULL,
  period_start INTEGER,
  period_end INTEGER,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_model_metrics_metric_name ON model_metrics (metric_name);
`

// Open opens the database at path and ensures the schema exists. An empty
// path opens a private in-memory database.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	dsn := "file:" + path + "?mode=rwc&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	if path == "" {
		dsn = "file::memory:?_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// SQLite serializes writers; one connection also keeps an in-memory
	// database alive for the lifetime of the pool.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ensure schema: %w", err)
	}
	return db, nil
}
