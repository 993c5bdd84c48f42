package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS carbon_submissions (
  id TEXT PRIMARY KEY,
  company_id TEXT NOT NULL,
  project_name TEXT NOT NULL,
  description TEXT NOT NULL,
  claimed_credits DOUBLE PRECISION NOT NULL,
  location TEXT NOT NULL,
  status TEXT NOT NULL,
  risk_score INTEGER NOT NULL DEFAULT 0,
  risk_level TEXT NULL,
  analysis_json JSONB NOT NULL,
  evidence_json JSONB NOT NULL,
  reviewed_by TEXT NULL,
  review_notes TEXT NULL,
  reviewed_at TIMESTAMPTZ NULL,
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_company_created ON carbon_submissions (company_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_status_created ON carbon_submissions (status, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS activity_logs (
  id TEXT PRIMARY KEY,
  actor TEXT NOT NULL,
  action TEXT NOT NULL,
  target TEXT NOT NULL,
  severity TEXT NOT NULL,
  details_json JSONB NOT NULL,
  created_at TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_activity_target_created ON activity_logs (target, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS submission_briefs (
  id TEXT PRIMARY KEY,
  submission_id TEXT NOT NULL,
  reviewer TEXT NOT NULL,
  model TEXT NOT NULL,
  content_json JSONB NOT NULL,
  created_at TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_briefs_submission_created ON submission_briefs (submission_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS complaints (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT NOT NULL,
  status TEXT NOT NULL,
  submission_id TEXT NOT NULL DEFAULT '',
  filed_by TEXT NOT NULL DEFAULT '',
  anonymous_name TEXT NOT NULL DEFAULT '',
  evidence_json JSONB NOT NULL,
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_complaints_status_created ON complaints (status, created_at DESC)`,
}

// Migrate creates tables and indexes when missing
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate postgres: %w", err)
		}
	}
	return nil
}
