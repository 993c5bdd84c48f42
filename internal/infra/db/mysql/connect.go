package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	// test ping
	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS carbon_submissions (
  id VARCHAR(64) PRIMARY KEY,
  company_id VARCHAR(128) NOT NULL,
  project_name VARCHAR(255) NOT NULL,
  description TEXT NOT NULL,
  claimed_credits DOUBLE NOT NULL,
  location VARCHAR(255) NOT NULL,
  status VARCHAR(16) NOT NULL,
  risk_score INT NOT NULL DEFAULT 0,
  risk_level VARCHAR(16) NULL,
  analysis_json JSON NOT NULL,
  evidence_json JSON NOT NULL,
  reviewed_by VARCHAR(128) NULL,
  review_notes TEXT NULL,
  reviewed_at DATETIME(6) NULL,
  created_at DATETIME(6) NOT NULL,
  updated_at DATETIME(6) NOT NULL,
  INDEX idx_company_created (company_id, created_at),
  INDEX idx_status_created (status, created_at)
)`,
	`CREATE TABLE IF NOT EXISTS activity_logs (
  id VARCHAR(64) PRIMARY KEY,
  actor VARCHAR(128) NOT NULL,
  action VARCHAR(64) NOT NULL,
  target VARCHAR(64) NOT NULL,
  severity VARCHAR(16) NOT NULL,
  details_json JSON NOT NULL,
  created_at DATETIME(6) NOT NULL,
  INDEX idx_target_created (target, created_at)
)`,
	`CREATE TABLE IF NOT EXISTS submission_briefs (
  id VARCHAR(64) PRIMARY KEY,
  submission_id VARCHAR(64) NOT NULL,
  reviewer VARCHAR(128) NOT NULL,
  model VARCHAR(64) NOT NULL,
  content_json JSON NOT NULL,
  created_at DATETIME(6) NOT NULL,
  INDEX idx_submission_created (submission_id, created_at)
)`,
	`CREATE TABLE IF NOT EXISTS complaints (
  id VARCHAR(64) PRIMARY KEY,
  title VARCHAR(255) NOT NULL,
  description TEXT NOT NULL,
  status VARCHAR(16) NOT NULL,
  submission_id VARCHAR(64) NOT NULL DEFAULT '',
  filed_by VARCHAR(128) NOT NULL DEFAULT '',
  anonymous_name VARCHAR(128) NOT NULL DEFAULT '',
  evidence_json JSON NOT NULL,
  created_at DATETIME(6) NOT NULL,
  updated_at DATETIME(6) NOT NULL,
  INDEX idx_complaint_status_created (status, created_at)
)`,
}

// Migrate creates the tables when missing
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate mysql: %w", err)
		}
	}
	return nil
}
