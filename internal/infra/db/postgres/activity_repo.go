package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/bryanwahyu/carbon-audit/internal/infra/db"
	domain "github.com/bryanwahyu/carbon-audit/internal/domain/activity"
)

type ActivityRepository struct{ db *sql.DB }

func NewActivityRepository(db *sql.DB) *ActivityRepository { return &ActivityRepository{db: db} }

func (r *ActivityRepository) Save(ctx context.Context, e *domain.Entry) error {
	const q = `
INSERT INTO activity_logs
  (id, actor, action, target, severity, details_json, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7);`
	severity := e.Severity
	if severity == "" {
		severity = domain.SeverityInfo
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, q,
		e.ID, db.StringOrDash(e.Actor), db.StringOrDash(e.Action), e.Target, severity,
		db.JSONOrEmpty(e.DetailsJSON), created,
	)
	return err
}

func (r *ActivityRepository) ListByTarget(ctx context.Context, target string, limit int) ([]*domain.Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, actor, action, target, severity, details_json, created_at
FROM activity_logs
WHERE target = $1
ORDER BY created_at DESC, id DESC
LIMIT $2;`
	rows, err := r.db.QueryContext(ctx, q, target, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Entry{}
	for rows.Next() {
		var e domain.Entry
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.Target, &e.Severity, &e.DetailsJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
