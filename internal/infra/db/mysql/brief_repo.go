package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/bryanwahyu/carbon-audit/internal/infra/db"
	domain "github.com/bryanwahyu/carbon-audit/internal/domain/briefs"
)

type BriefRepository struct {
	db *sql.DB
}

func NewBriefRepository(db *sql.DB) *BriefRepository {
	return &BriefRepository{db: db}
}

// Save inserts a brief record
func (r *BriefRepository) Save(ctx context.Context, b *domain.Brief) error {
	const q = `
INSERT INTO submission_briefs
  (id, submission_id, reviewer, model, content_json, created_at)
VALUES (?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  reviewer=VALUES(reviewer), model=VALUES(model), content_json=VALUES(content_json);
`
	createdAt := b.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, q,
		b.ID, b.SubmissionID, db.StringOrDash(b.Reviewer), db.StringOrDash(b.Model),
		db.JSONOrEmpty(b.Content), createdAt,
	)
	return err
}

// Paginate returns a page of briefs ordered by created_at desc
func (r *BriefRepository) Paginate(ctx context.Context, submissionID string, page, pageSize int) ([]*domain.Brief, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	const q = `
SELECT id, submission_id, reviewer, model, content_json, created_at
FROM submission_briefs
WHERE submission_id=?
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?;
`
	rows, err := r.db.QueryContext(ctx, q, submissionID, pageSize, db.Offset(page, pageSize))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Brief
	for rows.Next() {
		var b domain.Brief
		if err := rows.Scan(&b.ID, &b.SubmissionID, &b.Reviewer, &b.Model, &b.Content, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

func (r *BriefRepository) LatestBySubmission(ctx context.Context, submissionID string) (*domain.Brief, error) {
	const q = `
SELECT id, submission_id, reviewer, model, content_json, created_at
FROM submission_briefs
WHERE submission_id=?
ORDER BY created_at DESC, id DESC
LIMIT 1;
`
	var b domain.Brief
	err := r.db.QueryRowContext(ctx, q, submissionID).Scan(&b.ID, &b.SubmissionID, &b.Reviewer, &b.Model, &b.Content, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}
