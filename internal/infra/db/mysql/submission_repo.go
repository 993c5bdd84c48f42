package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bryanwahyu/carbon-audit/internal/infra/db"
	domain "github.com/bryanwahyu/carbon-audit/internal/domain/submissions"
)

type SubmissionRepository struct {
	db *sql.DB
}

func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Save insert/update Submission record
func (r *SubmissionRepository) Save(ctx context.Context, s *domain.Submission) error {
	const q = `
INSERT INTO carbon_submissions
(id, company_id, project_name, description, claimed_credits, location, status,
 risk_score, risk_level, analysis_json, evidence_json,
 reviewed_by, review_notes, reviewed_at, created_at, updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 status=VALUES(status),
 risk_score=VALUES(risk_score), risk_level=VALUES(risk_level), analysis_json=VALUES(analysis_json),
 evidence_json=VALUES(evidence_json),
 reviewed_by=VALUES(reviewed_by), review_notes=VALUES(review_notes), reviewed_at=VALUES(reviewed_at),
 updated_at=VALUES(updated_at);
`
	row, err := db.EncodeSubmission(s)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q,
		row.ID, row.CompanyID, row.ProjectName, row.Description, row.ClaimedCredits, row.Location, row.Status,
		row.RiskScore, row.RiskLevel, row.AnalysisJSON, row.EvidenceJSON,
		row.ReviewedBy, row.ReviewNotes, row.ReviewedAt, row.CreatedAt, row.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving submission %s: %w", s.ID, err)
	}
	return nil
}

// Get by ID
func (r *SubmissionRepository) Get(ctx context.Context, id domain.SubmissionID) (*domain.Submission, error) {
	q := `SELECT ` + db.SubmissionColumns + `
FROM carbon_submissions
WHERE id=? LIMIT 1;`
	s, err := db.ScanSubmission(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// SaveReview compare-and-set on status
func (r *SubmissionRepository) SaveReview(ctx context.Context, s *domain.Submission, from domain.Status) error {
	const q = `
UPDATE carbon_submissions
SET status=?, reviewed_by=?, review_notes=?, reviewed_at=?, updated_at=?
WHERE id=? AND status=?;
`
	res, err := r.db.ExecContext(ctx, q, s.Status, s.ReviewedBy, s.ReviewNotes, s.ReviewedAt, s.UpdatedAt, s.ID, from)
	if err != nil {
		return fmt.Errorf("saving review %s: %w", s.ID, err)
	}
	return expectOne(res, s.ID, from)
}

// AppendEvidence appends in place so concurrent uploads are kept
func (r *SubmissionRepository) AppendEvidence(ctx context.Context, id domain.SubmissionID, url string, at time.Time) error {
	const q = `
UPDATE carbon_submissions
SET evidence_json=JSON_ARRAY_APPEND(evidence_json, '$', ?), updated_at=?
WHERE id=? AND status IN (?, ?);
`
	res, err := r.db.ExecContext(ctx, q, url, at, id, domain.StatusPending, domain.StatusFlagged)
	if err != nil {
		return fmt.Errorf("appending evidence %s: %w", id, err)
	}
	return expectOne(res, id, "")
}

func expectOne(res sql.Result, id domain.SubmissionID, from domain.Status) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if from != "" {
			return fmt.Errorf("%w: %s is no longer %s", domain.ErrInvalidTransition, id, from)
		}
		return fmt.Errorf("%w: %s", domain.ErrInvalidTransition, id)
	}
	return nil
}

// RecentClaims newest first
func (r *SubmissionRepository) RecentClaims(ctx context.Context, companyID string, limit int) ([]float64, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `
SELECT claimed_credits
FROM carbon_submissions
WHERE company_id=?
ORDER BY created_at DESC, id DESC
LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, companyID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying claims: %w", err)
	}
	defer rows.Close()

	out := make([]float64, 0, limit)
	for rows.Next() {
		var c float64
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SubmissionRepository) ListByCompany(ctx context.Context, companyID string, page, pageSize int) (domain.PaginatedResult, error) {
	return r.paginate(ctx, "company_id=?", []any{companyID}, page, pageSize)
}

// ListByStatus empty status = semua
func (r *SubmissionRepository) ListByStatus(ctx context.Context, status domain.Status, page, pageSize int) (domain.PaginatedResult, error) {
	if status == "" {
		return r.paginate(ctx, "", nil, page, pageSize)
	}
	return r.paginate(ctx, "status=?", []any{status}, page, pageSize)
}

// Paginate with offset + limit (classic pagination)
func (r *SubmissionRepository) paginate(ctx context.Context, where string, args []any, page, pageSize int) (domain.PaginatedResult, error) {
	page, pageSize = domain.NormalizePage(page, pageSize)

	filter := ""
	if where != "" {
		filter = "\nWHERE " + where
	}
	query := `SELECT ` + db.SubmissionColumns + `
FROM carbon_submissions` + filter + `
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?;`

	rows, err := r.db.QueryContext(ctx, query, append(append([]any{}, args...), pageSize, db.Offset(page, pageSize))...)
	if err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("querying submissions: %w", err)
	}
	defer rows.Close()

	var list []*domain.Submission
	for rows.Next() {
		s, err := db.ScanSubmission(rows)
		if err != nil {
			return domain.PaginatedResult{}, fmt.Errorf("scanning row: %w", err)
		}
		list = append(list, s)
	}
	if err = rows.Err(); err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("iterating rows: %w", err)
	}

	// Get total count for pagination
	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM carbon_submissions"+filter, args...).Scan(&total); err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("getting total count: %w", err)
	}
	return domain.NewPage(list, page, pageSize, total), nil
}

// Summary rekap per status dan risk level
func (r *SubmissionRepository) Summary(ctx context.Context) (domain.Summary, error) {
	const q = `
SELECT status, COALESCE(risk_level, ''), COUNT(*)
FROM carbon_submissions
GROUP BY status, risk_level;
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("querying summary: %w", err)
	}
	defer rows.Close()

	acc := db.NewSummaryAccumulator()
	for rows.Next() {
		var status, level string
		var n int
		if err := rows.Scan(&status, &level, &n); err != nil {
			return domain.Summary{}, err
		}
		acc.Add(status, level, n)
	}
	return acc.Result(), rows.Err()
}
