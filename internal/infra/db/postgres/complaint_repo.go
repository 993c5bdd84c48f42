package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bryanwahyu/carbon-audit/internal/infra/db"
	domain "github.com/bryanwahyu/carbon-audit/internal/domain/complaints"
)

type ComplaintRepository struct {
	db *sql.DB
}

func NewComplaintRepository(db *sql.DB) *ComplaintRepository { return &ComplaintRepository{db: db} }

func (r *ComplaintRepository) Create(ctx context.Context, c *domain.Complaint) error {
	q := `INSERT INTO complaints (` + db.ComplaintColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10);`
	args, err := db.ComplaintArgs(c)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("saving complaint %s: %w", c.ID, err)
	}
	return nil
}

func (r *ComplaintRepository) Get(ctx context.Context, id string) (*domain.Complaint, error) {
	q := `SELECT ` + db.ComplaintColumns + `
FROM complaints
WHERE id=$1
LIMIT 1;`
	c, err := db.ScanComplaint(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return c, err
}

// List newest first; empty status means all
func (r *ComplaintRepository) List(ctx context.Context, status domain.Status, page, pageSize int) (domain.Page, error) {
	filter, args := "", []any{}
	if status != "" {
		filter, args = "\nWHERE status=$1", []any{status}
	}
	n := len(args)
	q := `SELECT ` + db.ComplaintColumns + `
FROM complaints` + filter + fmt.Sprintf(`
ORDER BY created_at DESC, id DESC
LIMIT $%d OFFSET $%d;`, n+1, n+2)

	rows, err := r.db.QueryContext(ctx, q, append(append([]any{}, args...), pageSize, db.Offset(page, pageSize))...)
	if err != nil {
		return domain.Page{}, fmt.Errorf("querying complaints: %w", err)
	}
	defer rows.Close()

	var list []*domain.Complaint
	for rows.Next() {
		c, err := db.ScanComplaint(rows)
		if err != nil {
			return domain.Page{}, fmt.Errorf("scanning complaint: %w", err)
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return domain.Page{}, err
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM complaints"+filter, args...).Scan(&total); err != nil {
		return domain.Page{}, fmt.Errorf("counting complaints: %w", err)
	}
	return domain.NewPage(list, page, pageSize, total), nil
}

func (r *ComplaintRepository) UpdateStatus(ctx context.Context, id string, from, to domain.Status, at time.Time) error {
	const q = `
UPDATE complaints SET status=$1, updated_at=$2
WHERE id=$3 AND status=$4;`
	res, err := r.db.ExecContext(ctx, q, to, at, id, from)
	if err != nil {
		return fmt.Errorf("updating complaint %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s is no longer %s", domain.ErrInvalidTransition, id, from)
	}
	return nil
}
