package submissions

import (
	"context"
	"io"
	"time"
)

// Repository port (interface untuk persistence)
type Repository interface {
	Save(ctx context.Context, s *Submission) error
	Get(ctx context.Context, id SubmissionID) (*Submission, error)

	// SaveReview stores the review fields of s only while the stored status
	// is still from. A lost race returns ErrInvalidTransition.
	SaveReview(ctx context.Context, s *Submission, from Status) error
	// AppendEvidence adds one URL to a submission that is not yet APPROVED
	// or REJECTED, otherwise ErrInvalidTransition.
	AppendEvidence(ctx context.Context, id SubmissionID, url string, at time.Time) error

	// RecentClaims returns claimed amounts of the company's latest submissions, newest first
	RecentClaims(ctx context.Context, companyID string, limit int) ([]float64, error)

	ListByCompany(ctx context.Context, companyID string, page, pageSize int) (PaginatedResult, error)
	// ListByStatus lists every company; empty status means all
	ListByStatus(ctx context.Context, status Status, page, pageSize int) (PaginatedResult, error)
	Summary(ctx context.Context) (Summary, error)
}

// EvidenceStore port (penyimpanan file bukti)
type EvidenceStore interface {
	Upload(ctx context.Context, r io.Reader, size int64, key, contentType string) (string, error)
}
