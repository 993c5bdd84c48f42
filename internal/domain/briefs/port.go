package briefs

import "context"

// Repository port for persisting and querying briefs
type Repository interface {
	Save(ctx context.Context, b *Brief) error
	Paginate(ctx context.Context, submissionID string, page, pageSize int) ([]*Brief, error)
	// LatestBySubmission returns nil, nil when none exists
	LatestBySubmission(ctx context.Context, submissionID string) (*Brief, error)
}
