package complaints

import (
	"context"
	"time"
)

// Repository port
type Repository interface {
	Create(ctx context.Context, c *Complaint) error
	Get(ctx context.Context, id string) (*Complaint, error)
	// List newest first; empty status means all
	List(ctx context.Context, status Status, page, pageSize int) (Page, error)
	// UpdateStatus succeeds only while the stored status is still from,
	// otherwise ErrInvalidTransition.
	UpdateStatus(ctx context.Context, id string, from, to Status, at time.Time) error
}
