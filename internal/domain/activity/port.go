package activity

import "context"

// Repository defines persistence for activity entries
type Repository interface {
	Save(ctx context.Context, e *Entry) error
	ListByTarget(ctx context.Context, target string, limit int) ([]*Entry, error)
}
