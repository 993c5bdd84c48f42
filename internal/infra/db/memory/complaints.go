package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bryanwahyu/carbon-audit/internal/domain/complaints"
	"github.com/bryanwahyu/carbon-audit/internal/infra/db"
)

type ComplaintStore struct {
	mu    sync.RWMutex
	items map[string]*complaints.Complaint
}

func NewComplaintStore() *ComplaintStore {
	return &ComplaintStore{items: make(map[string]*complaints.Complaint)}
}

func (s *ComplaintStore) Create(_ context.Context, c *complaints.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[c.ID]; ok {
		return fmt.Errorf("complaint %s already exists", c.ID)
	}
	s.items[c.ID] = cloneComplaint(c)
	return nil
}

func (s *ComplaintStore) Get(_ context.Context, id string) (*complaints.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", complaints.ErrNotFound, id)
	}
	return cloneComplaint(c), nil
}

// List terbaru dulu
func (s *ComplaintStore) List(_ context.Context, status complaints.Status, page, pageSize int) (complaints.Page, error) {
	s.mu.RLock()
	var list []*complaints.Complaint
	for _, c := range s.items {
		if status == "" || c.Status == status {
			list = append(list, cloneComplaint(c))
		}
	}
	s.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	total := int64(len(list))
	start := min(db.Offset(page, pageSize), len(list))
	end := min(start+pageSize, len(list))
	return complaints.NewPage(list[start:end], page, pageSize, total), nil
}

func (s *ComplaintStore) UpdateStatus(_ context.Context, id string, from, to complaints.Status, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[id]
	if !ok {
		return fmt.Errorf("%w: %s", complaints.ErrNotFound, id)
	}
	if c.Status != from {
		return fmt.Errorf("%w: %s is no longer %s", complaints.ErrInvalidTransition, id, from)
	}
	next := cloneComplaint(c)
	next.Status = to
	next.UpdatedAt = at
	s.items[id] = next
	return nil
}

func cloneComplaint(c *complaints.Complaint) *complaints.Complaint {
	out := *c
	out.Evidence = append([]string{}, c.Evidence...)
	return &out
}
