// Package memory keeps submissions, complaints, activity and briefs in process memory.
// Used by the "memory" database driver and by HTTP tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bryanwahyu/carbon-audit/internal/domain/activity"
	"github.com/bryanwahyu/carbon-audit/internal/domain/briefs"
	"github.com/bryanwahyu/carbon-audit/internal/domain/submissions"
	"github.com/bryanwahyu/carbon-audit/internal/infra/db"
)

type SubmissionStore struct {
	mu    sync.RWMutex
	items map[submissions.SubmissionID]*submissions.Submission
}

func NewSubmissionStore() *SubmissionStore {
	return &SubmissionStore{items: make(map[submissions.SubmissionID]*submissions.Submission)}
}

func (s *SubmissionStore) Save(_ context.Context, sub *submissions.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[sub.ID] = clone(sub)
	return nil
}

func (s *SubmissionStore) Get(_ context.Context, id submissions.SubmissionID) (*submissions.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", submissions.ErrNotFound, id)
	}
	return clone(sub), nil
}

func (s *SubmissionStore) SaveReview(_ context.Context, sub *submissions.Submission, from submissions.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.items[sub.ID]
	if !ok {
		return fmt.Errorf("%w: %s", submissions.ErrNotFound, sub.ID)
	}
	if cur.Status != from {
		return fmt.Errorf("%w: %s is no longer %s", submissions.ErrInvalidTransition, sub.ID, from)
	}
	next := clone(cur)
	next.Status = sub.Status
	next.ReviewedBy = sub.ReviewedBy
	next.ReviewNotes = sub.ReviewNotes
	next.ReviewedAt = clone(sub).ReviewedAt
	next.UpdatedAt = sub.UpdatedAt
	s.items[sub.ID] = next
	return nil
}

func (s *SubmissionStore) AppendEvidence(_ context.Context, id submissions.SubmissionID, url string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.items[id]
	if !ok {
		return fmt.Errorf("%w: %s", submissions.ErrNotFound, id)
	}
	if cur.Status.Final() {
		return fmt.Errorf("%w: %s is %s", submissions.ErrInvalidTransition, id, cur.Status)
	}
	next := clone(cur)
	next.EvidenceFiles = append(next.EvidenceFiles, url)
	next.UpdatedAt = at
	s.items[id] = next
	return nil
}

func (s *SubmissionStore) RecentClaims(_ context.Context, companyID string, limit int) ([]float64, error) {
	list := s.filter(func(sub *submissions.Submission) bool { return sub.CompanyID == companyID })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	out := make([]float64, 0, len(list))
	for _, sub := range list {
		out = append(out, sub.ClaimedCredits)
	}
	return out, nil
}

func (s *SubmissionStore) ListByCompany(_ context.Context, companyID string, page, pageSize int) (submissions.PaginatedResult, error) {
	return paginate(s.filter(func(sub *submissions.Submission) bool { return sub.CompanyID == companyID }), page, pageSize), nil
}

func (s *SubmissionStore) ListByStatus(_ context.Context, status submissions.Status, page, pageSize int) (submissions.PaginatedResult, error) {
	return paginate(s.filter(func(sub *submissions.Submission) bool { return status == "" || sub.Status == status }), page, pageSize), nil
}

func (s *SubmissionStore) Summary(_ context.Context) (submissions.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc := db.NewSummaryAccumulator()
	for _, sub := range s.items {
		acc.Add(string(sub.Status), string(sub.RiskLevel), 1)
	}
	return acc.Result(), nil
}

// filter returns clones, newest first
func (s *SubmissionStore) filter(keep func(*submissions.Submission) bool) []*submissions.Submission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*submissions.Submission
	for _, sub := range s.items {
		if keep(sub) {
			out = append(out, clone(sub))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func paginate(list []*submissions.Submission, page, pageSize int) submissions.PaginatedResult {
	page, pageSize = submissions.NormalizePage(page, pageSize)
	total := int64(len(list))
	start := db.Offset(page, pageSize)
	if start > len(list) {
		start = len(list)
	}
	end := start + pageSize
	if end > len(list) {
		end = len(list)
	}
	return submissions.NewPage(list[start:end], page, pageSize, total)
}

func clone(s *submissions.Submission) *submissions.Submission {
	c := *s
	c.EvidenceFiles = append([]string{}, s.EvidenceFiles...)
	if s.Analysis != nil {
		a := *s.Analysis
		a.ESGAnalysis.FlaggedKeywords = append([]string{}, s.Analysis.ESGAnalysis.FlaggedKeywords...)
		c.Analysis = &a
	}
	if s.ReviewedAt != nil {
		t := *s.ReviewedAt
		c.ReviewedAt = &t
	}
	return &c
}

type ActivityStore struct {
	mu      sync.RWMutex
	entries []activity.Entry
}

func NewActivityStore() *ActivityStore { return &ActivityStore{} }

func (s *ActivityStore) Save(_ context.Context, e *activity.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *e)
	return nil
}

// ListByTarget terbaru dulu
func (s *ActivityStore) ListByTarget(_ context.Context, target string, limit int) ([]*activity.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*activity.Entry{}
	for i := len(s.entries) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if s.entries[i].Target == target {
			e := s.entries[i]
			out = append(out, &e)
		}
	}
	return out, nil
}

type BriefStore struct {
	mu     sync.RWMutex
	briefs []briefs.Brief
}

func NewBriefStore() *BriefStore { return &BriefStore{} }

func (s *BriefStore) Save(_ context.Context, b *briefs.Brief) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.briefs = append(s.briefs, *b)
	return nil
}

func (s *BriefStore) Paginate(_ context.Context, submissionID string, page, pageSize int) ([]*briefs.Brief, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []*briefs.Brief
	for i := len(s.briefs) - 1; i >= 0; i-- {
		if s.briefs[i].SubmissionID == submissionID {
			b := s.briefs[i]
			all = append(all, &b)
		}
	}
	page, pageSize = submissions.NormalizePage(page, pageSize)
	start := db.Offset(page, pageSize)
	if start >= len(all) {
		return []*briefs.Brief{}, nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

// LatestBySubmission returns nil, nil when none exists
func (s *BriefStore) LatestBySubmission(_ context.Context, submissionID string) (*briefs.Brief, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.briefs) - 1; i >= 0; i-- {
		if s.briefs[i].SubmissionID == submissionID {
			b := s.briefs[i]
			return &b, nil
		}
	}
	return nil, nil
}
