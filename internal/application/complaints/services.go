package complaints

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/carbon-audit/internal/application"
	"github.com/bryanwahyu/carbon-audit/internal/domain/activity"
	domain "github.com/bryanwahyu/carbon-audit/internal/domain/complaints"
	"github.com/bryanwahyu/carbon-audit/internal/domain/submissions"
)

// Service handles public complaints and their follow-up by reviewers
type Service struct {
	repo        domain.Repository
	submissions submissions.Repository
	activities  activity.Repository
	clock       application.Clock
	log         *zap.Logger
}

// NewService. subs and act may be nil; without subs a submission_id is
// stored unchecked.
func NewService(repo domain.Repository, subs submissions.Repository, act activity.Repository, clock application.Clock, log *zap.Logger) *Service {
	if clock == nil {
		clock = application.SystemClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, submissions: subs, activities: act, clock: clock, log: log}
}

// FileCommand laporan baru dari publik
type FileCommand struct {
	Title         string
	Description   string
	SubmissionID  string
	FiledBy       string
	AnonymousName string
	Evidence      []string
}

// File stores a new PENDING complaint. Authenticated filers are recorded by
// principal ID, everyone else by the given or default anonymous name.
func (s *Service) File(ctx context.Context, cmd FileCommand) (*domain.Complaint, error) {
	if cmd.SubmissionID != "" && s.submissions != nil {
		if _, err := s.submissions.Get(ctx, submissions.SubmissionID(cmd.SubmissionID)); err != nil {
			if errors.Is(err, submissions.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", domain.ErrUnknownSubmission, cmd.SubmissionID)
			}
			return nil, err
		}
	}

	now := s.clock.Now()
	c := &domain.Complaint{
		ID:           uuid.NewString(),
		Title:        cmd.Title,
		Description:  cmd.Description,
		Status:       domain.StatusPending,
		SubmissionID: cmd.SubmissionID,
		FiledBy:      cmd.FiledBy,
		Evidence:     cmd.Evidence,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if c.FiledBy == "" {
		c.AnonymousName = cmd.AnonymousName
		if c.AnonymousName == "" {
			c.AnonymousName = domain.AnonymousName
		}
	}
	if c.Evidence == nil {
		c.Evidence = []string{}
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("saving complaint: %w", err)
	}

	s.record(ctx, c.Filer(), activity.ActionComplaintFiled, c.ID, activity.SeverityWarning, map[string]any{
		"submission_id": c.SubmissionID,
		"anonymous":     c.FiledBy == "",
	})
	// submission yang dilaporkan ikut dapat jejak di activity log-nya
	if c.SubmissionID != "" {
		s.record(ctx, c.Filer(), activity.ActionComplaintFiled, c.SubmissionID, activity.SeverityWarning, map[string]any{
			"complaint_id": c.ID,
		})
	}
	s.log.Info("complaint filed",
		zap.String("complaint_id", c.ID),
		zap.String("submission_id", c.SubmissionID),
		zap.Bool("anonymous", c.FiledBy == ""),
	)
	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Complaint, error) {
	return s.repo.Get(ctx, id)
}

// List newest first. Empty status means all.
func (s *Service) List(ctx context.Context, status string, page, pageSize int) (domain.Page, error) {
	var st domain.Status
	if status != "" {
		parsed, err := domain.ParseStatus(status)
		if err != nil {
			return domain.Page{}, err
		}
		st = parsed
	}
	page, pageSize = submissions.NormalizePage(page, pageSize)
	return s.repo.List(ctx, st, page, pageSize)
}

// StatusCommand reviewer memindahkan status komplain
type StatusCommand struct {
	ReviewerID  string
	ComplaintID string
	Status      string
}

// UpdateStatus moves a complaint forward. A concurrent update of the same
// complaint makes the later one fail with ErrInvalidTransition.
func (s *Service) UpdateStatus(ctx context.Context, cmd StatusCommand) (*domain.Complaint, error) {
	next, err := domain.ParseStatus(cmd.Status)
	if err != nil {
		return nil, err
	}
	c, err := s.repo.Get(ctx, cmd.ComplaintID)
	if err != nil {
		return nil, err
	}
	previous := c.Status
	if err := c.MoveTo(next, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, c.ID, previous, c.Status, c.UpdatedAt); err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			return nil, err
		}
		return nil, fmt.Errorf("saving complaint status: %w", err)
	}

	s.record(ctx, cmd.ReviewerID, activity.ActionComplaintStatus, c.ID, activity.SeverityInfo, map[string]any{
		"from": previous,
		"to":   c.Status,
	})
	s.log.Info("complaint status changed",
		zap.String("complaint_id", c.ID),
		zap.String("reviewer", cmd.ReviewerID),
		zap.String("from", string(previous)),
		zap.String("to", string(c.Status)),
	)
	return c, nil
}

// record never fails the use case
func (s *Service) record(ctx context.Context, actor, action, target string, sev activity.Severity, details map[string]any) {
	if s.activities == nil {
		return
	}
	b, err := json.Marshal(details)
	if err != nil {
		b = []byte("{}")
	}
	e := &activity.Entry{
		ID:          uuid.NewString(),
		Actor:       actor,
		Action:      action,
		Target:      target,
		Severity:    sev,
		DetailsJSON: string(b),
		CreatedAt:   s.clock.Now(),
	}
	if err := s.activities.Save(ctx, e); err != nil {
		s.log.Warn("activity log write failed", zap.String("action", action), zap.Error(err))
	}
}
