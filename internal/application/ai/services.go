package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/carbon-audit/internal/application"
	"github.com/bryanwahyu/carbon-audit/internal/domain/activity"
	"github.com/bryanwahyu/carbon-audit/internal/domain/ai"
	"github.com/bryanwahyu/carbon-audit/internal/domain/briefs"
	"github.com/bryanwahyu/carbon-audit/internal/domain/submissions"
)

// Service generates reviewer briefs. Briefs never touch the risk score.
type Service struct {
	client     ai.Client
	submission submissions.Repository
	briefs     briefs.Repository
	activities activity.Repository
	clock      application.Clock
	log        *zap.Logger
}

func NewService(client ai.Client, subs submissions.Repository, br briefs.Repository, act activity.Repository, clock application.Clock, log *zap.Logger) *Service {
	if clock == nil {
		clock = application.SystemClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{client: client, submission: subs, briefs: br, activities: act, clock: clock, log: log}
}

// GenerateBrief minta model bikin ringkasan untuk reviewer lalu simpan
func (s *Service) GenerateBrief(ctx context.Context, reviewer string, id submissions.SubmissionID) (*briefs.Brief, error) {
	sub, err := s.submission.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.Analysis == nil {
		return nil, fmt.Errorf("%w: %s has no analysis", submissions.ErrNotFound, id)
	}

	content, err := s.client.Brief(ctx, ai.BriefRequest{
		SubmissionID:   string(sub.ID),
		ProjectName:    sub.ProjectName,
		Description:    sub.Description,
		ClaimedCredits: sub.ClaimedCredits,
		Location:       sub.Location,
		Analysis:       *sub.Analysis,
	})
	if err != nil {
		return nil, fmt.Errorf("generating brief: %w", err)
	}

	b := &briefs.Brief{
		ID:           briefs.BriefID(uuid.NewString()),
		SubmissionID: string(sub.ID),
		Reviewer:     reviewer,
		Model:        s.client.Model(),
		Content:      content,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.briefs.Save(ctx, b); err != nil {
		return nil, fmt.Errorf("saving brief: %w", err)
	}

	if s.activities != nil {
		details, _ := json.Marshal(map[string]string{"brief_id": string(b.ID), "model": b.Model})
		if err := s.activities.Save(ctx, &activity.Entry{
			ID:          uuid.NewString(),
			Actor:       reviewer,
			Action:      activity.ActionBriefGenerated,
			Target:      string(sub.ID),
			Severity:    activity.SeverityInfo,
			DetailsJSON: string(details),
			CreatedAt:   b.CreatedAt,
		}); err != nil {
			s.log.Warn("activity log write failed", zap.String("target", string(sub.ID)), zap.Error(err))
		}
	}
	s.log.Info("brief generated",
		zap.String("submission_id", string(sub.ID)),
		zap.String("model", b.Model),
		zap.Int("content_bytes", len(content)),
	)
	return b, nil
}

// LatestBrief wraps submissions.ErrNotFound when no brief exists yet
func (s *Service) LatestBrief(ctx context.Context, id submissions.SubmissionID) (*briefs.Brief, error) {
	b, err := s.briefs.LatestBySubmission(ctx, string(id))
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("%w: no brief for %s", submissions.ErrNotFound, id)
	}
	return b, nil
}

func (s *Service) ListBriefs(ctx context.Context, id submissions.SubmissionID, page, pageSize int) ([]*briefs.Brief, error) {
	page, pageSize = submissions.NormalizePage(page, pageSize)
	list, err := s.briefs.Paginate(ctx, string(id), page, pageSize)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*briefs.Brief{}
	}
	return list, nil
}
