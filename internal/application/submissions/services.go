package submissions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/carbon-audit/internal/application"
	"github.com/bryanwahyu/carbon-audit/internal/domain/activity"
	"github.com/bryanwahyu/carbon-audit/internal/domain/analysis"
	domain "github.com/bryanwahyu/carbon-audit/internal/domain/submissions"
)

// DefaultHistoryLimit is how many past claims feed the anomaly detector
const DefaultHistoryLimit = 10

// ErrEvidenceUnavailable is returned by AttachEvidence when no object store is wired
var ErrEvidenceUnavailable = errors.New("evidence storage is not configured")

// Analyzer runs the risk analysis for one submission
type Analyzer interface {
	Analyze(ctx context.Context, in analysis.Input) (analysis.Result, error)
}

// Recorder receives business metrics; nil disables them
type Recorder interface {
	ObserveAnalysis(level string, d time.Duration)
	ObserveReview(decision string)
}

// Service implements use-cases untuk Submission.
// Safe for concurrent use.
type Service struct {
	Repo         domain.Repository
	Analyzer     Analyzer
	Evidence     domain.EvidenceStore
	Activities   activity.Repository
	Clock        application.Clock
	Logger       *zap.Logger
	Metrics      Recorder
	HistoryLimit int
}

//
// ==== USE CASES ====
//

// SubmitCommand untuk klaim kredit baru
type SubmitCommand struct {
	CompanyID      string
	ProjectName    string
	Description    string
	ClaimedCredits float64
	Location       string
	EvidenceFiles  []string
}

// Submit analyzes a new claim against the company's history and stores it
// together with the analysis snapshot.
func (s *Service) Submit(ctx context.Context, cmd SubmitCommand) (*domain.Submission, error) {
	history, err := s.Repo.RecentClaims(ctx, cmd.CompanyID, s.historyLimit())
	if err != nil {
		return nil, fmt.Errorf("loading claim history: %w", err)
	}

	start := time.Now()
	res, err := s.Analyzer.Analyze(ctx, analysis.Input{
		Description:       cmd.Description,
		ClaimedCredits:    cmd.ClaimedCredits,
		HistoricalCredits: history,
		Coordinates:       cmd.Location,
	})
	if err != nil {
		return nil, fmt.Errorf("analyzing submission: %w", err)
	}
	elapsed := time.Since(start)

	now := s.Clock.Now()
	evidence := cmd.EvidenceFiles
	if evidence == nil {
		evidence = []string{}
	}
	sub := &domain.Submission{
		ID:             domain.SubmissionID(uuid.NewString()),
		CompanyID:      cmd.CompanyID,
		ProjectName:    cmd.ProjectName,
		Description:    cmd.Description,
		ClaimedCredits: cmd.ClaimedCredits,
		Location:       cmd.Location,
		EvidenceFiles:  evidence,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	sub.ApplyAnalysis(res)

	if err := s.Repo.Save(ctx, sub); err != nil {
		return nil, fmt.Errorf("saving submission: %w", err)
	}

	if s.Metrics != nil {
		s.Metrics.ObserveAnalysis(string(sub.RiskLevel), elapsed)
	}
	s.record(ctx, cmd.CompanyID, activity.ActionSubmissionCreated, string(sub.ID), creationSeverity(sub), map[string]any{
		"risk_level":       sub.RiskLevel,
		"fraud_score":      sub.RiskScore,
		"status":           sub.Status,
		"flagged_keywords": res.ESGAnalysis.FlaggedKeywords,
		"history_size":     len(history),
	})
	s.logger().Info("submission analyzed",
		zap.String("submission_id", string(sub.ID)),
		zap.String("company_id", sub.CompanyID),
		zap.String("risk_level", string(sub.RiskLevel)),
		zap.Int("fraud_probability", sub.RiskScore),
		zap.String("status", string(sub.Status)),
		zap.Duration("analysis_duration", elapsed),
	)
	return sub, nil
}

// Preview runs the analysis without persisting anything
func (s *Service) Preview(ctx context.Context, in analysis.Input) (analysis.Result, error) {
	return s.Analyzer.Analyze(ctx, in)
}

// PreviewForCompany is Preview with the company's stored history when the
// caller supplies none.
func (s *Service) PreviewForCompany(ctx context.Context, companyID string, in analysis.Input) (analysis.Result, error) {
	if in.HistoricalCredits == nil {
		history, err := s.Repo.RecentClaims(ctx, companyID, s.historyLimit())
		if err != nil {
			return analysis.Result{}, fmt.Errorf("loading claim history: %w", err)
		}
		in.HistoricalCredits = history
	}
	return s.Preview(ctx, in)
}

// Get ambil 1 submission by id
func (s *Service) Get(ctx context.Context, id domain.SubmissionID) (*domain.Submission, error) {
	return s.Repo.Get(ctx, id)
}

// GetForCompany hides other companies' submissions behind ErrNotFound
func (s *Service) GetForCompany(ctx context.Context, companyID string, id domain.SubmissionID) (*domain.Submission, error) {
	sub, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return sub, nil
}

// ListMine daftar submission milik company, terbaru dulu
func (s *Service) ListMine(ctx context.Context, companyID string, page, pageSize int) (domain.PaginatedResult, error) {
	page, pageSize = domain.NormalizePage(page, pageSize)
	return s.Repo.ListByCompany(ctx, companyID, page, pageSize)
}

// ListForReview lists submissions of every company. Empty status means all.
func (s *Service) ListForReview(ctx context.Context, status string, page, pageSize int) (domain.PaginatedResult, error) {
	var st domain.Status
	if status != "" {
		parsed, err := domain.ParseStatus(status)
		if err != nil {
			return domain.PaginatedResult{}, err
		}
		st = parsed
	}
	page, pageSize = domain.NormalizePage(page, pageSize)
	return s.Repo.ListByStatus(ctx, st, page, pageSize)
}

// PublicRegistry lists approved submissions only
func (s *Service) PublicRegistry(ctx context.Context, page, pageSize int) (domain.PaginatedResult, error) {
	page, pageSize = domain.NormalizePage(page, pageSize)
	return s.Repo.ListByStatus(ctx, domain.StatusApproved, page, pageSize)
}

// Summary rekap jumlah submission per status dan risk level
func (s *Service) Summary(ctx context.Context) (domain.Summary, error) {
	return s.Repo.Summary(ctx)
}

// ReviewCommand keputusan reviewer pemerintah
type ReviewCommand struct {
	ReviewerID   string
	SubmissionID domain.SubmissionID
	Decision     string
	Notes        string
}

// Review applies a reviewer decision. Two reviewers racing on the same
// submission cannot both win: the loser gets ErrInvalidTransition.
func (s *Service) Review(ctx context.Context, cmd ReviewCommand) (*domain.Submission, error) {
	decision, err := domain.ParseDecision(cmd.Decision)
	if err != nil {
		return nil, err
	}

	sub, err := s.Repo.Get(ctx, cmd.SubmissionID)
	if err != nil {
		return nil, err
	}
	previous := sub.Status
	if err := sub.Review(decision, cmd.ReviewerID, cmd.Notes, s.Clock.Now()); err != nil {
		return nil, err
	}
	if err := s.Repo.SaveReview(ctx, sub, previous); err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			return nil, err
		}
		return nil, fmt.Errorf("saving review: %w", err)
	}

	if s.Metrics != nil {
		s.Metrics.ObserveReview(string(decision))
	}
	s.record(ctx, cmd.ReviewerID, activity.ActionSubmissionReview, string(sub.ID), activity.SeverityInfo, map[string]any{
		"decision": decision,
		"from":     previous,
		"to":       sub.Status,
		"notes":    cmd.Notes,
	})
	s.logger().Info("submission reviewed",
		zap.String("submission_id", string(sub.ID)),
		zap.String("reviewer", cmd.ReviewerID),
		zap.String("decision", string(decision)),
		zap.String("status", string(sub.Status)),
	)
	return sub, nil
}

// EvidenceUpload satu file bukti dari company
type EvidenceUpload struct {
	CompanyID    string
	SubmissionID domain.SubmissionID
	Filename     string
	ContentType  string
	Size         int64
	Body         io.Reader
}

// AttachEvidence uploads a file to object storage and appends its URL.
// Reviewed submissions no longer accept evidence.
func (s *Service) AttachEvidence(ctx context.Context, up EvidenceUpload) (*domain.Submission, error) {
	if s.Evidence == nil {
		return nil, ErrEvidenceUnavailable
	}
	sub, err := s.GetForCompany(ctx, up.CompanyID, up.SubmissionID)
	if err != nil {
		return nil, err
	}
	if sub.Status.Final() {
		return nil, fmt.Errorf("%w: %s is %s", domain.ErrInvalidTransition, sub.ID, sub.Status)
	}

	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := fmt.Sprintf("%s/%s/%s", up.CompanyID, sub.ID, path.Base(up.Filename))
	url, err := s.Evidence.Upload(ctx, up.Body, up.Size, key, contentType)
	if err != nil {
		return nil, fmt.Errorf("uploading evidence: %w", err)
	}

	if err := s.Repo.AppendEvidence(ctx, sub.ID, url, s.Clock.Now()); err != nil {
		// objek sudah di bucket tapi tidak tercatat
		s.logger().Warn("evidence stored but not attached",
			zap.String("submission_id", string(sub.ID)),
			zap.String("url", url),
			zap.Error(err),
		)
		if errors.Is(err, domain.ErrInvalidTransition) {
			return nil, err
		}
		return nil, fmt.Errorf("saving evidence: %w", err)
	}
	if sub, err = s.Repo.Get(ctx, sub.ID); err != nil {
		return nil, err
	}

	s.record(ctx, up.CompanyID, activity.ActionEvidenceUploaded, string(sub.ID), activity.SeverityInfo, map[string]any{
		"url":  url,
		"size": up.Size,
	})
	return sub, nil
}

// Activity returns the latest log entries for a submission
func (s *Service) Activity(ctx context.Context, id domain.SubmissionID, limit int) ([]*activity.Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if s.Activities == nil {
		return []*activity.Entry{}, nil
	}
	return s.Activities.ListByTarget(ctx, string(id), limit)
}

// record never fails the use case; a lost log line is only logged
func (s *Service) record(ctx context.Context, actor, action, target string, sev activity.Severity, details map[string]any) {
	if s.Activities == nil {
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
		CreatedAt:   s.Clock.Now(),
	}
	if err := s.Activities.Save(ctx, e); err != nil {
		s.logger().Warn("activity log write failed",
			zap.String("action", action),
			zap.String("target", target),
			zap.Error(err),
		)
	}
}

func (s *Service) historyLimit() int {
	if s.HistoryLimit <= 0 {
		return DefaultHistoryLimit
	}
	return s.HistoryLimit
}

func (s *Service) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// helper
func creationSeverity(sub *domain.Submission) activity.Severity {
	switch {
	case sub.RiskLevel == analysis.RiskCritical:
		return activity.SeverityCritical
	case sub.Status == domain.StatusFlagged:
		return activity.SeverityWarning
	default:
		return activity.SeverityInfo
	}
}
