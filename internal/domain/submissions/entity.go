package submissions

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bryanwahyu/carbon-audit/internal/domain/analysis"
)

// SubmissionID tipe untuk Submission
type SubmissionID string

// Status enum
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
	StatusFlagged  Status = "FLAGGED"
)

var ErrInvalidStatus = errors.New("invalid submission status")

// ParseStatus accepts any casing
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusApproved, StatusRejected, StatusFlagged:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Aggregate Root: Submission
type Submission struct {
	ID             SubmissionID       `json:"id"`
	CompanyID      string             `json:"company_id"`
	ProjectName    string             `json:"project_name"`
	Description    string             `json:"description"`
	ClaimedCredits float64            `json:"claimed_credits"`
	Location       string             `json:"location"`
	Status         Status             `json:"status"`
	Analysis       *analysis.Result   `json:"ai_analysis,omitempty"`
	RiskScore      int                `json:"risk_score"`
	RiskLevel      analysis.RiskLevel `json:"risk_level,omitempty"`
	EvidenceFiles  []string           `json:"evidence_files"`
	ReviewedBy     string             `json:"reviewed_by,omitempty"`
	ReviewNotes    string             `json:"review_notes,omitempty"`
	ReviewedAt     *time.Time         `json:"reviewed_at,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// ApplyAnalysis copies the engine result onto the submission and derives its
// initial status.
func (s *Submission) ApplyAnalysis(res analysis.Result) {
	s.Analysis = &res
	s.RiskScore = res.RiskScore.FraudProbability
	s.RiskLevel = res.RiskScore.OverallRiskLevel
	s.Status = StatusFromRisk(res.RiskScore.OverallRiskLevel)
}

// StatusFromRisk: HIGH and CRITICAL go straight to the reviewers' flagged queue
func StatusFromRisk(level analysis.RiskLevel) Status {
	switch level {
	case analysis.RiskHigh, analysis.RiskCritical:
		return StatusFlagged
	default:
		return StatusPending
	}
}

// Summary value object for the reviewer dashboard
type Summary struct {
	Total       int                        `json:"total"`
	ByStatus    map[Status]int             `json:"by_status"`
	ByRiskLevel map[analysis.RiskLevel]int `json:"by_risk_level"`
}
