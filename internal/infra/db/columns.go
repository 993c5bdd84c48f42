// Package db holds the column codec shared by the mysql and postgres adapters.
package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bryanwahyu/carbon-audit/internal/domain/analysis"
	"github.com/bryanwahyu/carbon-audit/internal/domain/complaints"
	"github.com/bryanwahyu/carbon-audit/internal/domain/submissions"
)

// SubmissionColumns in the order ScanSubmission expects
const SubmissionColumns = `id, company_id, project_name, description, claimed_credits, location, status,
       risk_score, risk_level, analysis_json, evidence_json,
       reviewed_by, review_notes, reviewed_at, created_at, updated_at`

// RowScanner is satisfied by *sql.Row and *sql.Rows
type RowScanner interface {
	Scan(dest ...any) error
}

// SubmissionRow is the flattened, driver-friendly form of a Submission
type SubmissionRow struct {
	ID             string
	CompanyID      string
	ProjectName    string
	Description    string
	ClaimedCredits float64
	Location       string
	Status         string
	RiskScore      int
	RiskLevel      string
	AnalysisJSON   string
	EvidenceJSON   string
	ReviewedBy     string
	ReviewNotes    string
	ReviewedAt     sql.NullTime
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EncodeSubmission flattens s; JSON columns always hold valid JSON
func EncodeSubmission(s *submissions.Submission) (SubmissionRow, error) {
	analysisJSON := "{}"
	if s.Analysis != nil {
		b, err := json.Marshal(s.Analysis)
		if err != nil {
			return SubmissionRow{}, fmt.Errorf("encoding analysis: %w", err)
		}
		analysisJSON = string(b)
	}
	files := s.EvidenceFiles
	if files == nil {
		files = []string{}
	}
	ev, err := json.Marshal(files)
	if err != nil {
		return SubmissionRow{}, fmt.Errorf("encoding evidence: %w", err)
	}

	created := s.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	updated := s.UpdatedAt
	if updated.IsZero() {
		updated = created
	}
	row := SubmissionRow{
		ID:             string(s.ID),
		CompanyID:      StringOrDash(s.CompanyID),
		ProjectName:    StringOrDash(s.ProjectName),
		Description:    s.Description,
		ClaimedCredits: s.ClaimedCredits,
		Location:       s.Location,
		Status:         StringOrDash(string(s.Status)),
		RiskScore:      s.RiskScore,
		RiskLevel:      string(s.RiskLevel),
		AnalysisJSON:   analysisJSON,
		EvidenceJSON:   string(ev),
		ReviewedBy:     s.ReviewedBy,
		ReviewNotes:    s.ReviewNotes,
		CreatedAt:      created,
		UpdatedAt:      updated,
	}
	if s.ReviewedAt != nil {
		row.ReviewedAt = sql.NullTime{Time: *s.ReviewedAt, Valid: true}
	}
	return row, nil
}

// ScanSubmission reads one row selected with SubmissionColumns
func ScanSubmission(sc RowScanner) (*submissions.Submission, error) {
	var (
		r            SubmissionRow
		analysisJSON sql.NullString
		evidenceJSON sql.NullString
		riskLevel    sql.NullString
		reviewedBy   sql.NullString
		reviewNotes  sql.NullString
	)
	if err := sc.Scan(
		&r.ID, &r.CompanyID, &r.ProjectName, &r.Description, &r.ClaimedCredits, &r.Location, &r.Status,
		&r.RiskScore, &riskLevel, &analysisJSON, &evidenceJSON,
		&reviewedBy, &reviewNotes, &r.ReviewedAt, &r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		return nil, err
	}

	s := &submissions.Submission{
		ID:             submissions.SubmissionID(r.ID),
		CompanyID:      r.CompanyID,
		ProjectName:    r.ProjectName,
		Description:    r.Description,
		ClaimedCredits: r.ClaimedCredits,
		Location:       r.Location,
		Status:         submissions.Status(r.Status),
		RiskScore:      r.RiskScore,
		RiskLevel:      analysis.RiskLevel(riskLevel.String),
		EvidenceFiles:  []string{},
		ReviewedBy:     reviewedBy.String,
		ReviewNotes:    reviewNotes.String,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.ReviewedAt.Valid {
		t := r.ReviewedAt.Time
		s.ReviewedAt = &t
	}
	if raw := strings.TrimSpace(analysisJSON.String); raw != "" && raw != "{}" && raw != "null" {
		var res analysis.Result
		if err := json.Unmarshal([]byte(raw), &res); err != nil {
			return nil, fmt.Errorf("decoding analysis of %s: %w", r.ID, err)
		}
		s.Analysis = &res
	}
	if raw := strings.TrimSpace(evidenceJSON.String); raw != "" && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &s.EvidenceFiles); err != nil {
			return nil, fmt.Errorf("decoding evidence of %s: %w", r.ID, err)
		}
	}
	return s, nil
}

// ComplaintColumns in the order ScanComplaint expects
const ComplaintColumns = `id, title, description, status, submission_id, filed_by, anonymous_name,
       evidence_json, created_at, updated_at`

// ComplaintArgs returns the insert values in ComplaintColumns order
func ComplaintArgs(c *complaints.Complaint) ([]any, error) {
	ev := c.Evidence
	if ev == nil {
		ev = []string{}
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encoding complaint evidence: %w", err)
	}
	return []any{
		c.ID, c.Title, c.Description, string(c.Status),
		c.SubmissionID, c.FiledBy, c.AnonymousName,
		string(b), c.CreatedAt, c.UpdatedAt,
	}, nil
}

// ScanComplaint reads one row selected with ComplaintColumns
func ScanComplaint(sc RowScanner) (*complaints.Complaint, error) {
	var (
		c        complaints.Complaint
		status   string
		subID    sql.NullString
		filedBy  sql.NullString
		anon     sql.NullString
		evidence sql.NullString
	)
	if err := sc.Scan(&c.ID, &c.Title, &c.Description, &status, &subID, &filedBy, &anon,
		&evidence, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Status = complaints.Status(status)
	c.SubmissionID = subID.String
	c.FiledBy = filedBy.String
	c.AnonymousName = anon.String
	c.Evidence = []string{}
	if raw := strings.TrimSpace(evidence.String); raw != "" && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &c.Evidence); err != nil {
			return nil, fmt.Errorf("decoding evidence of complaint %s: %w", c.ID, err)
		}
	}
	return &c, nil
}

// SummaryAccumulator folds GROUP BY status, risk_level rows
type SummaryAccumulator struct {
	sum submissions.Summary
}

func NewSummaryAccumulator() *SummaryAccumulator {
	return &SummaryAccumulator{sum: submissions.Summary{
		ByStatus:    map[submissions.Status]int{},
		ByRiskLevel: map[analysis.RiskLevel]int{},
	}}
}

func (a *SummaryAccumulator) Add(status, riskLevel string, n int) {
	a.sum.Total += n
	a.sum.ByStatus[submissions.Status(status)] += n
	if riskLevel != "" {
		a.sum.ByRiskLevel[analysis.RiskLevel(riskLevel)] += n
	}
}

func (a *SummaryAccumulator) Result() submissions.Summary { return a.sum }

// StringOrDash returns "-" when the input is empty/whitespace
func StringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// JSONOrEmpty makes sure a JSON column never receives invalid text
func JSONOrEmpty(details string) string {
	if strings.TrimSpace(details) == "" {
		return "{}"
	}
	var js any
	if json.Unmarshal([]byte(details), &js) != nil {
		b, _ := json.Marshal(map[string]string{"raw": details})
		return string(b)
	}
	return details
}

// Offset for 1-based pages
func Offset(page, pageSize int) int {
	if page <= 0 {
		page = 1
	}
	return (page - 1) * pageSize
}
