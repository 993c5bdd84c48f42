package activity

import "time"

// Severity enum
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// Action names written by the application layer
const (
	ActionSubmissionCreated = "submission.created"
	ActionSubmissionReview  = "submission.reviewed"
	ActionEvidenceUploaded  = "submission.evidence_uploaded"
	ActionBriefGenerated    = "submission.brief_generated"
	ActionComplaintFiled    = "complaint.filed"
	ActionComplaintStatus   = "complaint.status_changed"
)

// Entry represents a persisted activity log entry
type Entry struct {
	ID          string    `json:"id"`
	Actor       string    `json:"actor"`
	Action      string    `json:"action"`
	Target      string    `json:"target,omitempty"`
	Severity    Severity  `json:"severity"`
	DetailsJSON string    `json:"details_json,omitempty"` // raw JSON string
	CreatedAt   time.Time `json:"created_at"`
}
