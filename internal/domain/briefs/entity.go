package briefs

import "time"

// BriefID identifier type
type BriefID string

// Brief is a reviewer-facing narrative generated for one submission.
// It is advisory only and never changes the risk score.
type Brief struct {
	ID           BriefID   `json:"id"`
	SubmissionID string    `json:"submission_id"`
	Reviewer     string    `json:"reviewer"`
	Model        string    `json:"model"`
	Content      string    `json:"content"` // JSON string from the model
	CreatedAt    time.Time `json:"created_at"`
}
