package ai

import (
	"context"

	"github.com/bryanwahyu/carbon-audit/internal/domain/analysis"
)

// BriefRequest carries what a model may see about a submission
type BriefRequest struct {
	SubmissionID   string
	ProjectName    string
	Description    string
	ClaimedCredits float64
	Location       string
	Analysis       analysis.Result
}

type Client interface {
	// Brief returns a JSON object describing what a reviewer should look at
	Brief(ctx context.Context, req BriefRequest) (string, error)
	Model() string
}
