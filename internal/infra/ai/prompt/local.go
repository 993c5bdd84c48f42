package prompt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bryanwahyu/carbon-audit/internal/domain/ai"
	"github.com/bryanwahyu/carbon-audit/internal/domain/analysis"
)

// LocalModel is reported for briefs composed without a model provider
const LocalModel = "local-heuristic"

// LocalClient builds briefs from the analysis numbers alone. Used when no
// OpenAI key is configured.
type LocalClient struct{}

func (LocalClient) Model() string { return LocalModel }

func (LocalClient) Brief(ctx context.Context, req ai.BriefRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b, err := json.Marshal(ComposeBrief(req))
	if err != nil {
		return "", fmt.Errorf("failed to marshal brief: %w", err)
	}
	return string(b), nil
}

// ComposeBrief derives concerns from each sub-analysis
func ComposeBrief(req ai.BriefRequest) Brief {
	res := req.Analysis
	out := Brief{
		SubmissionID: req.SubmissionID,
		RiskLevel:    string(res.RiskScore.OverallRiskLevel),
		Concerns:     make([]Concern, 0, 4),
		Questions:    make([]string, 0, 4),
	}

	// text
	esg := res.ESGAnalysis
	if len(esg.FlaggedKeywords) > 0 {
		sev := "medium"
		if esg.Sentiment == analysis.SentimentNegative {
			sev = "high"
		}
		out.Concerns = append(out.Concerns, Concern{
			Area:     "text",
			Severity: sev,
			Detail:   fmt.Sprintf("Description uses %d hedging term(s): %s.", len(esg.FlaggedKeywords), strings.Join(esg.FlaggedKeywords, ", ")),
			NextStep: "Ask for measured results instead of planned or estimated ones.",
		})
		out.Questions = append(out.Questions, "Which parts of the claimed reduction have already been verified by a third party?")
	}

	// volume
	an := res.AnomalyDetection
	if an.IsFlagged {
		sev := "medium"
		if an.DeviationPercentage > 100 || an.DeviationPercentage < -100 {
			sev = "high"
		}
		out.Concerns = append(out.Concerns, Concern{
			Area:     "volume",
			Severity: sev,
			Detail:   fmt.Sprintf("Claim deviates %.2f%% from the company's historical average (variance %.2f).", an.DeviationPercentage, an.HistoricalVariance),
			NextStep: "Request the activity data behind the change in volume.",
		})
		out.Questions = append(out.Questions, "What changed in the project scope since the previous claims?")
	}

	// location
	sat := res.SatelliteValidation
	if sat.Status != analysis.LandUseMatch {
		out.Concerns = append(out.Concerns, Concern{
			Area:     "location",
			Severity: "medium",
			Detail:   fmt.Sprintf("Land-use match score is %d (%s).", sat.LandUseMatchScore, sat.Status),
			NextStep: "Compare the declared boundary with recent imagery.",
		})
		out.Questions = append(out.Questions, "Can the company provide geotagged site evidence?")
	}

	if len(out.Concerns) == 0 {
		out.Concerns = append(out.Concerns, Concern{
			Area:     "text",
			Severity: "info",
			Detail:   "No automated signal stands out.",
			NextStep: "Spot-check the evidence files before approving.",
		})
	}

	switch res.RiskScore.OverallRiskLevel {
	case analysis.RiskCritical:
		out.Headline = fmt.Sprintf("Critical fraud risk (%d%%); hold until investigated.", res.RiskScore.FraudProbability)
		out.Recommendation = "INVESTIGATE"
	case analysis.RiskHigh:
		out.Headline = fmt.Sprintf("High fraud risk (%d%%); verify before deciding.", res.RiskScore.FraudProbability)
		out.Recommendation = "INVESTIGATE"
	default:
		out.Headline = fmt.Sprintf("Low automated risk (%d%%).", res.RiskScore.FraudProbability)
		out.Recommendation = "APPROVE"
	}
	return out
}
