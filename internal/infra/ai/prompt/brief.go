package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bryanwahyu/carbon-audit/internal/domain/ai"
)

// GetSystemPrompt provides strict directions and schema for JSON output.
func GetSystemPrompt() string {
	return `You are a senior carbon-market integrity reviewer assisting a government auditor. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- Use lowercase severity values: critical, high, medium, low, info.
- recommendation is one of APPROVE, REJECT, INVESTIGATE. It is advisory only.
- concerns is an array of objects; each needs area, severity, detail and a next step. Keep items concise.
- Base every concern on the provided analysis numbers and description. Never invent satellite or registry data.

Schema (example with empty values):
{
  "submission_id": "<string>",
  "risk_level": "<LOW|MEDIUM|HIGH|CRITICAL>",
  "headline": "<string>",
  "concerns": [
    {
      "area": "<text|volume|location>",
      "severity": "<critical|high|medium|low|info>",
      "detail": "<string>",
      "next_step": "<string>"
    }
  ],
  "questions": ["<string>"],
  "recommendation": "<APPROVE|REJECT|INVESTIGATE>"
}`
}

// GetUserPrompt serializes the submission and its analysis for the model.
func GetUserPrompt(req ai.BriefRequest) string {
	payload, err := json.Marshal(req.Analysis)
	if err != nil {
		payload = []byte("{}")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Write the review brief for submission %s and respond with the JSON per schema.\n", req.SubmissionID)
	fmt.Fprintf(&b, "Project: %s\n", req.ProjectName)
	fmt.Fprintf(&b, "Claimed credits: %.2f\n", req.ClaimedCredits)
	fmt.Fprintf(&b, "Location: %s\n", req.Location)
	fmt.Fprintf(&b, "Description: %s\n", req.Description)
	fmt.Fprintf(&b, "Analysis: %s", payload)
	return b.String()
}

// Concern is one item of the brief
type Concern struct {
	Area     string `json:"area"`
	Severity string `json:"severity"`
	Detail   string `json:"detail"`
	NextStep string `json:"next_step"`
}

// Brief matches the schema used by the system prompt.
type Brief struct {
	SubmissionID   string    `json:"submission_id"`
	RiskLevel      string    `json:"risk_level"`
	Headline       string    `json:"headline"`
	Concerns       []Concern `json:"concerns"`
	Questions      []string  `json:"questions"`
	Recommendation string    `json:"recommendation"`
}
