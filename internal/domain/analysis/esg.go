package analysis

import "strings"

// suspiciousTerms order is the order of FlaggedKeywords
var suspiciousTerms = []string{"approximate", "estimate", "projected", "planned", "theoretical"}

const (
	pointsPerKeyword    = 15
	negativeSentimentAt = 50
)

// ScrutinizeText flags hedging vocabulary in a project description.
// Matching is a case-insensitive substring check.
func ScrutinizeText(description string) ESGAnalysis {
	lower := strings.ToLower(description)

	found := make([]string, 0, len(suspiciousTerms))
	for _, term := range suspiciousTerms {
		if strings.Contains(lower, term) {
			found = append(found, term)
		}
	}

	score := min(len(found)*pointsPerKeyword, 100)

	sentiment := SentimentNeutral
	if score > negativeSentimentAt {
		sentiment = SentimentNegative
	}

	return ESGAnalysis{
		ContradictionScore: score,
		FlaggedKeywords:    found,
		Sentiment:          sentiment,
	}
}
