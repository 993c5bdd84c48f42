package analysis

// Sentiment label produced by text scrutiny
type Sentiment string

const (
	SentimentPositive Sentiment = "positive" // not produced by current thresholds
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// LandUseStatus label produced by the satellite check
type LandUseStatus string

const (
	LandUseMatch        LandUseStatus = "MATCH"
	LandUseInconclusive LandUseStatus = "INCONCLUSIVE"
	LandUseMismatch     LandUseStatus = "MISMATCH" // unreachable with the [60,100] sample range
)

// RiskLevel enum
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// Input is everything the engine needs for one submission.
// ClaimedCredits is validated by the caller (finite, non-negative).
type Input struct {
	Description       string
	ClaimedCredits    float64
	HistoricalCredits []float64
	Coordinates       string
}

type ESGAnalysis struct {
	ContradictionScore int       `json:"contradictionScore"`
	FlaggedKeywords    []string  `json:"flaggedKeywords"`
	Sentiment          Sentiment `json:"sentiment"`
}

type AnomalyDetection struct {
	DeviationPercentage float64 `json:"deviationPercentage"`
	IsFlagged           bool    `json:"isFlagged"`
	HistoricalVariance  float64 `json:"historicalVariance"`
}

type SatelliteValidation struct {
	LandUseMatchScore int           `json:"landUseMatchScore"`
	VegetationIndex   float64       `json:"vegetationIndex"`
	Status            LandUseStatus `json:"status"`
}

type RiskScore struct {
	FraudProbability int       `json:"fraudProbability"`
	GreenwashingRisk int       `json:"greenwashingRisk"`
	OverallRiskLevel RiskLevel `json:"overallRiskLevel"`
}

// Result is the snapshot persisted verbatim next to a submission
type Result struct {
	ESGAnalysis         ESGAnalysis         `json:"esgAnalysis"`
	AnomalyDetection    AnomalyDetection    `json:"anomalyDetection"`
	SatelliteValidation SatelliteValidation `json:"satelliteValidation"`
	RiskScore           RiskScore           `json:"riskScore"`
}
