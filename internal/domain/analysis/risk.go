package analysis

import "math"

const (
	contradictionWeight = 0.3
	landUseGapWeight    = 0.3
	flaggedPenalty      = 40.0
	unflaggedBaseline   = 10.0
	greenwashingFactor  = 0.8
)

// FraudScore is the clamped weighted sum of the three sub-results.
func FraudScore(esg ESGAnalysis, anomaly AnomalyDetection, satellite SatelliteValidation) float64 {
	anomalyPart := unflaggedBaseline
	if anomaly.IsFlagged {
		anomalyPart = flaggedPenalty
	}

	raw := float64(esg.ContradictionScore)*contradictionWeight +
		anomalyPart +
		float64(100-satellite.LandUseMatchScore)*landUseGapWeight

	return math.Min(math.Max(raw, 0), 100)
}

// LevelFor maps a fraud score onto the four risk bands
func LevelFor(score float64) RiskLevel {
	switch {
	case score > 80:
		return RiskCritical
	case score > 50:
		return RiskHigh
	case score > 20:
		return RiskMedium
	default:
		return RiskLow
	}
}

// FuseRisk combines the sub-results. Deterministic, no draws.
func FuseRisk(esg ESGAnalysis, anomaly AnomalyDetection, satellite SatelliteValidation) RiskScore {
	score := FraudScore(esg, anomaly, satellite)
	return RiskScore{
		FraudProbability: int(math.Floor(score)),
		GreenwashingRisk: int(math.Floor(score * greenwashingFactor)),
		OverallRiskLevel: LevelFor(score),
	}
}
