package analysis

import "math"

const (
	deviationThreshold = 30.0
	// probability that the simulated energy-usage cross-check disagrees
	energyMismatchRate = 0.1
)

// AnomalyDetector compares a claim with the submitter's past claims.
//
// The energy-usage cross-check has no real signal behind it yet; it is a
// random draw that fails roughly one time in ten. Results are therefore not
// deterministic unless the RandomSource is.
type AnomalyDetector struct {
	rng RandomSource
}

func NewAnomalyDetector(rng RandomSource) *AnomalyDetector {
	return &AnomalyDetector{rng: rng}
}

func (d *AnomalyDetector) Detect(claimed float64, history []float64) AnomalyDetection {
	if len(history) == 0 {
		return AnomalyDetection{}
	}

	avg := mean(history)
	deviation := 0.0
	if avg != 0 {
		deviation = ((claimed - avg) / avg) * 100
	}

	energyUsageMatch := d.rng.Float64() > energyMismatchRate

	return AnomalyDetection{
		DeviationPercentage: round2(deviation),
		IsFlagged:           deviation > deviationThreshold || deviation < -deviationThreshold || !energyUsageMatch,
		HistoricalVariance:  round2(math.Abs(claimed - avg)),
	}
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
