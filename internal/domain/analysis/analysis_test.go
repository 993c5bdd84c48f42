package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRandom always returns the same draws
type fixedRandom struct {
	f float64
	n int
}

func (r fixedRandom) Float64() float64 { return r.f }
func (r fixedRandom) IntN(int) int     { return r.n }

type recordingRandom struct {
	fixedRandom
	lastN int
}

func (r *recordingRandom) IntN(n int) int {
	r.lastN = n
	return r.n
}

func TestScrutinizeText(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		score     int
		keywords  []string
		sentiment Sentiment
	}{
		{
			name:      "empty description",
			input:     "",
			score:     0,
			keywords:  nil,
			sentiment: SentimentNeutral,
		},
		{
			name:      "no suspicious vocabulary",
			input:     "Verified reforestation of 120 hectares with audited survival rates.",
			score:     0,
			keywords:  nil,
			sentiment: SentimentNeutral,
		},
		{
			name:      "case insensitive",
			input:     "APPROXIMATE yield, Estimate pending",
			score:     30,
			keywords:  []string{"approximate", "estimate"},
			sentiment: SentimentNeutral,
		},
		{
			name:      "vocabulary order not text order",
			input:     "theoretical output of a planned plant, approximate figures",
			score:     45,
			keywords:  []string{"approximate", "planned", "theoretical"},
			sentiment: SentimentNeutral,
		},
		{
			name:      "substring match",
			input:     "an estimated 400 tonnes",
			score:     15,
			keywords:  []string{"estimate"},
			sentiment: SentimentNeutral,
		},
		{
			name:      "four terms turn negative",
			input:     "approximate estimate of projected and planned savings",
			score:     60,
			keywords:  []string{"approximate", "estimate", "projected", "planned"},
			sentiment: SentimentNegative,
		},
		{
			name:      "all five terms",
			input:     "Theoretical, planned, projected, estimate, approximate.",
			score:     75,
			keywords:  []string{"approximate", "estimate", "projected", "planned", "theoretical"},
			sentiment: SentimentNegative,
		},
		{
			name:      "repeated term counts once",
			input:     "estimate estimate estimate",
			score:     15,
			keywords:  []string{"estimate"},
			sentiment: SentimentNeutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScrutinizeText(tt.input)
			assert.Equal(t, tt.score, got.ContradictionScore)
			assert.Equal(t, tt.sentiment, got.Sentiment)
			if tt.keywords == nil {
				assert.Empty(t, got.FlaggedKeywords)
			} else {
				assert.Equal(t, tt.keywords, got.FlaggedKeywords)
			}
		})
	}
}

func TestAnomalyDetector_EmptyHistory(t *testing.T) {
	// a failing cross-check must not matter without history
	d := NewAnomalyDetector(fixedRandom{f: 0})

	for _, claimed := range []float64{0, 1, 100, 1e9} {
		assert.Equal(t, AnomalyDetection{}, d.Detect(claimed, nil))
		assert.Equal(t, AnomalyDetection{}, d.Detect(claimed, []float64{}))
	}
}

func TestAnomalyDetector_Detect(t *testing.T) {
	const crossCheckOK, crossCheckFails = 0.95, 0.05

	tests := []struct {
		name      string
		claimed   float64
		history   []float64
		draw      float64
		deviation float64
		variance  float64
		flagged   bool
	}{
		{"large deviation flags regardless of cross-check", 800, []float64{100, 200, 300}, crossCheckOK, 300, 600, true},
		{"large deviation with failed cross-check", 800, []float64{300, 100, 200}, crossCheckFails, 300, 600, true},
		{"within band", 120, []float64{100}, crossCheckOK, 20, 20, false},
		{"within band but cross-check fails", 120, []float64{100}, crossCheckFails, 20, 20, true},
		{"cross-check boundary draw counts as mismatch", 100, []float64{100}, 0.1, 0, 0, true},
		{"exactly thirty percent is not flagged", 130, []float64{100}, crossCheckOK, 30, 30, false},
		{"negative deviation", 60, []float64{100}, crossCheckOK, -40, 40, true},
		{"zero average has no deviation", 50, []float64{0, 0}, crossCheckOK, 0, 50, false},
		{"rounded to two decimals", 1, []float64{3}, crossCheckOK, -66.67, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewAnomalyDetector(fixedRandom{f: tt.draw}).Detect(tt.claimed, tt.history)
			assert.InDelta(t, tt.deviation, got.DeviationPercentage, 1e-9)
			assert.InDelta(t, tt.variance, got.HistoricalVariance, 1e-9)
			assert.Equal(t, tt.flagged, got.IsFlagged)
			assert.GreaterOrEqual(t, got.HistoricalVariance, 0.0)
		})
	}
}

func TestAnomalyDetector_FiniteAtAcceptedBounds(t *testing.T) {
	d := NewAnomalyDetector(fixedRandom{f: 0.5})
	got := d.Detect(1e12, []float64{0, 0.01})

	assert.False(t, math.IsInf(got.DeviationPercentage, 0) || math.IsNaN(got.DeviationPercentage))
	assert.False(t, math.IsInf(got.HistoricalVariance, 0) || math.IsNaN(got.HistoricalVariance))
	assert.True(t, got.IsFlagged)
}

func TestSatelliteValidator_Validate(t *testing.T) {
	tests := []struct {
		offset int
		score  int
		status LandUseStatus
	}{
		{0, 60, LandUseInconclusive},
		{20, 80, LandUseInconclusive},
		{21, 81, LandUseMatch},
		{40, 100, LandUseMatch},
	}

	for _, tt := range tests {
		rng := &recordingRandom{fixedRandom: fixedRandom{n: tt.offset}}
		got := NewSatelliteValidator(rng).Validate("-1.2921,36.8219")

		assert.Equal(t, 41, rng.lastN, "draw must cover [60,100] inclusive")
		assert.Equal(t, tt.score, got.LandUseMatchScore)
		assert.Equal(t, tt.status, got.Status)
		assert.Equal(t, 0.75, got.VegetationIndex)
	}
}

func TestSatelliteValidator_ScoreRange(t *testing.T) {
	v := NewSatelliteValidator(NewSeededRandom(42))
	seen := map[int]bool{}

	for i := 0; i < 2000; i++ {
		got := v.Validate("")
		require.GreaterOrEqual(t, got.LandUseMatchScore, 60)
		require.LessOrEqual(t, got.LandUseMatchScore, 100)
		require.NotEqual(t, LandUseMismatch, got.Status)
		require.Equal(t, got.LandUseMatchScore > 80, got.Status == LandUseMatch)
		seen[got.LandUseMatchScore] = true
	}

	assert.True(t, seen[60], "lower bound should be reachable")
	assert.True(t, seen[100], "upper bound should be reachable")
}

func TestLandUseStatus_Thresholds(t *testing.T) {
	assert.Equal(t, LandUseMismatch, landUseStatus(50))
	assert.Equal(t, LandUseInconclusive, landUseStatus(51))
	assert.Equal(t, LandUseInconclusive, landUseStatus(80))
	assert.Equal(t, LandUseMatch, landUseStatus(81))
}

func TestFuseRisk(t *testing.T) {
	tests := []struct {
		name          string
		contradiction int
		flagged       bool
		landUse       int
		fraud         int
		greenwashing  int
		level         RiskLevel
	}{
		{"critical example", 80, true, 20, 88, 70, RiskCritical},
		{"clean submission", 0, false, 100, 10, 8, RiskLow},
		{"flagged anomaly alone", 0, true, 100, 40, 32, RiskMedium},
		{"high band", 30, true, 90, 52, 41, RiskHigh},
		{"maximum inputs", 100, true, 0, 100, 80, RiskCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FuseRisk(
				ESGAnalysis{ContradictionScore: tt.contradiction},
				AnomalyDetection{IsFlagged: tt.flagged},
				SatelliteValidation{LandUseMatchScore: tt.landUse},
			)
			assert.Equal(t, tt.fraud, got.FraudProbability)
			assert.Equal(t, tt.greenwashing, got.GreenwashingRisk)
			assert.Equal(t, tt.level, got.OverallRiskLevel)
		})
	}
}

func TestFraudScore_Clamped(t *testing.T) {
	over := FraudScore(ESGAnalysis{ContradictionScore: 100}, AnomalyDetection{IsFlagged: true}, SatelliteValidation{LandUseMatchScore: -100})
	assert.Equal(t, 100.0, over)

	under := FraudScore(ESGAnalysis{ContradictionScore: 0}, AnomalyDetection{}, SatelliteValidation{LandUseMatchScore: 200})
	assert.Equal(t, 0.0, under)
}

func TestLevelFor_Boundaries(t *testing.T) {
	tests := []struct {
		score float64
		level RiskLevel
	}{
		{0, RiskLow},
		{20, RiskLow},
		{20.01, RiskMedium},
		{50, RiskMedium},
		{50.5, RiskHigh},
		{80, RiskHigh},
		{80.1, RiskCritical},
		{100, RiskCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.level, LevelFor(tt.score), "score %v", tt.score)
	}
}
