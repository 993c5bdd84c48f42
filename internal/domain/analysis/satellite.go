package analysis

const (
	minLandUseScore = 60
	maxLandUseScore = 100

	// mocked NDVI, not derived from imagery
	mockVegetationIndex = 0.75
)

// SatelliteValidator stands in for imagery-based land-use corroboration.
// Coordinates are accepted but not inspected.
type SatelliteValidator struct {
	rng RandomSource
}

func NewSatelliteValidator(rng RandomSource) *SatelliteValidator {
	return &SatelliteValidator{rng: rng}
}

func (v *SatelliteValidator) Validate(coordinates string) SatelliteValidation {
	_ = coordinates

	score := minLandUseScore + v.rng.IntN(maxLandUseScore-minLandUseScore+1)
	return SatelliteValidation{
		LandUseMatchScore: score,
		VegetationIndex:   mockVegetationIndex,
		Status:            landUseStatus(score),
	}
}

func landUseStatus(score int) LandUseStatus {
	switch {
	case score > 80:
		return LandUseMatch
	case score > 50:
		return LandUseInconclusive
	default:
		return LandUseMismatch
	}
}
