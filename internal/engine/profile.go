package engine

import (
	"fmt"

	"github.com/miradorstack/mirador-fmeda/internal/models"
)

// ResolvedProfile is a validated mission profile ready for weighting.
type ResolvedProfile struct {
	Segments    []models.ProfileSegment
	TotalWeight float64
}

// Fraction returns the normalised weight of segment i.
func (p ResolvedProfile) Fraction(i int) float64 {
	return p.Segments[i].Weight / p.TotalWeight
}

// ResolveProfile validates a mission profile and sums its weights. A nil profile, an
// empty one, or one whose weights sum to zero is reported with ErrDegenerateProfile so
// the caller can choose its substitution. The input is not modified.
func ResolveProfile(profile *models.MissionProfile) (ResolvedProfile, error) {
	if profile == nil || len(profile.Segments) == 0 {
		return ResolvedProfile{}, ErrDegenerateProfile
	}
	segments := make([]models.ProfileSegment, len(profile.Segments))
	copy(segments, profile.Segments)

	total := 0.0
	for i, seg := range segments {
		if !finite(seg.Weight) || seg.Weight < 0 {
			return ResolvedProfile{}, fmt.Errorf("%w: segment %d weight %v", ErrInvalidProfile, i, seg.Weight)
		}
		if err := checkTemperature(seg.Temp); err != nil {
			return ResolvedProfile{}, fmt.Errorf("segment %d: %w", i, err)
		}
		total += seg.Weight
	}
	resolved := ResolvedProfile{Segments: segments, TotalWeight: total}
	if total == 0 {
		return resolved, ErrDegenerateProfile
	}
	return resolved, nil
}
