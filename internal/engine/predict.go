package engine

import "github.com/miradorstack/mirador-fmeda/internal/models"

// PredictModes scales a component's manufacturer base FIT by its quality factor, the
// profile's temperature factor and its quantity, then apportions the total across the
// failure modes by their share of the summed mode lambda. The temperature factor is the
// weight-scaled sum of segment temperatures, or 1 without a profile. A missing base FIT
// or quality factor counts as 1. Modes sharing a name accumulate; modes summing to zero
// predict zero each.
func PredictModes(c models.Component, profile *models.MissionProfile, modes []models.FailureMode) models.ModePrediction {
	out := models.ModePrediction{ComponentID: c.ID, FailureModes: make(map[string]float64, len(modes))}
	for _, m := range modes {
		out.FailureModes[m.Mode] = 0
	}
	base := 1.0
	if c.BaseFIT != nil {
		base = *c.BaseFIT
	}
	quality := 1.0
	if c.QualityFactor != nil {
		quality = *c.QualityFactor
	}
	tempFactor := 1.0
	if profile != nil && len(profile.Segments) > 0 {
		tempFactor = 0
		for _, seg := range profile.Segments {
			tempFactor += seg.Temp * seg.Weight
		}
	}
	out.TotalFIT = base * quality * tempFactor * float64(c.Quantity)

	sum := 0.0
	for _, m := range modes {
		sum += m.Lambda
	}
	if sum <= 0 {
		return out
	}
	for _, m := range modes {
		out.FailureModes[m.Mode] += out.TotalFIT * m.Lambda / sum
	}
	return out
}
