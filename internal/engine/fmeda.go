package engine

import (
	"github.com/google/uuid"

	"github.com/miradorstack/mirador-fmeda/internal/models"
)

const (
	// HoursPerFIT is the number of device-hours one FIT is counted over.
	HoursPerFIT = 1e9
	// MillionHours scales a per-hour rate to failures per million hours.
	MillionHours = 1e6
)

// CalcComponentFMEDA rolls a component's failure modes into its total rate, its
// lambda-weighted detection coverage and its safe/dangerous split. Quantity is not
// applied here.
func CalcComponentFMEDA(c models.Component, modes []models.FailureMode) models.ComponentFMEDAResult {
	totalFIT := 0.0
	covered := 0.0
	for _, m := range modes {
		totalFIT += m.Lambda
		covered += m.Lambda * m.Coverage()
	}

	dc := 0.0
	if totalFIT > 0 {
		dc = covered / totalFIT
	}
	perHour := totalFIT / HoursPerFIT
	safe := perHour * dc

	return models.ComponentFMEDAResult{
		ComponentID:          c.ID,
		MPN:                  c.ManufacturerPartNumber,
		Quantity:             c.Quantity,
		TotalFIT:             totalFIT,
		TotalFailurePerHour:  perHour,
		DetectionCoverage:    dc,
		SafePerHour:          safe,
		DangerousPerHour:     perHour - safe,
		FailureModesConsumed: len(modes),
	}
}

// CalcProjectFMEDA computes every component's roll-up in input order and sums the
// quantity-weighted totals. Components without an entry in modes contribute zero.
func CalcProjectFMEDA(components []models.Component, modes map[uuid.UUID][]models.FailureMode) models.ProjectFMEDAResult {
	results := make([]models.ComponentFMEDAResult, 0, len(components))
	var agg models.AggregateTotals
	for _, c := range components {
		r := CalcComponentFMEDA(c, modes[c.ID])
		results = append(results, r)
		qty := float64(c.Quantity)
		agg.TotalDangerousPerHour += r.DangerousPerHour * qty
		agg.TotalSafePerHour += r.SafePerHour * qty
	}
	agg.TotalDangerousFIT = agg.TotalDangerousPerHour * HoursPerFIT
	agg.TotalSafeFIT = agg.TotalSafePerHour * HoursPerFIT
	agg.DangerousPerMillionHours = agg.TotalDangerousPerHour * MillionHours
	return models.ProjectFMEDAResult{Components: results, Aggregate: agg}
}
