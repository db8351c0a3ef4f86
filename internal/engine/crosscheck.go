package engine

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/miradorstack/mirador-fmeda/internal/models"
)

// CrossChecker compares the failure-mode roll-up of a component against its
// standard-based estimate. The two numbers are never merged; the check only reports
// how far apart they are.
type CrossChecker struct {
	logger    *slog.Logger
	tolerance float64
}

// CrossCheckResult captures the outcome of a comparison.
type CrossCheckResult struct {
	ModesFIT    float64
	StandardFIT float64
	// Ratio is ModesFIT / StandardFIT, or 0 when either side is zero.
	Ratio    float64
	Diverges bool
	Notes    []string
}

// NewCrossChecker flags ratios outside [1/tolerance, tolerance]. A tolerance of 1 or less
// defaults to 10.
func NewCrossChecker(logger *slog.Logger, tolerance float64) *CrossChecker {
	if logger == nil {
		logger = slog.Default()
	}
	if !(tolerance > 1) {
		tolerance = 10
	}
	return &CrossChecker{logger: logger, tolerance: tolerance}
}

// Evaluate compares the component roll-up with the standard estimate.
func (c *CrossChecker) Evaluate(fmeda models.ComponentFMEDAResult, fit FITResult) CrossCheckResult {
	result := CrossCheckResult{ModesFIT: fmeda.TotalFIT, StandardFIT: fit.FIT}
	switch {
	case fmeda.FailureModesConsumed == 0:
		result.Notes = append(result.Notes, "no catalog failure modes to compare")
		return result
	case fit.FIT <= 0:
		result.Notes = append(result.Notes, fit.Standard+" estimate is zero")
		return result
	case fmeda.TotalFIT <= 0:
		result.Notes = append(result.Notes, "catalog failure modes sum to zero")
		return result
	}

	result.Ratio = fmeda.TotalFIT / fit.FIT
	if result.Ratio > c.tolerance || result.Ratio < 1/c.tolerance {
		result.Diverges = true
		result.Notes = append(result.Notes, fmt.Sprintf("catalog %.4g FIT vs %s %.4g FIT differ by %.1fx",
			fmeda.TotalFIT, fit.Standard, fit.FIT, divergence(result.Ratio)))
	}
	if fit.Degraded {
		result.Notes = append(result.Notes, fit.Standard+" estimate is degraded")
	}
	return result
}

// Annotate applies Evaluate to a batch of estimates, matching roll-ups by component,
// and records ratios and divergence notes on the entries.
func (c *CrossChecker) Annotate(components []models.ComponentFMEDAResult, fits []models.ComponentFIT) {
	byID := make(map[string]models.ComponentFMEDAResult, len(components))
	for _, r := range components {
		byID[r.ComponentID.String()] = r
	}
	for i := range fits {
		entry := &fits[i]
		if entry.Error != "" {
			continue
		}
		r, ok := byID[entry.ComponentID.String()]
		if !ok {
			continue
		}
		res := c.Evaluate(r, FITResult{Standard: entry.Standard, FIT: entry.FIT, Degraded: entry.Degraded})
		entry.ModesRatio = res.Ratio
		for _, note := range res.Notes {
			c.logger.Debug("cross-check note", slog.String("component_id", entry.ComponentID.String()), slog.String("note", note))
		}
		if res.Diverges {
			entry.Warnings = append(entry.Warnings, "cross_check: "+res.Notes[0])
		}
	}
}

func divergence(ratio float64) float64 {
	return math.Max(ratio, 1/ratio)
}
