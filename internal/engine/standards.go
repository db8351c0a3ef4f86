package engine

import (
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/miradorstack/mirador-fmeda/internal/models"
)

// Standard identifiers served by the default registry.
const (
	StandardSN29500  = "SN29500"
	StandardIEC62380 = "IEC62380"
)

// FITInput is everything a standard may read to rate one component.
type FITInput struct {
	Component models.Component
	Profile   *models.MissionProfile
	Variant   *models.ComponentVariant
}

// FITResult is a standard-based failure rate in FIT.
type FITResult struct {
	Standard string    `json:"standard"`
	FIT      float64   `json:"fit"`
	Model    string    `json:"model"`
	Degraded bool      `json:"degraded"`
	Warnings []Warning `json:"warnings,omitempty"`
}

func (r *FITResult) warn(code, message string) {
	r.Degraded = true
	r.Warnings = append(r.Warnings, Warning{Code: code, Message: message})
}

// WarningStrings flattens the warnings for transport.
func (r FITResult) WarningStrings() []string {
	if len(r.Warnings) == 0 {
		return nil
	}
	out := make([]string, len(r.Warnings))
	for i, w := range r.Warnings {
		out[i] = w.String()
	}
	return out
}

// Calculator rates components under one reliability standard.
type Calculator interface {
	Standard() string
	Calculate(in FITInput) (FITResult, error)
}

// typeFormula rates a component of one type within a standard.
type typeFormula func(in FITInput) (FITResult, error)

// Fallback supplies a rate for component types a standard has no formula for. Lambda
// reports false when the fallback does not apply to the component.
type Fallback struct {
	Name   string
	Lambda func(c models.Component) (float64, bool)
}

// applyFallbacks walks the chain in order and returns the first applicable rate. A chain
// that never applies yields zero.
func applyFallbacks(standard string, c models.Component, chain []Fallback) FITResult {
	res := FITResult{Standard: standard}
	for _, fb := range chain {
		lambda, ok := fb.Lambda(c)
		if !ok {
			continue
		}
		res.FIT = lambda
		res.Model = standardModel(standard, "fallback/"+fb.Name)
		res.warn(WarnUnknownType, "no "+standard+" formula for type "+quoteType(c.Type)+", used "+fb.Name)
		return res
	}
	res.Model = standardModel(standard, "fallback/none")
	res.warn(WarnUnknownType, "no "+standard+" formula for type "+quoteType(c.Type)+", rate set to 0")
	return res
}

func standardModel(standard, model string) string {
	return strings.ToLower(standard) + "/" + model
}

func quoteType(t string) string {
	if t == "" {
		return `""`
	}
	return `"` + t + `"`
}

// Registry dispatches a standard identifier to its calculator.
type Registry struct {
	calculators map[string]Calculator
	logger      *slog.Logger
}

// NewRegistry builds a registry from the given calculators. A later calculator replaces
// an earlier one registered under the same identifier.
func NewRegistry(logger *slog.Logger, calculators ...Calculator) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{calculators: make(map[string]Calculator, len(calculators)), logger: logger}
	for _, c := range calculators {
		r.calculators[standardKey(c.Standard())] = c
	}
	return r
}

// DefaultCalculators returns the SN29500 and IEC62380 calculators built from constants.
func DefaultCalculators(constants Constants) []Calculator {
	return []Calculator{
		NewSN29500(constants.SN29500),
		NewIEC62380(constants.IEC62380),
	}
}

// DefaultRegistry serves both built-in standards.
func DefaultRegistry(constants Constants, logger *slog.Logger) *Registry {
	return NewRegistry(logger, DefaultCalculators(constants)...)
}

// Standards lists registered identifiers in sorted order.
func (r *Registry) Standards() []string {
	out := make([]string, 0, len(r.calculators))
	for _, c := range r.calculators {
		out = append(out, c.Standard())
	}
	sort.Strings(out)
	return out
}

// Lookup finds the calculator for standard, matching case-insensitively.
func (r *Registry) Lookup(standard string) (Calculator, error) {
	c, ok := r.calculators[standardKey(standard)]
	if !ok {
		return nil, &StandardError{Standard: standard, Err: ErrUnknownStandard}
	}
	return c, nil
}

// CalculateFIT rates one component under the named standard. Structural failures come
// back as *StandardError; recoverable degradations are listed on the result.
func (r *Registry) CalculateFIT(standard string, in FITInput) (FITResult, error) {
	calc, err := r.Lookup(standard)
	if err != nil {
		var se *StandardError
		if errors.As(err, &se) {
			se.ComponentID = in.Component.ID.String()
		}
		return FITResult{}, err
	}
	res, err := calc.Calculate(in)
	if err != nil {
		var se *StandardError
		if errors.As(err, &se) {
			if se.ComponentID == "" {
				se.ComponentID = in.Component.ID.String()
			}
			return FITResult{}, err
		}
		return FITResult{}, &StandardError{Standard: calc.Standard(), ComponentID: in.Component.ID.String(), Err: err}
	}
	for _, w := range res.Warnings {
		r.logger.Warn("failure rate degraded",
			"standard", res.Standard,
			"component_id", in.Component.ID,
			"code", w.Code,
			"message", w.Message)
	}
	return res, nil
}

func standardKey(standard string) string {
	return strings.ToUpper(strings.TrimSpace(standard))
}
