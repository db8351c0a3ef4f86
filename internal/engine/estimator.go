package engine

import (
	"errors"
	"log/slog"

	"github.com/miradorstack/mirador-fmeda/internal/models"
)

// Estimator wraps a Registry with the component-level recovery for a missing variant:
// the conservative base lambda of the component's type is used and the result is
// flagged degraded. Every other error passes through.
type Estimator struct {
	registry      *Registry
	baseLambda    map[string]float64
	defaultLambda float64
	logger        *slog.Logger
}

// NewEstimator builds an Estimator that recovers with the SN29500 base-lambda table.
func NewEstimator(registry *Registry, constants SN29500Constants, logger *slog.Logger) *Estimator {
	if logger == nil {
		logger = slog.Default()
	}
	table := make(map[string]float64, len(constants.BaseLambda))
	for k, v := range constants.BaseLambda {
		table[typeKey(k)] = v
	}
	return &Estimator{registry: registry, baseLambda: table, defaultLambda: constants.DefaultLambda, logger: logger}
}

// Registry returns the wrapped registry.
func (e *Estimator) Registry() *Registry {
	return e.registry
}

// EstimateFIT rates the component, substituting the base-lambda default when the
// standard refuses for lack of a variant.
func (e *Estimator) EstimateFIT(standard string, in FITInput) (FITResult, error) {
	res, err := e.registry.CalculateFIT(standard, in)
	if err == nil {
		return res, nil
	}
	if !errors.Is(err, ErrMissingVariant) {
		return FITResult{}, err
	}

	lambda, ok := e.baseLambda[typeKey(in.Component.Type)]
	if !ok {
		lambda = e.defaultLambda
	}
	calc, _ := e.registry.Lookup(standard)
	res = FITResult{Standard: calc.Standard(), FIT: lambda, Model: standardModel(calc.Standard(), "fallback/base lambda")}
	res.warn(WarnMissingVariant, "no component variant, used base lambda for type "+quoteType(in.Component.Type))
	e.logger.Warn("missing variant, using base lambda",
		"standard", res.Standard,
		"component_id", in.Component.ID,
		"component_type", in.Component.Type,
		"fit", lambda)
	return res, nil
}

// Estimate is EstimateFIT shaped for reporting: a failure is recorded on the entry.
func (e *Estimator) Estimate(standard string, in FITInput) models.ComponentFIT {
	entry := models.ComponentFIT{ComponentID: in.Component.ID, Standard: standard}
	res, err := e.EstimateFIT(standard, in)
	if err != nil {
		entry.Error = err.Error()
		return entry
	}
	entry.Standard = res.Standard
	entry.FIT = res.FIT
	entry.Degraded = res.Degraded
	entry.Warnings = res.WarningStrings()
	return entry
}
