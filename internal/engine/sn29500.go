package engine

import (
	"errors"

	"github.com/miradorstack/mirador-fmeda/internal/models"
)

// SN29500 rates components with the Siemens SN 29500 temperature model.
type SN29500 struct {
	constants SN29500Constants
	formulas  map[string]typeFormula
	fallbacks []Fallback
}

// NewSN29500 builds the calculator. Types without a formula go through, in order, the
// component's own base FIT, the base-lambda table and the fixed default rate.
func NewSN29500(constants SN29500Constants) *SN29500 {
	s := &SN29500{constants: constants}
	s.formulas = map[string]typeFormula{
		typeKey(models.ComponentTypeResistor):  s.resistor,
		typeKey(models.ComponentTypeCapacitor): s.capacitor,
		typeKey(models.ComponentTypeIC):        s.ic,
	}
	s.fallbacks = []Fallback{
		{Name: "manufacturer base FIT", Lambda: manufacturerBaseFIT},
		{Name: "base lambda table", Lambda: func(c models.Component) (float64, bool) {
			v, ok := constants.BaseLambda[typeKey(c.Type)]
			return v, ok
		}},
		{Name: "default lambda", Lambda: func(models.Component) (float64, bool) {
			return constants.DefaultLambda, true
		}},
	}
	return s
}

func (s *SN29500) Standard() string { return StandardSN29500 }

// Calculate requires a variant for every component type.
func (s *SN29500) Calculate(in FITInput) (FITResult, error) {
	if in.Variant == nil {
		return FITResult{}, &StandardError{Standard: StandardSN29500, ComponentID: in.Component.ID.String(), Err: ErrMissingVariant}
	}
	formula, ok := s.formulas[typeKey(in.Component.Type)]
	if !ok {
		return applyFallbacks(StandardSN29500, in.Component, s.fallbacks), nil
	}
	return formula(in)
}

// WeightedPiT is the duty-cycle weighted temperature factor of a part qualified at theta1.
func (s *SN29500) WeightedPiT(profile ResolvedProfile, theta1 float64) (float64, error) {
	sum := 0.0
	for i, seg := range profile.Segments {
		pit, err := PiT(s.constants.Arrhenius, s.constants.ReferenceTemp, theta1, seg.Temp)
		if err != nil {
			return 0, err
		}
		sum += pit * profile.Fraction(i)
	}
	return sum, nil
}

func (s *SN29500) resistor(in FITInput) (FITResult, error) {
	res := FITResult{Standard: StandardSN29500, Model: standardModel(StandardSN29500, "resistor")}
	variant := in.Variant
	theta1 := s.constants.VariantTemp
	if variant.RefTemp != nil {
		theta1 = *variant.RefTemp
	}

	profile, err := ResolveProfile(in.Profile)
	switch {
	case errors.Is(err, ErrDegenerateProfile):
		res.FIT = variant.RefFIT
		res.warn(WarnDegenerateProfile, "mission profile has no weight, used variant reference FIT")
		return res, nil
	case err != nil:
		return FITResult{}, err
	}

	factor, err := s.WeightedPiT(profile, theta1)
	if err != nil {
		return FITResult{}, err
	}
	res.FIT = variant.RefFIT * factor
	return res, nil
}

// capacitor and ic are placeholder models: the component's base FIT, or the configured
// default, scaled by one profile factor.
func (s *SN29500) capacitor(in FITInput) (FITResult, error) {
	res := FITResult{Standard: StandardSN29500, Model: standardModel(StandardSN29500, "capacitor")}
	env := 1.0
	if in.Profile != nil && in.Profile.EnvironmentFactor != nil {
		env = *in.Profile.EnvironmentFactor
	}
	res.FIT = baseFITOr(in.Component, s.constants.CapacitorBaseFIT) * env
	return res, nil
}

func (s *SN29500) ic(in FITInput) (FITResult, error) {
	res := FITResult{Standard: StandardSN29500, Model: standardModel(StandardSN29500, "ic")}
	stress := 1.0
	if in.Profile != nil && in.Profile.StressFactor != nil {
		stress = *in.Profile.StressFactor
	}
	res.FIT = baseFITOr(in.Component, s.constants.ICBaseFIT) * stress
	return res, nil
}

func baseFITOr(c models.Component, fallback float64) float64 {
	if c.BaseFIT != nil {
		return *c.BaseFIT
	}
	return fallback
}

func manufacturerBaseFIT(c models.Component) (float64, bool) {
	if c.BaseFIT == nil {
		return 0, false
	}
	q := 1.0
	if c.QualityFactor != nil {
		q = *c.QualityFactor
	}
	return *c.BaseFIT * q, true
}
