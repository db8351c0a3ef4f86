package engine

import "github.com/miradorstack/mirador-fmeda/internal/models"

// IEC62380 rates components with fixed per-type factor products.
type IEC62380 struct {
	types     map[string]IECFactors
	fallbacks []Fallback
}

// NewIEC62380 builds the calculator. Types without factors are rated 0 with a warning.
func NewIEC62380(constants IEC62380Constants) *IEC62380 {
	types := make(map[string]IECFactors, len(constants.Types))
	for k, v := range constants.Types {
		types[typeKey(k)] = v
	}
	return &IEC62380{types: types}
}

func (s *IEC62380) Standard() string { return StandardIEC62380 }

// Calculate ignores the mission profile and variant.
func (s *IEC62380) Calculate(in FITInput) (FITResult, error) {
	return s.rate(in.Component), nil
}

func (s *IEC62380) rate(c models.Component) FITResult {
	key := typeKey(c.Type)
	factors, ok := s.types[key]
	if !ok {
		return applyFallbacks(StandardIEC62380, c, s.fallbacks)
	}
	return FITResult{
		Standard: StandardIEC62380,
		FIT:      factors.Lambda(),
		Model:    standardModel(StandardIEC62380, key),
	}
}
