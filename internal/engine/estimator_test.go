package engine

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/miradorstack/mirador-fmeda/internal/models"
)

func TestEstimatorRecoversMissingVariant(t *testing.T) {
	constants := DefaultConstants()
	estimator := NewEstimator(DefaultRegistry(constants, nil), constants.SN29500, nil)

	res, err := estimator.EstimateFIT("sn29500", FITInput{Component: models.Component{ID: uuid.New(), Type: "Transistor"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.FIT != 3.0 || !res.Degraded || res.Standard != StandardSN29500 {
		t.Fatalf("expected degraded base lambda 3.0, got %+v", res)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Code != WarnMissingVariant {
		t.Fatalf("expected missing-variant warning, got %v", res.Warnings)
	}

	res, err = estimator.EstimateFIT(StandardSN29500, FITInput{Component: models.Component{Type: models.ComponentTypeResistor}})
	if err != nil || res.FIT != 1.0 {
		t.Fatalf("expected default lambda for untabled type, got %+v (%v)", res, err)
	}
}

func TestEstimatorPassesStructuralErrors(t *testing.T) {
	constants := DefaultConstants()
	estimator := NewEstimator(DefaultRegistry(constants, nil), constants.SN29500, nil)

	if _, err := estimator.EstimateFIT("MIL217", FITInput{}); !errors.Is(err, ErrUnknownStandard) {
		t.Fatalf("expected ErrUnknownStandard, got %v", err)
	}
	entry := estimator.Estimate(StandardSN29500, resistorInput(models.ProfileSegment{Temp: -300, Weight: 1}))
	if entry.Error == "" || entry.FIT != 0 {
		t.Fatalf("expected error recorded on entry, got %+v", entry)
	}
}

func TestEstimatorDoesNotChangeHealthyResults(t *testing.T) {
	constants := DefaultConstants()
	registry := DefaultRegistry(constants, nil)
	estimator := NewEstimator(registry, constants.SN29500, nil)
	in := resistorInput(models.ProfileSegment{Temp: 85, Weight: 1})

	direct, _ := registry.CalculateFIT(StandardSN29500, in)
	entry := estimator.Estimate(StandardSN29500, in)
	if entry.FIT != direct.FIT || entry.Degraded || entry.ComponentID != in.Component.ID {
		t.Fatalf("expected pass-through, got %+v vs %+v", entry, direct)
	}
}
