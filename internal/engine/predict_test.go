package engine

import (
	"testing"

	"github.com/miradorstack/mirador-fmeda/internal/models"
)

func TestPredictModesApportions(t *testing.T) {
	c := models.Component{BaseFIT: float(2), QualityFactor: float(1.5), Quantity: 2}
	profile := &models.MissionProfile{Segments: []models.ProfileSegment{{Temp: 40, Weight: 0.5}, {Temp: 60, Weight: 0.5}}}
	modes := []models.FailureMode{{Mode: "open", Lambda: 3}, {Mode: "short", Lambda: 1}}

	res := PredictModes(c, profile, modes)
	want := 2 * 1.5 * 50.0 * 2
	if !approx(res.TotalFIT, want, 1e-9) {
		t.Fatalf("expected %v, got %v", want, res.TotalFIT)
	}
	if !approx(res.FailureModes["open"], want*0.75, 1e-9) || !approx(res.FailureModes["short"], want*0.25, 1e-9) {
		t.Fatalf("unexpected apportioning %v", res.FailureModes)
	}
}

func TestPredictModesDefaults(t *testing.T) {
	res := PredictModes(models.Component{Quantity: 1}, nil, []models.FailureMode{{Mode: "open", Lambda: 0}})
	if res.TotalFIT != 1 {
		t.Fatalf("expected unit defaults, got %v", res.TotalFIT)
	}
	if v, ok := res.FailureModes["open"]; !ok || v != 0 {
		t.Fatalf("expected zero share when lambdas sum to zero, got %v", res.FailureModes)
	}
}
