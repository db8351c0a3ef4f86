package bom

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/miradorstack/mirador-fmeda/internal/models"
	"github.com/miradorstack/mirador-fmeda/internal/utils"
)

const sampleBOM = `
project: brake-controller
profiles:
  - name: automotive
    segments:
      - {temp: 25, tau: 0.5}
      - {temp: 85, tau: 0.5}
variants:
  - name: thin-film
    ref_fit: 0.3
    ref_temp: 55
components:
  - mpn: RC0603
    type: Resistor
    reference_designator: R1
    quantity: 4
    variant: thin-film
    profile: automotive
  - mpn: GRM188
    type: Capacitor
    family: mlcc
    quantity: 2
failure_modes:
  - {mpn: RC0603, mode: open, lambda: 10, detection_coverage: 0.9}
  - {mpn: RC0603, mode: drift, lambda: 5}
  - {family: MLCC, mode: short, lambda: 2, detection_coverage: 0.5}
`

func TestParseResolvesReferences(t *testing.T) {
	store, err := Parse([]byte(sampleBOM))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	components, err := store.ListProjectComponents(context.Background(), store.ProjectID())
	if err != nil || len(components) != 2 {
		t.Fatalf("expected two components, got %d (%v)", len(components), err)
	}
	r := components[0]
	if r.ManufacturerPartNumber != "RC0603" || r.Quantity != 4 || r.Type != models.ComponentTypeResistor {
		t.Fatalf("unexpected resistor line %+v", r)
	}
	if r.VariantID == nil || r.MissionProfileID == nil {
		t.Fatalf("expected variant and profile references to resolve")
	}
	v, err := store.GetVariant(context.Background(), *r.VariantID)
	if err != nil || v.RefFIT != 0.3 || v.RefTemp == nil || *v.RefTemp != 55 {
		t.Fatalf("unexpected variant %+v (%v)", v, err)
	}
	p, err := store.GetMissionProfile(context.Background(), *r.MissionProfileID)
	if err != nil || len(p.Segments) != 2 || p.Segments[1].Weight != 0.5 {
		t.Fatalf("unexpected profile %+v (%v)", p, err)
	}

	modes, _ := store.FailureModesByMPN(context.Background(), "RC0603")
	if len(modes) != 2 {
		t.Fatalf("expected two mpn modes, got %d", len(modes))
	}
	family, _ := store.FailureModesByFamily(context.Background(), "mlcc", 0)
	if len(family) != 1 {
		t.Fatalf("expected case-insensitive family match, got %d", len(family))
	}
}

func TestParseIsDeterministic(t *testing.T) {
	a, err := Parse([]byte(sampleBOM))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := Parse([]byte(sampleBOM))
	if a.ProjectID() != b.ProjectID() || a.Components()[0].ID != b.Components()[0].ID {
		t.Fatalf("expected stable ids across loads")
	}
	if other, _ := a.ListProjectComponents(context.Background(), uuid.New()); len(other) != 0 {
		t.Fatalf("expected no components for another project")
	}
}

func TestParseRejectsBrokenReferences(t *testing.T) {
	cases := map[string]string{
		"unknown variant": "components:\n  - {mpn: R1, variant: missing}\n",
		"unknown profile": "components:\n  - {mpn: R1, profile: missing}\n",
		"missing mpn":     "components:\n  - {type: Resistor}\n",
		"negative qty":    "components:\n  - {mpn: R1, quantity: -1}\n",
		"zero qty":        "components:\n  - {mpn: R1, quantity: 0}\n",
		"not yaml":        "components: [",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestStoreLookupsReportNotFound(t *testing.T) {
	store, _ := Parse([]byte(sampleBOM))
	if _, err := store.GetComponent(context.Background(), uuid.New()); !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetVariant(context.Background(), uuid.New()); !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateFailureModeAddsToCatalog(t *testing.T) {
	store, _ := Parse([]byte(sampleBOM))
	created, err := store.CreateFailureMode(context.Background(), models.FailureMode{MPN: "GRM188", Mode: "open", Lambda: 1})
	if err != nil || created.ID == uuid.Nil {
		t.Fatalf("unexpected result %+v (%v)", created, err)
	}
	modes, _ := store.FailureModesByMPN(context.Background(), "GRM188")
	if len(modes) != 1 {
		t.Fatalf("expected new mode to be visible")
	}
	if _, err := store.CreateFailureMode(context.Background(), models.FailureMode{Mode: "open"}); !errors.Is(err, utils.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bom.yaml")
	if err := os.WriteFile(path, []byte(sampleBOM), 0o600); err != nil {
		t.Fatalf("write bom: %v", err)
	}
	store, err := Load(path)
	if err != nil || len(store.Components()) != 2 {
		t.Fatalf("unexpected load result (%v)", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected missing file error")
	}
}

func TestStoreExportsDeclaredRecords(t *testing.T) {
	store, _ := Parse([]byte(sampleBOM))
	if store.ProjectName() != "brake-controller" {
		t.Fatalf("unexpected project name %q", store.ProjectName())
	}
	if len(store.Profiles()) != 1 || len(store.Variants()) != 1 {
		t.Fatalf("expected one profile and one variant")
	}
	modes := store.FailureModes()
	if len(modes) != 3 || modes[0].Mode != "open" || modes[2].Family != "MLCC" {
		t.Fatalf("expected file-ordered modes, got %+v", modes)
	}
	again, _ := Parse([]byte(sampleBOM))
	if again.FailureModes()[1].ID != modes[1].ID {
		t.Fatalf("expected stable failure mode ids")
	}
}

func TestParseDefaultsOmittedQuantity(t *testing.T) {
	store, err := Parse([]byte("components:\n  - {mpn: R1, type: Resistor}\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.Components()[0].Quantity; got != 1 {
		t.Fatalf("expected omitted quantity to mean one part, got %d", got)
	}
}
