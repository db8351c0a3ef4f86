package api

import (
	"testing"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/miradorstack/mirador-fmeda/internal/engine"
	"github.com/miradorstack/mirador-fmeda/internal/models"
)

func mustStruct(t *testing.T, fields map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(fields)
	if err != nil {
		t.Fatalf("build struct: %v", err)
	}
	return s
}

func TestFromProtoFITRequest(t *testing.T) {
	id := uuid.New()
	profile := uuid.New()
	req, err := FromProtoFITRequest(mustStruct(t, map[string]any{
		"standard":           "SN29500",
		"component_id":       id.String(),
		"mission_profile_id": profile.String(),
	}))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if req.ComponentID != id || req.Standard != "SN29500" || req.MissionProfileID == nil || *req.MissionProfileID != profile {
		t.Fatalf("unexpected request: %+v", req)
	}

	if _, err := FromProtoFITRequest(mustStruct(t, map[string]any{"standard": "SN29500"})); err == nil {
		t.Fatalf("expected missing component id to be rejected")
	}
	if _, err := FromProtoFITRequest(mustStruct(t, map[string]any{"component_id": "not-a-uuid"})); err == nil {
		t.Fatalf("expected malformed component id to be rejected")
	}
	if _, err := FromProtoFITRequest(nil); err == nil {
		t.Fatalf("expected nil request to be rejected")
	}
}

func TestFromProtoProjectRequest(t *testing.T) {
	project := uuid.New()
	a, b := uuid.New(), uuid.New()
	req, err := FromProtoProjectRequest(mustStruct(t, map[string]any{
		"project_id":    project.String(),
		"component_ids": []any{a.String(), b.String()},
		"persist":       true,
	}))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if req.ProjectID != project || len(req.ComponentIDs) != 2 || req.ComponentIDs[1] != b || !req.Persist {
		t.Fatalf("unexpected request: %+v", req)
	}

	if _, err := FromProtoProjectRequest(mustStruct(t, map[string]any{})); err == nil {
		t.Fatalf("expected empty selection to be rejected")
	}
}

func TestFromProtoComponentRequest(t *testing.T) {
	id := uuid.New()
	got, err := FromProtoComponentRequest(mustStruct(t, map[string]any{"component_id": id.String()}))
	if err != nil || got != id {
		t.Fatalf("expected %s, got %s (%v)", id, got, err)
	}
}

func TestToProtoFITResult(t *testing.T) {
	id := uuid.New()
	s, err := ToProtoFITResult(id, engine.FITResult{
		Standard: engine.StandardSN29500,
		FIT:      0.75,
		Model:    "SN29500/resistor",
		Degraded: true,
		Warnings: []engine.Warning{{Code: engine.WarnDegenerateProfile, Message: "no weight"}},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	fields := s.GetFields()
	if fields["component_id"].GetStringValue() != id.String() {
		t.Fatalf("unexpected component id: %v", fields["component_id"])
	}
	if fields["fit"].GetNumberValue() != 0.75 || !fields["degraded"].GetBoolValue() {
		t.Fatalf("unexpected fields: %v", fields)
	}
	warnings := fields["warnings"].GetListValue().GetValues()
	if len(warnings) != 1 || warnings[0].GetStructValue().GetFields()["code"].GetStringValue() != engine.WarnDegenerateProfile {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
}

func TestToProtoProjectCalculation(t *testing.T) {
	id := uuid.New()
	s, err := ToProtoProjectCalculation(models.ProjectCalculation{
		Result: models.ProjectFMEDAResult{
			Components: []models.ComponentFMEDAResult{{ComponentID: id, Quantity: 2, TotalFIT: 15}},
			Aggregate:  models.AggregateTotals{TotalDangerousFIT: 3},
		},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	result := s.GetFields()["result"].GetStructValue().GetFields()
	components := result["components"].GetListValue().GetValues()
	if len(components) != 1 || components[0].GetStructValue().GetFields()["total_fit"].GetNumberValue() != 15 {
		t.Fatalf("unexpected components: %v", components)
	}
	if result["aggregate"].GetStructValue().GetFields()["total_dangerous_fit"].GetNumberValue() != 3 {
		t.Fatalf("unexpected aggregate: %v", result["aggregate"])
	}

	var back models.ProjectCalculation
	if err := FromStruct(s, &back); err != nil || back.Result.Components[0].ComponentID != id {
		t.Fatalf("expected round trip through struct, got %+v (%v)", back, err)
	}
}
