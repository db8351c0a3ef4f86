package api

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/miradorstack/mirador-fmeda/internal/engine"
	"github.com/miradorstack/mirador-fmeda/internal/models"
)

// FITResponse is the wire form of a single-component standard estimate.
type FITResponse struct {
	ComponentID uuid.UUID `json:"component_id"`
	engine.FITResult
}

// HealthResponse is the wire form of a health probe answer.
type HealthResponse struct {
	Status    string   `json:"status"`
	Standards []string `json:"standards,omitempty"`
}

// ToStruct converts a JSON-encodable value into a protobuf Struct.
func ToStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("response is not an object: %w", err)
	}
	return structpb.NewStruct(fields)
}

// FromStruct decodes a protobuf Struct into dst through its JSON form.
func FromStruct(s *structpb.Struct, dst any) error {
	if s == nil {
		return fmt.Errorf("request is nil")
	}
	raw, err := json.Marshal(s.AsMap())
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

// FromProtoFITRequest maps a CalculateFIT request. The standard may be left empty for
// the service default.
func FromProtoFITRequest(s *structpb.Struct) (models.FITRequest, error) {
	var req models.FITRequest
	if err := FromStruct(s, &req); err != nil {
		return models.FITRequest{}, err
	}
	if req.ComponentID == uuid.Nil {
		return models.FITRequest{}, fmt.Errorf("component_id is required")
	}
	return req, nil
}

// FromProtoComponentRequest extracts the component id of a CalculateComponent request.
func FromProtoComponentRequest(s *structpb.Struct) (uuid.UUID, error) {
	var req struct {
		ComponentID uuid.UUID `json:"component_id"`
	}
	if err := FromStruct(s, &req); err != nil {
		return uuid.Nil, err
	}
	if req.ComponentID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("component_id is required")
	}
	return req.ComponentID, nil
}

// FromProtoProjectRequest maps a CalculateProject request.
func FromProtoProjectRequest(s *structpb.Struct) (models.ProjectCalculationRequest, error) {
	var req models.ProjectCalculationRequest
	if err := FromStruct(s, &req); err != nil {
		return models.ProjectCalculationRequest{}, err
	}
	if req.ProjectID == uuid.Nil && len(req.ComponentIDs) == 0 {
		return models.ProjectCalculationRequest{}, fmt.Errorf("project_id or component_ids is required")
	}
	return req, nil
}

// ToProtoFITResult converts a standard estimate into the gRPC representation.
func ToProtoFITResult(componentID uuid.UUID, res engine.FITResult) (*structpb.Struct, error) {
	return ToStruct(FITResponse{ComponentID: componentID, FITResult: res})
}

// ToProtoComponentResult converts a component roll-up into the gRPC representation.
func ToProtoComponentResult(res models.ComponentFMEDAResult) (*structpb.Struct, error) {
	return ToStruct(res)
}

// ToProtoProjectCalculation converts a project calculation into the gRPC representation.
func ToProtoProjectCalculation(res models.ProjectCalculation) (*structpb.Struct, error) {
	return ToStruct(res)
}

// ToProtoHealth converts a health answer into the gRPC representation.
func ToProtoHealth(res HealthResponse) (*structpb.Struct, error) {
	return ToStruct(res)
}
