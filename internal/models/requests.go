package models

import "github.com/google/uuid"

// FITRequest asks for a single-component, single-standard failure rate.
type FITRequest struct {
	Standard         string     `json:"standard"`
	ComponentID      uuid.UUID  `json:"component_id"`
	MissionProfileID *uuid.UUID `json:"mission_profile_id,omitempty"`
}

// ProjectCalculationRequest selects the components of a project to roll up. An empty
// ComponentIDs list means every component of the project.
type ProjectCalculationRequest struct {
	ProjectID        uuid.UUID   `json:"project_id"`
	ComponentIDs     []uuid.UUID `json:"component_ids,omitempty"`
	Standard         string      `json:"standard,omitempty"`
	MissionProfileID *uuid.UUID  `json:"mission_profile_id,omitempty"`
	Persist          bool        `json:"persist"`
}

// ComponentFIT is the standard-based estimate for one component, reported next to the
// failure-mode roll-up but never merged into it.
type ComponentFIT struct {
	ComponentID uuid.UUID `json:"component_id"`
	Standard    string    `json:"standard"`
	FIT         float64   `json:"fit"`
	Degraded    bool      `json:"degraded"`
	Warnings    []string  `json:"warnings,omitempty"`
	ModesRatio  float64   `json:"modes_to_standard_ratio,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// ProjectCalculation is the service-level answer to a ProjectCalculationRequest.
type ProjectCalculation struct {
	CalculationID *uuid.UUID         `json:"calculation_id,omitempty"`
	Result        ProjectFMEDAResult `json:"result"`
	StandardFITs  []ComponentFIT     `json:"standard_fits,omitempty"`
}
