package models

import (
	"time"

	"github.com/google/uuid"
)

// Component types with dedicated formulas in at least one standard. The set is open:
// any other string is a valid type tag and is handled by each standard's fallback policy.
const (
	ComponentTypeResistor  = "Resistor"
	ComponentTypeCapacitor = "Capacitor"
	ComponentTypeIC        = "IC"
)

// Component is one BOM line of a project.
type Component struct {
	ID                     uuid.UUID  `json:"id" yaml:"id"`
	ProjectID              uuid.UUID  `json:"project_id" yaml:"project_id"`
	ManufacturerPartNumber string     `json:"manufacturer_part_number" yaml:"mpn"`
	Manufacturer           string     `json:"manufacturer,omitempty" yaml:"manufacturer"`
	ReferenceDesignator    string     `json:"reference_designator,omitempty" yaml:"reference_designator"`
	Family                 string     `json:"family,omitempty" yaml:"family"`
	Type                   string     `json:"component_type" yaml:"type"`
	Quantity               int        `json:"quantity" yaml:"-"`
	BaseFIT                *float64   `json:"base_fit,omitempty" yaml:"base_fit"`
	QualityFactor          *float64   `json:"quality_factor,omitempty" yaml:"quality_factor"`
	ResistorType           string     `json:"resistor_type,omitempty" yaml:"resistor_type"`
	VariantID              *uuid.UUID `json:"variant_id,omitempty" yaml:"variant_id"`
	MissionProfileID       *uuid.UUID `json:"mission_profile_id,omitempty" yaml:"mission_profile_id"`
	CreatedAt              time.Time  `json:"created_at" yaml:"-"`
}

// ComponentVariant is a manufacturer-qualified baseline used by temperature-dependent standards.
type ComponentVariant struct {
	ID        uuid.UUID `json:"id" yaml:"id"`
	SubtypeID uuid.UUID `json:"subtype_id" yaml:"subtype_id"`
	Name      string    `json:"name" yaml:"name"`
	RefFIT    float64   `json:"ref_fit" yaml:"ref_fit"`
	RefTemp   *float64  `json:"ref_temp,omitempty" yaml:"ref_temp"`
	Notes     string    `json:"notes,omitempty" yaml:"notes"`
	CreatedAt time.Time `json:"created_at" yaml:"-"`
}

// FailureMode is a catalog entry describing one way a part can fail.
type FailureMode struct {
	ID                uuid.UUID `json:"id" yaml:"id"`
	MPN               string    `json:"mpn,omitempty" yaml:"mpn"`
	Family            string    `json:"family,omitempty" yaml:"family"`
	Mode              string    `json:"mode" yaml:"mode"`
	Lambda            float64   `json:"lambda" yaml:"lambda"`
	DetectionCoverage *float64  `json:"detection_coverage,omitempty" yaml:"detection_coverage"`
	CreatedAt         time.Time `json:"created_at" yaml:"-"`
}

// Coverage returns the stated detection coverage, or zero when the mode is undetected.
func (m FailureMode) Coverage() float64 {
	if m.DetectionCoverage == nil {
		return 0
	}
	return *m.DetectionCoverage
}
