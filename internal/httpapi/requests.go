package httpapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/miradorstack/mirador-fmeda/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("fraction", validateFraction)
	return v
}

// validateFraction accepts numbers within [0, 1].
func validateFraction(fl validator.FieldLevel) bool {
	f := fl.Field().Float()
	return f >= 0 && f <= 1
}

type failureModeRequest struct {
	MPN               string   `json:"mpn" validate:"required_without=Family"`
	Family            string   `json:"family" validate:"required_without=MPN"`
	Mode              string   `json:"mode" validate:"required"`
	Lambda            float64  `json:"lambda" validate:"gte=0"`
	DetectionCoverage *float64 `json:"detection_coverage" validate:"omitempty,fraction"`
}

func (r failureModeRequest) model() models.FailureMode {
	return models.FailureMode{
		MPN:               r.MPN,
		Family:            r.Family,
		Mode:              r.Mode,
		Lambda:            r.Lambda,
		DetectionCoverage: r.DetectionCoverage,
	}
}

type calculateRequest struct {
	ProjectID        string   `json:"project_id" validate:"omitempty,uuid"`
	ComponentIDs     []string `json:"component_ids" validate:"omitempty,dive,uuid"`
	Standard         string   `json:"standard" validate:"omitempty,max=32"`
	MissionProfileID string   `json:"mission_profile_id" validate:"omitempty,uuid"`
	Persist          bool     `json:"persist"`
}

func (r calculateRequest) model() models.ProjectCalculationRequest {
	out := models.ProjectCalculationRequest{
		Standard:         r.Standard,
		MissionProfileID: optionalID(r.MissionProfileID),
		Persist:          r.Persist,
	}
	if r.ProjectID != "" {
		out.ProjectID = uuid.MustParse(r.ProjectID)
	}
	for _, id := range r.ComponentIDs {
		out.ComponentIDs = append(out.ComponentIDs, uuid.MustParse(id))
	}
	return out
}

type fitRequest struct {
	ComponentID      string `json:"component_id" validate:"required,uuid"`
	Standard         string `json:"standard" validate:"omitempty,max=32"`
	MissionProfileID string `json:"mission_profile_id" validate:"omitempty,uuid"`
}

func (r fitRequest) model() models.FITRequest {
	return models.FITRequest{
		ComponentID:      uuid.MustParse(r.ComponentID),
		Standard:         r.Standard,
		MissionProfileID: optionalID(r.MissionProfileID),
	}
}

// optionalID parses an already validated id; empty means unset.
func optionalID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id := uuid.MustParse(s)
	return &id
}
