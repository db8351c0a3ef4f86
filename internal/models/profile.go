package models

import (
	"time"

	"github.com/google/uuid"
)

// MissionProfile describes the duty cycle a component is expected to see over its life.
type MissionProfile struct {
	ID                uuid.UUID        `json:"id" yaml:"id"`
	Name              string           `json:"name" yaml:"name"`
	Description       string           `json:"description,omitempty" yaml:"description"`
	Segments          []ProfileSegment `json:"segments" yaml:"segments"`
	EnvironmentFactor *float64         `json:"environment_factor,omitempty" yaml:"environment_factor"`
	StressFactor      *float64         `json:"stress_factor,omitempty" yaml:"stress_factor"`
	CreatedAt         time.Time        `json:"created_at" yaml:"-"`
}

// ProfileSegment is one (temperature, duration-weight) pair. Weights are relative; only
// their ratios matter.
type ProfileSegment struct {
	Temp   float64 `json:"temp" yaml:"temp"`
	Weight float64 `json:"tau" yaml:"tau"`
}
