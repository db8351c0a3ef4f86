package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ComponentFMEDAResult is the failure-mode roll-up for a single BOM line.
type ComponentFMEDAResult struct {
	ComponentID          uuid.UUID `json:"component_id"`
	MPN                  string    `json:"mpn"`
	Quantity             int       `json:"quantity"`
	TotalFIT             float64   `json:"total_fit"`
	TotalFailurePerHour  float64   `json:"total_failure_per_hour"`
	DetectionCoverage    float64   `json:"detection_coverage"`
	SafePerHour          float64   `json:"safe_per_hour"`
	DangerousPerHour     float64   `json:"dangerous_per_hour"`
	FailureModesConsumed int       `json:"failure_modes"`
}

// AggregateTotals are the project-level safe/dangerous totals, quantity-weighted.
type AggregateTotals struct {
	TotalDangerousPerHour    float64 `json:"total_dangerous_per_hour"`
	TotalSafePerHour         float64 `json:"total_safe_per_hour"`
	TotalDangerousFIT        float64 `json:"total_dangerous_fit"`
	TotalSafeFIT             float64 `json:"total_safe_fit"`
	DangerousPerMillionHours float64 `json:"dangerous_per_million_hours"`
}

// ProjectFMEDAResult keeps per-component detail alongside the aggregate.
type ProjectFMEDAResult struct {
	Components []ComponentFMEDAResult `json:"components"`
	Aggregate  AggregateTotals        `json:"aggregate"`
}

// Calculation is a persisted snapshot of one project calculation request and its result.
type Calculation struct {
	ID        uuid.UUID       `json:"id"`
	ProjectID uuid.UUID       `json:"project_id"`
	Payload   json.RawMessage `json:"payload"`
	Result    json.RawMessage `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
}

// ModePrediction apportions a component's predicted FIT across its failure modes.
type ModePrediction struct {
	ComponentID  uuid.UUID          `json:"component_id"`
	TotalFIT     float64            `json:"total_fit"`
	FailureModes map[string]float64 `json:"failure_modes"`
}
