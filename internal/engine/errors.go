package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownStandard signals a standard identifier with no registered calculator.
	ErrUnknownStandard = errors.New("unknown reliability standard")
	// ErrMissingVariant signals a standard that needs a component variant but got none.
	ErrMissingVariant = errors.New("component variant required")
	// ErrDegenerateProfile signals a mission profile without usable duty-cycle weight.
	ErrDegenerateProfile = errors.New("mission profile has no usable duty-cycle weight")
	// ErrInvalidTemperature signals a temperature at or below absolute zero, or not finite.
	ErrInvalidTemperature = errors.New("temperature at or below absolute zero")
	// ErrInvalidProfile signals a segment weight that is negative or not finite.
	ErrInvalidProfile = errors.New("invalid mission profile segment")
)

// StandardError carries the standard and component a structural failure belongs to.
type StandardError struct {
	Standard    string
	ComponentID string
	Err         error
}

func (e *StandardError) Error() string {
	if e.ComponentID == "" {
		return fmt.Sprintf("standard %s: %v", e.Standard, e.Err)
	}
	return fmt.Sprintf("standard %s, component %s: %v", e.Standard, e.ComponentID, e.Err)
}

func (e *StandardError) Unwrap() error {
	return e.Err
}

// Warning codes reported on degraded results.
const (
	WarnDegenerateProfile = "degenerate_profile"
	WarnUnknownType       = "unknown_component_type"
	WarnMissingVariant    = "missing_variant"
)

// Warning records a recoverable degradation applied while computing a failure rate.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	return w.Code + ": " + w.Message
}
