package types

import "fmt"

// Zone represents the physical deployment zone under assessment.
type Zone struct {
	// ZoneID is the unique identifier for the zone (e.g., "campus-core").
	ZoneID string `json:"zone_id"`

	// Name is the human-readable zone name.
	Name string `json:"name"`

	// Description describes the environment.
	Description string `json:"description"`

	// Attributes carries infrastructure key-value pairs
	// (e.g., {"pole_density": "high", "backhaul": "fiber"}).
	Attributes map[string]any `json:"attributes,omitempty"`

	// Coordinates is an optional polygon as [lat, lon] pairs.
	Coordinates [][]float64 `json:"coordinates,omitempty"`
}

// Placeholder returns the zone used when a zone ID is not found in the
// GIS store. Lookups never hard-fail; the assessment proceeds against an
// empty environment.
func Placeholder(zoneID string) Zone {
	return Zone{
		ZoneID:      zoneID,
		Name:        "Unknown Zone",
		Description: "Zone ID not found in GIS database.",
		Attributes:  map[string]any{},
	}
}

// GoalType classifies a strategic objective.
type GoalType string

// Valid goal types.
const (
	GoalSafety       GoalType = "Safety"
	GoalEnergy       GoalType = "Energy"
	GoalConnectivity GoalType = "Connectivity"
	GoalResilience   GoalType = "Resilience"
)

// IsValid returns true if the goal type is valid.
func (g GoalType) IsValid() bool {
	switch g {
	case GoalSafety, GoalEnergy, GoalConnectivity, GoalResilience:
		return true
	default:
		return false
	}
}

// Priority ranks goals and constraints.
type Priority string

// Valid priorities.
const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// IsValid returns true if the priority is valid.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// Goal represents a strategic objective for the deployment.
type Goal struct {
	Type        GoalType `json:"type"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
}

// Validate checks the goal's type and priority.
func (g Goal) Validate() error {
	if !g.Type.IsValid() {
		return fmt.Errorf("invalid goal type: %s", g.Type)
	}
	if !g.Priority.IsValid() {
		return fmt.Errorf("invalid goal priority: %s", g.Priority)
	}
	return nil
}

// ConstraintType classifies a deployment limitation.
type ConstraintType string

// Valid constraint types.
const (
	ConstraintBudget    ConstraintType = "Budget"
	ConstraintPolicy    ConstraintType = "Policy"
	ConstraintTechnical ConstraintType = "Technical"
	ConstraintPrivacy   ConstraintType = "Privacy"
)

// IsValid returns true if the constraint type is valid.
func (c ConstraintType) IsValid() bool {
	switch c {
	case ConstraintBudget, ConstraintPolicy, ConstraintTechnical, ConstraintPrivacy:
		return true
	default:
		return false
	}
}

// Constraint represents a limitation on the deployment.
type Constraint struct {
	Type        ConstraintType `json:"type"`
	Description string         `json:"description"`

	// IsHardConstraint marks constraints that cannot be violated.
	IsHardConstraint bool `json:"is_hard_constraint"`
}

// Validate checks the constraint's type.
func (c Constraint) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid constraint type: %s", c.Type)
	}
	return nil
}
