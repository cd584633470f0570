package simulation

import (
	"time"

	"github.com/Alexandre220990/ProfitumMVP-sub006/internal/eligibility"
	"github.com/Alexandre220990/ProfitumMVP-sub006/internal/savings"
)

// Status tracks a simulation session through its life.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

// Session is one simulation run. The session id doubles as the subject id
// for answers, evaluation results, and change events.
type Session struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Priority ranks an eligible product for presentation.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// PriorityFor bands a score into a presentation priority.
func PriorityFor(score float64) Priority {
	switch {
	case score >= 0.8:
		return PriorityHigh
	case score >= 0.6:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// ProductResult pairs a product's eligibility outcome with its presentation
// band and the savings estimate when one exists.
type ProductResult struct {
	eligibility.ProductEligibility
	Priority Priority          `json:"priority"`
	Estimate *savings.Estimate `json:"estimate,omitempty"`
}

// Outcome is what one evaluation cycle returns to the caller.
type Outcome struct {
	SessionID   string               `json:"sessionId"`
	Products    []ProductResult      `json:"products"`
	Changes     []eligibility.Change `json:"changes,omitempty"`
	EvaluatedAt time.Time            `json:"evaluatedAt"`
}
